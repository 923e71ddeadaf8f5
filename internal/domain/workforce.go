package domain

// Staffing derives vacancies and certified headcount from a workforce record.
type Staffing struct {
	TotalPositions  int
	FilledPositions int
	InTraining      int
}

func (s Staffing) Vacancies() int { return s.TotalPositions - s.FilledPositions }

func (s Staffing) Certified() int { return s.FilledPositions - s.InTraining }

// VacancyRate is vacancies as a percentage of positions, two decimals.
func (s Staffing) VacancyRate() float64 {
	return Round2(Percent(float64(s.Vacancies()), float64(s.TotalPositions)))
}
