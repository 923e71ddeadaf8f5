package service

// Cold-start figures shown by a fresh installation when demo mode is on
// and the database has nothing to report yet.

const (
	demoCapacityUtilization = 25.0
	demoQualityRate         = 98.5
	demoScrapRate           = 1.5
	demoWeeklyTarget        = 400.0
)

var demoWorkforceOverview = WorkforceOverview{
	TotalOnShift:   137,
	TotalVacancies: 114,
	VacancyRate:    45.4,
}

func demoCapacity() []PlantCapacityView {
	return []PlantCapacityView{
		{
			PlantID:            "PCP-1",
			PlantName:          "PCP-1 (LV Cables)",
			DesignCapacity:     36000,
			ActualProduction:   9000,
			UtilizationPercent: 25.0,
			Unit:               capacityUnit,
		},
		{
			PlantID:            "PCP-2",
			PlantName:          "PCP-2 (BSI Cables)",
			DesignCapacity:     7800,
			ActualProduction:   1950,
			UtilizationPercent: 25.0,
			Unit:               capacityUnit,
		},
	}
}

func demoWorkforce() []WorkforceSummary {
	return []WorkforceSummary{
		{PlantID: "PCP-1", Total: 120, OnShift: 85, Vacancies: 55, VacancyRate: 31.4},
		{PlantID: "PCP-2", Total: 80, OnShift: 52, Vacancies: 59, VacancyRate: 53.2},
	}
}

func demoHourly() []HourlyPoint {
	out := make([]HourlyPoint, 0, len(trendHours))
	for _, h := range trendHours {
		out = append(out, HourlyPoint{
			Hour:   hourLabel(h),
			PCP1:   float64(12 + (h-6)*5 + h%3),
			PCP2:   float64(8 + (h-6)*3 + h%2),
			Target: float64(15 + (h-6)*5),
		})
	}
	return out
}

// demoWeek is a Saturday-first week; Friday is the weekly day off.
func demoWeek() []WeeklyPoint {
	days := []string{"Sat", "Sun", "Mon", "Tue", "Wed", "Thu", "Fri"}
	production := []float64{320, 380, 420, 390, 410, 350, 0}
	scrap := []float64{25, 18, 22, 30, 15, 28, 0}

	out := make([]WeeklyPoint, 0, len(days))
	for i, day := range days {
		target := demoWeeklyTarget
		if day == "Fri" {
			target = 0
		}
		out = append(out, WeeklyPoint{
			Day:        day,
			Production: production[i],
			Target:     target,
			Scrap:      scrap[i],
		})
	}
	return out
}
