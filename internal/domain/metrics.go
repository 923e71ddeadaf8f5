package domain

import (
	"math"
	"time"
)

// Round2 rounds half away from zero to two decimals.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Percent returns part/whole*100, or 0 when whole is not positive.
func Percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return part / whole * 100
}

// MachineReading is the slice of a machine used by fleet reductions.
type MachineReading struct {
	ID     string
	Name   string
	Area   string
	Status MachineStatus
	OEE    float64
}

// StatusCounts tallies machines by status. The four buckets always sum to Total.
type StatusCounts struct {
	Total       int `json:"total"`
	Running     int `json:"running"`
	Idle        int `json:"idle"`
	Stopped     int `json:"stopped"`
	Maintenance int `json:"maintenance"`
}

// CountStatuses tallies machines by status.
func CountStatuses(machines []MachineReading) StatusCounts {
	var c StatusCounts
	for _, m := range machines {
		c.Total++
		switch m.Status {
		case MachineRunning:
			c.Running++
		case MachineIdle:
			c.Idle++
		case MachineStopped:
			c.Stopped++
		case MachineMaintenance:
			c.Maintenance++
		}
	}
	return c
}

// RunningOEE is the mean OEE over running machines, 0 when none run.
func RunningOEE(machines []MachineReading) (oee float64, running int) {
	var sum float64
	for _, m := range machines {
		if m.Status == MachineRunning {
			sum += m.OEE
			running++
		}
	}
	if running == 0 {
		return 0, 0
	}
	return sum / float64(running), running
}

// AreaOEE is the effectiveness of one plant area.
type AreaOEE struct {
	Area         string  `json:"area"`
	OEE          float64 `json:"oee"`
	MachineCount int     `json:"machine_count"`
	RunningCount int     `json:"running_count"`
}

// ComputeAreaOEE reduces the machines of a single area. ok is false when
// the area has no machines at all.
func ComputeAreaOEE(area string, machines []MachineReading) (AreaOEE, bool) {
	var inArea []MachineReading
	for _, m := range machines {
		if m.Area == area {
			inArea = append(inArea, m)
		}
	}
	if len(inArea) == 0 {
		return AreaOEE{Area: area}, false
	}
	oee, running := RunningOEE(inArea)
	return AreaOEE{
		Area:         area,
		OEE:          Round2(oee),
		MachineCount: len(inArea),
		RunningCount: running,
	}, true
}

// PlantCapacity is the capacity slice of a plant.
type PlantCapacity struct {
	DesignMT  float64
	CurrentMT float64
}

// CapacityUtilization is Σcurrent/Σdesign*100 across plants.
func CapacityUtilization(plants []PlantCapacity) float64 {
	var design, current float64
	for _, p := range plants {
		design += p.DesignMT
		current += p.CurrentMT
	}
	return Percent(current, design)
}

// ProductionFact is one production log row.
type ProductionFact struct {
	OutputLength *float64
	OutputWeight *float64
	Speed        float64
	Temperature  *float64
}

type ProductionSummary struct {
	TotalOutputLength  float64 `json:"total_output_length"`
	TotalOutputWeight  float64 `json:"total_output_weight"`
	AverageSpeed       float64 `json:"average_speed"`
	AverageTemperature float64 `json:"average_temperature"`
	LogCount           int     `json:"log_count"`
}

// SummarizeProduction sums output and averages speed and temperature over
// the rows where they were recorded as non-zero.
func SummarizeProduction(facts []ProductionFact) ProductionSummary {
	var s ProductionSummary
	var speedSum, tempSum float64
	var speedN, tempN int
	for _, f := range facts {
		s.LogCount++
		if f.OutputLength != nil {
			s.TotalOutputLength += *f.OutputLength
		}
		if f.OutputWeight != nil {
			s.TotalOutputWeight += *f.OutputWeight
		}
		if f.Speed != 0 {
			speedSum += f.Speed
			speedN++
		}
		if f.Temperature != nil && *f.Temperature != 0 {
			tempSum += *f.Temperature
			tempN++
		}
	}
	if speedN > 0 {
		s.AverageSpeed = Round2(speedSum / float64(speedN))
	}
	if tempN > 0 {
		s.AverageTemperature = Round2(tempSum / float64(tempN))
	}
	s.TotalOutputLength = Round2(s.TotalOutputLength)
	s.TotalOutputWeight = Round2(s.TotalOutputWeight)
	return s
}

// DowntimeFact is one downtime log row.
type DowntimeFact struct {
	Type    DowntimeType
	Minutes int
	Planned bool
}

type DowntimeSummary struct {
	TotalMinutes     int                  `json:"total_minutes"`
	ByType           map[DowntimeType]int `json:"by_type"`
	PlannedMinutes   int                  `json:"planned_minutes"`
	UnplannedMinutes int                  `json:"unplanned_minutes"`
	LogCount         int                  `json:"log_count"`
}

// SummarizeDowntime buckets minutes by type; ByType always sums to TotalMinutes.
func SummarizeDowntime(facts []DowntimeFact) DowntimeSummary {
	s := DowntimeSummary{ByType: map[DowntimeType]int{}}
	for _, f := range facts {
		s.LogCount++
		s.TotalMinutes += f.Minutes
		s.ByType[f.Type] += f.Minutes
		if f.Planned {
			s.PlannedMinutes += f.Minutes
		} else {
			s.UnplannedMinutes += f.Minutes
		}
	}
	return s
}

// QualityFact is one quality check row.
type QualityFact struct {
	Passed        bool
	SparkPassed   bool
	TensilePassed bool
	VisualPassed  bool
}

type QualitySummary struct {
	TotalChecks         int     `json:"total_checks"`
	PassedCount         int     `json:"passed_count"`
	FailedCount         int     `json:"failed_count"`
	PassRate            float64 `json:"pass_rate"`
	SparkTestFailures   int     `json:"spark_test_failures"`
	TensileTestFailures int     `json:"tensile_test_failures"`
	VisualFailures      int     `json:"visual_failures"`
}

// CheckPassed is the stored verdict of a quality check.
func CheckPassed(spark, tensile, visual bool) bool {
	return spark && tensile && visual
}

func SummarizeQuality(facts []QualityFact) QualitySummary {
	var s QualitySummary
	for _, f := range facts {
		s.TotalChecks++
		if f.Passed {
			s.PassedCount++
		} else {
			s.FailedCount++
		}
		if !f.SparkPassed {
			s.SparkTestFailures++
		}
		if !f.TensilePassed {
			s.TensileTestFailures++
		}
		if !f.VisualPassed {
			s.VisualFailures++
		}
	}
	s.PassRate = Round2(Percent(float64(s.PassedCount), float64(s.TotalChecks)))
	return s
}

// ScrapFact is one scrap entry row.
type ScrapFact struct {
	Type          ScrapType
	WeightKg      float64
	CopperPercent float64
	ValueUSD      float64
	ValueSAR      float64
}

type ScrapTypeTotal struct {
	WeightKg float64 `json:"weight_kg"`
	ValueUSD float64 `json:"value_usd"`
}

type ScrapSummary struct {
	TotalWeightKg float64                      `json:"total_weight_kg"`
	TotalCopperKg float64                      `json:"total_copper_kg"`
	TotalValueUSD float64                      `json:"total_value_usd"`
	TotalValueSAR float64                      `json:"total_value_sar"`
	EntryCount    int                          `json:"entry_count"`
	ByType        map[ScrapType]ScrapTypeTotal `json:"by_type"`
}

func SummarizeScrap(facts []ScrapFact) ScrapSummary {
	s := ScrapSummary{ByType: map[ScrapType]ScrapTypeTotal{}}
	for _, f := range facts {
		s.EntryCount++
		s.TotalWeightKg += f.WeightKg
		s.TotalCopperKg += f.WeightKg * f.CopperPercent / 100
		s.TotalValueUSD += f.ValueUSD
		s.TotalValueSAR += f.ValueSAR
		bucket := s.ByType[f.Type]
		bucket.WeightKg += f.WeightKg
		bucket.ValueUSD += f.ValueUSD
		s.ByType[f.Type] = bucket
	}
	s.TotalCopperKg = Round2(s.TotalCopperKg)
	s.TotalValueSAR = Round2(s.TotalValueSAR)

	// Totals are summed from the rounded buckets so by_type adds up to them.
	var weight, value float64
	for k, v := range s.ByType {
		bucket := ScrapTypeTotal{WeightKg: Round2(v.WeightKg), ValueUSD: Round2(v.ValueUSD)}
		s.ByType[k] = bucket
		weight += bucket.WeightKg
		value += bucket.ValueUSD
	}
	s.TotalWeightKg = Round2(weight)
	s.TotalValueUSD = Round2(value)
	return s
}

// MaintenanceFact is one maintenance task row.
type MaintenanceFact struct {
	Type                MaintenanceType
	Status              MaintenanceStatus
	DowntimeMinutes     int
	TotalCost           float64
	ActualDurationHours *float64
}

type MaintenanceSummary struct {
	TotalTasks           int                     `json:"total_tasks"`
	Pending              int                     `json:"pending"`
	InProgress           int                     `json:"in_progress"`
	Completed            int                     `json:"completed"`
	ByType               map[MaintenanceType]int `json:"by_type"`
	TotalDowntimeMinutes int                     `json:"total_downtime_minutes"`
	TotalCost            float64                 `json:"total_cost"`
	MTTRHours            *float64                `json:"mttr_hours"`
	MTBFHours            *float64                `json:"mtbf_hours"`
}

// SummarizeMaintenance counts tasks and derives MTTR over completed tasks
// with a recorded duration. MTBF needs failure history and stays nil.
func SummarizeMaintenance(facts []MaintenanceFact) MaintenanceSummary {
	s := MaintenanceSummary{ByType: map[MaintenanceType]int{}}
	var repairSum float64
	var repairs int
	for _, f := range facts {
		s.TotalTasks++
		s.ByType[f.Type]++
		switch f.Status {
		case MaintenancePending:
			s.Pending++
		case MaintenanceInProgress:
			s.InProgress++
		case MaintenanceCompleted:
			s.Completed++
			if f.ActualDurationHours != nil {
				repairSum += *f.ActualDurationHours
				repairs++
			}
		}
		s.TotalDowntimeMinutes += f.DowntimeMinutes
		s.TotalCost += f.TotalCost
	}
	s.TotalCost = Round2(s.TotalCost)
	if repairs > 0 {
		mttr := Round2(repairSum / float64(repairs))
		s.MTTRHours = &mttr
	}
	return s
}

// Window is a half-open [Start, End) time range.
type Window struct {
	Start time.Time
	End   time.Time
}

// DayWindow is the UTC calendar day containing t.
func DayWindow(t time.Time) Window {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return Window{Start: start, End: start.AddDate(0, 0, 1)}
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}
