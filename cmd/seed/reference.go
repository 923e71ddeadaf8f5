package main

import (
	"time"

	"cableops.io/dashboard/internal/domain"
	"cableops.io/dashboard/internal/repository/models"
)

func strPtr(s string) *string { return &s }

func referencePlants() []models.Plant {
	return []models.Plant{
		{
			ID:                "PCP-1",
			Name:              "PCP-1 (LV Cables)",
			Description:       strPtr("Drawing and stranding for low-voltage cable"),
			DesignCapacityMT:  36000,
			CurrentCapacityMT: 9000,
			IsActive:          true,
		},
		{
			ID:                "PCP-2",
			Name:              "PCP-2 (BSI Cables)",
			Description:       strPtr("Extrusion and CV insulation"),
			DesignCapacityMT:  7800,
			CurrentCapacityMT: 1950,
			IsActive:          true,
		},
	}
}

func referenceEmployees() []models.Employee {
	type row struct {
		number, name, dept, position string
		shift                        domain.Shift
		skill                        int
	}
	rows := []row{
		{"EMP-001", "Ahmed Al-Rashid", "Drawing", "Operator", domain.ShiftMorning, 4},
		{"EMP-002", "Mohammed Hassan", "Drawing", "Operator", domain.ShiftMorning, 3},
		{"EMP-003", "Khalid Ibrahim", "Stranding", "Operator", domain.ShiftEvening, 3},
		{"EMP-004", "Faisal Al-Otaibi", "Extrusion", "Operator", domain.ShiftEvening, 4},
		{"EMP-005", "Omar Al-Ghamdi", "Extrusion", "Technician", domain.ShiftNight, 3},
		{"EMP-006", "Saad Al-Mutairi", "Maintenance", "Technician", domain.ShiftMorning, 5},
		{"EMP-007", "Abdullah Al-Qahtani", "Quality", "Inspector", domain.ShiftMorning, 4},
		{"EMP-008", "Nasser Al-Harbi", "CV Line", "Supervisor", domain.ShiftMorning, 5},
	}

	out := make([]models.Employee, 0, len(rows))
	for _, r := range rows {
		shift := string(r.shift)
		out = append(out, models.Employee{
			EmployeeNumber: r.number,
			Name:           r.name,
			Department:     strPtr(r.dept),
			Position:       strPtr(r.position),
			Shift:          &shift,
			IsActive:       true,
			SkillLevel:     r.skill,
		})
	}
	return out
}

// referenceMachines covers the areas mapped by the default plant areas.
func referenceMachines() []models.Machine {
	return []models.Machine{
		{ID: "BC-1", Name: "Bull Block 1", Area: "Drawing", Type: domain.MachineDrawing, Status: domain.MachineRunning, Speed: 22.5, TargetSpeed: 25, Temperature: 45, OEE: 82},
		{ID: "BC-2", Name: "Bull Block 2", Area: "Drawing", Type: domain.MachineDrawing, Status: domain.MachineRunning, Speed: 20, TargetSpeed: 25, Temperature: 44, OEE: 78},
		{ID: "BC-3", Name: "Bull Block 3", Area: "Drawing", Type: domain.MachineDrawing, Status: domain.MachineIdle, TargetSpeed: 25},
		{ID: "XL-1", Name: "Strander 1", Area: "Stranding", Type: domain.MachineStranding, Status: domain.MachineRunning, Speed: 180, TargetSpeed: 200, Temperature: 38, OEE: 86},
		{ID: "XL-2", Name: "Strander 2", Area: "Stranding", Type: domain.MachineStranding, Status: domain.MachineMaintenance, TargetSpeed: 200},
		{ID: "XT-11", Name: "Extrusion Line 1", Area: "Extrusion", Type: domain.MachineExtrusion, Status: domain.MachineRunning, Speed: 85, TargetSpeed: 100, Temperature: 180, OEE: 81},
		{ID: "XT-12", Name: "Extrusion Line 2", Area: "Extrusion", Type: domain.MachineExtrusion, Status: domain.MachineStopped, TargetSpeed: 100},
		{ID: "CV-1", Name: "CV Line Main", Area: "CV Line", Type: domain.MachineCVLine, Status: domain.MachineRunning, Speed: 45, TargetSpeed: 50, Temperature: 210, OEE: 88},
	}
}

func referenceWorkforce(day time.Time) []models.WorkforceRecord {
	return []models.WorkforceRecord{
		{
			PlantID: "PCP-1", Date: day,
			TotalPositions: 175, FilledPositions: 120,
			MorningShift: 40, EveningShift: 25, NightShift: 20,
			Operators: 80, Technicians: 20, Supervisors: 8, Engineers: 6, SupportStaff: 6,
			InTraining: 10,
		},
		{
			PlantID: "PCP-2", Date: day,
			TotalPositions: 139, FilledPositions: 80,
			MorningShift: 25, EveningShift: 15, NightShift: 12,
			Operators: 52, Technicians: 14, Supervisors: 5, Engineers: 4, SupportStaff: 5,
			InTraining: 6,
		},
	}
}
