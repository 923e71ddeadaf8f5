package repository

import "gorm.io/gorm"

// Repositories bundles every repository over one database handle.
type Repositories struct {
	DB          *gorm.DB
	Machines    *MachineRepository
	WorkOrders  *WorkOrderRepository
	Facts       *FactRepository
	Maintenance *MaintenanceRepository
	Plants      *PlantRepository
	Employees   *EmployeeRepository
	Users       *UserRepository
}

// New builds the repository set for db.
func New(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:          db,
		Machines:    NewMachineRepository(db),
		WorkOrders:  NewWorkOrderRepository(db),
		Facts:       NewFactRepository(db),
		Maintenance: NewMaintenanceRepository(db),
		Plants:      NewPlantRepository(db),
		Employees:   NewEmployeeRepository(db),
		Users:       NewUserRepository(db),
	}
}
