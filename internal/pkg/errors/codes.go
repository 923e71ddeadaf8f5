package errors

// Error code constants. Messages keep the wording existing dashboard
// clients display verbatim.

// Not-found codes.
const (
	CodeMachineNotFound   = "MACHINE_NOT_FOUND"
	CodeWorkOrderNotFound = "WORK_ORDER_NOT_FOUND"
	CodeTaskNotFound      = "MAINTENANCE_TASK_NOT_FOUND"
	CodeQualityNotFound   = "QUALITY_CHECK_NOT_FOUND"
	CodeScrapNotFound     = "SCRAP_ENTRY_NOT_FOUND"
	CodeEmployeeNotFound  = "EMPLOYEE_NOT_FOUND"
	CodePlantNotFound     = "PLANT_NOT_FOUND"
	CodeAreaNotFound      = "AREA_NOT_FOUND"
	CodeRouteNotFound     = "ROUTE_NOT_FOUND"
)

// Conflict codes: duplicate keys and rows still referenced elsewhere.
const (
	CodeMachineInUse   = "MACHINE_IN_USE"
	CodeMachineExists  = "MACHINE_ALREADY_EXISTS"
	CodePlantExists    = "PLANT_ALREADY_EXISTS"
	CodeEmployeeExists = "EMPLOYEE_ALREADY_EXISTS"
	CodeEmailExists    = "EMAIL_ALREADY_REGISTERED"
	CodeUsernameExists = "USERNAME_ALREADY_REGISTERED"
)

// Auth codes.
const (
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeTokenInvalid       = "TOKEN_INVALID"
	CodeTokenMissing       = "TOKEN_MISSING"
	CodeForbidden          = "FORBIDDEN"
)

// Validation codes.
const (
	CodeValidationFailed  = "VALIDATION_FAILED"
	CodeInvalidEnum       = "INVALID_ENUM_VALUE"
	CodeInvalidQuery      = "INVALID_QUERY_PARAMETER"
	CodeIllegalTransition = "ILLEGAL_STATUS_TRANSITION"
	CodeInvalidLogLevel   = "INVALID_LOG_LEVEL"
)

// API contract codes, raised when traffic does not match the OpenAPI document.
const (
	CodeOpenAPIRoute    = "OPENAPI_ROUTE_INVALID"
	CodeOpenAPIRequest  = "OPENAPI_REQUEST_INVALID"
	CodeOpenAPIResponse = "OPENAPI_RESPONSE_INVALID"
)

const CodeInternal = "INTERNAL_ERROR"

// Convenience constructors using predefined codes.

// ErrMachineNotFound is the 404 for an absent machine id.
func ErrMachineNotFound(machineID string) *AppError {
	return NotFound(CodeMachineNotFound, "Machine not found").
		WithParams(map[string]interface{}{"machine_id": machineID})
}

// ErrAreaNotFound is the 404 for an area with no machines.
func ErrAreaNotFound(area string) *AppError {
	return NotFound(CodeAreaNotFound, "No machines found in area: "+area).
		WithParams(map[string]interface{}{"area": area})
}

// ErrWorkOrderNotFound is the 404 for an absent work order.
func ErrWorkOrderNotFound(orderID string) *AppError {
	return NotFound(CodeWorkOrderNotFound, "Work order not found").
		WithParams(map[string]interface{}{"order_id": orderID})
}

// ErrTaskNotFound is the 404 for an absent maintenance task.
func ErrTaskNotFound(taskID string) *AppError {
	return NotFound(CodeTaskNotFound, "Maintenance task not found").
		WithParams(map[string]interface{}{"task_id": taskID})
}

// ErrInvalidEnum rejects a value outside an enumeration.
func ErrInvalidEnum(field, value string) *AppError {
	return Validation(CodeInvalidEnum, "invalid value for "+field+": "+value).
		WithParams(map[string]interface{}{"field": field, "value": value})
}

// ErrInvalidQuery rejects a malformed query parameter.
func ErrInvalidQuery(param, reason string) *AppError {
	return Validation(CodeInvalidQuery, "invalid query parameter "+param+": "+reason).
		WithParams(map[string]interface{}{"param": param})
}

// ErrQualityCheckNotFound is the 404 for an absent quality check.
func ErrQualityCheckNotFound(id uint) *AppError {
	return NotFound(CodeQualityNotFound, "Quality check not found").
		WithParams(map[string]interface{}{"check_id": id})
}

// ErrScrapNotFound is the 404 for an absent scrap entry.
func ErrScrapNotFound(id uint) *AppError {
	return NotFound(CodeScrapNotFound, "Scrap entry not found").
		WithParams(map[string]interface{}{"entry_id": id})
}

// ErrEmployeeNotFound is the 404 for an absent employee.
func ErrEmployeeNotFound(id uint) *AppError {
	return NotFound(CodeEmployeeNotFound, "Employee not found").
		WithParams(map[string]interface{}{"employee_id": id})
}

// ErrPlantNotFound is the 404 for an absent plant.
func ErrPlantNotFound(plantID string) *AppError {
	return NotFound(CodePlantNotFound, "Plant not found").
		WithParams(map[string]interface{}{"plant_id": plantID})
}

// ErrIllegalTransition rejects a status change out of a terminal state.
func ErrIllegalTransition(err error) *AppError {
	e := Validation(CodeIllegalTransition, "illegal status transition")
	e.Err = err
	return e
}

// ErrMachineInUse refuses to delete a machine that facts still reference.
func ErrMachineInUse(machineID string) *AppError {
	return Conflict(CodeMachineInUse, "Machine has recorded history and cannot be deleted").
		WithParams(map[string]interface{}{"machine_id": machineID})
}
