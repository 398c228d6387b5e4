package payrollsetup

const (
	ComponentTypeAllowance = "allowance"
	ComponentTypeDeduction = "deduction"
)

// Component is a master catalog entry: a named allowance or deduction every
// user's payroll setup is expected to list.
type Component struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ComponentType string  `json:"componentType"`
	DefaultAmount float64 `json:"defaultAmount"`
}

// Line is one saved amount in a user's payroll setup.
type Line struct {
	ComponentID   string  `json:"componentId"`
	Name          string  `json:"name"`
	ComponentType string  `json:"componentType"`
	Amount        float64 `json:"amount"`
}
