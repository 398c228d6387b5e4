package auth

const (
	RoleStaff      = "Staff"
	RoleEvaluator  = "Evaluator"
	RoleHRAdmin    = "HR Admin"
	RoleSuperAdmin = "Super Admin"
)

const (
	PermEvaluationsRead  = "evaluations.read"
	PermEvaluationsWrite = "evaluations.write"
	PermCatalogRead      = "catalog.read"
	PermCatalogWrite     = "catalog.write"
	PermReportsRead      = "reports.read"
	PermPayrollRead      = "payroll.read"
	PermPayrollWrite     = "payroll.write"
	PermUsersRead        = "users.read"
	PermUsersWrite       = "users.write"
	PermSystemAdmin      = "admin.system"
)

var DefaultPermissions = []string{
	PermEvaluationsRead,
	PermEvaluationsWrite,
	PermCatalogRead,
	PermCatalogWrite,
	PermReportsRead,
	PermPayrollRead,
	PermPayrollWrite,
	PermUsersRead,
	PermUsersWrite,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleStaff: {
		PermEvaluationsRead,
		PermCatalogRead,
		PermReportsRead,
	},
	RoleEvaluator: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermCatalogRead,
		PermReportsRead,
		PermUsersRead,
	},
	RoleHRAdmin: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermCatalogRead,
		PermCatalogWrite,
		PermReportsRead,
		PermPayrollRead,
		PermPayrollWrite,
		PermUsersRead,
		PermUsersWrite,
	},
	RoleSuperAdmin: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermCatalogRead,
		PermCatalogWrite,
		PermReportsRead,
		PermPayrollRead,
		PermPayrollWrite,
		PermUsersRead,
		PermUsersWrite,
		PermSystemAdmin,
	},
}

// RoleDescriptions seed the role catalog; reports surface these alongside
// each user's aggregate row.
var RoleDescriptions = map[string]string{
	RoleStaff:      "Evaluated staff member",
	RoleEvaluator:  "Submits weekly KPI evaluations",
	RoleHRAdmin:    "Manages catalog, payroll setup and reports",
	RoleSuperAdmin: "Full system access",
}
