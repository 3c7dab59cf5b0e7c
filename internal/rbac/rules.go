package rbac

// Permissions.
const (
	PermGradesCompute = "grades:compute"
	PermGradesView    = "grades:view"
	PermGradesExport  = "grades:export"
	PermRunsDelete    = "runs:delete"
)

// RolePermissions is the default policy.
var RolePermissions = map[string][]string{
	"viewer": {
		PermGradesView,
	},
	"teacher": {
		"grades:*",
	},
	"admin": {
		"*", // everything
	},
}
