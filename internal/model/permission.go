package model

// Capabilities checked by the HTTP layer before calling into the stores.
const (
	PermUserList        = "user-list"
	PermUserCreate      = "user-create"
	PermUserEdit        = "user-edit"
	PermUserDelete      = "user-delete"
	PermActionList      = "action-list"
	PermActionCreate    = "action-create"
	PermActionEdit      = "action-edit"
	PermActionDelete    = "action-delete"
	PermReportList      = "report-list"
	PermReportCreate    = "report-create"
	PermSparePartList   = "sparepart-list"
	PermSparePartCreate = "sparepart-create"
)

// AllPermissions lists every capability known to the application.
var AllPermissions = []string{
	PermUserList, PermUserCreate, PermUserEdit, PermUserDelete,
	PermActionList, PermActionCreate, PermActionEdit, PermActionDelete,
	PermReportList, PermReportCreate,
	PermSparePartList, PermSparePartCreate,
}

// Default role names seeded on a fresh database.
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
)

// TechnicianPermissions is the capability set of the seeded technician role.
var TechnicianPermissions = []string{
	PermActionList, PermActionCreate, PermActionEdit,
	PermReportList, PermReportCreate,
	PermSparePartList,
}
