package user

type Permission string

const (
	// Self service
	PermissionAttendanceScan    Permission = "attendance.scan"
	PermissionAttendanceViewOwn Permission = "attendance.view_own"
	PermissionDeviceRequest     Permission = "device.request_change"

	// Organization administration
	PermissionAttendanceViewAll  Permission = "attendance.view_all"
	PermissionQRCodeManage       Permission = "qrcode.manage"
	PermissionDeviceApprove      Permission = "device.approve_change"
	PermissionReportsView        Permission = "reports.view"
	PermissionOrganizationView   Permission = "organization.view"
	PermissionOrganizationManage Permission = "organization.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleOrganization: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
		PermissionAttendanceViewAll,
		PermissionQRCodeManage,
		PermissionDeviceApprove,
		PermissionReportsView,
		PermissionOrganizationView,
		PermissionOrganizationManage,
	},
	RoleUser: {
		PermissionAttendanceScan,
		PermissionAttendanceViewOwn,
		PermissionDeviceRequest,
		PermissionOrganizationView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
