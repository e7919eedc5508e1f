package authz

const (
	RoleCustomer = 10
	RoleVip      = 20
	RoleAdmin    = 50
)

func IsAdmin(roleID int) bool {
	return roleID == RoleAdmin
}

func IsVip(roleID int) bool {
	return roleID == RoleVip
}
