package model

// Role identifies who is allowed to act on a request at a given workflow stage.
type Role string

const (
	RoleRequester Role = "Requester"
	RoleManager   Role = "Manager"
	RoleFinance   Role = "Finance"
	RoleAdmin     Role = "Admin"
	RoleAuditor   Role = "Auditor"
)

var validRoles = map[Role]bool{
	RoleRequester: true,
	RoleManager:   true,
	RoleFinance:   true,
	RoleAdmin:     true,
	RoleAuditor:   true,
}

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	return validRoles[r]
}

func (r Role) String() string {
	return string(r)
}

// AllRoles returns the closed role set in display order.
func AllRoles() []Role {
	return []Role{RoleRequester, RoleManager, RoleFinance, RoleAdmin, RoleAuditor}
}
