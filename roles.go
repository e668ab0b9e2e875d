package auth

// UserRole is the user's role
type UserRole = string

const (
	// RoleUser is the default role assigned on registration
	RoleUser UserRole = "USER"
	// RoleAdmin can additionally delete catalog records and manage users
	RoleAdmin UserRole = "ADMIN"
)

// IsValid checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanRead checks if this role can read catalog resources
func CanRead(r UserRole) bool {
	return IsValidRole(r)
}

// CanWrite checks if this role can create or edit catalog resources
func CanWrite(r UserRole) bool {
	return IsValidRole(r)
}

// CanDelete checks if this role can delete catalog resources
func CanDelete(r UserRole) bool {
	return r == RoleAdmin
}

// CanManageUsers checks if this role can administer other accounts
func CanManageUsers(r UserRole) bool {
	return r == RoleAdmin
}

// IsAtLeast checks if the role meets the minimum required level
func IsAtLeast(r, minRole UserRole) bool {
	roleHierarchy := map[UserRole]int{
		RoleUser:  0,
		RoleAdmin: 1,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// GetAllRoles returns all predefined roles in hierarchical order
func GetAllRoles() []UserRole {
	return []UserRole{RoleUser, RoleAdmin}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}
