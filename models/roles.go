package models

import "strings"

// Roles del sistema. La autorización por endpoint se declara con una
// lista cerrada de roles permitidos, nunca comparando strings sueltos
// en los handlers.
const (
	RoleSuperAdmin = "superadmin"
	RoleOperario   = "operario"
)

func IsValidRole(role string) bool {
	switch strings.ToLower(role) {
	case RoleSuperAdmin, RoleOperario:
		return true
	}
	return false
}
