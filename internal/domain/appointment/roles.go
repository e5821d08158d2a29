package appointment

import "github.com/BruksfildServices01/petcare-scheduler/internal/models"

type Role string

const (
	RoleBathing    Role = "bathing"
	RoleGrooming   Role = "grooming"
	RoleVeterinary Role = "veterinary"
)

var roleOrder = []Role{RoleBathing, RoleGrooming, RoleVeterinary}

func ParseRole(s string) (Role, bool) {
	for _, r := range roleOrder {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// RolesOf lists the roles a single service needs.
func RolesOf(s models.Service) []Role {
	var out []Role
	if s.RequiresBath {
		out = append(out, RoleBathing)
	}
	if s.RequiresGrooming {
		out = append(out, RoleGrooming)
	}
	if s.RequiresVet {
		out = append(out, RoleVeterinary)
	}
	return out
}

// RequiredRoles merges the roles of every selected service. The result is
// de-duplicated and always in the same order whatever the selection order.
func RequiredRoles(services ...models.Service) []Role {
	need := make(map[Role]bool)
	for _, s := range services {
		for _, r := range RolesOf(s) {
			need[r] = true
		}
	}

	out := make([]Role, 0, len(need))
	for _, r := range roleOrder {
		if need[r] {
			out = append(out, r)
		}
	}
	return out
}

func HasRole(staff models.StaffMember, r Role) bool {
	switch r {
	case RoleBathing:
		return staff.CanBathe
	case RoleGrooming:
		return staff.CanGroom
	case RoleVeterinary:
		return staff.CanVet
	}
	return false
}

// CanPerform reports whether staff covers every role the service needs.
func CanPerform(staff models.StaffMember, s models.Service) bool {
	for _, r := range RolesOf(s) {
		if !HasRole(staff, r) {
			return false
		}
	}
	return true
}
