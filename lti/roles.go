package lti

import "strings"

// Role is the tool's closed role vocabulary. Platform role URIs are reduced
// to this set; everything downstream authorizes against these values only.
type Role string

const (
	RoleLearner          Role = "Learner"
	RoleInstructor       Role = "Instructor"
	RoleAdministrator    Role = "Administrator"
	RoleContentDeveloper Role = "ContentDeveloper"
)

// roleMarkers maps substrings of platform role URIs onto tool roles. A URI
// can match more than one marker; matches collapse into a set.
var roleMarkers = []struct {
	markers []string
	role    Role
}{
	{[]string{"Learner", "Student"}, RoleLearner},
	{[]string{"Instructor", "Teacher"}, RoleInstructor},
	{[]string{"Administrator"}, RoleAdministrator},
	{[]string{"ContentDeveloper"}, RoleContentDeveloper},
}

// canonicalRoleOrder fixes the output order so normalization is deterministic
// regardless of the order role URIs arrive in.
var canonicalRoleOrder = []Role{RoleLearner, RoleInstructor, RoleAdministrator, RoleContentDeveloper}

// NormalizeRoles reduces platform role URIs to the tool's role set. Duplicates
// collapse, order does not matter, and an input with no recognized marker
// yields {Learner} so an unrecognized launch never gains privilege.
func NormalizeRoles(roleURIs []string) []Role {
	matched := make(map[Role]struct{})

	for _, uri := range roleURIs {
		for _, rm := range roleMarkers {
			for _, marker := range rm.markers {
				if strings.Contains(uri, marker) {
					matched[rm.role] = struct{}{}
					break
				}
			}
		}
	}

	if len(matched) == 0 {
		return []Role{RoleLearner}
	}

	roles := make([]Role, 0, len(matched))
	for _, role := range canonicalRoleOrder {
		if _, ok := matched[role]; ok {
			roles = append(roles, role)
		}
	}
	return roles
}

// HasRole reports whether the role set contains the given role.
func HasRole(roles []Role, role Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
