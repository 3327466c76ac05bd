// Package model holds the types shared by the API server, the worker and the
// dashboard client.
package model

import "fmt"

// Kind names a record collection.
type Kind string

const (
	KindProjects     Kind = "projects"
	KindTrainings    Kind = "trainings"
	KindInternships  Kind = "internships"
	KindPatents      Kind = "patents"
	KindFundings     Kind = "fundings"
	KindPublications Kind = "publications"
	KindEvents       Kind = "events"
)

// Kinds lists every collection in display order.
func Kinds() []Kind {
	return []Kind{
		KindProjects,
		KindTrainings,
		KindInternships,
		KindPatents,
		KindFundings,
		KindPublications,
		KindEvents,
	}
}

// ParseKind accepts a collection name such as "projects".
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown record kind %q", s)
}

// Role is the organisational role a user signs up with.
type Role string

const (
	RoleDirector       Role = "director"
	RoleDepartmentHead Role = "department head"
	RoleWingHead       Role = "wing head"
	RoleRODev          Role = "RO/Dev"
)

// Roles lists the roles accepted at sign-up.
func Roles() []Role {
	return []Role{RoleDirector, RoleDepartmentHead, RoleWingHead, RoleRODev}
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	for _, known := range Roles() {
		if r == known {
			return true
		}
	}
	return false
}

// Viewer is the signed-in identity handed to every component that scopes or
// gates by owner or role.
type Viewer struct {
	UserID string
	Email  string
	Role   Role
}

// CanToggleScope reports whether the viewer may switch between all records
// and their own.
func (v Viewer) CanToggleScope() bool {
	return v.Role == RoleDirector
}
