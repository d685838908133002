package domain

import "strings"

// Role classifies how a person takes part in a movie.
type Role int

const (
	RoleUnknown Role = iota
	RoleActor
	RoleDirector
	RoleWriter
)

// role names as stored in content.person_roles, English and the admin app's Russian labels
var roleNames = map[string]Role{
	"actor":             RoleActor,
	"актёр":             RoleActor,
	"актер":             RoleActor,
	"director":          RoleDirector,
	"producer-director": RoleDirector,
	"producer director": RoleDirector,
	"режиссёр":          RoleDirector,
	"режиссер":          RoleDirector,
	"режисёр":           RoleDirector,
	"writer":            RoleWriter,
	"сценарист":         RoleWriter,
}

// ParseRole maps a stored role name to a Role. Unrecognized names give RoleUnknown.
func ParseRole(name string) Role {
	if r, ok := roleNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return r
	}
	return RoleUnknown
}

func (r Role) String() string {
	switch r {
	case RoleActor:
		return "actor"
	case RoleDirector:
		return "director"
	case RoleWriter:
		return "writer"
	default:
		return "unknown"
	}
}
