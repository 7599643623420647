package models

import "fmt"

// PortRole classifies destination port of an event
type PortRole int

const (
	RoleOther PortRole = iota
	RoleGameServer
	RoleSourceTV
)

func (r PortRole) String() string {
	switch r {
	case RoleGameServer:
		return "GameServer"
	case RoleSourceTV:
		return "SourceTV"
	default:
		return "Other"
	}
}

// MarshalText implements encoding.TextMarshaler
func (r PortRole) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (r *PortRole) UnmarshalText(data []byte) error {
	switch string(data) {
	case "GameServer":
		*r = RoleGameServer
	case "SourceTV":
		*r = RoleSourceTV
	case "Other":
		*r = RoleOther
	default:
		return fmt.Errorf("unknown port role %q", string(data))
	}
	return nil
}
