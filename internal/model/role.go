package model

import (
	"encoding/json"
	"fmt"
)

// Role is a mission type used by the engine to pick loadouts and tasking
type Role string

const (
	RoleBARCAP      Role = "BARCAP"
	RoleTARCAP      Role = "TARCAP"
	RoleIntercept   Role = "Intercept"
	RoleEscort      Role = "Escort"
	RoleSweep       Role = "Fighter sweep"
	RoleCAS         Role = "CAS"
	RoleBAI         Role = "BAI"
	RoleStrike      Role = "Strike"
	RoleAntiShip    Role = "Anti-ship"
	RoleSEAD        Role = "SEAD"
	RoleSEADEscort  Role = "SEAD Escort"
	RoleSEADSweep   Role = "SEAD Sweep"
	RoleDEAD        Role = "DEAD"
	RoleOCARunway   Role = "OCA/Runway"
	RoleOCAAircraft Role = "OCA/Aircraft"
	RoleArmedRecon  Role = "Armed Recon"
	RoleAEWC        Role = "AEW&C"
	RoleRefueling   Role = "Refueling"
	RoleTransport   Role = "Transport"
	RoleAirAssault  Role = "Air Assault"
	RoleFerry       Role = "Ferry"
	RoleRecovery    Role = "Recovery"
)

var roles = []Role{
	RoleBARCAP, RoleTARCAP, RoleIntercept, RoleEscort, RoleSweep,
	RoleCAS, RoleBAI, RoleStrike, RoleAntiShip,
	RoleSEAD, RoleSEADEscort, RoleSEADSweep, RoleDEAD,
	RoleOCARunway, RoleOCAAircraft, RoleArmedRecon,
	RoleAEWC, RoleRefueling, RoleTransport, RoleAirAssault,
	RoleFerry, RoleRecovery,
}

var roleIndex = func() map[string]Role {
	m := make(map[string]Role, len(roles))
	for _, r := range roles {
		m[string(r)] = r
	}
	return m
}()

// Roles returns the fixed role vocabulary in display order
func Roles() []Role {
	out := make([]Role, len(roles))
	copy(out, roles)
	return out
}

// ParseRole looks up a role by its exact document spelling
func ParseRole(s string) (Role, bool) {
	r, ok := roleIndex[s]
	return r, ok
}

// AnySecondary is the document spelling for an unconstrained secondary role
const AnySecondary = "any"

// SecondaryKind distinguishes the three forms a secondary role can take
type SecondaryKind int

const (
	SecondaryNone SecondaryKind = iota
	SecondaryAny
	SecondarySpecific
)

// SecondaryRole is absent, "any", or one specific role
type SecondaryRole struct {
	Kind SecondaryKind
	Role Role
}

// Allows reports whether a squadron with this secondary role may be tasked with r
func (s SecondaryRole) Allows(r Role) bool {
	switch s.Kind {
	case SecondaryAny:
		return true
	case SecondarySpecific:
		return s.Role == r
	}
	return false
}

func (s SecondaryRole) String() string {
	switch s.Kind {
	case SecondaryAny:
		return AnySecondary
	case SecondarySpecific:
		return string(s.Role)
	}
	return ""
}

func (s SecondaryRole) MarshalJSON() ([]byte, error) {
	if s.Kind == SecondaryNone {
		return []byte("null"), nil
	}
	return json.Marshal(s.String())
}

func (s SecondaryRole) MarshalYAML() (interface{}, error) {
	if s.Kind == SecondaryNone {
		return nil, nil
	}
	return s.String(), nil
}

// PerformanceTier is the coarse simulation detail level
type PerformanceTier int

const (
	PerformanceLight  PerformanceTier = 1
	PerformanceMedium PerformanceTier = 2
	PerformanceHeavy  PerformanceTier = 3
)

// Valid reports whether the tier is one of the known tiers
func (p PerformanceTier) Valid() bool {
	return p >= PerformanceLight && p <= PerformanceHeavy
}

func (p PerformanceTier) String() string {
	switch p {
	case PerformanceLight:
		return "light"
	case PerformanceMedium:
		return "medium"
	case PerformanceHeavy:
		return "heavy"
	}
	return fmt.Sprintf("tier(%d)", int(p))
}
