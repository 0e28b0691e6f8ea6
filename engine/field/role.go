package field

// Role identifies a layer's visual function within a composited surface.
// Every role renders the same shared state; only the per-role modifiers
// below differ, so the layers stay phase-locked by construction.
type Role int

const (
	RoleBackground Role = iota
	RoleShadow
	RoleContent
	RoleHighlight
	RoleAccent

	roleCount = 5
)

var roleNames = [...]string{
	"background",
	"shadow",
	"content",
	"highlight",
	"accent",
}

// String returns the lowercase role name, or "content" for values outside
// the enumeration.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleNames) {
		return roleNames[RoleContent]
	}
	return roleNames[r]
}

// ParseRole resolves a role name to its Role.
//
// Parameters:
//   - name: the lowercase role name, e.g. "highlight"
//
// Returns:
//   - Role: the matching role
//   - bool: false if the name is unknown
func ParseRole(name string) (Role, bool) {
	for i, n := range roleNames {
		if n == name {
			return Role(i), true
		}
	}
	return RoleContent, false
}

// IntensityScale returns the role's fixed brightness multiplier. The
// ordering is part of the visual contract: shadow < background < content <
// highlight < accent.
//
// Returns:
//   - float64: the brightness multiplier
func (r Role) IntensityScale() float64 {
	switch r {
	case RoleBackground:
		return 0.55
	case RoleShadow:
		return 0.30
	case RoleContent:
		return 0.80
	case RoleHighlight:
		return 1.00
	case RoleAccent:
		return 1.20
	default:
		return 0.80
	}
}

// DensityOffset returns the role's additive grid-density bias, separating
// the layers in depth without desynchronizing them.
//
// Returns:
//   - float64: the density bias in cells
func (r Role) DensityOffset() float64 {
	switch r {
	case RoleBackground:
		return -2
	case RoleShadow:
		return -1
	case RoleHighlight:
		return 1
	case RoleAccent:
		return 2
	default:
		return 0
	}
}

// Roles returns the five roles in compositing order, back to front.
//
// Returns:
//   - []Role: background, shadow, content, highlight, accent
func Roles() []Role {
	return []Role{RoleBackground, RoleShadow, RoleContent, RoleHighlight, RoleAccent}
}
