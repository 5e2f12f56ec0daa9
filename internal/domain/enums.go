package domain

// Severity is the reviewer-assigned weight class of a reported issue.
type Severity string

const (
	SeverityNeutral  Severity = "neutral"
	SeverityMinor    Severity = "minor"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// SeverityWeights maps each severity level to its penalty weight.
var SeverityWeights = map[Severity]int{
	SeverityNeutral:  0,
	SeverityMinor:    1,
	SeverityMajor:    5,
	SeverityCritical: 25,
}

// ValidSeverities is the canonical set of accepted severity strings.
var ValidSeverities = map[string]bool{
	"neutral": true, "minor": true, "major": true, "critical": true,
}

// Side tags a reported issue as belonging to the source or target text.
type Side string

const (
	SideSource Side = "source"
	SideTarget Side = "target"
)

// ValidSides is the canonical set of accepted side strings.
var ValidSides = map[string]bool{
	"source": true, "target": true,
}

// Role identifies the privilege level of the caller. Authentication is an
// external collaborator; the core only distinguishes elevated roles.
type Role string

const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

// Elevated reports whether the role may change project names and files.
func (r Role) Elevated() bool {
	return r == RoleAdmin || r == RoleSuperadmin
}
