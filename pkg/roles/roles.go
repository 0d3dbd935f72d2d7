// Package roles holds the account roles and the permission flags derived from them.
package roles

type Role string

const (
	Admin  Role = "admin"
	Author Role = "author"
	Reader Role = "reader"
)

// All lists every role in display order.
var All = []Role{Admin, Author, Reader}

// Flags are the account flags implied by a role. They are never set on their own.
type Flags struct {
	IsStaff     bool
	IsSuperuser bool
}

// DeriveFlags maps a role to its flags. Unknown roles get no privileges.
func DeriveFlags(role Role) Flags {
	switch role {
	case Admin:
		return Flags{IsStaff: true, IsSuperuser: true}
	case Author:
		return Flags{IsStaff: true}
	default:
		return Flags{}
	}
}

func (r Role) Valid() bool {
	switch r {
	case Admin, Author, Reader:
		return true
	}
	return false
}

// Privileged reports whether the role may author posts and skip comment moderation.
func (r Role) Privileged() bool {
	return r == Admin || r == Author
}

// GroupName is the name of the permission group a role maps to.
func (r Role) GroupName() string {
	switch r {
	case Admin:
		return "Admin"
	case Author:
		return "Author"
	case Reader:
		return "Reader"
	}
	return ""
}

func (r Role) String() string {
	return string(r)
}
