package domain

// Role is the authorization tier derived from a user/profile pair.
// It is computed once at request-authorization time and carried with the
// request; handlers must not re-derive it.
type Role string

const (
	RoleAnonymous Role = "anonymous"
	RoleClient    Role = "client"
	RoleAdmin     Role = "admin"
)

// RoleFor computes the role for a user/profile pair.
// A user is admin iff they have a profile with IsAdmin set; any other
// authenticated user is a client.
func RoleFor(user *User, profile *UserProfile) Role {
	if user == nil {
		return RoleAnonymous
	}
	if profile != nil && profile.IsAdmin {
		return RoleAdmin
	}
	return RoleClient
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

func (r Role) IsClient() bool {
	return r == RoleClient
}

func (r Role) IsAuthenticated() bool {
	return r == RoleClient || r == RoleAdmin
}
