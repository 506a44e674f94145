package domain

import "testing"

func TestRoleFor(t *testing.T) {
	user := &User{Username: "alice"}

	tests := []struct {
		name    string
		user    *User
		profile *UserProfile
		want    Role
	}{
		{"no user", nil, nil, RoleAnonymous},
		{"no user with stray profile", nil, &UserProfile{IsAdmin: true}, RoleAnonymous},
		{"user without profile", user, nil, RoleClient},
		{"user with plain profile", user, &UserProfile{}, RoleClient},
		{"user with admin profile", user, &UserProfile{IsAdmin: true}, RoleAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleFor(tt.user, tt.profile); got != tt.want {
				t.Fatalf("RoleFor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRolePredicates(t *testing.T) {
	if RoleAnonymous.IsAuthenticated() {
		t.Error("anonymous must not be authenticated")
	}
	if !RoleClient.IsAuthenticated() || !RoleAdmin.IsAuthenticated() {
		t.Error("client and admin must be authenticated")
	}
	if RoleClient.IsAdmin() {
		t.Error("client must not be admin")
	}
	if !RoleAdmin.IsAdmin() {
		t.Error("admin must be admin")
	}
	if RoleAdmin.IsClient() {
		t.Error("admin role is not the client role")
	}
}
