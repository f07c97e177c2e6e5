package domain

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{in: "ADMIN", want: RoleAdmin, ok: true},
		{in: " user ", want: RoleUser, ok: true},
		{in: "ROLE_ADMIN", want: RoleAdmin, ok: true},
		{in: "owner", ok: false},
		{in: "", ok: false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("ParseRole(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}
