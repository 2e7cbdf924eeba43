package auth

import (
	"slices"
	"testing"
)

func TestAuthoritiesRolesThenPermissions(t *testing.T) {
	roles := []Role{
		{Name: "ADMIN", Permissions: []Permission{{Name: "CREATE"}, {Name: "READ"}}},
		{Name: "USER", Permissions: []Permission{{Name: "READ"}}},
	}

	got := Authorities(roles)
	want := []string{"ROLE_ADMIN", "ROLE_USER", "CREATE", "READ"}
	if !slices.Equal(got, want) {
		t.Fatalf("unexpected authorities: got %v want %v", got, want)
	}
}

func TestAuthoritiesDeduplicates(t *testing.T) {
	roles := []Role{
		{Name: "USER", Permissions: []Permission{{Name: "READ"}}},
		{Name: "USER", Permissions: []Permission{{Name: "READ"}}},
	}

	got := Authorities(roles)
	want := []string{"ROLE_USER", "READ"}
	if !slices.Equal(got, want) {
		t.Fatalf("expected deduplicated authorities, got %v", got)
	}
}

func TestAuthoritiesStableOrder(t *testing.T) {
	roles := []Role{
		{Name: "USER", Permissions: []Permission{{Name: "READ"}, {Name: "UPDATE"}}},
		{Name: "ADMIN", Permissions: []Permission{{Name: "DELETE"}, {Name: "READ"}}},
	}

	first := Authorities(roles)
	for i := 0; i < 20; i++ {
		if again := Authorities(roles); !slices.Equal(first, again) {
			t.Fatalf("order not stable: %v vs %v", first, again)
		}
	}
}

func TestAuthoritiesEmpty(t *testing.T) {
	if got := Authorities(nil); len(got) != 0 {
		t.Fatalf("expected no authorities, got %v", got)
	}
}

func TestSplitAuthoritiesRoundTrip(t *testing.T) {
	in := []string{"ROLE_USER", "READ"}
	claim := JoinAuthorities(in)
	if claim != "ROLE_USER,READ" {
		t.Fatalf("unexpected claim value: %q", claim)
	}
	if got := SplitAuthorities(claim); !slices.Equal(got, in) {
		t.Fatalf("round trip mismatch: %v", got)
	}
	if got := SplitAuthorities(""); got != nil {
		t.Fatalf("expected nil for empty claim, got %v", got)
	}
}
