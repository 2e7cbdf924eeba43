package auth

import "strings"

// RolePrefix marks role-derived authorities in token claims.
const RolePrefix = "ROLE_"

// Authorities flattens a role set into the authority strings embedded in
// tokens: one "ROLE_<name>" per role, then the bare name of every permission
// reachable through any role. Output order follows input order and is stable
// for a fixed input; duplicates are dropped. Consumers must treat the result
// as a set.
func Authorities(roles []Role) []string {
	seen := make(map[string]struct{}, len(roles))
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		a := RolePrefix + role.Name
		if _, ok := seen[a]; ok {
			continue
		}
		seen[a] = struct{}{}
		out = append(out, a)
	}
	for _, role := range roles {
		for _, perm := range role.Permissions {
			if _, ok := seen[perm.Name]; ok {
				continue
			}
			seen[perm.Name] = struct{}{}
			out = append(out, perm.Name)
		}
	}
	return out
}

// JoinAuthorities renders authorities as the comma-joined claim value.
func JoinAuthorities(authorities []string) string {
	return strings.Join(authorities, ",")
}

// SplitAuthorities is the inverse of JoinAuthorities; blank entries are
// discarded.
func SplitAuthorities(claim string) []string {
	if claim == "" {
		return nil
	}
	parts := strings.Split(claim, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
