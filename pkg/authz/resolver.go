package authz

import "strings"

// AllowList is the set of admin emails sourced from configuration.
// Membership checks are case-insensitive; normalization happens here, not
// in the configuration source.
type AllowList map[string]struct{}

// NewAllowList builds an allow-list from raw email strings. Entries are
// trimmed and lower-cased; blanks are dropped.
func NewAllowList(emails []string) AllowList {
	list := make(AllowList, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		list[e] = struct{}{}
	}
	return list
}

// Contains reports whether the normalized email is on the allow-list.
func (a AllowList) Contains(email string) bool {
	_, ok := a[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// ResolveRole computes the canonical role for a verified identity. An
// email on the admin allow-list resolves to ADMIN, everything else to
// USER. A missing email never escalates: the result is USER.
func ResolveRole(email string, allowList AllowList) Role {
	if email == "" {
		return RoleUser
	}
	if allowList.Contains(email) {
		return RoleAdmin
	}
	return RoleUser
}
