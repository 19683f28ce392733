package authz

import (
	"fmt"
	"sort"
	"strings"
)

// Inventory item field names used by the default field policy.
const (
	FieldName            = "name"
	FieldSupplierID      = "supplier_id"
	FieldQuantity        = "quantity"
	FieldPrice           = "price"
	FieldMinimumQuantity = "minimum_quantity"
)

// FieldPolicy maps each role to the set of entity fields that role may
// change on update. A role with no entry is allowed nothing (fail
// closed), never everything.
type FieldPolicy struct {
	allowed map[Role]map[string]struct{}
}

// NewFieldPolicy builds a field policy from role to allowed-field-name
// mappings.
func NewFieldPolicy(allowed map[Role][]string) *FieldPolicy {
	policy := &FieldPolicy{allowed: make(map[Role]map[string]struct{}, len(allowed))}
	for role, fields := range allowed {
		set := make(map[string]struct{}, len(fields))
		for _, f := range fields {
			set[f] = struct{}{}
		}
		policy.allowed[role] = set
	}
	return policy
}

// DefaultItemFieldPolicy returns the inventory item policy: users may
// adjust stock levels and pricing, admins may additionally change
// identity-defining fields (name, supplier linkage).
func DefaultItemFieldPolicy() *FieldPolicy {
	return NewFieldPolicy(map[Role][]string{
		RoleUser: {FieldQuantity, FieldPrice},
		RoleAdmin: {
			FieldName,
			FieldSupplierID,
			FieldQuantity,
			FieldPrice,
			FieldMinimumQuantity,
		},
	})
}

// AllowedFields returns the fields the role may change. Unknown roles
// get the empty set.
func (p *FieldPolicy) AllowedFields(role Role) map[string]struct{} {
	return p.allowed[role]
}

// Validate checks the policy at startup: both roles must have an entry
// and the admin set must be a superset of the user set. A missing entry
// is a misconfiguration, not an implicit allow-all.
func (p *FieldPolicy) Validate() error {
	for _, role := range []Role{RoleAdmin, RoleUser} {
		if _, ok := p.allowed[role]; !ok {
			return fmt.Errorf("field policy has no entry for role %s", role)
		}
	}
	for f := range p.allowed[RoleUser] {
		if _, ok := p.allowed[RoleAdmin][f]; !ok {
			return fmt.Errorf("field policy: admin set must include user-allowed field %q", f)
		}
	}
	return nil
}

// FieldDecision is the result of a field-level mutation check.
type FieldDecision struct {
	Allowed bool `json:"allowed"`
	// ChangedFields are the fields that actually differ between the
	// existing snapshot and the incoming change-set.
	ChangedFields []string `json:"changed_fields,omitempty"`
	// RestrictedFields are the changed fields the role may not touch.
	// Non-empty only when Allowed is false.
	RestrictedFields []string `json:"restricted_fields,omitempty"`
	Reason           string   `json:"reason,omitempty"`
}

// AuthorizeFields checks a field-level mutation. Only fields present in
// both snapshots and carrying a different value count as changed, so
// re-submitting an unchanged restricted value never triggers a denial.
// When the role is missing or unrecognized the check runs as USER, the
// most restrictive role.
func (p *FieldPolicy) AuthorizeFields(role Role, existing, incoming FieldValues) FieldDecision {
	if _, err := ParseRole(string(role)); err != nil {
		role = RoleUser
	}

	var changed []string
	for field, incomingValue := range incoming {
		existingValue, ok := existing[field]
		if !ok {
			continue
		}
		if incomingValue != existingValue {
			changed = append(changed, field)
		}
	}
	sort.Strings(changed)

	allowed := p.AllowedFields(role)
	var restricted []string
	for _, field := range changed {
		if _, ok := allowed[field]; !ok {
			restricted = append(restricted, field)
		}
	}

	if len(restricted) > 0 {
		return FieldDecision{
			Allowed:          false,
			ChangedFields:    changed,
			RestrictedFields: restricted,
			Reason: fmt.Sprintf("role %s may not change: %s",
				role, strings.Join(restricted, ", ")),
		}
	}

	return FieldDecision{Allowed: true, ChangedFields: changed}
}
