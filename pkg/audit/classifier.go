package audit

import (
	"github.com/smartsupplypro/inventory/pkg/authz"
)

// identityFields are the identity-defining entity fields whose mutation
// carries a higher blast radius than stock-level adjustments.
var identityFields = map[string]struct{}{
	authz.FieldName:       {},
	authz.FieldSupplierID: {},
}

func touchesIdentityField(fields []string) bool {
	for _, f := range fields {
		if _, ok := identityFields[f]; ok {
			return true
		}
	}
	return false
}

// Classify assigns a severity to a recorded mutation.
//
// Denied mutations are attempted policy violations and never classify
// below MEDIUM; a denied attempt on an identity-defining field escalates
// to CRITICAL. Successful mutations grade by blast radius: identity
// fields HIGH, pricing MEDIUM, stock levels LOW.
func Classify(role authz.Role, fieldsChanged []string, wasMutationDenied bool) Severity {
	if wasMutationDenied {
		if touchesIdentityField(fieldsChanged) {
			return SeverityCritical
		}
		return SeverityMedium
	}

	if touchesIdentityField(fieldsChanged) {
		return SeverityHigh
	}
	for _, f := range fieldsChanged {
		if f == authz.FieldPrice {
			return SeverityMedium
		}
	}
	return SeverityLow
}

// NewEvent builds a classified audit event for a mutation. The caller
// supplies everything the decision produced; classification happens here
// so sinks always receive a graded event.
func NewEvent(role authz.Role, op Operation, resourceType ResourceType, resourceID string, fieldsChanged []string, denied bool) *Event {
	return &Event{
		Role:          role,
		Operation:     op,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		FieldsChanged: fieldsChanged,
		Denied:        denied,
		Severity:      Classify(role, fieldsChanged, denied),
	}
}
