package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshot(name, supplierID, quantity, price string) FieldValues {
	return FieldValues{
		FieldName:       name,
		FieldSupplierID: supplierID,
		FieldQuantity:   quantity,
		FieldPrice:      price,
	}
}

func TestAuthorizeFields_UserMayChangeQuantityAndPrice(t *testing.T) {
	policy := DefaultItemFieldPolicy()
	existing := snapshot("Widget", "sup-1", "10", "2.50")
	incoming := snapshot("Widget", "sup-1", "25", "2.99")

	decision := policy.AuthorizeFields(RoleUser, existing, incoming)

	assert.True(t, decision.Allowed)
	assert.Equal(t, []string{FieldPrice, FieldQuantity}, decision.ChangedFields)
	assert.Empty(t, decision.RestrictedFields)
}

func TestAuthorizeFields_UserMayNotRename(t *testing.T) {
	policy := DefaultItemFieldPolicy()
	existing := snapshot("Widget", "sup-1", "10", "2.50")
	incoming := snapshot("Gadget", "sup-1", "10", "2.50")

	decision := policy.AuthorizeFields(RoleUser, existing, incoming)

	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{FieldName}, decision.RestrictedFields)
	assert.Contains(t, decision.Reason, FieldName)
}

func TestAuthorizeFields_UnchangedRestrictedFieldIsNoOp(t *testing.T) {
	policy := DefaultItemFieldPolicy()
	existing := snapshot("Widget", "sup-1", "10", "2.50")
	// Same name and supplier re-submitted alongside a quantity change.
	incoming := snapshot("Widget", "sup-1", "11", "2.50")

	decision := policy.AuthorizeFields(RoleUser, existing, incoming)

	assert.True(t, decision.Allowed)
	assert.Equal(t, []string{FieldQuantity}, decision.ChangedFields)
}

func TestAuthorizeFields_UnknownRoleFailsSecure(t *testing.T) {
	policy := DefaultItemFieldPolicy()
	existing := snapshot("Widget", "sup-1", "10", "2.50")
	incoming := snapshot("Gadget", "sup-1", "10", "2.50")

	decision := policy.AuthorizeFields(Role("SUPERUSER"), existing, incoming)

	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{FieldName}, decision.RestrictedFields)

	// An empty role is treated the same way.
	decision = policy.AuthorizeFields(Role(""), existing, incoming)
	assert.False(t, decision.Allowed)
}

func TestAuthorizeFields_AdminMayChangeIdentityFields(t *testing.T) {
	policy := DefaultItemFieldPolicy()
	existing := snapshot("Widget", "sup-1", "10", "2.50")
	incoming := snapshot("Gadget", "sup-2", "10", "2.50")

	decision := policy.AuthorizeFields(RoleAdmin, existing, incoming)

	assert.True(t, decision.Allowed)
	assert.Equal(t, []string{FieldName, FieldSupplierID}, decision.ChangedFields)
}

func TestAuthorizeFields_MultipleRestrictedFieldsAreEnumerated(t *testing.T) {
	policy := DefaultItemFieldPolicy()
	existing := snapshot("Widget", "sup-1", "10", "2.50")
	incoming := snapshot("Gadget", "sup-2", "99", "2.50")

	decision := policy.AuthorizeFields(RoleUser, existing, incoming)

	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{FieldName, FieldSupplierID}, decision.RestrictedFields)
	assert.Contains(t, decision.Reason, FieldName)
	assert.Contains(t, decision.Reason, FieldSupplierID)
}

func TestAuthorizeFields_FieldsOnlyInIncomingAreIgnored(t *testing.T) {
	policy := DefaultItemFieldPolicy()
	existing := FieldValues{FieldQuantity: "10"}
	incoming := FieldValues{FieldQuantity: "10", "unknown_field": "x"}

	decision := policy.AuthorizeFields(RoleUser, existing, incoming)

	assert.True(t, decision.Allowed)
	assert.Empty(t, decision.ChangedFields)
}

func TestFieldPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultItemFieldPolicy().Validate())

	missing := NewFieldPolicy(map[Role][]string{
		RoleAdmin: {FieldName},
	})
	assert.Error(t, missing.Validate())

	notSuperset := NewFieldPolicy(map[Role][]string{
		RoleAdmin: {FieldName},
		RoleUser:  {FieldQuantity},
	})
	assert.Error(t, notSuperset.Validate())
}

func TestFieldPolicy_MissingRoleAllowsNothing(t *testing.T) {
	policy := NewFieldPolicy(map[Role][]string{
		RoleAdmin: {FieldName, FieldQuantity},
	})

	decision := policy.AuthorizeFields(RoleUser,
		FieldValues{FieldQuantity: "1"}, FieldValues{FieldQuantity: "2"})

	assert.False(t, decision.Allowed)
	assert.Equal(t, []string{FieldQuantity}, decision.RestrictedFields)
}
