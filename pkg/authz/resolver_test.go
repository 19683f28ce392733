package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveRole_CaseInsensitive(t *testing.T) {
	allowList := NewAllowList([]string{"alice@co.com"})

	assert.Equal(t, RoleAdmin, ResolveRole("Alice@Co.com", allowList))
	assert.Equal(t, RoleAdmin, ResolveRole("alice@co.com", allowList))
	assert.Equal(t, RoleAdmin, ResolveRole("ALICE@CO.COM", allowList))
}

func TestResolveRole_NotOnList(t *testing.T) {
	allowList := NewAllowList([]string{"admin@company.com"})

	assert.Equal(t, RoleUser, ResolveRole("john@company.com", allowList))
	assert.Equal(t, RoleUser, ResolveRole("admin@other.com", allowList))
}

func TestResolveRole_EmptyEmailFailsSecure(t *testing.T) {
	allowList := NewAllowList([]string{"admin@company.com"})

	assert.Equal(t, RoleUser, ResolveRole("", allowList))
	assert.Equal(t, RoleUser, ResolveRole("", nil))
}

func TestNewAllowList_NormalizesEntries(t *testing.T) {
	allowList := NewAllowList([]string{" Admin@Company.com ", "", "  "})

	assert.Len(t, allowList, 1)
	assert.True(t, allowList.Contains("admin@company.com"))
	assert.False(t, allowList.Contains(""))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("ADMIN")
	assert.NoError(t, err)
	assert.Equal(t, RoleAdmin, role)

	_, err = ParseRole("SUPERUSER")
	assert.Error(t, err)

	assert.Equal(t, RoleUser, RoleOrUser("SUPERUSER"))
	assert.Equal(t, RoleUser, RoleOrUser(""))
	assert.Equal(t, RoleAdmin, RoleOrUser("ADMIN"))
}
