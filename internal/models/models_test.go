package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBeforeCreateGeneratesUUID(t *testing.T) {
	m := &BaseModel{}
	require.NoError(t, m.BeforeCreate(nil))
	require.NotEmpty(t, m.ID)

	// An existing identifier is preserved.
	m2 := &BaseModel{ID: "fixed-id"}
	require.NoError(t, m2.BeforeCreate(nil))
	require.Equal(t, "fixed-id", m2.ID)
}

func TestTeamMemberRoles(t *testing.T) {
	require.Equal(t, "owner", TeamRoleOwner)
	require.Equal(t, "member", TeamRoleMember)
}
