package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
)

func TestAllowsMatchesCapabilityTable(t *testing.T) {
	cases := []struct {
		op      Operation
		admin   bool
		manager bool
		officer bool
	}{
		{OpCreate, true, true, false},
		{OpDirectEdit, true, true, false},
		{OpDelete, true, true, false},
		{OpApprove, true, true, false},
		{OpReject, true, true, false},
		{OpAssignOfficer, true, true, false},
		{OpViewReports, true, true, false},
		{OpProposeEdit, true, true, true},
		{OpManageUsers, true, false, false},
		{OpManageEvents, true, true, false},
		{OpViewEvents, true, true, true},
	}
	for _, tc := range cases {
		t.Run(string(tc.op), func(t *testing.T) {
			assert.Equal(t, tc.admin, Allows(models.RoleAdmin, tc.op))
			assert.Equal(t, tc.manager, Allows(models.RoleManager, tc.op))
			assert.Equal(t, tc.officer, Allows(models.RoleOfficer, tc.op))
		})
	}
}

func TestUnknownRoleDenied(t *testing.T) {
	assert.False(t, Allows(models.Role("SUPERADMIN"), OpProposeEdit))
	assert.False(t, Allows(models.Role(""), OpViewEvents))
	assert.Empty(t, Operations(models.Role("GUEST")))
}

func TestPrivileged(t *testing.T) {
	assert.True(t, Privileged(models.RoleAdmin))
	assert.True(t, Privileged(models.RoleManager))
	assert.False(t, Privileged(models.RoleOfficer))
	assert.Equal(t, []Operation{OpProposeEdit, OpViewEvents}, Operations(models.RoleOfficer))
}
