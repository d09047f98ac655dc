package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDriveType(t *testing.T) {
	cases := map[string]DriveType{
		"On-Campus":  DriveTypeOnCampus,
		"OnCampus":   DriveTypeOnCampus,
		"on_campus":  DriveTypeOnCampus,
		"OFF_CAMPUS": DriveTypeOffCampus,
		"off campus": DriveTypeOffCampus,
		" virtual ":  DriveTypeVirtual,
		"":           "",
	}
	for raw, want := range cases {
		got, ok := ParseDriveType(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	_, ok := ParseDriveType("hybrid")
	assert.False(t, ok)
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole("Admin")
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, role)
	_, ok = ParseRole("guest")
	assert.False(t, ok)
	assert.False(t, Role("guest").Valid())
	assert.True(t, RoleOfficer.Valid())
}

func TestFieldChangesScan(t *testing.T) {
	var changes FieldChanges
	require.NoError(t, changes.Scan([]byte(`{"package":"15 LPA","isContacted":true}`)))
	assert.Equal(t, FieldChanges{"package": "15 LPA", "isContacted": true}, changes)
	assert.Equal(t, []string{"isContacted", "package"}, changes.Keys())

	require.NoError(t, changes.Scan(nil))
	assert.Empty(t, changes)
	assert.Error(t, changes.Scan(42))

	value, err := FieldChanges(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("{}"), value)
}

func TestCompanyTouchAlwaysAdvances(t *testing.T) {
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	company := Company{CreatedAt: base, UpdatedAt: base}
	company.Touch(base.Add(time.Hour))
	assert.Equal(t, base.Add(time.Hour), company.UpdatedAt)

	company.Touch(base)
	assert.Equal(t, base.Add(time.Hour+time.Microsecond), company.UpdatedAt)

	company.Touch(company.UpdatedAt)
	assert.Equal(t, base.Add(time.Hour+2*time.Microsecond), company.UpdatedAt)
	assert.True(t, (&Company{AssignedOfficers: []string{"o-1"}}).HasOfficer("o-1"))
}

func TestReportScopeFilter(t *testing.T) {
	scope, ok := ParseReportScope("")
	require.True(t, ok)
	assert.Equal(t, ReportScopeAll, scope)
	assert.Equal(t, CompanyFilter{}, scope.CompanyFilter())

	filter := ReportScopeNotContacted.CompanyFilter()
	require.NotNil(t, filter.Contacted)
	assert.False(t, *filter.Contacted)
	assert.Nil(t, filter.Assigned)

	filter = ReportScopeAssigned.CompanyFilter()
	require.NotNil(t, filter.Assigned)
	assert.True(t, *filter.Assigned)

	_, ok = ParseReportScope("vip")
	assert.False(t, ok)

	format, ok := ParseReportFormat("")
	require.True(t, ok)
	assert.Equal(t, ReportFormatXLSX, format)
	assert.Equal(t, "application/pdf", ReportFormatPDF.ContentType())
}

func TestPendingEditStatusTerminal(t *testing.T) {
	assert.False(t, PendingEditStatusPending.Terminal())
	assert.True(t, PendingEditStatusApproved.Terminal())
	assert.True(t, PendingEditStatusRejected.Terminal())
}

func TestParseEventType(t *testing.T) {
	et, ok := ParseEventType("target")
	require.True(t, ok)
	assert.Equal(t, EventTypeTarget, et)
	_, ok = ParseEventType("exam")
	assert.False(t, ok)
}
