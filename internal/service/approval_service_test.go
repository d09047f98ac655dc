package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/repository"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

var reviewClock = time.Date(2024, 3, 6, 14, 0, 0, 0, time.UTC)

type workflowFixture struct {
	store     *placementStoreStub
	edits     *EditService
	approvals *ApprovalService
	companies *CompanyService
}

func newWorkflowFixture() *workflowFixture {
	store := newPlacementStoreStub()
	metrics := NewMetricsService()
	edits := NewEditService(store, store.pendingEdits(), nil, metrics, EditServiceConfig{RequireAssignment: true}, nil)
	edits.now = fixedClock(editClock)
	approvals := NewApprovalService(store.pendingEdits(), nil, metrics, nil)
	approvals.now = fixedClock(reviewClock)
	users := &userFinderStub{users: map[string]*models.User{}}
	companies := NewCompanyService(store, users, nil, metrics, nil)
	return &workflowFixture{store: store, edits: edits, approvals: approvals, companies: companies}
}

func (f *workflowFixture) propose(t *testing.T, companyID string, fields map[string]interface{}) *models.PendingEdit {
	t.Helper()
	result, err := f.edits.SubmitEdit(context.Background(), officerActor, companyID, fields)
	require.NoError(t, err)
	require.Equal(t, models.EditOutcomePendingApproval, result.Outcome)
	return result.PendingEdit
}

func TestApprovalServicePackageScenario(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))

	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})
	assert.Equal(t, "12 LPA", f.store.companies["c-1"].Package)

	result, err := f.approvals.Approve(context.Background(), adminActor, edit.ID, "looks right")
	require.NoError(t, err)
	assert.Equal(t, "15 LPA", result.Company.Package)
	assert.Equal(t, reviewClock, result.Company.UpdatedAt)
	assert.Equal(t, models.PendingEditStatusApproved, result.PendingEdit.Status)
	require.NotNil(t, result.PendingEdit.ReviewedBy)
	assert.Equal(t, "admin-1", *result.PendingEdit.ReviewedBy)
	require.NotNil(t, result.PendingEdit.ReviewNote)
	assert.Equal(t, "looks right", *result.PendingEdit.ReviewNote)

	assert.Equal(t, "15 LPA", f.store.companies["c-1"].Package)
	assert.Equal(t, models.PendingEditStatusApproved, f.store.edits[edit.ID].Status)

	snapshot := f.approvals.metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.EditsSubmitted)
	assert.Equal(t, uint64(1), snapshot.EditsApproved)
}

func TestApprovalServiceLastApprovalWins(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))

	editA := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})
	editB := f.propose(t, "c-1", map[string]interface{}{"package": "18 LPA", "remarks": "second round"})

	_, err := f.approvals.Approve(context.Background(), managerActor, editB.ID, "")
	require.NoError(t, err)
	result, err := f.approvals.Approve(context.Background(), managerActor, editA.ID, "")
	require.NoError(t, err)

	assert.Equal(t, "15 LPA", result.Company.Package)
	assert.Equal(t, "second round", result.Company.Remarks)
	assert.Nil(t, result.PendingEdit.ReviewNote)
}

func TestApprovalServiceAdvancesUpdatedAtPastLaterStamp(t *testing.T) {
	f := newWorkflowFixture()
	company := sampleCompany("c-1", "officer-1")
	company.UpdatedAt = reviewClock.Add(time.Second)
	f.store.addCompany(company)

	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})
	stale := copyCompany(f.store.companies["c-1"])
	prev := stale.UpdatedAt

	result, err := f.approvals.Approve(context.Background(), managerActor, edit.ID, "")
	require.NoError(t, err)
	assert.True(t, result.Company.UpdatedAt.After(prev))

	stale.Remarks = "written from an old read"
	stale.Touch(reviewClock)
	err = f.store.Update(context.Background(), stale, prev)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
	assert.Equal(t, "15 LPA", f.store.companies["c-1"].Package)
}

func TestApprovalServiceSecondApprovalIsStale(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))
	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})

	_, err := f.approvals.Approve(context.Background(), adminActor, edit.ID, "")
	require.NoError(t, err)
	f.store.companies["c-1"].Package = "16 LPA"

	_, err = f.approvals.Approve(context.Background(), managerActor, edit.ID, "")
	requireCode(t, err, appErrors.ErrStaleState)
	assert.Equal(t, "16 LPA", f.store.companies["c-1"].Package)

	_, err = f.approvals.Reject(context.Background(), managerActor, edit.ID, "")
	requireCode(t, err, appErrors.ErrStaleState)
	assert.Equal(t, models.PendingEditStatusApproved, f.store.edits[edit.ID].Status)
}

func TestApprovalServiceRejectLeavesRecordUntouched(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))
	before := *copyCompany(f.store.companies["c-1"])
	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})

	rejected, err := f.approvals.Reject(context.Background(), managerActor, edit.ID, "not confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.PendingEditStatusRejected, rejected.Status)
	assert.Equal(t, reviewClock, *rejected.ReviewedAt)
	assert.Equal(t, before, *f.store.companies["c-1"])
}

func TestApprovalServiceRejectsOversizedNote(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))
	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})
	note := strings.Repeat("x", 1001)

	_, err := f.approvals.Approve(context.Background(), adminActor, edit.ID, note)
	requireCode(t, err, appErrors.ErrValidation)
	assert.Contains(t, appErrors.FromError(err).Fields, "note")

	_, err = f.approvals.Reject(context.Background(), adminActor, edit.ID, note)
	requireCode(t, err, appErrors.ErrValidation)

	assert.Equal(t, models.PendingEditStatusPending, f.store.edits[edit.ID].Status)
	assert.Equal(t, "12 LPA", f.store.companies["c-1"].Package)

	_, err = f.approvals.Reject(context.Background(), adminActor, edit.ID, strings.Repeat("x", 1000))
	require.NoError(t, err)
}

func TestApprovalServiceOfficerCannotReview(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))
	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})

	_, err := f.approvals.Approve(context.Background(), officerActor, edit.ID, "")
	requireCode(t, err, appErrors.ErrForbidden)
	_, err = f.approvals.Reject(context.Background(), officerActor, edit.ID, "")
	requireCode(t, err, appErrors.ErrForbidden)

	assert.Equal(t, models.PendingEditStatusPending, f.store.edits[edit.ID].Status)
	assert.Equal(t, "12 LPA", f.store.companies["c-1"].Package)
}

func TestApprovalServiceDeletedCompanyPurgesEdits(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))
	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})

	require.NoError(t, f.companies.Delete(context.Background(), adminActor, "c-1"))

	_, err := f.approvals.Approve(context.Background(), adminActor, edit.ID, "")
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestApprovalServiceTargetDeleted(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))
	edit := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})
	delete(f.store.companies, "c-1")

	_, err := f.approvals.Approve(context.Background(), adminActor, edit.ID, "")
	requireCode(t, err, appErrors.ErrTargetDeleted)

	closed := f.store.edits[edit.ID]
	assert.Equal(t, models.PendingEditStatusRejected, closed.Status)
	require.NotNil(t, closed.ReviewNote)
	assert.Equal(t, models.ReviewNoteTargetDeleted, *closed.ReviewNote)
}

func TestApprovalServiceApproveUnknownEdit(t *testing.T) {
	f := newWorkflowFixture()
	_, err := f.approvals.Approve(context.Background(), adminActor, "missing", "")
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestApprovalServiceListAndGet(t *testing.T) {
	f := newWorkflowFixture()
	f.store.addCompany(sampleCompany("c-1", "officer-1"))
	first := f.propose(t, "c-1", map[string]interface{}{"package": "15 LPA"})
	second := f.propose(t, "c-1", map[string]interface{}{"remarks": "follow up friday"})
	_, err := f.approvals.Reject(context.Background(), adminActor, second.ID, "")
	require.NoError(t, err)

	pending, pagination, err := f.approvals.List(context.Background(), managerActor, dto.PendingEditQuery{})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)

	_, _, err = f.approvals.List(context.Background(), officerActor, dto.PendingEditQuery{})
	requireCode(t, err, appErrors.ErrForbidden)

	_, _, err = f.approvals.List(context.Background(), adminActor, dto.PendingEditQuery{Status: []models.PendingEditStatus{"DONE"}})
	requireCode(t, err, appErrors.ErrValidation)

	mine, _, err := f.approvals.ListMine(context.Background(), officerActor, dto.PendingEditQuery{SubmittedBy: "admin-1"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	got, err := f.approvals.Get(context.Background(), officerActor, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, got.ID)

	other := models.Actor{UserID: "officer-9", Role: models.RoleOfficer}
	_, err = f.approvals.Get(context.Background(), other, first.ID)
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = f.approvals.Get(context.Background(), adminActor, "missing")
	requireCode(t, err, appErrors.ErrNotFound)
}
