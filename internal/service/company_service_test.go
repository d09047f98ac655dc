package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/dto"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/internal/repository"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
)

var (
	adminActor   = models.Actor{UserID: "admin-1", Username: "admin", Role: models.RoleAdmin}
	managerActor = models.Actor{UserID: "manager-1", Username: "manager", Role: models.RoleManager}
	officerActor = models.Actor{UserID: "officer-1", Username: "officer", Role: models.RoleOfficer}
)

// placementStoreStub keeps companies and pending edits in memory and mimics the transactional
// behaviour of the PostgreSQL repositories.
type placementStoreStub struct {
	companies map[string]*models.Company
	edits     map[string]*models.PendingEdit
	seq       int
	updateErr error
	lastList  models.CompanyFilter
}

func newPlacementStoreStub() *placementStoreStub {
	return &placementStoreStub{
		companies: make(map[string]*models.Company),
		edits:     make(map[string]*models.PendingEdit),
	}
}

func copyCompany(c *models.Company) *models.Company {
	clone := *c
	clone.AssignedOfficers = append([]string(nil), c.AssignedOfficers...)
	return &clone
}

func copyEdit(e *models.PendingEdit) *models.PendingEdit {
	clone := *e
	clone.ProposedChanges = make(models.FieldChanges, len(e.ProposedChanges))
	for k, v := range e.ProposedChanges {
		clone.ProposedChanges[k] = v
	}
	clone.OriginalValues = make(models.FieldChanges, len(e.OriginalValues))
	for k, v := range e.OriginalValues {
		clone.OriginalValues[k] = v
	}
	return &clone
}

func (s *placementStoreStub) addCompany(c *models.Company) {
	s.companies[c.ID] = copyCompany(c)
}

func (s *placementStoreStub) Create(ctx context.Context, company *models.Company) error {
	if company.ID == "" {
		s.seq++
		company.ID = fmt.Sprintf("company-%d", s.seq)
	}
	if _, exists := s.companies[company.ID]; exists {
		return fmt.Errorf("create company %s: %w", company.ID, repository.ErrDuplicate)
	}
	s.companies[company.ID] = copyCompany(company)
	return nil
}

func (s *placementStoreStub) GetByID(ctx context.Context, id string) (*models.Company, error) {
	c, ok := s.companies[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyCompany(c), nil
}

func (s *placementStoreStub) List(ctx context.Context, filter models.CompanyFilter) ([]models.Company, int, error) {
	s.lastList = filter
	result := make([]models.Company, 0, len(s.companies))
	for _, c := range s.companies {
		if filter.OfficerID != "" && !c.HasOfficer(filter.OfficerID) {
			continue
		}
		result = append(result, *copyCompany(c))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func (s *placementStoreStub) Update(ctx context.Context, company *models.Company, expected time.Time) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	stored, ok := s.companies[company.ID]
	if !ok {
		return sql.ErrNoRows
	}
	if !stored.UpdatedAt.Equal(expected) {
		return repository.ErrVersionConflict
	}
	s.companies[company.ID] = copyCompany(company)
	return nil
}

func (s *placementStoreStub) Delete(ctx context.Context, id string) (int64, error) {
	if _, ok := s.companies[id]; !ok {
		return 0, sql.ErrNoRows
	}
	var purged int64
	for editID, edit := range s.edits {
		if edit.CompanyID == id {
			delete(s.edits, editID)
			purged++
		}
	}
	delete(s.companies, id)
	return purged, nil
}

// pendingEdits exposes the pending-edit half of the stub.
func (s *placementStoreStub) pendingEdits() *pendingEditStoreStub {
	return &pendingEditStoreStub{store: s}
}

type pendingEditStoreStub struct {
	store *placementStoreStub
}

func (p *pendingEditStoreStub) Create(ctx context.Context, edit *models.PendingEdit) error {
	if edit.ID == "" {
		p.store.seq++
		edit.ID = fmt.Sprintf("edit-%d", p.store.seq)
	}
	p.store.edits[edit.ID] = copyEdit(edit)
	return nil
}

func (p *pendingEditStoreStub) GetByID(ctx context.Context, id string) (*models.PendingEdit, error) {
	e, ok := p.store.edits[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return copyEdit(e), nil
}

func (p *pendingEditStoreStub) List(ctx context.Context, filter models.PendingEditFilter) ([]models.PendingEdit, int, error) {
	result := make([]models.PendingEdit, 0)
	for _, e := range p.store.edits {
		if len(filter.Status) > 0 && !containsStatus(filter.Status, e.Status) {
			continue
		}
		if filter.SubmittedBy != "" && e.SubmittedBy != filter.SubmittedBy {
			continue
		}
		if filter.CompanyID != "" && e.CompanyID != filter.CompanyID {
			continue
		}
		result = append(result, *copyEdit(e))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, len(result), nil
}

func containsStatus(statuses []models.PendingEditStatus, status models.PendingEditStatus) bool {
	for _, s := range statuses {
		if s == status {
			return true
		}
	}
	return false
}

func (p *pendingEditStoreStub) Resolve(ctx context.Context, params repository.ResolvePendingEditParams) (*repository.ResolveResult, error) {
	stored, ok := p.store.edits[params.ID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if stored.Status.Terminal() {
		return nil, repository.ErrNotPending
	}
	edit := copyEdit(stored)
	result := &repository.ResolveResult{}
	status := params.Status
	note := params.Note
	if params.Merge != nil {
		company, exists := p.store.companies[edit.CompanyID]
		if !exists {
			status = models.PendingEditStatusRejected
			targetDeleted := models.ReviewNoteTargetDeleted
			note = &targetDeleted
			result.TargetMissing = true
		} else {
			merged := copyCompany(company)
			if err := params.Merge(merged, edit); err != nil {
				return nil, err
			}
			p.store.companies[merged.ID] = copyCompany(merged)
			result.Company = merged
		}
	}
	reviewedBy := params.ReviewedBy
	reviewedAt := params.ReviewedAt
	edit.Status = status
	edit.ReviewedBy = &reviewedBy
	edit.ReviewedAt = &reviewedAt
	edit.ReviewNote = note
	p.store.edits[edit.ID] = copyEdit(edit)
	result.Edit = edit
	return result, nil
}

type userFinderStub struct {
	users map[string]*models.User
}

func (u *userFinderStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := u.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copy := *user
	return &copy, nil
}

type invalidationRecorder struct {
	patterns []string
}

func (r *invalidationRecorder) Invalidate(ctx context.Context, pattern string) {
	r.patterns = append(r.patterns, pattern)
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func sampleCompany(id string, officers ...string) *models.Company {
	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	return &models.Company{
		ID:               id,
		CompanyName:      "Acme",
		Package:          "12 LPA",
		TypeOfDrive:      models.DriveTypeOnCampus,
		AssignedOfficers: officers,
		CreatedBy:        "admin-1",
		CreatedAt:        created,
		UpdatedAt:        created,
	}
}

func requireCode(t *testing.T, err error, expected *appErrors.Error) {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr), "expected typed error, got %v", err)
	assert.Equal(t, expected.Code, appErr.Code)
	assert.Equal(t, expected.Status, appErr.Status)
}

func newCompanyServiceFixture() (*CompanyService, *placementStoreStub, *userFinderStub, *invalidationRecorder) {
	store := newPlacementStoreStub()
	users := &userFinderStub{users: map[string]*models.User{
		"officer-1": {ID: "officer-1", Username: "officer", Role: models.RoleOfficer, Active: true},
		"officer-2": {ID: "officer-2", Username: "retired", Role: models.RoleOfficer, Active: false},
		"manager-1": {ID: "manager-1", Username: "manager", Role: models.RoleManager, Active: true},
	}}
	cache := &invalidationRecorder{}
	svc := NewCompanyService(store, users, cache, nil, nil)
	svc.now = fixedClock(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC))
	return svc, store, users, cache
}

func TestCompanyServiceListScopesOfficers(t *testing.T) {
	svc, store, _, _ := newCompanyServiceFixture()
	store.addCompany(sampleCompany("c-1", "officer-1"))
	store.addCompany(sampleCompany("c-2"))

	companies, pagination, err := svc.List(context.Background(), officerActor, dto.CompanyQuery{OfficerID: "someone-else"})
	require.NoError(t, err)
	assert.Equal(t, "officer-1", store.lastList.OfficerID)
	require.Len(t, companies, 1)
	assert.Equal(t, "c-1", companies[0].ID)
	assert.Equal(t, 1, pagination.TotalCount)

	companies, _, err = svc.List(context.Background(), managerActor, dto.CompanyQuery{})
	require.NoError(t, err)
	assert.Len(t, companies, 2)
}

func TestCompanyServiceListRejectsBadDriveType(t *testing.T) {
	svc, _, _, _ := newCompanyServiceFixture()
	_, _, err := svc.List(context.Background(), adminActor, dto.CompanyQuery{TypeOfDrive: "hybrid"})
	requireCode(t, err, appErrors.ErrValidation)
}

func TestCompanyServiceGetOfficerAccess(t *testing.T) {
	svc, store, _, _ := newCompanyServiceFixture()
	store.addCompany(sampleCompany("c-1", "officer-1"))
	store.addCompany(sampleCompany("c-2"))

	company, err := svc.Get(context.Background(), officerActor, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "c-1", company.ID)

	_, err = svc.Get(context.Background(), officerActor, "c-2")
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = svc.Get(context.Background(), adminActor, "missing")
	requireCode(t, err, appErrors.ErrNotFound)

	_, err = svc.Get(context.Background(), models.Actor{UserID: "x", Role: "GUEST"}, "c-1")
	requireCode(t, err, appErrors.ErrForbidden)
}

func TestCompanyServiceCreate(t *testing.T) {
	svc, store, _, cache := newCompanyServiceFixture()

	company, err := svc.Create(context.Background(), managerActor, dto.CreateCompanyRequest{
		CompanyName:      "  Globex ",
		TypeOfDrive:      "Off-Campus",
		Package:          "8 LPA",
		AssignedOfficers: []string{"officer-1", "officer-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Globex", company.CompanyName)
	assert.Equal(t, models.DriveTypeOffCampus, company.TypeOfDrive)
	assert.Equal(t, []string{"officer-1"}, []string(company.AssignedOfficers))
	assert.Equal(t, "manager-1", company.CreatedBy)
	assert.Contains(t, store.companies, company.ID)
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)
}

func TestCompanyServiceCreateValidation(t *testing.T) {
	svc, store, _, _ := newCompanyServiceFixture()

	_, err := svc.Create(context.Background(), officerActor, dto.CreateCompanyRequest{CompanyName: "Initech"})
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = svc.Create(context.Background(), adminActor, dto.CreateCompanyRequest{})
	requireCode(t, err, appErrors.ErrValidation)
	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "companyName")

	_, err = svc.Create(context.Background(), adminActor, dto.CreateCompanyRequest{CompanyName: "Initech", AssignedOfficers: []string{"officer-2"}})
	requireCode(t, err, appErrors.ErrValidation)

	_, err = svc.Create(context.Background(), adminActor, dto.CreateCompanyRequest{CompanyName: "Initech", AssignedOfficers: []string{"manager-1"}})
	requireCode(t, err, appErrors.ErrValidation)
	assert.Empty(t, store.companies)
}

func TestCompanyServiceCreateDuplicate(t *testing.T) {
	svc, store, _, _ := newCompanyServiceFixture()
	svc.companies = duplicateCompanyStore{store}

	_, err := svc.Create(context.Background(), adminActor, dto.CreateCompanyRequest{CompanyName: "Initech"})
	requireCode(t, err, appErrors.ErrDuplicate)
}

type duplicateCompanyStore struct {
	*placementStoreStub
}

func (duplicateCompanyStore) Create(ctx context.Context, company *models.Company) error {
	return fmt.Errorf("create company: %w", repository.ErrDuplicate)
}

func TestCompanyServiceDeletePurgesPendingEdits(t *testing.T) {
	svc, store, _, cache := newCompanyServiceFixture()
	store.addCompany(sampleCompany("c-1", "officer-1"))
	store.addCompany(sampleCompany("c-2", "officer-1"))
	store.edits["e-1"] = &models.PendingEdit{ID: "e-1", CompanyID: "c-1", Status: models.PendingEditStatusPending}
	store.edits["e-2"] = &models.PendingEdit{ID: "e-2", CompanyID: "c-1", Status: models.PendingEditStatusRejected}
	store.edits["e-3"] = &models.PendingEdit{ID: "e-3", CompanyID: "c-2", Status: models.PendingEditStatusPending}

	require.NoError(t, svc.Delete(context.Background(), adminActor, "c-1"))
	assert.NotContains(t, store.companies, "c-1")
	assert.Len(t, store.edits, 1)
	assert.Contains(t, store.edits, "e-3")
	assert.Equal(t, []string{dashboardCachePattern}, cache.patterns)

	requireCode(t, svc.Delete(context.Background(), adminActor, "c-1"), appErrors.ErrNotFound)
	requireCode(t, svc.Delete(context.Background(), officerActor, "c-2"), appErrors.ErrForbidden)
	assert.Contains(t, store.companies, "c-2")
}

func TestCompanyServiceAssignOfficer(t *testing.T) {
	svc, store, _, _ := newCompanyServiceFixture()
	store.addCompany(sampleCompany("c-1"))

	company, err := svc.AssignOfficer(context.Background(), managerActor, "c-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"officer-1"}, []string(company.AssignedOfficers))
	assert.True(t, company.UpdatedAt.After(company.CreatedAt))

	again, err := svc.AssignOfficer(context.Background(), managerActor, "c-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"officer-1"}, []string(again.AssignedOfficers))

	_, err = svc.AssignOfficer(context.Background(), managerActor, "c-1", "officer-2")
	requireCode(t, err, appErrors.ErrValidation)

	_, err = svc.AssignOfficer(context.Background(), managerActor, "c-1", "ghost")
	requireCode(t, err, appErrors.ErrValidation)

	_, err = svc.AssignOfficer(context.Background(), officerActor, "c-1", "officer-1")
	requireCode(t, err, appErrors.ErrForbidden)

	_, err = svc.AssignOfficer(context.Background(), managerActor, "missing", "officer-1")
	requireCode(t, err, appErrors.ErrNotFound)
}

func TestCompanyServiceAssignOfficerLostRace(t *testing.T) {
	svc, store, _, _ := newCompanyServiceFixture()
	store.addCompany(sampleCompany("c-1"))
	store.updateErr = fmt.Errorf("update company: %w", repository.ErrVersionConflict)

	_, err := svc.AssignOfficer(context.Background(), adminActor, "c-1", "officer-1")
	requireCode(t, err, appErrors.ErrStaleState)
}

func TestCompanyServiceUnassignOfficer(t *testing.T) {
	svc, store, _, _ := newCompanyServiceFixture()
	store.addCompany(sampleCompany("c-1", "officer-1", "officer-3"))

	company, err := svc.UnassignOfficer(context.Background(), adminActor, "c-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"officer-3"}, []string(company.AssignedOfficers))
	assert.Equal(t, []string{"officer-3"}, []string(store.companies["c-1"].AssignedOfficers))

	unchanged, err := svc.UnassignOfficer(context.Background(), adminActor, "c-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"officer-3"}, []string(unchanged.AssignedOfficers))
}
