//go:build integration

package repository

import (
	"context"
	"database/sql"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/models"
	"github.com/sooryaakilesh10/place-pro-platform-88/migrations"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/config"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/database"
)

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:17-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "placement",
				"POSTGRES_PASSWORD": "placement",
				"POSTGRES_DB":       "placement_tracker",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	mapped, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	port, err := strconv.Atoi(mapped.Port())
	require.NoError(t, err)

	db, err := database.NewPostgres(ctx, config.DatabaseConfig{
		Host:     host,
		Port:     port,
		User:     "placement",
		Password: "placement",
		Name:     "placement_tracker",
		SSLMode:  "disable",
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.Migrate(ctx, db.DB, migrations.FS, nil))
	return db
}

func seedCompany(t *testing.T, repo *CompanyRepository, name string) *models.Company {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	company := &models.Company{
		CompanyName:      name,
		Package:          "12 LPA",
		AssignedOfficers: []string{"officer-1"},
		CreatedBy:        uuid.NewString(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, repo.Create(context.Background(), company))
	return company
}

func TestIntegrationReviewWorkflow(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	companies := NewCompanyRepository(db)
	edits := NewPendingEditRepository(db)

	company := seedCompany(t, companies, "Acme")
	require.ErrorIs(t, companies.Create(ctx, &models.Company{ID: company.ID, CompanyName: "Copy", CreatedBy: company.CreatedBy}), ErrDuplicate)

	edit := &models.PendingEdit{
		CompanyID:       company.ID,
		ProposedChanges: models.FieldChanges{"package": "15 LPA"},
		OriginalValues:  models.FieldChanges{"package": "12 LPA"},
		SubmittedBy:     uuid.NewString(),
	}
	require.NoError(t, edits.Create(ctx, edit))

	reviewer := uuid.NewString()
	approve := func() (*ResolveResult, error) {
		return edits.Resolve(ctx, ResolvePendingEditParams{
			ID:         edit.ID,
			Status:     models.PendingEditStatusApproved,
			ReviewedBy: reviewer,
			ReviewedAt: time.Now().UTC().Truncate(time.Microsecond),
			Merge: func(c *models.Company, e *models.PendingEdit) error {
				c.Package = e.ProposedChanges["package"].(string)
				c.Touch(time.Now().UTC().Truncate(time.Microsecond))
				return nil
			},
		})
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		stale     int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := approve()
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, ErrNotPending):
				stale++
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, stale)

	stored, err := companies.GetByID(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, "15 LPA", stored.Package)
	assert.False(t, stored.UpdatedAt.Before(company.UpdatedAt))

	closed, err := edits.GetByID(ctx, edit.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PendingEditStatusApproved, closed.Status)
	require.NotNil(t, closed.ReviewedBy)
	assert.Equal(t, reviewer, *closed.ReviewedBy)
}

func TestIntegrationCompanyCASAndCascade(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	companies := NewCompanyRepository(db)
	edits := NewPendingEditRepository(db)

	company := seedCompany(t, companies, "Globex")
	prev := company.UpdatedAt

	company.IsContacted = true
	company.Touch(prev.Add(time.Second))
	require.NoError(t, companies.Update(ctx, company, prev))
	require.ErrorIs(t, companies.Update(ctx, company, prev), ErrVersionConflict)

	stats, err := companies.Stats(ctx, models.CompanyFilter{OfficerID: "officer-1"})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Contacted)

	for i := 0; i < 2; i++ {
		require.NoError(t, edits.Create(ctx, &models.PendingEdit{
			CompanyID:       company.ID,
			ProposedChanges: models.FieldChanges{"remarks": "call back"},
			SubmittedBy:     uuid.NewString(),
		}))
	}

	purged, err := companies.Delete(ctx, company.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), purged)

	remaining, err := edits.CountByStatus(ctx, models.PendingEditStatusPending, "")
	require.NoError(t, err)
	assert.Zero(t, remaining)

	_, err = companies.GetByID(ctx, company.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)
	_, err = companies.Delete(ctx, company.ID)
	require.ErrorIs(t, err, sql.ErrNoRows)
}
