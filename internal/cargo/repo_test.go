package cargo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freightport/terminal-backend/pkg/db/models"
	"github.com/freightport/terminal-backend/pkg/enums"
	"github.com/freightport/terminal-backend/pkg/pagination"
)

func setupCargoTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	cargos := `
CREATE TABLE IF NOT EXISTS cargos (
  id TEXT PRIMARY KEY,
  reference_code TEXT NOT NULL UNIQUE,
  producer_id TEXT NOT NULL,
  freight_id TEXT,
  origin_province TEXT NOT NULL,
  origin_city TEXT NOT NULL,
  dest_province TEXT NOT NULL,
  dest_city TEXT NOT NULL,
  cargo_type TEXT NOT NULL,
  weight REAL NOT NULL,
  unit TEXT NOT NULL DEFAULT 'ton',
  fare NUMERIC,
  is_urgent INTEGER NOT NULL DEFAULT 0,
  description TEXT,
  loading_at DATETIME,
  status TEXT NOT NULL DEFAULT 'DRAFT',
  rejection_note TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	history := `
CREATE TABLE IF NOT EXISTS cargo_status_histories (
  id TEXT PRIMARY KEY,
  cargo_id TEXT NOT NULL,
  from_status TEXT,
  to_status TEXT NOT NULL,
  changed_by TEXT NOT NULL,
  note TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);`
	require.NoError(t, db.Exec(cargos).Error)
	require.NoError(t, db.Exec(history).Error)
	return db
}

func seedCargo(t *testing.T, repo Repository, producerID uuid.UUID, status enums.CargoStatus, createdAt time.Time, seq int) *models.Cargo {
	t.Helper()
	row := &models.Cargo{
		ID:             uuid.New(),
		ReferenceCode:  fmt.Sprintf("CG-%s-%d", producerID.String()[:8], seq),
		ProducerID:     producerID,
		OriginProvince: "Tehran",
		OriginCity:     "Tehran",
		DestProvince:   "Isfahan",
		DestCity:       "Isfahan",
		CargoType:      "cement",
		Weight:         18,
		Unit:           "ton",
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	_, err := repo.CreateCargo(context.Background(), row)
	require.NoError(t, err)
	return row
}

func TestRepositoryFindAndUpdateCargo(t *testing.T) {
	db := setupCargoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	producerID := uuid.New()
	row := seedCargo(t, repo, producerID, enums.CargoStatusDraft, time.Now(), 1)

	found, err := repo.FindCargo(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, row.ReferenceCode, found.ReferenceCode)
	assert.Equal(t, enums.CargoStatusDraft, found.Status)

	byRef, err := repo.FindCargoByReference(ctx, row.ReferenceCode)
	require.NoError(t, err)
	assert.Equal(t, row.ID, byRef.ID)

	require.NoError(t, repo.UpdateCargo(ctx, row.ID, map[string]any{"status": enums.CargoStatusSubmitted}))
	updated, err := repo.FindCargo(ctx, row.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.CargoStatusSubmitted, updated.Status)

	_, err = repo.FindCargo(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByProducerPagination(t *testing.T) {
	db := setupCargoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	producerID := uuid.New()
	base := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedCargo(t, repo, producerID, enums.CargoStatusSubmitted, base.Add(time.Duration(i)*time.Hour), i)
	}
	// Another producer's cargo must not leak into the page.
	seedCargo(t, repo, uuid.New(), enums.CargoStatusSubmitted, base, 99)

	first, err := repo.ListByProducer(ctx, producerID, pagination.Params{Limit: 3}, Filters{})
	require.NoError(t, err)
	require.Len(t, first.Cargos, 3)
	require.NotEmpty(t, first.NextCursor)
	assert.True(t, first.Cargos[0].CreatedAt.After(first.Cargos[2].CreatedAt), "newest first")

	second, err := repo.ListByProducer(ctx, producerID, pagination.Params{Limit: 3, Cursor: first.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, second.Cargos, 2)
	assert.Empty(t, second.NextCursor)

	seen := make(map[uuid.UUID]bool)
	for _, row := range append(first.Cargos, second.Cargos...) {
		assert.Equal(t, producerID, row.ProducerID)
		assert.False(t, seen[row.ID], "no row may appear on two pages")
		seen[row.ID] = true
	}
}

func TestRepositoryListFilters(t *testing.T) {
	db := setupCargoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	producerID := uuid.New()
	base := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	draft := seedCargo(t, repo, producerID, enums.CargoStatusDraft, base, 1)
	submitted := seedCargo(t, repo, producerID, enums.CargoStatusSubmitted, base.Add(time.Hour), 2)

	status := enums.CargoStatusDraft
	list, err := repo.ListByProducer(ctx, producerID, pagination.Params{}, Filters{Status: &status})
	require.NoError(t, err)
	require.Len(t, list.Cargos, 1)
	assert.Equal(t, draft.ID, list.Cargos[0].ID)

	urgent := true
	require.NoError(t, repo.UpdateCargo(ctx, submitted.ID, map[string]any{"is_urgent": true}))
	list, err = repo.ListByProducer(ctx, producerID, pagination.Params{}, Filters{IsUrgent: &urgent})
	require.NoError(t, err)
	require.Len(t, list.Cargos, 1)
	assert.Equal(t, submitted.ID, list.Cargos[0].ID)
}

func TestRepositoryHistoryOrderedOldestFirst(t *testing.T) {
	db := setupCargoTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	cargoID := uuid.New()
	actor := uuid.New()
	base := time.Date(2026, 8, 10, 8, 0, 0, 0, time.UTC)
	draft := enums.CargoStatusDraft

	steps := []models.CargoStatusHistory{
		{ID: uuid.New(), CargoID: cargoID, ToStatus: enums.CargoStatusDraft, ChangedBy: actor, CreatedAt: base},
		{ID: uuid.New(), CargoID: cargoID, FromStatus: &draft, ToStatus: enums.CargoStatusSubmitted, ChangedBy: actor, CreatedAt: base.Add(time.Minute)},
	}
	for i := range steps {
		require.NoError(t, repo.CreateStatusHistory(ctx, &steps[i]))
	}
	// Unrelated cargo noise.
	require.NoError(t, repo.CreateStatusHistory(ctx, &models.CargoStatusHistory{
		ID: uuid.New(), CargoID: uuid.New(), ToStatus: enums.CargoStatusDraft, ChangedBy: actor, CreatedAt: base,
	}))

	rows, err := repo.ListHistory(ctx, cargoID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, enums.CargoStatusDraft, rows[0].ToStatus)
	assert.Equal(t, enums.CargoStatusSubmitted, rows[1].ToStatus)
	assert.Nil(t, rows[0].FromStatus)
}
