package units

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

func newRepoDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:units_repo_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(
		&models.User{},
		&models.Collection{},
		&models.SizeTemplate{},
		&models.ApparelItem{},
		&models.SizeInventory{},
		&models.Unit{},
	))
	return conn
}

func seedCatalog(t *testing.T, conn *gorm.DB) (*models.Collection, *models.ApparelItem) {
	t.Helper()
	collection := &models.Collection{
		ID:   uuid.New(),
		Name: "Midnight Capsule",
		Slug: "midnight-capsule",
	}
	require.NoError(t, conn.Create(collection).Error)

	item := &models.ApparelItem{
		ID:           uuid.New(),
		CollectionID: collection.ID,
		Name:         "Midnight Hoodie",
		Slug:         "midnight-hoodie",
		Rarity:       enums.RarityEpic,
	}
	require.NoError(t, conn.Create(item).Error)
	return collection, item
}

func TestFindByAccessCodePreloadsContext(t *testing.T) {
	conn := newRepoDB(t)
	collection, item := seedCatalog(t, conn)

	owner := &models.User{ID: uuid.New(), Email: "owner@example.com", DisplayName: "First Claimer"}
	require.NoError(t, conn.Create(owner).Error)

	now := time.Now().UTC()
	unit := &models.Unit{
		ID:         uuid.New(),
		ItemID:     item.ID,
		Size:       enums.ApparelSizeM,
		AccessCode: "AB12CD34",
		OwnerID:    &owner.ID,
		AssignedAt: &now,
	}
	require.NoError(t, conn.Create(unit).Error)

	repo := NewRepository(conn)
	found, err := repo.FindByAccessCode(context.Background(), "AB12CD34")
	require.NoError(t, err)

	assert.Equal(t, unit.ID, found.ID)
	require.NotNil(t, found.Item)
	assert.Equal(t, item.Slug, found.Item.Slug)
	require.NotNil(t, found.Item.Collection)
	assert.Equal(t, collection.Slug, found.Item.Collection.Slug)
	require.NotNil(t, found.Owner)
	assert.Equal(t, "First Claimer", found.Owner.DisplayName)
}

func TestUpdateOwnerRoundTrip(t *testing.T) {
	conn := newRepoDB(t)
	_, item := seedCatalog(t, conn)

	unit := &models.Unit{
		ID:         uuid.New(),
		ItemID:     item.ID,
		Size:       enums.ApparelSizeL,
		AccessCode: "EF56GH78",
	}
	require.NoError(t, conn.Create(unit).Error)

	repo := NewRepository(conn)
	ownerID := uuid.New()
	require.NoError(t, conn.Create(&models.User{ID: ownerID, Email: "claim@example.com"}).Error)

	assignedAt := time.Now().UTC()
	require.NoError(t, repo.UpdateOwner(context.Background(), unit.ID, &ownerID, &assignedAt))

	found, err := repo.FindUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	require.NotNil(t, found.OwnerID)
	assert.Equal(t, ownerID, *found.OwnerID)
	require.NotNil(t, found.AssignedAt)

	require.NoError(t, repo.UpdateOwner(context.Background(), unit.ID, nil, nil))
	found, err = repo.FindUnit(context.Background(), unit.ID)
	require.NoError(t, err)
	assert.Nil(t, found.OwnerID)
	assert.Nil(t, found.AssignedAt)
}

func TestListByItemCursorWindow(t *testing.T) {
	conn := newRepoDB(t)
	_, item := seedCatalog(t, conn)

	base := time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
	codes := []string{"AA11AA11", "BB22BB22", "CC33CC33", "DD44DD44", "EE55EE55"}
	for i, code := range codes {
		unit := &models.Unit{
			ID:         uuid.New(),
			ItemID:     item.ID,
			Size:       enums.ApparelSizeM,
			AccessCode: code,
		}
		require.NoError(t, conn.Create(unit).Error)
		// spread created_at so the cursor ordering is deterministic
		require.NoError(t, conn.Model(unit).Update("created_at", base.Add(time.Duration(i)*time.Second)).Error)
	}

	repo := NewRepository(conn)
	first, err := repo.ListByItem(context.Background(), item.ID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	// one extra row beyond the limit signals another page
	require.Len(t, first, 3)
	assert.Equal(t, "AA11AA11", first[0].AccessCode)
	assert.Equal(t, "BB22BB22", first[1].AccessCode)

	cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: first[1].CreatedAt, ID: first[1].ID})
	rest, err := repo.ListByItem(context.Background(), item.ID, pagination.Params{Limit: 10, Cursor: cursor})
	require.NoError(t, err)
	require.Len(t, rest, 3)
	assert.Equal(t, "CC33CC33", rest[0].AccessCode)
	assert.Equal(t, "EE55EE55", rest[2].AccessCode)
}
