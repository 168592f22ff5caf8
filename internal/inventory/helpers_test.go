package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Collection{},
		&models.SizeTemplate{},
		&models.ApparelItem{},
		&models.SizeInventory{},
		&models.Unit{},
	); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}
	return db
}

func seedCollection(t *testing.T, db *gorm.DB, templates map[enums.ApparelSize]int) *models.Collection {
	t.Helper()
	collection := &models.Collection{
		ID:   uuid.New(),
		Name: "Test Drop " + uuid.NewString()[:8],
		Slug: "test-drop-" + uuid.NewString()[:8],
	}
	if err := db.Create(collection).Error; err != nil {
		t.Fatalf("seed collection: %v", err)
	}
	for size, quantity := range templates {
		template := &models.SizeTemplate{
			ID:           uuid.New(),
			CollectionID: collection.ID,
			Size:         size,
			Quantity:     quantity,
		}
		if err := db.Create(template).Error; err != nil {
			t.Fatalf("seed template %s: %v", size, err)
		}
	}
	return collection
}

func seedItem(t *testing.T, db *gorm.DB, collectionID uuid.UUID) *models.ApparelItem {
	t.Helper()
	item := &models.ApparelItem{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Name:         "Test Tee",
		Slug:         "test-tee-" + uuid.NewString()[:8],
		Rarity:       enums.RarityCommon,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func seedOwner(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	owner := &models.User{
		ID:    uuid.New(),
		Email: uuid.NewString()[:8] + "@example.com",
	}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return owner
}

func reconcileItem(t *testing.T, db *gorm.DB, r *Reconciler, item *models.ApparelItem, trigger string) {
	t.Helper()
	err := db.Transaction(func(tx *gorm.DB) error {
		return r.Reconcile(context.Background(), tx, item, trigger)
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
}

func countUnits(t *testing.T, db *gorm.DB, itemID uuid.UUID, size enums.ApparelSize) int {
	t.Helper()
	var count int64
	if err := db.Model(&models.Unit{}).
		Where("item_id = ? AND size = ?", itemID, size).
		Count(&count).Error; err != nil {
		t.Fatalf("count units: %v", err)
	}
	return int(count)
}

func inventoryRow(t *testing.T, db *gorm.DB, itemID uuid.UUID, size enums.ApparelSize) *models.SizeInventory {
	t.Helper()
	var row models.SizeInventory
	err := db.Where("item_id = ? AND size = ?", itemID, size).First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		t.Fatalf("load inventory row: %v", err)
	}
	return &row
}

func assignOwners(t *testing.T, db *gorm.DB, itemID uuid.UUID, size enums.ApparelSize, ownerID uuid.UUID, n int) {
	t.Helper()
	var units []models.Unit
	if err := db.Where("item_id = ? AND size = ? AND owner_id IS NULL", itemID, size).
		Limit(n).Find(&units).Error; err != nil {
		t.Fatalf("load units to assign: %v", err)
	}
	if len(units) < n {
		t.Fatalf("expected %d unowned units, found %d", n, len(units))
	}
	for i := range units {
		if err := db.Model(&models.Unit{}).
			Where("id = ?", units[i].ID).
			Updates(map[string]any{"owner_id": ownerID, "assigned_at": gorm.Expr("CURRENT_TIMESTAMP")}).Error; err != nil {
			t.Fatalf("assign unit: %v", err)
		}
	}
}
