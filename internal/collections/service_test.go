package collections

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/seemtoseven/registry-backend/internal/inventory"
	"github.com/seemtoseven/registry-backend/pkg/db"
	"github.com/seemtoseven/registry-backend/pkg/db/models"
	"github.com/seemtoseven/registry-backend/pkg/enums"
	pkgerrors "github.com/seemtoseven/registry-backend/pkg/errors"
	"github.com/seemtoseven/registry-backend/pkg/pagination"
)

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	dsn := "file:collections_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Collection{},
		&models.SizeTemplate{},
		&models.ApparelItem{},
		&models.SizeInventory{},
		&models.Unit{},
	); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	rec := inventory.NewReconciler(0, nil)
	svc, err := NewService(
		NewRepository(conn),
		db.NewFromConn(conn),
		rec,
		inventory.NewAvailability(conn),
		inventory.NewRepository(conn),
	)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, conn
}

func seedItem(t *testing.T, conn *gorm.DB, collectionID uuid.UUID, slug string) *models.ApparelItem {
	t.Helper()
	item := &models.ApparelItem{
		ID:           uuid.New(),
		CollectionID: collectionID,
		Name:         slug,
		Slug:         slug,
		Rarity:       enums.RarityCommon,
	}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func TestCreateCollectionAndDuplicateSlug(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCollection(ctx, CreateCollectionInput{Name: "Summer Drop", Slug: "summer-drop"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == uuid.Nil || created.Slug != "summer-drop" {
		t.Fatalf("created = %+v", created)
	}

	_, err = svc.CreateCollection(ctx, CreateCollectionInput{Name: "Other", Slug: "summer-drop"})
	if err == nil {
		t.Fatal("expected conflict for duplicate slug")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetTemplateResyncsExistingItems(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCollection(ctx, CreateCollectionInput{Name: "Resync Drop", Slug: "resync-drop"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	item := seedItem(t, conn, created.ID, "resync-tee")

	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: created.ID, Size: "M", Quantity: 6}); err != nil {
		t.Fatalf("set template: %v", err)
	}

	var units int64
	if err := conn.Model(&models.Unit{}).Where("item_id = ?", item.ID).Count(&units).Error; err != nil {
		t.Fatalf("count units: %v", err)
	}
	if units != 6 {
		t.Fatalf("units = %d, want 6 created by resync", units)
	}

	// Updating the same size resyncs to the new target.
	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: created.ID, Size: "M", Quantity: 2}); err != nil {
		t.Fatalf("update template: %v", err)
	}
	if err := conn.Model(&models.Unit{}).Where("item_id = ?", item.ID).Count(&units).Error; err != nil {
		t.Fatalf("recount units: %v", err)
	}
	if units != 2 {
		t.Fatalf("units = %d, want 2 after shrink", units)
	}
}

func TestSetTemplateRejectsBadInput(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCollection(ctx, CreateCollectionInput{Name: "Bad Input", Slug: "bad-input"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: created.ID, Size: "XXS", Quantity: 1}); err == nil {
		t.Fatal("expected validation error for bad size")
	}
	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: created.ID, Size: "M", Quantity: -1}); err == nil {
		t.Fatal("expected validation error for negative quantity")
	}
	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: uuid.New(), Size: "M", Quantity: 1}); err == nil {
		t.Fatal("expected not found for unknown collection")
	}
}

func TestDeleteTemplateResyncs(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCollection(ctx, CreateCollectionInput{Name: "Del Drop", Slug: "del-drop"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	item := seedItem(t, conn, created.ID, "del-tee")
	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: created.ID, Size: "L", Quantity: 4}); err != nil {
		t.Fatalf("set template: %v", err)
	}

	if err := svc.DeleteTemplate(ctx, created.ID, "L"); err != nil {
		t.Fatalf("delete template: %v", err)
	}

	var units int64
	if err := conn.Model(&models.Unit{}).Where("item_id = ?", item.ID).Count(&units).Error; err != nil {
		t.Fatalf("count units: %v", err)
	}
	if units != 0 {
		t.Fatalf("units = %d, want 0 after template removal", units)
	}

	if err := svc.DeleteTemplate(ctx, created.ID, "L"); err == nil {
		t.Fatal("expected not found for already-deleted template")
	}
}

func TestGetCollectionDetailAggregates(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCollection(ctx, CreateCollectionInput{Name: "Detail Drop", Slug: "detail-drop"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	first := seedItem(t, conn, created.ID, "detail-a")
	seedItem(t, conn, created.ID, "detail-b")
	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: created.ID, Size: "M", Quantity: 3}); err != nil {
		t.Fatalf("set template: %v", err)
	}

	// Claim one unit on the first item.
	owner := &models.User{ID: uuid.New(), Email: "detail@example.com"}
	if err := conn.Create(owner).Error; err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	var unit models.Unit
	if err := conn.Where("item_id = ?", first.ID).First(&unit).Error; err != nil {
		t.Fatalf("load unit: %v", err)
	}
	if err := conn.Model(&models.Unit{}).Where("id = ?", unit.ID).Update("owner_id", owner.ID).Error; err != nil {
		t.Fatalf("claim unit: %v", err)
	}

	detail, err := svc.GetCollection(ctx, created.ID)
	if err != nil {
		t.Fatalf("get detail: %v", err)
	}
	if detail.TotalUnits != 6 || detail.RemainingUnits != 5 {
		t.Fatalf("aggregates = %d/%d, want 6/5", detail.TotalUnits, detail.RemainingUnits)
	}
	if len(detail.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(detail.Items))
	}

	sum := 0
	for _, item := range detail.Items {
		sum += item.RemainingUnits
	}
	if sum != detail.RemainingUnits {
		t.Fatalf("item remaining sum %d != collection remaining %d", sum, detail.RemainingUnits)
	}
	if len(detail.Templates) != 1 || detail.Templates[0].Size != "M" || detail.Templates[0].Quantity != 3 {
		t.Fatalf("templates = %+v", detail.Templates)
	}
}

func TestDeleteCollectionCascades(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCollection(ctx, CreateCollectionInput{Name: "Gone Drop", Slug: "gone-drop"})
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	item := seedItem(t, conn, created.ID, "gone-tee")
	if _, err := svc.SetTemplate(ctx, SetTemplateInput{CollectionID: created.ID, Size: "S", Quantity: 2}); err != nil {
		t.Fatalf("set template: %v", err)
	}

	if err := svc.DeleteCollection(ctx, created.ID); err != nil {
		t.Fatalf("delete collection: %v", err)
	}

	var collections, templates, items, units int64
	conn.Model(&models.Collection{}).Where("id = ?", created.ID).Count(&collections)
	conn.Model(&models.SizeTemplate{}).Where("collection_id = ?", created.ID).Count(&templates)
	conn.Model(&models.ApparelItem{}).Where("collection_id = ?", created.ID).Count(&items)
	conn.Model(&models.Unit{}).Where("item_id = ?", item.ID).Count(&units)
	if collections != 0 || templates != 0 || items != 0 || units != 0 {
		t.Fatalf("leftovers: collections=%d templates=%d items=%d units=%d", collections, templates, items, units)
	}
}

func TestListCollectionsPaginates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, slug := range []string{"page-a", "page-b", "page-c"} {
		if _, err := svc.CreateCollection(ctx, CreateCollectionInput{Name: slug, Slug: slug}); err != nil {
			t.Fatalf("create %s: %v", slug, err)
		}
	}

	page, err := svc.ListCollections(ctx, ListCollectionsInput{Params: pagination.Params{Limit: 2}})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Collections) != 2 || !page.HasMore {
		t.Fatalf("page = %d, has_more=%v", len(page.Collections), page.HasMore)
	}

	rest, err := svc.ListCollections(ctx, ListCollectionsInput{Params: pagination.Params{Limit: 2, Cursor: page.NextCursor}})
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Collections) != 1 || rest.HasMore {
		t.Fatalf("rest = %d, has_more=%v", len(rest.Collections), rest.HasMore)
	}
}
