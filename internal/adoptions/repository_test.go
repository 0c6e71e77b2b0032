package adoptions

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/enums"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:adoptions_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Pet{}, &models.AdoptionOrder{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedPet(t *testing.T, db *gorm.DB, name string, priceCents int) *models.Pet {
	t.Helper()
	pet, err := pets.NewRepository(db).Create(context.Background(), pets.CreatePetDTO{
		Name:       name,
		Species:    enums.PetSpeciesDog,
		Breed:      "mixed",
		AgeMonths:  18,
		PriceCents: priceCents,
	})
	if err != nil {
		t.Fatalf("seed pet: %v", err)
	}
	return pet
}

func seedOrder(t *testing.T, repo Repository, userID, petID uuid.UUID, gatewayOrderID string) *models.AdoptionOrder {
	t.Helper()
	order := &models.AdoptionOrder{
		UserID:      userID,
		PetID:       petID,
		AmountCents: 150000,
		Currency:    "INR",
		Status:      enums.OrderStatusAttempted,
	}
	if gatewayOrderID != "" {
		order.GatewayOrderID = &gatewayOrderID
	}
	created, err := repo.Create(context.Background(), order)
	if err != nil {
		t.Fatalf("seed order: %v", err)
	}
	return created
}

func TestFindByGatewayOrderAndUserScopesToBuyer(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	buyer := uuid.New()
	stranger := uuid.New()
	pet := seedPet(t, db, "bruno", 150000)
	seedOrder(t, repo, buyer, pet.ID, "order_rzp_1")

	found, err := repo.FindByGatewayOrderAndUser(ctx, "order_rzp_1", buyer)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if found.PetID != pet.ID {
		t.Fatalf("unexpected pet %s", found.PetID)
	}

	if _, err := repo.FindByGatewayOrderAndUser(ctx, "order_rzp_1", stranger); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected not found for another buyer, got %v", err)
	}
	if _, err := repo.FindByGatewayOrderAndUser(ctx, "order_unknown", buyer); err != gorm.ErrRecordNotFound {
		t.Fatalf("expected not found for unknown gateway order, got %v", err)
	}
}

func TestUpdatePersistsOrderFields(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pet := seedPet(t, db, "misty", 90000)
	order := seedOrder(t, repo, uuid.New(), pet.ID, "order_rzp_2")

	if err := repo.Update(ctx, order.ID, map[string]any{
		"status":             enums.OrderStatusPaid,
		"gateway_payment_id": "pay_123",
		"gateway_signature":  "sig_123",
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != enums.OrderStatusPaid {
		t.Fatalf("status = %s", stored.Status)
	}
	if stored.GatewayPaymentID == nil || *stored.GatewayPaymentID != "pay_123" {
		t.Fatalf("payment id = %v", stored.GatewayPaymentID)
	}
	if stored.GatewaySignature == nil || *stored.GatewaySignature != "sig_123" {
		t.Fatalf("signature = %v", stored.GatewaySignature)
	}
}

func TestUpdateIfNotPaidGuardsPaidOrders(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	pet := seedPet(t, db, "misty", 90000)
	order := seedOrder(t, repo, uuid.New(), pet.ID, "order_rzp_3")

	applied, err := repo.UpdateIfNotPaid(ctx, order.ID, map[string]any{
		"status": enums.OrderStatusFailed,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !applied {
		t.Fatal("expected the write to apply on an attempted order")
	}

	if err := repo.Update(ctx, order.ID, map[string]any{
		"status":             enums.OrderStatusPaid,
		"gateway_payment_id": "pay_win",
	}); err != nil {
		t.Fatalf("mark paid: %v", err)
	}

	applied, err = repo.UpdateIfNotPaid(ctx, order.ID, map[string]any{
		"status":             enums.OrderStatusFailed,
		"gateway_payment_id": "pay_late",
	})
	if err != nil {
		t.Fatalf("guarded update: %v", err)
	}
	if applied {
		t.Fatal("paid order must not accept further transitions")
	}

	stored, err := repo.FindByID(ctx, order.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != enums.OrderStatusPaid {
		t.Fatalf("status = %s, want paid", stored.Status)
	}
	if stored.GatewayPaymentID == nil || *stored.GatewayPaymentID != "pay_win" {
		t.Fatalf("payment id = %v", stored.GatewayPaymentID)
	}
}

func TestListBuyerOrdersPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	buyer := uuid.New()
	for i := 0; i < 3; i++ {
		pet := seedPet(t, db, "pet", 100000+i)
		order := seedOrder(t, repo, buyer, pet.ID, "order_rzp_list_"+uuid.NewString())
		// Spread created_at so the cursor ordering is deterministic.
		at := time.Now().UTC().Add(time.Duration(-i) * time.Minute)
		if err := db.Model(&models.AdoptionOrder{}).Where("id = ?", order.ID).UpdateColumn("created_at", at).Error; err != nil {
			t.Fatalf("backdate order: %v", err)
		}
	}
	otherPet := seedPet(t, db, "other", 100)
	seedOrder(t, repo, uuid.New(), otherPet.ID, "order_rzp_other")

	first, err := repo.ListBuyerOrders(ctx, buyer, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("first page: %v", err)
	}
	if len(first.Items) != 2 || first.Pagination.Total != 3 || first.Pagination.Next == "" {
		t.Fatalf("unexpected first page: %d items, total %d", len(first.Items), first.Pagination.Total)
	}
	if first.Items[0].Pet.Name == "" || first.Items[0].Amount == "" {
		t.Fatal("expected joined pet data and formatted amount")
	}

	second, err := repo.ListBuyerOrders(ctx, buyer, pagination.Params{Limit: 2, Cursor: first.Pagination.Next})
	if err != nil {
		t.Fatalf("second page: %v", err)
	}
	if len(second.Items) != 1 || second.Pagination.Next != "" {
		t.Fatalf("unexpected second page: %d items", len(second.Items))
	}

	if !first.Items[0].CreatedAt.After(first.Items[1].CreatedAt) {
		t.Fatal("orders should be newest first")
	}
}
