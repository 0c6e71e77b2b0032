package adoptions

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/enums"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
	"github.com/adoptly/adoptly-backend/pkg/razorpay"
)

const testSigningSecret = "rzp_test_secret"

type stubGateway struct {
	nextOrderID string
	err         error
	calls       int
}

func (g *stubGateway) CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	if g.nextOrderID != "" {
		return g.nextOrderID, nil
	}
	return "order_rzp_" + uuid.NewString(), nil
}

func (g *stubGateway) KeyID() string         { return "rzp_test_key" }
func (g *stubGateway) SigningSecret() string { return testSigningSecret }
func (g *stubGateway) Currency() string      { return "INR" }

type fixture struct {
	db      *gorm.DB
	svc     Service
	orders  Repository
	pets    *pets.Repository
	gateway *stubGateway
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	orders := NewRepository(db)
	petRepo := pets.NewRepository(db)
	gateway := &stubGateway{}

	svc, err := NewService(ServiceParams{
		Orders:  orders,
		Pets:    petRepo,
		Gateway: gateway,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return &fixture{db: db, svc: svc, orders: orders, pets: petRepo, gateway: gateway}
}

func sign(orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(testSigningSecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func completionFor(resp *BeginAdoptionResponse, paymentID string) CompleteAdoptionRequest {
	return CompleteAdoptionRequest{
		GatewayOrderID:   resp.GatewayOrderID,
		GatewayPaymentID: paymentID,
		Signature:        sign(resp.GatewayOrderID, paymentID),
	}
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected %s error, got %v", code, err)
	}
}

func TestBeginAdoptionOpensOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	resp, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if resp.GatewayOrderID == "" || resp.KeyID != "rzp_test_key" {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.AmountCents != 250000 || resp.Amount != "2500.00" || resp.Currency != "INR" {
		t.Fatalf("unexpected amount fields: %+v", resp)
	}
	if resp.PetName != "bruno" {
		t.Fatalf("pet name = %q", resp.PetName)
	}

	stored, err := f.orders.FindByID(ctx, resp.OrderID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Status != enums.OrderStatusAttempted {
		t.Fatalf("status = %s", stored.Status)
	}
	if stored.GatewayOrderID == nil || *stored.GatewayOrderID != resp.GatewayOrderID {
		t.Fatalf("gateway order id = %v", stored.GatewayOrderID)
	}
	if stored.AmountCents != pet.PriceCents {
		t.Fatalf("amount = %d", stored.AmountCents)
	}
}

func TestBeginAdoptionUnknownPet(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BeginAdoption(context.Background(), uuid.New(), BeginAdoptionRequest{PetID: uuid.New()})
	expectCode(t, err, pkgerrors.CodeNotFound)
	if f.gateway.calls != 0 {
		t.Fatal("gateway must not be called for an unknown pet")
	}
}

func TestBeginAdoptionUnavailablePet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pet := seedPet(t, f.db, "misty", 90000)
	if _, err := f.pets.MarkAdopted(ctx, pet.ID, uuid.New(), nowUTC()); err != nil {
		t.Fatalf("adopt: %v", err)
	}

	_, err := f.svc.BeginAdoption(ctx, uuid.New(), BeginAdoptionRequest{PetID: pet.ID})
	expectCode(t, err, pkgerrors.CodeConflict)
	if f.gateway.calls != 0 {
		t.Fatal("gateway must not be called for an unavailable pet")
	}

	var count int64
	if err := f.db.Model(&models.AdoptionOrder{}).Count(&count).Error; err != nil {
		t.Fatalf("count orders: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no ledger row for an unavailable pet, got %d", count)
	}
}

func TestBeginAdoptionGatewayFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "rex", 120000)
	f.gateway.err = pkgerrors.New(pkgerrors.CodeDependency, "gateway timeout")

	_, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	expectCode(t, err, pkgerrors.CodeDependency)

	var orders []models.AdoptionOrder
	if err := f.db.Where("user_id = ?", buyer).Find(&orders).Error; err != nil {
		t.Fatalf("load orders: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("expected the ledger row to survive, got %d", len(orders))
	}
	if orders[0].Status != enums.OrderStatusFailed {
		t.Fatalf("status = %s", orders[0].Status)
	}
	if orders[0].GatewayOrderID != nil {
		t.Fatal("failed intent must have no gateway order id")
	}
}

func TestCompleteAdoptionHappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	begin, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	resp, err := f.svc.CompleteAdoption(ctx, buyer, completionFor(begin, "pay_1"))
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if resp.Status != enums.OrderStatusPaid || resp.AlreadyProcessed {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.PetID != pet.ID {
		t.Fatalf("pet id = %s", resp.PetID)
	}

	stored, err := f.pets.FindByID(ctx, pet.ID)
	if err != nil {
		t.Fatalf("reload pet: %v", err)
	}
	if stored.Available || stored.OwnerID == nil || *stored.OwnerID != buyer {
		t.Fatalf("pet not transferred: available=%v owner=%v", stored.Available, stored.OwnerID)
	}

	order, err := f.orders.FindByID(ctx, resp.OrderID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if order.Status != enums.OrderStatusPaid {
		t.Fatalf("status = %s", order.Status)
	}
	if order.GatewayPaymentID == nil || *order.GatewayPaymentID != "pay_1" {
		t.Fatalf("payment id = %v", order.GatewayPaymentID)
	}
	if order.GatewaySignature == nil {
		t.Fatal("signature should be stored")
	}
}

func TestCompleteAdoptionIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	begin, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	req := completionFor(begin, "pay_1")

	if _, err := f.svc.CompleteAdoption(ctx, buyer, req); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	resp, err := f.svc.CompleteAdoption(ctx, buyer, req)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if !resp.AlreadyProcessed || resp.Status != enums.OrderStatusPaid {
		t.Fatalf("expected idempotent success, got %+v", resp)
	}

	stored, err := f.pets.FindByID(ctx, pet.ID)
	if err != nil {
		t.Fatalf("reload pet: %v", err)
	}
	if stored.OwnerID == nil || *stored.OwnerID != buyer {
		t.Fatal("owner must be unchanged after replay")
	}
}

// staleLedger serves every buyer-scoped lookup from a snapshot taken before
// the winning completion, mimicking a duplicate delivery whose read raced the
// paid write.
type staleLedger struct {
	Repository
	snapshot models.AdoptionOrder
}

func (s *staleLedger) FindByGatewayOrderAndUser(ctx context.Context, gatewayOrderID string, userID uuid.UUID) (*models.AdoptionOrder, error) {
	order := s.snapshot
	return &order, nil
}

func TestCompleteAdoptionStaleReadCannotUnpayOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	begin, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	snapshot, err := f.orders.FindByGatewayOrderAndUser(ctx, begin.GatewayOrderID, buyer)
	if err != nil {
		t.Fatalf("snapshot order: %v", err)
	}

	if _, err := f.svc.CompleteAdoption(ctx, buyer, completionFor(begin, "pay_1")); err != nil {
		t.Fatalf("winning complete: %v", err)
	}

	dupSvc, err := NewService(ServiceParams{
		Orders:  &staleLedger{Repository: f.orders, snapshot: *snapshot},
		Pets:    f.pets,
		Gateway: f.gateway,
		Logger:  logger.New(logger.Options{ServiceName: "test", Output: io.Discard}),
	})
	if err != nil {
		t.Fatalf("build duplicate service: %v", err)
	}

	resp, err := dupSvc.CompleteAdoption(ctx, buyer, completionFor(begin, "pay_1"))
	if err != nil {
		t.Fatalf("duplicate complete: %v", err)
	}
	if !resp.AlreadyProcessed || resp.Status != enums.OrderStatusPaid {
		t.Fatalf("expected idempotent success, got %+v", resp)
	}

	stored, err := f.orders.FindByID(ctx, snapshot.ID)
	if err != nil {
		t.Fatalf("reload order: %v", err)
	}
	if stored.Status != enums.OrderStatusPaid {
		t.Fatalf("status = %s, paid must be terminal", stored.Status)
	}
	if stored.GatewayPaymentID == nil || *stored.GatewayPaymentID != "pay_1" {
		t.Fatalf("payment id = %v", stored.GatewayPaymentID)
	}

	petRow, err := f.pets.FindByID(ctx, pet.ID)
	if err != nil {
		t.Fatalf("reload pet: %v", err)
	}
	if petRow.OwnerID == nil || *petRow.OwnerID != buyer {
		t.Fatalf("owner = %v, want the buyer", petRow.OwnerID)
	}
}

func TestCompleteAdoptionGateOrdering(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	begin, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	// Gate 1: missing fields.
	_, err = f.svc.CompleteAdoption(ctx, buyer, CompleteAdoptionRequest{GatewayOrderID: begin.GatewayOrderID})
	expectCode(t, err, pkgerrors.CodeValidation)

	// Gate 2: forged signature, even for a real order.
	_, err = f.svc.CompleteAdoption(ctx, buyer, CompleteAdoptionRequest{
		GatewayOrderID:   begin.GatewayOrderID,
		GatewayPaymentID: "pay_1",
		Signature:        "deadbeef",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	// Gate 2 before gate 3: a well-signed notification for a nonexistent
	// order still fails on the signature when signed with the wrong secret.
	_, err = f.svc.CompleteAdoption(ctx, buyer, CompleteAdoptionRequest{
		GatewayOrderID:   "order_unknown",
		GatewayPaymentID: "pay_1",
		Signature:        "deadbeef",
	})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	// Gate 3: valid signature but no matching ledger row.
	_, err = f.svc.CompleteAdoption(ctx, buyer, CompleteAdoptionRequest{
		GatewayOrderID:   "order_unknown",
		GatewayPaymentID: "pay_1",
		Signature:        sign("order_unknown", "pay_1"),
	})
	expectCode(t, err, pkgerrors.CodeNotFound)

	// Gate 3: the buyer scope hides other users' orders.
	_, err = f.svc.CompleteAdoption(ctx, uuid.New(), completionFor(begin, "pay_1"))
	expectCode(t, err, pkgerrors.CodeNotFound)

	// The pet must be untouched by all of the rejected notifications.
	stored, err := f.pets.FindByID(ctx, pet.ID)
	if err != nil {
		t.Fatalf("reload pet: %v", err)
	}
	if !stored.Available || stored.OwnerID != nil {
		t.Fatal("rejected notifications must not move the pet")
	}
}

func TestCompleteAdoptionLosesRaceToOtherOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	beginFirst, err := f.svc.BeginAdoption(ctx, first, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin first: %v", err)
	}
	beginSecond, err := f.svc.BeginAdoption(ctx, second, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin second: %v", err)
	}

	if _, err := f.svc.CompleteAdoption(ctx, first, completionFor(beginFirst, "pay_first")); err != nil {
		t.Fatalf("complete first: %v", err)
	}

	_, err = f.svc.CompleteAdoption(ctx, second, completionFor(beginSecond, "pay_second"))
	expectCode(t, err, pkgerrors.CodeStateConflict)

	stored, err := f.pets.FindByID(ctx, pet.ID)
	if err != nil {
		t.Fatalf("reload pet: %v", err)
	}
	if stored.OwnerID == nil || *stored.OwnerID != first {
		t.Fatalf("owner must be the first buyer, got %v", stored.OwnerID)
	}

	loserOrder, err := f.orders.FindByGatewayOrderAndUser(ctx, beginSecond.GatewayOrderID, second)
	if err != nil {
		t.Fatalf("reload loser order: %v", err)
	}
	if loserOrder.Status != enums.OrderStatusFailed {
		t.Fatalf("loser status = %s", loserOrder.Status)
	}
	if loserOrder.GatewayPaymentID == nil || *loserOrder.GatewayPaymentID != "pay_second" {
		t.Fatal("loser order must keep the payment id for audit")
	}
	if loserOrder.GatewaySignature == nil {
		t.Fatal("loser order must keep the signature for audit")
	}

	// Replaying the loser notification keeps failing the same way.
	_, err = f.svc.CompleteAdoption(ctx, second, completionFor(beginSecond, "pay_second"))
	expectCode(t, err, pkgerrors.CodeStateConflict)
}

func TestListBuyerOrdersThroughService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	begin, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := f.svc.CompleteAdoption(ctx, buyer, completionFor(begin, "pay_1")); err != nil {
		t.Fatalf("complete: %v", err)
	}

	page, err := f.svc.ListBuyerOrders(ctx, buyer, pagination.Params{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 order, got %d", len(page.Items))
	}
	item := page.Items[0]
	if item.Status != enums.OrderStatusPaid || item.Pet.Name != "bruno" {
		t.Fatalf("unexpected item: %+v", item)
	}

	_, err = f.svc.ListBuyerOrders(ctx, uuid.Nil, pagination.Params{})
	expectCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestCompleteAdoptionPetRowMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := uuid.New()
	pet := seedPet(t, f.db, "bruno", 250000)

	begin, err := f.svc.BeginAdoption(ctx, buyer, BeginAdoptionRequest{PetID: pet.ID})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	if err := f.db.Delete(&models.Pet{}, "id = ?", pet.ID).Error; err != nil {
		t.Fatalf("delete pet: %v", err)
	}

	_, err = f.svc.CompleteAdoption(ctx, buyer, completionFor(begin, "pay_1"))
	expectCode(t, err, pkgerrors.CodeInternal)
}

func TestBeginAdoptionRequiresAuthAndPet(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.BeginAdoption(ctx, uuid.Nil, BeginAdoptionRequest{PetID: uuid.New()})
	expectCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = f.svc.BeginAdoption(ctx, uuid.New(), BeginAdoptionRequest{})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func nowUTC() time.Time { return time.Now().UTC() }
