package adoptions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/enums"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
	"github.com/adoptly/adoptly-backend/pkg/metrics"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
	"github.com/adoptly/adoptly-backend/pkg/razorpay"
)

// Service runs the purchase flow: opening a payment intent against the
// gateway and reconciling the completion notification into an ownership
// transfer that happens exactly once per pet.
type Service interface {
	BeginAdoption(ctx context.Context, userID uuid.UUID, req BeginAdoptionRequest) (*BeginAdoptionResponse, error)
	CompleteAdoption(ctx context.Context, userID uuid.UUID, req CompleteAdoptionRequest) (*CompleteAdoptionResponse, error)
	ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrdersPageDTO, error)
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Orders  Repository
	Pets    petStore
	Gateway paymentGateway
	Metrics *metrics.AdoptionMetrics
	Logger  *logger.Logger
}

type service struct {
	orders  Repository
	pets    petStore
	gateway paymentGateway
	metrics *metrics.AdoptionMetrics
	logger  *logger.Logger
}

// NewService wires the purchase flow.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders repository is required")
	}
	if params.Pets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pets repository is required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment gateway is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger is required")
	}
	return &service{
		orders:  params.Orders,
		pets:    params.Pets,
		gateway: params.Gateway,
		metrics: params.Metrics,
		logger:  params.Logger,
	}, nil
}

// BeginAdoption opens a purchase: it verifies the pet is still for sale,
// writes the ledger row before any remote call, then creates the gateway
// order. The ledger row is the receipt, so a gateway failure leaves behind a
// failed order with no gateway reference rather than a dangling remote order.
func (s *service) BeginAdoption(ctx context.Context, userID uuid.UUID, req BeginAdoptionRequest) (*BeginAdoptionResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	if req.PetID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pet id is required")
	}

	pet, err := s.pets.FindByID(ctx, req.PetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncBegin("pet_not_found")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pet")
	}
	if !pet.Available {
		s.metrics.IncBegin("pet_unavailable")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "pet already adopted")
	}

	currency := s.gateway.Currency()
	order, err := s.orders.Create(ctx, &models.AdoptionOrder{
		UserID:      userID,
		PetID:       pet.ID,
		AmountCents: pet.PriceCents,
		Currency:    currency,
		Status:      enums.OrderStatusCreated,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create adoption order")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"order_id": order.ID.String(),
		"pet_id":   pet.ID.String(),
	})

	start := time.Now()
	gatewayOrderID, err := s.gateway.CreateOrder(ctx, razorpay.OrderCreateParams{
		AmountCents: pet.PriceCents,
		Currency:    currency,
		Receipt:     order.ID.String(),
		Notes: map[string]interface{}{
			"pet_id":  pet.ID.String(),
			"user_id": userID.String(),
		},
	})
	s.metrics.ObserveGatewayDuration("create_order", time.Since(start).Seconds())
	if err != nil {
		// Best-effort: the order stays queryable as failed even if this
		// update itself cannot be persisted.
		if uerr := s.orders.Update(ctx, order.ID, map[string]any{
			"status": enums.OrderStatusFailed,
		}); uerr != nil {
			s.logger.Error(ctx, "mark order failed after gateway error", uerr)
		}
		s.metrics.IncBegin("gateway_failed")
		return nil, err
	}

	if err := s.orders.Update(ctx, order.ID, map[string]any{
		"gateway_order_id": gatewayOrderID,
		"status":           enums.OrderStatusAttempted,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach gateway order")
	}

	s.metrics.IncBegin("created")
	s.logger.Info(s.logger.WithField(ctx, "gateway_order_id", gatewayOrderID), "adoption order opened")

	return &BeginAdoptionResponse{
		OrderID:        order.ID,
		GatewayOrderID: gatewayOrderID,
		AmountCents:    pet.PriceCents,
		Amount:         pets.FormatPrice(pet.PriceCents),
		Currency:       currency,
		KeyID:          s.gateway.KeyID(),
		PetName:        pet.Name,
	}, nil
}

// CompleteAdoption reconciles the payment handback. The gates run strictly in
// order: field presence, signature, ledger lookup scoped to the buyer, paid
// short-circuit, pet re-check, then the conditional ownership transfer. The
// order is never marked paid unless that single conditional write applied.
func (s *service) CompleteAdoption(ctx context.Context, userID uuid.UUID, req CompleteAdoptionRequest) (*CompleteAdoptionResponse, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}

	gatewayOrderID := strings.TrimSpace(req.GatewayOrderID)
	gatewayPaymentID := strings.TrimSpace(req.GatewayPaymentID)
	signature := strings.TrimSpace(req.Signature)
	if gatewayOrderID == "" || gatewayPaymentID == "" || signature == "" {
		s.metrics.IncComplete("malformed")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "incomplete payment notification")
	}

	// Signature first: an unauthenticated notification learns nothing about
	// the ledger, not even whether the order exists.
	if !VerifySignature(gatewayOrderID, gatewayPaymentID, signature, s.gateway.SigningSecret()) {
		s.metrics.IncComplete("signature_mismatch")
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "signature mismatch")
	}

	order, err := s.orders.FindByGatewayOrderAndUser(ctx, gatewayOrderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncComplete("order_not_found")
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	ctx = s.logger.WithFields(ctx, map[string]any{
		"order_id":         order.ID.String(),
		"gateway_order_id": gatewayOrderID,
	})

	if order.Status == enums.OrderStatusPaid {
		s.metrics.IncComplete("duplicate")
		s.logger.Info(ctx, "duplicate completion for paid order")
		return &CompleteAdoptionResponse{
			OrderID:          order.ID,
			PetID:            order.PetID,
			Status:           order.Status,
			AlreadyProcessed: true,
		}, nil
	}

	pet, err := s.pets.FindByID(ctx, order.PetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.metrics.IncComplete("pet_missing")
			return nil, pkgerrors.New(pkgerrors.CodeInternal, "pet record missing for order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pet")
	}
	if !pet.Available {
		return s.failTakenOrder(ctx, order, gatewayPaymentID, signature)
	}

	applied, err := s.pets.MarkAdopted(ctx, pet.ID, order.UserID, time.Now().UTC())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transfer pet")
	}
	if !applied {
		// Lost the race between the availability read and the write.
		return s.failTakenOrder(ctx, order, gatewayPaymentID, signature)
	}

	if err := s.orders.Update(ctx, order.ID, map[string]any{
		"status":             enums.OrderStatusPaid,
		"gateway_payment_id": gatewayPaymentID,
		"gateway_signature":  signature,
	}); err != nil {
		// The pet already moved; surface loudly so the ledger can be repaired.
		s.logger.Error(ctx, "pet transferred but order not marked paid", err)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist paid order")
	}

	s.metrics.IncComplete("paid")
	s.logger.Info(ctx, "adoption completed")

	return &CompleteAdoptionResponse{
		OrderID: order.ID,
		PetID:   pet.ID,
		Status:  enums.OrderStatusPaid,
	}, nil
}

// ListBuyerOrders returns the caller's purchase history.
func (s *service) ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrdersPageDTO, error) {
	if userID == uuid.Nil {
		return OrdersPageDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	page, err := s.orders.ListBuyerOrders(ctx, userID, params)
	if err != nil {
		return OrdersPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list orders")
	}
	return page, nil
}

// failTakenOrder records the failed transition, keeping the payment id and
// signature for the audit trail, then reports the conflict to the caller.
// The write is conditional on the order not being paid: a duplicate delivery
// whose ledger read predates the winner's paid write lands here too, and it
// must settle as an idempotent success instead of clobbering the paid row.
func (s *service) failTakenOrder(ctx context.Context, order *models.AdoptionOrder, gatewayPaymentID, signature string) (*CompleteAdoptionResponse, error) {
	applied, err := s.orders.UpdateIfNotPaid(ctx, order.ID, map[string]any{
		"status":             enums.OrderStatusFailed,
		"gateway_payment_id": gatewayPaymentID,
		"gateway_signature":  signature,
	})
	if err != nil {
		s.logger.Error(ctx, "mark order failed after lost transfer", err)
	}
	if err == nil && !applied {
		s.metrics.IncComplete("duplicate")
		s.logger.Info(ctx, "duplicate completion for paid order")
		return &CompleteAdoptionResponse{
			OrderID:          order.ID,
			PetID:            order.PetID,
			Status:           enums.OrderStatusPaid,
			AlreadyProcessed: true,
		}, nil
	}
	s.metrics.IncComplete("pet_taken")
	s.logger.Warn(ctx, "payment completed for an already adopted pet")
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "pet already adopted")
}
