package adoptions

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
	"github.com/adoptly/adoptly-backend/pkg/razorpay"
)

// Repository defines persistence operations for the adoption order ledger.
type Repository interface {
	Create(ctx context.Context, order *models.AdoptionOrder) (*models.AdoptionOrder, error)
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.AdoptionOrder, error)
	FindByGatewayOrderAndUser(ctx context.Context, gatewayOrderID string, userID uuid.UUID) (*models.AdoptionOrder, error)
	Update(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateIfNotPaid(ctx context.Context, orderID uuid.UUID, updates map[string]any) (bool, error)
	ListBuyerOrders(ctx context.Context, userID uuid.UUID, params pagination.Params) (OrdersPageDTO, error)
}

// petStore is the slice of the pets repository the purchase flow needs.
type petStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error)
	MarkAdopted(ctx context.Context, petID, ownerID uuid.UUID, at time.Time) (bool, error)
}

// paymentGateway is the slice of the Razorpay client the purchase flow needs.
type paymentGateway interface {
	CreateOrder(ctx context.Context, params razorpay.OrderCreateParams) (string, error)
	KeyID() string
	SigningSecret() string
	Currency() string
}
