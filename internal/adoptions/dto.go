package adoptions

import (
	"time"

	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/enums"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

// BeginAdoptionRequest starts a purchase for a single pet.
type BeginAdoptionRequest struct {
	PetID uuid.UUID `json:"pet_id" validate:"required"`
}

// BeginAdoptionResponse carries everything the checkout widget needs to
// collect the payment against the gateway order.
type BeginAdoptionResponse struct {
	OrderID        uuid.UUID `json:"order_id"`
	GatewayOrderID string    `json:"gateway_order_id"`
	AmountCents    int       `json:"amount_cents"`
	Amount         string    `json:"amount"`
	Currency       string    `json:"currency"`
	KeyID          string    `json:"key_id"`
	PetName        string    `json:"pet_name"`
}

// CompleteAdoptionRequest is the payment completion notification posted by
// the client after checkout. Field names follow the gateway handback payload.
type CompleteAdoptionRequest struct {
	GatewayOrderID   string `json:"razorpay_order_id"`
	GatewayPaymentID string `json:"razorpay_payment_id"`
	Signature        string `json:"razorpay_signature"`
}

// CompleteAdoptionResponse reports the reconciliation outcome.
type CompleteAdoptionResponse struct {
	OrderID          uuid.UUID         `json:"order_id"`
	PetID            uuid.UUID         `json:"pet_id"`
	Status           enums.OrderStatus `json:"status"`
	AlreadyProcessed bool              `json:"already_processed"`
}

// OrderDTO is one row of a buyer's purchase history.
type OrderDTO struct {
	ID               uuid.UUID         `json:"id"`
	Pet              pets.PetDTO       `json:"pet"`
	AmountCents      int               `json:"amount_cents"`
	Amount           string            `json:"amount"`
	Currency         string            `json:"currency"`
	Status           enums.OrderStatus `json:"status"`
	GatewayOrderID   *string           `json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string           `json:"gateway_payment_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	UpdatedAt        time.Time         `json:"updated_at"`
}

// OrdersPageDTO returns a cursor-paginated purchase history view.
type OrdersPageDTO struct {
	Items      []OrderDTO      `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}
