package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/pkg/enums"
)

// AdoptionOrder is the durable ledger row for one purchase attempt. The
// gateway order id is unique but nullable: it stays null when the remote
// intent was never created, which is how an incomplete intent is recognized.
type AdoptionOrder struct {
	ID               uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID           uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	PetID            uuid.UUID         `gorm:"column:pet_id;type:uuid;not null;index"`
	AmountCents      int               `gorm:"column:amount_cents;not null"`
	Currency         string            `gorm:"column:currency;not null;default:'INR'"`
	GatewayOrderID   *string           `gorm:"column:gateway_order_id;uniqueIndex"`
	GatewayPaymentID *string           `gorm:"column:gateway_payment_id;index"`
	GatewaySignature *string           `gorm:"column:gateway_signature"`
	Status           enums.OrderStatus `gorm:"column:status;type:text;not null;default:'created';index"`
	CreatedAt        time.Time         `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt        time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
