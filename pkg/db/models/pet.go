package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/pkg/enums"
)

// Pet represents a single adoptable listing. Availability is the sole arbiter
// of the sale outcome: owner_id is non-null exactly when available is false,
// and the pair is only ever mutated through the conditional update in the
// adoptions repository.
type Pet struct {
	ID          uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	Name        string           `gorm:"column:name;not null"`
	Species     enums.PetSpecies `gorm:"column:species;type:text;not null;index"`
	Breed       string           `gorm:"column:breed;not null"`
	AgeMonths   int              `gorm:"column:age_months;not null"`
	PriceCents  int              `gorm:"column:price_cents;not null"`
	Description *string          `gorm:"column:description"`
	Photos      PhotoList        `gorm:"column:photos"`
	Available   bool             `gorm:"column:available;not null;default:true;index"`
	OwnerID     *uuid.UUID       `gorm:"column:owner_id;type:uuid;index"`
	AdoptedAt   *time.Time       `gorm:"column:adopted_at"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
