package pets

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/enums"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

// PetDTO is the catalog payload returned to clients. Price is duplicated as
// minor units plus a formatted rupee string so clients never do the division.
type PetDTO struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Species     enums.PetSpecies `json:"species"`
	Breed       string           `json:"breed"`
	AgeMonths   int              `json:"age_months"`
	PriceCents  int              `json:"price_cents"`
	Price       string           `json:"price"`
	Description *string          `json:"description,omitempty"`
	Photos      []string         `json:"photos"`
	Available   bool             `json:"available"`
	OwnerID     *uuid.UUID       `json:"owner_id,omitempty"`
	AdoptedAt   *time.Time       `json:"adopted_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// PetsPageDTO returns a cursor-paginated catalog view.
type PetsPageDTO struct {
	Items      []PetDTO        `json:"items"`
	Pagination pagination.Meta `json:"pagination"`
}

// ListFilters narrows the catalog query. Nil fields match everything.
type ListFilters struct {
	Species   *enums.PetSpecies
	Available *bool
}

// CreatePetDTO holds the fields required to persist a new listing.
type CreatePetDTO struct {
	Name        string
	Species     enums.PetSpecies
	Breed       string
	AgeMonths   int
	PriceCents  int
	Description *string
	Photos      []string
}

// FormatPrice renders minor units as a rupee amount with two decimals.
func FormatPrice(cents int) string {
	return decimal.NewFromInt(int64(cents)).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// FromModel converts a persisted pet into its transport shape.
func FromModel(p *models.Pet) PetDTO {
	photos := make([]string, 0, len(p.Photos))
	photos = append(photos, p.Photos...)

	return PetDTO{
		ID:          p.ID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		AgeMonths:   p.AgeMonths,
		PriceCents:  p.PriceCents,
		Price:       FormatPrice(p.PriceCents),
		Description: p.Description,
		Photos:      photos,
		Available:   p.Available,
		OwnerID:     p.OwnerID,
		AdoptedAt:   p.AdoptedAt,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
