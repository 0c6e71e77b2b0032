package wishlist

import (
	"time"

	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

// WishlistItemDTO wraps the pet payload included in a wishlist row.
type WishlistItemDTO struct {
	Pet       pets.PetDTO `json:"pet"`
	CreatedAt time.Time   `json:"created_at"`
}

// WishlistPageDTO returns a cursor-paginated wishlist view.
type WishlistPageDTO struct {
	Items      []WishlistItemDTO `json:"items"`
	Pagination pagination.Meta   `json:"pagination"`
}

// WishlistIDsDTO is a lightweight projection containing only pet IDs.
type WishlistIDsDTO struct {
	PetIDs []uuid.UUID `json:"pet_ids"`
}
