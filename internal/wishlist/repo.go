package wishlist

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

// Repository encapsulates wishlist persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a wishlist repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddItem inserts a wishlist entry and ignores duplicates.
func (r *Repository) AddItem(ctx context.Context, userID, petID uuid.UUID) error {
	if userID == uuid.Nil || petID == uuid.Nil {
		return gorm.ErrInvalidValue
	}

	return r.db.WithContext(ctx).
		Exec(`INSERT INTO wishlist_items (id, user_id, pet_id, created_at) VALUES (?, ?, ?, ?) ON CONFLICT (user_id, pet_id) DO NOTHING`,
			uuid.New(), userID, petID, time.Now().UTC()).
		Error
}

// RemoveItem deletes the user-pet like if it exists.
func (r *Repository) RemoveItem(ctx context.Context, userID, petID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND pet_id = ?", userID, petID).
		Delete(&models.WishlistItem{}).
		Error
}

// ListItems returns a paginated list of liked pets for a user.
func (r *Repository) ListItems(ctx context.Context, userID uuid.UUID, params pagination.Params) (WishlistPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursorValue := strings.TrimSpace(params.Cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return WishlistPageDTO{}, err
	}

	query := r.db.WithContext(ctx).
		Table("wishlist_items wi").
		Select("wi.id AS wishlist_id, wi.created_at AS wishlist_created_at, p.*").
		Joins("JOIN pets p ON p.id = wi.pet_id").
		Where("wi.user_id = ?", userID)

	if decodedCursor != nil {
		query = query.Where("(wi.created_at < ?) OR (wi.created_at = ? AND wi.id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("wi.created_at DESC").Order("wi.id DESC").Limit(limitWithBuffer)

	var records []wishlistPetRecord
	if err := query.Scan(&records).Error; err != nil {
		return WishlistPageDTO{}, err
	}

	resultRows := records
	nextCursor := ""
	if len(records) > normalizedLimit {
		resultRows = records[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.WishlistCreatedAt,
			ID:        last.WishlistID,
		})
	}

	items := make([]WishlistItemDTO, 0, len(resultRows))
	for i := range resultRows {
		items = append(items, resultRows[i].toDTO())
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Count(&total).Error; err != nil {
		return WishlistPageDTO{}, err
	}

	prevCursor := ""
	if cursorValue != "" {
		prevCursor = cursorValue
	}

	return WishlistPageDTO{
		Items: items,
		Pagination: pagination.Meta{
			Total:   int(total),
			Current: cursorValue,
			Prev:    prevCursor,
			Next:    nextCursor,
		},
	}, nil
}

// ListItemIDs returns only the pet IDs a user has liked, newest first.
func (r *Repository) ListItemIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.WishlistItem{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Pluck("pet_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

type wishlistPetRecord struct {
	WishlistID        uuid.UUID `gorm:"column:wishlist_id"`
	WishlistCreatedAt time.Time `gorm:"column:wishlist_created_at"`
	models.Pet        `gorm:"embedded"`
}

func (r *wishlistPetRecord) toDTO() WishlistItemDTO {
	return WishlistItemDTO{
		Pet:       pets.FromModel(&r.Pet),
		CreatedAt: r.WishlistCreatedAt,
	}
}
