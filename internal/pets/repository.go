package pets

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adoptly/adoptly-backend/pkg/db/models"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

// Repository encapsulates pet catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a pets repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new listing and returns the persisted model.
func (r *Repository) Create(ctx context.Context, dto CreatePetDTO) (*models.Pet, error) {
	pet := &models.Pet{
		ID:          uuid.New(),
		Name:        dto.Name,
		Species:     dto.Species,
		Breed:       dto.Breed,
		AgeMonths:   dto.AgeMonths,
		PriceCents:  dto.PriceCents,
		Description: dto.Description,
		Photos:      models.PhotoList(dto.Photos),
		Available:   true,
	}
	if err := r.db.WithContext(ctx).Create(pet).Error; err != nil {
		return nil, err
	}
	return pet, nil
}

// FindByID loads a single pet.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Pet, error) {
	var pet models.Pet
	if err := r.db.WithContext(ctx).First(&pet, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &pet, nil
}

// List returns a cursor-paginated page of pets matching the filters.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) (PetsPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(params.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(params.Limit)
	cursorValue := strings.TrimSpace(params.Cursor)
	decodedCursor, err := pagination.ParseCursor(cursorValue)
	if err != nil {
		return PetsPageDTO{}, err
	}

	query := r.filtered(ctx, filters)
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)", decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}
	query = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer)

	var rows []models.Pet
	if err := query.Find(&rows).Error; err != nil {
		return PetsPageDTO{}, err
	}

	resultRows := rows
	nextCursor := ""
	if len(rows) > normalizedLimit {
		resultRows = rows[:normalizedLimit]
		last := resultRows[len(resultRows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]PetDTO, 0, len(resultRows))
	for i := range resultRows {
		items = append(items, FromModel(&resultRows[i]))
	}

	var total int64
	if err := r.filtered(ctx, filters).Count(&total).Error; err != nil {
		return PetsPageDTO{}, err
	}

	prevCursor := ""
	if cursorValue != "" {
		prevCursor = cursorValue
	}

	return PetsPageDTO{
		Items: items,
		Pagination: pagination.Meta{
			Total:   int(total),
			Current: cursorValue,
			Prev:    prevCursor,
			Next:    nextCursor,
		},
	}, nil
}

// ListRecentlyAdopted returns the newest adopted pets for the gallery view.
func (r *Repository) ListRecentlyAdopted(ctx context.Context, limit int) ([]models.Pet, error) {
	var rows []models.Pet
	err := r.db.WithContext(ctx).
		Where("available = ? AND adopted_at IS NOT NULL", false).
		Order("adopted_at DESC").
		Limit(pagination.NormalizeLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByOwner returns every pet currently owned by the given user.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Pet, error) {
	var rows []models.Pet
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("adopted_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkAdopted flips availability to the new owner in one conditional write.
// RowsAffected reports whether this caller won; a concurrent adopter makes the
// predicate fail and leaves the row untouched.
func (r *Repository) MarkAdopted(ctx context.Context, petID, ownerID uuid.UUID, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Pet{}).
		Where("id = ? AND available = ?", petID, true).
		Updates(map[string]any{
			"available":  false,
			"owner_id":   ownerID,
			"adopted_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *Repository) filtered(ctx context.Context, filters ListFilters) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&models.Pet{})
	if filters.Species != nil {
		query = query.Where("species = ?", *filters.Species)
	}
	if filters.Available != nil {
		query = query.Where("available = ?", *filters.Available)
	}
	return query
}
