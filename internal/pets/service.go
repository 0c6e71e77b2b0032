package pets

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

const defaultGalleryLimit = 12

// Service exposes the read-only catalog surface.
type Service interface {
	ListPets(ctx context.Context, filters ListFilters, params pagination.Params) (PetsPageDTO, error)
	GetPet(ctx context.Context, id uuid.UUID) (*PetDTO, error)
	Gallery(ctx context.Context, limit int) ([]PetDTO, error)
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service over the pets repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pets repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListPets(ctx context.Context, filters ListFilters, params pagination.Params) (PetsPageDTO, error) {
	page, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return PetsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list pets")
	}
	return page, nil
}

func (s *service) GetPet(ctx context.Context, id uuid.UUID) (*PetDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pet id is required")
	}
	pet, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pet not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pet")
	}
	dto := FromModel(pet)
	return &dto, nil
}

// Gallery lists the most recently adopted pets.
func (s *service) Gallery(ctx context.Context, limit int) ([]PetDTO, error) {
	if limit <= 0 {
		limit = defaultGalleryLimit
	}
	rows, err := s.repo.ListRecentlyAdopted(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list adopted pets")
	}
	items := make([]PetDTO, 0, len(rows))
	for i := range rows {
		items = append(items, FromModel(&rows[i]))
	}
	return items, nil
}
