package wishlist

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adoptly/adoptly-backend/internal/pets"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

// ServiceParams groups dependencies for the wishlist service.
type ServiceParams struct {
	WishlistRepo *Repository
	PetRepo      *pets.Repository
}

// Service exposes business rules for wishlist management.
type Service interface {
	GetWishlist(ctx context.Context, userID uuid.UUID, params pagination.Params) (WishlistPageDTO, error)
	GetWishlistIDs(ctx context.Context, userID uuid.UUID) (WishlistIDsDTO, error)
	AddItem(ctx context.Context, userID, petID uuid.UUID) error
	RemoveItem(ctx context.Context, userID, petID uuid.UUID) error
}

type service struct {
	wishlistRepo *Repository
	petRepo      *pets.Repository
}

// NewService builds a wishlist service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.WishlistRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist repo is required")
	}
	if params.PetRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "pet repo is required")
	}
	return &service{
		wishlistRepo: params.WishlistRepo,
		petRepo:      params.PetRepo,
	}, nil
}

// GetWishlist returns the paginated wishlist for a user.
func (s *service) GetWishlist(ctx context.Context, userID uuid.UUID, params pagination.Params) (WishlistPageDTO, error) {
	if userID == uuid.Nil {
		return WishlistPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.wishlistRepo.ListItems(ctx, userID, params)
}

// GetWishlistIDs returns all liked pet IDs for the user.
func (s *service) GetWishlistIDs(ctx context.Context, userID uuid.UUID) (WishlistIDsDTO, error) {
	if userID == uuid.Nil {
		return WishlistIDsDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	ids, err := s.wishlistRepo.ListItemIDs(ctx, userID)
	if err != nil {
		return WishlistIDsDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list wishlist ids")
	}
	return WishlistIDsDTO{PetIDs: ids}, nil
}

// AddItem ensures the pet exists and adds it to the wishlist.
func (s *service) AddItem(ctx context.Context, userID, petID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if petID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "pet id is required")
	}
	if _, err := s.petRepo.FindByID(ctx, petID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "pet not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load pet")
	}
	return s.wishlistRepo.AddItem(ctx, userID, petID)
}

// RemoveItem drops the wishlist entry regardless of prior state.
func (s *service) RemoveItem(ctx context.Context, userID, petID uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	return s.wishlistRepo.RemoveItem(ctx, userID, petID)
}
