package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// AccountService manages the profile and address of an authenticated user.
type AccountService struct {
	userRepo    repositories.UserRepository
	addressRepo repositories.AddressRepository
	validate    *validator.Validate
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repositories.UserRepository, addressRepo repositories.AddressRepository) *AccountService {
	return &AccountService{
		userRepo:    userRepo,
		addressRepo: addressRepo,
		validate:    NewValidator(),
	}
}

// UpdateProfile applies the non-nil fields of in to the user.
func (s *AccountService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, FromValidator("Invalid user data", err)
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != user.Email {
		if other, err := s.userRepo.GetByEmail(ctx, *in.Email); err == nil && other.ID != user.ID {
			return nil, fmt.Errorf("email '%s' already registered: %w", *in.Email, ErrConflict)
		} else if err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, err
		}
		user.Email = *in.Email
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Phone != nil {
		user.Phone = *in.Phone
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("email '%s' already registered: %w", user.Email, ErrConflict)
		}
		return nil, err
	}
	return user, nil
}

// GetAddress returns the user's address or ErrNotFound.
func (s *AccountService) GetAddress(ctx context.Context, userID string) (*models.Address, error) {
	return s.addressRepo.GetByUserID(ctx, userID)
}

// SaveAddress creates the user's address, or updates it in place when one
// already exists.
func (s *AccountService) SaveAddress(ctx context.Context, userID string, in AddressInput) (*models.Address, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, FromValidator("Invalid address data", err)
	}

	existing, err := s.addressRepo.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		in.apply(existing)
		if err := s.addressRepo.Update(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	case errors.Is(err, repositories.ErrNotFound):
		address := &models.Address{UserID: &userID}
		in.apply(address)
		if err := s.addressRepo.Create(ctx, address); err != nil {
			return nil, err
		}
		return address, nil
	default:
		return nil, err
	}
}
