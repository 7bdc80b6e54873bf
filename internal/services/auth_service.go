package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// AuthService handles registration and credential checks. Session handling
// lives in the middleware package.
type AuthService struct {
	userRepo repositories.UserRepository
	validate *validator.Validate
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		validate: NewValidator(),
	}
}

// Register validates the input, hashes the password and stores the user. A
// valid address is stored with the user; an invalid one is logged and
// dropped.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, FromValidator("Invalid user data", err)
	}

	if _, err := s.userRepo.GetByUsername(ctx, in.Username); err == nil {
		return nil, fmt.Errorf("username '%s' already taken: %w", in.Username, ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if _, err := s.userRepo.GetByEmail(ctx, in.Email); err == nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", in.Email, ErrConflict)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	hashed, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Password: hashed,
		Email:    in.Email,
		Name:     in.Name,
		Phone:    in.Phone,
	}

	if in.Address != nil {
		if err := s.validate.Struct(in.Address); err != nil {
			log.Printf("Warning: invalid address supplied while registering %s, ignoring it: %v", in.Username, err)
		} else {
			user.Address = &models.Address{}
			in.Address.apply(user.Address)
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, fmt.Errorf("username or email already registered: %w", ErrConflict)
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	log.Printf("Registered user %s (%s)", user.Username, user.ID)
	return user, nil
}

// Login checks the credentials and returns the matching user.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if errors.Is(err, repositories.ErrNotFound) {
		// same answer whether the username exists or not
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !ComparePassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// CurrentUser resolves the user id stored in a session.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
