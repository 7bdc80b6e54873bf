package services

import "storefront/internal/models"

// DefaultCountry is stored when an address omits its country.
const DefaultCountry = "Brasil"

// AddressInput is the editable part of an address.
type AddressInput struct {
	Street     string `json:"street" validate:"required"`
	Number     string `json:"number" validate:"required"`
	Complement string `json:"complement"`
	District   string `json:"district" validate:"required"`
	City       string `json:"city" validate:"required"`
	State      string `json:"state" validate:"required"`
	ZipCode    string `json:"zipCode" validate:"required"`
	Country    string `json:"country"`
	IsDefault  string `json:"isDefault"`
}

func (in AddressInput) apply(a *models.Address) {
	a.Street = in.Street
	a.Number = in.Number
	a.Complement = in.Complement
	a.District = in.District
	a.City = in.City
	a.State = in.State
	a.ZipCode = in.ZipCode
	a.Country = in.Country
	if a.Country == "" {
		a.Country = DefaultCountry
	}
	a.IsDefault = in.IsDefault
	if a.IsDefault == "" {
		a.IsDefault = "1"
	}
}

// RegisterInput is the payload of a registration. Address is validated on
// its own and dropped when invalid.
type RegisterInput struct {
	Username        string        `json:"username" validate:"required,min=3,max=100"`
	Password        string        `json:"password" validate:"required,min=6"`
	ConfirmPassword string        `json:"confirmPassword" validate:"required,eqfield=Password"`
	Email           string        `json:"email" validate:"required,email"`
	Name            string        `json:"name" validate:"required"`
	Phone           string        `json:"phone" validate:"required"`
	Address         *AddressInput `json:"address" validate:"-"`
}

// ProfileInput carries the profile fields a user may change. Nil fields are
// left untouched.
type ProfileInput struct {
	Name  *string `json:"name" validate:"omitempty,min=1"`
	Email *string `json:"email" validate:"omitempty,email"`
	Phone *string `json:"phone"`
}
