package models

import "github.com/shopspring/decimal"

// Product represents a catalog entry. Products are seeded once and never
// mutated by the API.
type Product struct {
	ID               string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name             string          `json:"name" gorm:"not null"`
	Price            decimal.Decimal `json:"price" gorm:"type:text;not null"`
	Image            string          `json:"image" gorm:"not null"`
	ShortDescription string          `json:"shortDescription" gorm:"not null"`
	Category         string          `json:"category" gorm:"index;not null"`
}
