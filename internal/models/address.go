package models

// Address is the shipping address of a user. A user owns at most one in
// practice, but the store does not enforce it.
type Address struct {
	ID         string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID     *string `json:"userId" gorm:"index;type:varchar(36)"`
	Street     string  `json:"street" gorm:"not null"`
	Number     string  `json:"number" gorm:"not null"`
	Complement string  `json:"complement"`
	District   string  `json:"district" gorm:"not null"`
	City       string  `json:"city" gorm:"not null"`
	State      string  `json:"state" gorm:"not null"`
	ZipCode    string  `json:"zipCode" gorm:"not null"`
	Country    string  `json:"country" gorm:"not null;default:Brasil"`
	IsDefault  string  `json:"isDefault" gorm:"type:text;default:1"`
}
