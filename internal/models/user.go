package models

import "time"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is the identity record behind wallet ownership. Phone and
// national id are stored encrypted; see utils.FieldCipher.
type User struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password     string `gorm:"size:255;not null" json:"-"`
	FullName     string `gorm:"size:255" json:"full_name"`
	Phone        string `gorm:"size:512" json:"-"`
	NationalID   string `gorm:"size:512" json:"-"`
	Role         string `gorm:"size:20;not null;default:'user'" json:"role"`
	TokenVersion int    `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
