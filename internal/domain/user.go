package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                 // Primary key
	Name      string    `gorm:"size:60;not null;index" json:"name"`                   // Display name
	Email     string    `gorm:"size:191;uniqueIndex;not null" json:"email"`           // Unique login email, stored as given
	Password  string    `gorm:"not null" json:"-"`                                    // bcrypt hash, never serialized
	Address   string    `gorm:"size:400" json:"address"`                              // Postal address
	Role      Role      `gorm:"size:20;not null;default:normaluser;index" json:"role"` // admin, store_owner or normaluser
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
