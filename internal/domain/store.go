package domain

import "time"

// Store Model
type Store struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                // Primary key
	Name      string    `gorm:"size:191;not null;index" json:"name"` // Store name
	Email     *string   `gorm:"size:191" json:"email"`               // Optional contact email
	Address   *string   `gorm:"size:400" json:"address"`             // Optional address
	OwnerID   *uint     `gorm:"index" json:"owner_id"`               // Optional owning store_owner
	CreatedAt time.Time `json:"-"`

	Owner *User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
}
