package domain

import "time"

// Rating bounds accepted by the rating endpoint
const (
	MinRating = 1
	MaxRating = 5
)

// Rating Model. A user holds at most one rating per store; the composite
// unique index is what the upsert conflicts on.
type Rating struct {
	ID        uint      `gorm:"primaryKey" json:"id"`                                                          // Primary key
	UserID    uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store,priority:1" json:"user_id"`        // Rating author
	StoreID   uint      `gorm:"not null;uniqueIndex:idx_ratings_user_store,priority:2;index" json:"store_id"` // Rated store
	Rating    int       `gorm:"not null" json:"rating"`                                                       // 1..5
	Comment   *string   `gorm:"type:text" json:"comment"`                                                     // Optional comment
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`                                             // Set on first submission only

	User  *User  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Store *Store `gorm:"foreignKey:StoreID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

// ValidRating reports whether v lies within the accepted bounds.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
