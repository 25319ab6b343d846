package models

import "time"

// Playlist groups videos for one owner. Membership lives in the
// playlist_videos join table managed by gorm.
type Playlist struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	OwnerID     uint      `gorm:"index;not null" json:"ownerId"`
	Title       string    `gorm:"size:255;not null;uniqueIndex" json:"title"`
	Description string    `gorm:"size:2048" json:"description"`
	Videos      []Video   `gorm:"many2many:playlist_videos" json:"videos,omitempty"`
}
