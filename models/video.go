package models

import "time"

// Video is an uploaded video plus its media-host handles. LikesCount mirrors
// like edges targeting the video; edges stay authoritative.
type Video struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	OwnerID         uint      `gorm:"index;not null" json:"ownerId"`
	Owner           *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Description     string    `gorm:"size:4096" json:"description"`
	VideoFile       string    `gorm:"size:512;not null" json:"videoFile"`
	VideoFileID     string    `gorm:"size:128" json:"-"`
	Thumbnail       string    `gorm:"size:512;not null" json:"thumbnail"`
	ThumbnailID     string    `gorm:"size:128" json:"-"`
	DurationSeconds float64   `json:"duration"`
	Views           int64     `gorm:"not null;default:0" json:"views"`
	LikesCount      int64     `gorm:"not null;default:0" json:"likesCount"`
	IsPublished     bool      `gorm:"not null;default:true" json:"isPublished"`
}
