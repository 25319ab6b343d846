package models

import "time"

// Tweet is a short text post on a channel. LikesCount mirrors like edges
// targeting the tweet.
type Tweet struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	OwnerID    uint      `gorm:"index;not null" json:"ownerId"`
	Owner      *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Content    string    `gorm:"size:512;not null" json:"content"`
	LikesCount int64     `gorm:"not null;default:0" json:"likesCount"`
}
