package models

import "time"

// Comment on a video. LikesCount mirrors like edges targeting the comment.
type Comment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	VideoID    uint      `gorm:"index;not null" json:"videoId"`
	OwnerID    uint      `gorm:"index;not null" json:"ownerId"`
	Owner      *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Content    string    `gorm:"size:2048;not null" json:"content"`
	LikesCount int64     `gorm:"not null;default:0" json:"likesCount"`
}
