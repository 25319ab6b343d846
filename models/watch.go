package models

import "time"

// WatchEvent records one authenticated playback of a video, newest first in
// watch-history reads.
type WatchEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	VideoID   uint      `gorm:"index;not null" json:"videoId"`
	Video     *Video    `gorm:"foreignKey:VideoID" json:"video,omitempty"`
}
