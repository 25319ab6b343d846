package models

import (
	"time"

	"github.com/lib/pq"
)

// User is both an account and a channel.
//
// RefreshToken is the single active refresh token slot: issuing a new pair
// overwrites it, which revokes whatever was there before. Only the token
// service writes this column.
//
// Followers is a denormalized mirror of the subscription edges targeting this
// channel. The edges table is the source of truth; this array exists for fast
// channel-profile reads and is rebuildable from the edges at any time.
type User struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time     `json:"createdAt"`
	UpdatedAt      time.Time     `json:"updatedAt"`
	Username       string        `gorm:"size:255;not null;uniqueIndex" json:"username"`
	Email          string        `gorm:"size:255;not null;uniqueIndex" json:"email"`
	FullName       string        `gorm:"size:255;not null" json:"fullName"`
	HashedPassword []byte        `gorm:"not null" json:"-"`
	RefreshToken   string        `gorm:"size:1024" json:"-"`
	Avatar         string        `gorm:"size:512" json:"avatar"`
	AvatarID       string        `gorm:"size:128" json:"-"`
	CoverImage     string        `gorm:"size:512" json:"coverImage"`
	CoverImageID   string        `gorm:"size:128" json:"-"`
	Followers      pq.Int64Array `gorm:"type:bigint[]" json:"followers"`
}
