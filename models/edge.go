package models

import "time"

// Edge is a directed relationship from an actor to a target: a subscription
// (target kind "channel") or a like ("video", "comment", "tweet"). The
// composite unique index guarantees at most one edge per
// (actor, target, kind) triple; denormalized counters and the followers
// array are caches of rows in this table.
type Edge struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"createdAt"`
	ActorID    uint      `gorm:"not null;index:idx_edge_actor;uniqueIndex:idx_edge_triple" json:"actorId"`
	TargetID   uint      `gorm:"not null;index:idx_edge_target;uniqueIndex:idx_edge_triple" json:"targetId"`
	TargetKind string    `gorm:"size:16;not null;index:idx_edge_target;uniqueIndex:idx_edge_triple" json:"targetKind"`
}

func (Edge) TableName() string { return "edges" }
