package main

import (
	"context"
	"errors"
	"fmt"

	"vidtube/models"
	"vidtube/pkg/toggle"

	"gorm.io/gorm"
)

// gormGraph persists edges and maintains the denormalized caches: the
// followers array on users for channel edges, a likes counter on videos,
// comments and tweets for the rest. The toggle engine is the only caller.
type gormGraph struct {
	db *gorm.DB
}

func (s *gormGraph) Find(ctx context.Context, actor, target uint, kind toggle.Kind) (*toggle.Edge, error) {
	var e models.Edge
	err := s.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ? AND target_kind = ?", actor, target, string(kind)).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &toggle.Edge{ID: e.ID, ActorID: e.ActorID, TargetID: e.TargetID, Kind: toggle.Kind(e.TargetKind)}, nil
}

func (s *gormGraph) Insert(ctx context.Context, e *toggle.Edge) error {
	row := models.Edge{ActorID: e.ActorID, TargetID: e.TargetID, TargetKind: string(e.Kind)}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	e.ID = row.ID
	return nil
}

func (s *gormGraph) Delete(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Delete(&models.Edge{}, id).Error
}

func (s *gormGraph) CountFor(ctx context.Context, target uint, kind toggle.Kind) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).
		Model(&models.Edge{}).
		Where("target_id = ? AND target_kind = ?", target, string(kind)).
		Count(&n).Error
	return n, err
}

func (s *gormGraph) ApplyCacheDelta(ctx context.Context, actor, target uint, kind toggle.Kind, delta int) error {
	db := s.db.WithContext(ctx)
	switch kind {
	case toggle.KindChannel:
		if delta > 0 {
			return db.Exec(
				`UPDATE users SET followers = array_append(COALESCE(followers, '{}'), ?) WHERE id = ?`,
				int64(actor), target).Error
		}
		return db.Exec(
			`UPDATE users SET followers = array_remove(COALESCE(followers, '{}'), ?) WHERE id = ?`,
			int64(actor), target).Error
	case toggle.KindVideo, toggle.KindComment, toggle.KindTweet:
		return db.Table(counterTable(kind)).
			Where("id = ?", target).
			UpdateColumn("likes_count", gorm.Expr("likes_count + ?", delta)).Error
	default:
		return fmt.Errorf("unknown edge kind %q", kind)
	}
}

func (s *gormGraph) RebuildCache(ctx context.Context, target uint, kind toggle.Kind) error {
	db := s.db.WithContext(ctx)
	if kind == toggle.KindChannel {
		return db.Exec(
			`UPDATE users SET followers = COALESCE(
				(SELECT array_agg(actor_id ORDER BY id) FROM edges
				 WHERE target_id = ? AND target_kind = 'channel'),
				'{}')
			 WHERE id = ?`,
			target, target).Error
	}
	return db.Exec(
		fmt.Sprintf(`UPDATE %s SET likes_count =
			(SELECT count(*) FROM edges WHERE target_id = ? AND target_kind = ?)
			WHERE id = ?`, counterTable(kind)),
		target, string(kind), target).Error
}

func counterTable(kind toggle.Kind) string {
	switch kind {
	case toggle.KindVideo:
		return "videos"
	case toggle.KindComment:
		return "comments"
	default:
		return "tweets"
	}
}
