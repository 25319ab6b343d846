// Package toggle flips a relationship edge (subscription or like) and keeps
// the target's denormalized cache in step.
//
// The edge row is the source of truth. The two writes per toggle (edge, then
// cache) cross a storage boundary without a transaction, so a narrow
// inconsistency window exists during a toggle and after a partial failure.
// Readers must treat the edges table as ground truth; Repair recomputes a
// drifted cache from the edges, never the reverse.
package toggle

import (
	"context"
	"fmt"
)

// Kind distinguishes what the target of an edge is.
type Kind string

const (
	KindChannel Kind = "channel"
	KindVideo   Kind = "video"
	KindComment Kind = "comment"
	KindTweet   Kind = "tweet"
)

// Result reports which way a toggle flipped.
type Result string

const (
	Created Result = "created"
	Deleted Result = "deleted"
)

// Edge is one directed actor→target relationship.
type Edge struct {
	ID       uint
	ActorID  uint
	TargetID uint
	Kind     Kind
}

// Store is the social graph persistence contract. Find returns (nil, nil)
// when no edge exists. ApplyCacheDelta mutates the target's denormalized
// cache (pull/push the actor on a followers array, or move a counter by
// delta). RebuildCache recomputes the cache from edge rows.
type Store interface {
	Find(ctx context.Context, actor, target uint, kind Kind) (*Edge, error)
	Insert(ctx context.Context, e *Edge) error
	Delete(ctx context.Context, id uint) error
	CountFor(ctx context.Context, target uint, kind Kind) (int64, error)
	ApplyCacheDelta(ctx context.Context, actor, target uint, kind Kind, delta int) error
	RebuildCache(ctx context.Context, target uint, kind Kind) error
}

// Engine implements the toggle algorithm over a Store.
type Engine struct {
	store Store
	locks *keyedLocks
}

// Option configures an Engine.
type Option func(*Engine)

// WithLocking serializes concurrent toggles for the same
// (actor, target, kind) triple behind a keyed mutex. The lock is scoped to
// this process only; it does not extend across multiple server instances.
// Without it, concurrent toggles from the same actor race and land in
// whichever state the last edge write left (the documented tradeoff).
func WithLocking() Option {
	return func(e *Engine) { e.locks = newKeyedLocks() }
}

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Toggle creates the edge if absent and deletes it if present, then applies
// the matching cache delta. The edge write always precedes the cache write.
func (e *Engine) Toggle(ctx context.Context, actor, target uint, kind Kind) (Result, error) {
	if e.locks != nil {
		unlock := e.locks.lock(actor, target, kind)
		defer unlock()
	}

	existing, err := e.store.Find(ctx, actor, target, kind)
	if err != nil {
		return "", fmt.Errorf("find edge: %w", err)
	}

	if existing != nil {
		if err := e.store.Delete(ctx, existing.ID); err != nil {
			return "", fmt.Errorf("delete edge: %w", err)
		}
		if err := e.store.ApplyCacheDelta(ctx, actor, target, kind, -1); err != nil {
			return "", fmt.Errorf("decrement cache: %w", err)
		}
		return Deleted, nil
	}

	if err := e.store.Insert(ctx, &Edge{ActorID: actor, TargetID: target, Kind: kind}); err != nil {
		return "", fmt.Errorf("insert edge: %w", err)
	}
	if err := e.store.ApplyCacheDelta(ctx, actor, target, kind, 1); err != nil {
		return "", fmt.Errorf("increment cache: %w", err)
	}
	return Created, nil
}

// Exists reports whether the edge is currently present.
func (e *Engine) Exists(ctx context.Context, actor, target uint, kind Kind) (bool, error) {
	edge, err := e.store.Find(ctx, actor, target, kind)
	if err != nil {
		return false, err
	}
	return edge != nil, nil
}

// Count returns the number of edges referencing the target.
func (e *Engine) Count(ctx context.Context, target uint, kind Kind) (int64, error) {
	return e.store.CountFor(ctx, target, kind)
}

// Repair recomputes the target's denormalized cache from edge existence.
// Use it after a partial toggle failure left the cache behind the edges.
func (e *Engine) Repair(ctx context.Context, target uint, kind Kind) error {
	return e.store.RebuildCache(ctx, target, kind)
}
