package toggle

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memGraph keeps edges and a separate cache map so tests can observe the two
// writes independently, the same way the real store splits edge rows from
// denormalized counters.
type memGraph struct {
	mu     sync.Mutex
	nextID uint
	edges  map[uint]Edge
	cache  map[string]int64 // "target/kind" -> cached count
}

func newMemGraph() *memGraph {
	return &memGraph{edges: map[uint]Edge{}, cache: map[string]int64{}}
}

func cacheKey(target uint, kind Kind) string {
	return fmt.Sprintf("%d/%s", target, kind)
}

func (m *memGraph) Find(_ context.Context, actor, target uint, kind Kind) (*Edge, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.edges {
		if e.ActorID == actor && e.TargetID == target && e.Kind == kind {
			cp := e
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memGraph) Insert(_ context.Context, e *Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	e.ID = m.nextID
	m.edges[e.ID] = *e
	return nil
}

func (m *memGraph) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.edges, id)
	return nil
}

func (m *memGraph) CountFor(_ context.Context, target uint, kind Kind) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.countLocked(target, kind), nil
}

func (m *memGraph) countLocked(target uint, kind Kind) int64 {
	var n int64
	for _, e := range m.edges {
		if e.TargetID == target && e.Kind == kind {
			n++
		}
	}
	return n
}

func (m *memGraph) ApplyCacheDelta(_ context.Context, _, target uint, kind Kind, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[cacheKey(target, kind)] += int64(delta)
	return nil
}

func (m *memGraph) RebuildCache(_ context.Context, target uint, kind Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[cacheKey(target, kind)] = m.countLocked(target, kind)
	return nil
}

func (m *memGraph) cached(target uint, kind Kind) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cache[cacheKey(target, kind)]
}

func TestToggleFlipsBothWays(t *testing.T) {
	g := newMemGraph()
	e := NewEngine(g)
	ctx := context.Background()

	res, err := e.Toggle(ctx, 1, 42, KindVideo)
	require.NoError(t, err)
	assert.Equal(t, Created, res)

	exists, err := e.Exists(ctx, 1, 42, KindVideo)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, int64(1), g.cached(42, KindVideo))

	res, err = e.Toggle(ctx, 1, 42, KindVideo)
	require.NoError(t, err)
	assert.Equal(t, Deleted, res)

	exists, err = e.Exists(ctx, 1, 42, KindVideo)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, int64(0), g.cached(42, KindVideo))
}

func TestToggleOddEvenParity(t *testing.T) {
	g := newMemGraph()
	e := NewEngine(g)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := e.Toggle(ctx, 5, 9, KindChannel)
		require.NoError(t, err)
	}
	exists, err := e.Exists(ctx, 5, 9, KindChannel)
	require.NoError(t, err)
	assert.True(t, exists, "odd number of toggles leaves the edge present")

	_, err = e.Toggle(ctx, 5, 9, KindChannel)
	require.NoError(t, err)
	exists, _ = e.Exists(ctx, 5, 9, KindChannel)
	assert.False(t, exists, "even number of toggles leaves no edge")
}

func TestToggleKindsAreIndependent(t *testing.T) {
	g := newMemGraph()
	e := NewEngine(g)
	ctx := context.Background()

	_, err := e.Toggle(ctx, 1, 7, KindVideo)
	require.NoError(t, err)
	_, err = e.Toggle(ctx, 1, 7, KindComment)
	require.NoError(t, err)

	vExists, _ := e.Exists(ctx, 1, 7, KindVideo)
	cExists, _ := e.Exists(ctx, 1, 7, KindComment)
	assert.True(t, vExists)
	assert.True(t, cExists)

	_, err = e.Toggle(ctx, 1, 7, KindVideo)
	require.NoError(t, err)
	vExists, _ = e.Exists(ctx, 1, 7, KindVideo)
	cExists, _ = e.Exists(ctx, 1, 7, KindComment)
	assert.False(t, vExists)
	assert.True(t, cExists, "toggling one kind must not touch the other")
}

func TestCountMatchesCacheAfterManyActors(t *testing.T) {
	g := newMemGraph()
	e := NewEngine(g)
	ctx := context.Background()

	for actor := uint(1); actor <= 10; actor++ {
		_, err := e.Toggle(ctx, actor, 99, KindTweet)
		require.NoError(t, err)
	}
	// three unsubscribe again
	for actor := uint(1); actor <= 3; actor++ {
		_, err := e.Toggle(ctx, actor, 99, KindTweet)
		require.NoError(t, err)
	}

	n, err := e.Count(ctx, 99, KindTweet)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, n, g.cached(99, KindTweet))
}

func TestConcurrentTogglesWithLocking(t *testing.T) {
	g := newMemGraph()
	e := NewEngine(g, WithLocking())
	ctx := context.Background()

	const rounds = 100
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.Toggle(ctx, 1, 5, KindVideo)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// even toggle count: edge absent, cache back to zero
	exists, err := e.Exists(ctx, 1, 5, KindVideo)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, int64(0), g.cached(5, KindVideo))
}

func TestRepairFixesDriftedCache(t *testing.T) {
	g := newMemGraph()
	e := NewEngine(g)
	ctx := context.Background()

	_, err := e.Toggle(ctx, 1, 8, KindChannel)
	require.NoError(t, err)
	_, err = e.Toggle(ctx, 2, 8, KindChannel)
	require.NoError(t, err)

	// simulate a partial failure that left the cache behind
	g.mu.Lock()
	g.cache[cacheKey(8, KindChannel)] = 17
	g.mu.Unlock()

	require.NoError(t, e.Repair(ctx, 8, KindChannel))
	assert.Equal(t, int64(2), g.cached(8, KindChannel))
}
