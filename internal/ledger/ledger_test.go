package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swingTraderBot/internal/domain"
	"swingTraderBot/internal/ports"
)

// mockStore implements ports.PositionStore in memory.
type mockStore struct {
	mu        sync.Mutex
	positions map[string]*domain.Position
	insertErr error
	deleteErr error
	loadErr   error
}

func newMockStore() *mockStore {
	return &mockStore{positions: make(map[string]*domain.Position)}
}

func (m *mockStore) Insert(ctx context.Context, pos *domain.Position) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *pos
	m.positions[pos.Symbol] = &cp
	return nil
}

func (m *mockStore) Delete(ctx context.Context, symbol string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.positions, symbol)
	return nil
}

func (m *mockStore) LoadAll(ctx context.Context) ([]*domain.Position, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	out := make([]*domain.Position, 0, len(m.positions))
	for _, pos := range m.positions {
		cp := *pos
		out = append(out, &cp)
	}
	return out, nil
}

type noopLogger struct{}

func (noopLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (noopLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (noopLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func newTestLedger(t *testing.T, store ports.PositionStore, cap int) *Ledger {
	t.Helper()
	l, err := New(store, noopLogger{}, cap)
	require.NoError(t, err)
	require.NoError(t, l.Load(context.Background()))
	return l
}

func TestLedger_OpenAndClose(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, newMockStore(), 10)

	entryTime := time.Now()
	require.NoError(t, l.Open(ctx, "SBER", 250.5, 4, entryTime, 245.0, 260.0))

	assert.True(t, l.HasPosition("SBER"))
	assert.Equal(t, 1, l.Count())

	pos, ok := l.Get("SBER")
	require.True(t, ok)
	assert.Equal(t, 250.5, pos.EntryPrice)
	assert.Equal(t, 4, pos.Quantity)

	closed, err := l.Close(ctx, "SBER")
	require.NoError(t, err)
	assert.Equal(t, 250.5, closed.EntryPrice)
	assert.False(t, l.HasPosition("SBER"))
	assert.Equal(t, 0, l.Count())
}

func TestLedger_DuplicateOpen(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, newMockStore(), 10)

	require.NoError(t, l.Open(ctx, "GAZP", 150.0, 2, time.Now(), 148.0, 153.0))
	err := l.Open(ctx, "GAZP", 151.0, 1, time.Now(), 149.0, 154.0)
	assert.ErrorIs(t, err, ports.ErrDuplicatePosition)
	assert.Equal(t, 1, l.Count())
}

func TestLedger_CapacityExceeded(t *testing.T) {
	ctx := context.Background()
	l := newTestLedger(t, newMockStore(), 2)

	require.NoError(t, l.Open(ctx, "SBER", 250.0, 1, time.Now(), 245.0, 260.0))
	require.NoError(t, l.Open(ctx, "GAZP", 150.0, 1, time.Now(), 148.0, 153.0))
	assert.False(t, l.UnderCapacity())

	err := l.Open(ctx, "LKOH", 7000.0, 1, time.Now(), 6900.0, 7150.0)
	assert.ErrorIs(t, err, ports.ErrCapacityExceeded)
	assert.Equal(t, 2, l.Count())
}

func TestLedger_CloseMissing(t *testing.T) {
	l := newTestLedger(t, newMockStore(), 10)
	_, err := l.Close(context.Background(), "SBER")
	assert.ErrorIs(t, err, ports.ErrNoSuchPosition)
}

func TestLedger_StoreFailureLeavesMemoryUntouched(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	l := newTestLedger(t, store, 10)

	store.insertErr = errors.New("disk full")
	err := l.Open(ctx, "SBER", 250.0, 1, time.Now(), 245.0, 260.0)
	require.Error(t, err)
	assert.False(t, l.HasPosition("SBER"))
	assert.Equal(t, 0, l.Count())

	store.insertErr = nil
	require.NoError(t, l.Open(ctx, "SBER", 250.0, 1, time.Now(), 245.0, 260.0))

	store.deleteErr = errors.New("disk full")
	_, err = l.Close(ctx, "SBER")
	require.Error(t, err)
	assert.True(t, l.HasPosition("SBER"), "failed delete must not remove the position")
}

func TestLedger_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newMockStore()
	l := newTestLedger(t, store, 10)

	entryTime := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, l.Open(ctx, "SBER", 250.5, 4, entryTime, 245.0, 260.0))
	require.NoError(t, l.Open(ctx, "GAZP", 150.0, 2, entryTime, 148.0, 153.0))

	// A fresh ledger loaded from the same store reproduces the positions
	reloaded := newTestLedger(t, store, 10)
	assert.Equal(t, 2, reloaded.Count())
	for _, symbol := range []string{"SBER", "GAZP"} {
		orig, ok := l.Get(symbol)
		require.True(t, ok)
		got, ok := reloaded.Get(symbol)
		require.True(t, ok)
		assert.Equal(t, orig, got)
	}
}

func TestLedger_LoadRejectsBrokenSnapshots(t *testing.T) {
	store := newMockStore()
	store.loadErr = errors.New("malformed row")
	l, err := New(store, noopLogger{}, 10)
	require.NoError(t, err)
	assert.ErrorIs(t, l.Load(context.Background()), ports.ErrStoreCorrupted)

	// Over-capacity snapshot
	over := newMockStore()
	for i := 0; i < 3; i++ {
		sym := fmt.Sprintf("S%d", i)
		over.positions[sym] = &domain.Position{Symbol: sym, EntryPrice: 100, Quantity: 1}
	}
	l2, err := New(over, noopLogger{}, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, l2.Load(context.Background()), ports.ErrStoreCorrupted)
}

func TestLedger_ConcurrentOpensRespectInvariants(t *testing.T) {
	ctx := context.Background()
	const cap = 5
	l := newTestLedger(t, newMockStore(), cap)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sym := fmt.Sprintf("SYM%d", i%8) // deliberate duplicates
			_ = l.Open(ctx, sym, 100.0, 1, time.Now(), 98.0, 103.0)
		}(i)
	}
	wg.Wait()

	assert.LessOrEqual(t, l.Count(), cap)
	// No duplicate positions survived
	seen := 0
	for i := 0; i < 8; i++ {
		if l.HasPosition(fmt.Sprintf("SYM%d", i)) {
			seen++
		}
	}
	assert.Equal(t, l.Count(), seen)
}
