package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/repository/memory"
)

var nop = zerolog.Nop()

func newMetrics() *metrics.Metrics {
	return metrics.New(prometheus.NewRegistry())
}

func seedClass(t *testing.T, store *memory.Store, status model.ClassStatus, seats int) *model.Class {
	t.Helper()
	c := &model.Class{
		Name:            "Watercolor Basics",
		Image:           "https://img.example.com/watercolor.png",
		InstructorName:  "Ivy",
		InstructorEmail: "ivy@example.com",
		Status:          status,
		Price:           49.99,
		AvailableSeats:  seats,
	}
	require.NoError(t, store.Classes().Create(context.Background(), c))
	return c
}

func seedCartItem(t *testing.T, store *memory.Store, email string, class *model.Class) *model.CartItem {
	t.Helper()
	it := &model.CartItem{Email: email, ClassID: class.ID}
	require.NoError(t, store.Carts().Create(context.Background(), it))
	return it
}

// fakeCache records cache traffic in memory and honours generations the
// way the Redis cache does.
type fakeCache struct {
	mu            sync.Mutex
	listings      map[string][]model.Class
	generation    int64
	staleWrites   int
	invalidations int
	refreshes     int
	getErr        error
}

func newFakeCache() *fakeCache {
	return &fakeCache{listings: make(map[string][]model.Class)}
}

func (f *fakeCache) GetListing(_ context.Context, name string) ([]model.Class, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	classes, ok := f.listings[name]
	return classes, ok, nil
}

func (f *fakeCache) Generation(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generation, nil
}

func (f *fakeCache) StoreListing(_ context.Context, name string, gen int64, classes []model.Class) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		f.staleWrites++
		return false, nil
	}
	f.listings[name] = classes
	return true, nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.listings = make(map[string][]model.Class)
	f.invalidations++
	return nil
}

func (f *fakeCache) RequestRefresh(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}
