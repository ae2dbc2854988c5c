package dex

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/base-indexer/baseindexer/internal/sigs"
)

type fakeStore struct {
	mu      sync.Mutex
	entries map[string]string
	puts    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: make(map[string]string)}
}

func (f *fakeStore) GetPoolDex(ctx context.Context, pool string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name, ok := f.entries[pool]
	return name, ok, nil
}

func (f *fakeStore) PutPoolDex(ctx context.Context, pool, name, factory string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[pool] = name
	f.puts++
	return nil
}

type fakeFactory struct {
	mu         sync.Mutex
	calls      int
	factory    string
	hasFactory bool
	callGate   chan struct{}
}

func (f *fakeFactory) FactoryOf(ctx context.Context, pool string) (string, bool, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.callGate != nil {
		<-f.callGate
	}
	return f.factory, f.hasFactory, nil
}

func TestLookupMissThenQueuePopulatesCache(t *testing.T) {
	store := newFakeStore()
	factory := &fakeFactory{factory: "0x33128a8fc17869897dce68ed026d694621f6fdfd", hasFactory: true}
	log := logrus.New().WithField("test", "dex")

	r, err := New(store, factory, log, 128)
	require.NoError(t, err)

	pool := "0xAAAA000000000000000000000000000000000A"
	_, ok := r.Lookup(pool)
	require.False(t, ok, "unresolved pool should miss on first lookup")

	r.Queue(context.Background(), pool, sigs.KindSwapV3)

	require.Eventually(t, func() bool {
		name, ok := r.Lookup(pool)
		return ok && name == "Uniswap V3"
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, 1, factory.calls)
	require.Equal(t, 1, store.puts)
}

func TestQueueDedupesConcurrentProbes(t *testing.T) {
	store := newFakeStore()
	gate := make(chan struct{})
	factory := &fakeFactory{factory: "0x8909dc15e40173ff4699343b6eb8132c65e18ec6", hasFactory: true, callGate: gate}
	log := logrus.New().WithField("test", "dex")

	r, err := New(store, factory, log, 128)
	require.NoError(t, err)

	pool := "0xBBBB000000000000000000000000000000000B"
	r.Queue(context.Background(), pool, sigs.KindSwapV2)
	r.Queue(context.Background(), pool, sigs.KindSwapV2) // should be a no-op, already in flight

	close(gate)

	require.Eventually(t, func() bool {
		name, ok := r.Lookup(pool)
		return ok && name == "Uniswap V2"
	}, time.Second, 5*time.Millisecond)

	require.Equal(t, 1, factory.calls, "two concurrent queues for the same pool must dedupe into one RPC call")
}

func TestSingletonsAndCuratedCurveResolveWithoutIO(t *testing.T) {
	store := newFakeStore()
	factory := &fakeFactory{}
	log := logrus.New().WithField("test", "dex")

	r, err := New(store, factory, log, 8)
	require.NoError(t, err)

	name, ok := r.Lookup("0x498581fF718922c3f8e6A244956aF099B2652b2b")
	require.True(t, ok)
	require.Equal(t, "Uniswap V4", name)

	name, ok = r.Lookup("0x6E53131F68a034873b6bFA15502aF094Ef0C5854")
	require.True(t, ok)
	require.Equal(t, "Curve", name)

	require.Equal(t, 0, factory.calls, "singleton/curated resolution must not touch RPC")
}

func TestFallbackNameBySignature(t *testing.T) {
	require.Equal(t, "Curve", FallbackName(sigs.KindSwapCurve))
	require.Equal(t, "Aerodrome CL", FallbackName(sigs.KindSwapCL))
	require.Equal(t, "Unknown DEX", FallbackName(sigs.KindSwapV3))
}
