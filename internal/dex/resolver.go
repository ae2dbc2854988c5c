// Package dex resolves a pool contract address to a DEX family name
// (SPEC_FULL.md §4.4). Resolution order: hard-coded singletons, a
// curated Curve address set, an in-memory LRU, the durable store-backed
// cache, and finally an on-chain factory() probe with a signature-based
// fallback. The synchronous Lookup path never performs I/O; a miss is
// reported to the caller, who may choose to Queue an async probe.
package dex

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/base-indexer/baseindexer/internal/sigs"
)

// Store is the durable pool_dex_cache persistence the resolver reads
// from and writes to. Implemented by internal/store.Gateway.
type Store interface {
	GetPoolDex(ctx context.Context, pool string) (name string, ok bool, err error)
	PutPoolDex(ctx context.Context, pool, name, factory string) error
}

// Factory is the read-only on-chain probe used when every cache layer
// misses. Implemented by internal/rpc.Client.
type Factory interface {
	FactoryOf(ctx context.Context, pool string) (factory string, ok bool, err error)
}

// singletons is the small hard-coded table of known non-factory pool
// singletons (e.g. Uniswap V4's PoolManager is one address routing all
// pools, so it never goes through a per-pool factory lookup).
var singletons = map[string]string{
	"0x498581ff718922c3f8e6a244956af099b2652b2b": "Uniswap V4",
}

// curvePools is the curated set of known Curve pool addresses that
// resolve directly without a factory probe (Curve's factory topology
// varies by pool type and is not worth probing for a small known set).
var curvePools = map[string]struct{}{
	"0x6e53131f68a034873b6bfa15502af094ef0c5854": {},
}

// FactoryToDex maps a known factory contract address to the DEX family
// it deploys pools for.
var FactoryToDex = map[string]string{
	"0x8909dc15e40173ff4699343b6eb8132c65e18ec6": "Uniswap V2",
	"0x33128a8fc17869897dce68ed026d694621f6fdfd": "Uniswap V3",
	"0x420dd381b31aef6683db6b902084cb0ffece40da": "Aerodrome V2",
	"0x5e7bb104d84c7cb9b682aac2f3d509f5f406809a": "Aerodrome CL",
	"0xfda619b6d20975be80a10332cd39b9a4b0faa8bb": "SushiSwap V2",
	"0xc35dadb65012ec5796536bd9864ed8773abc74c4": "SushiSwap V3",
	"0xfda619b6d20975be80a10332cd39b9a4b0fab399": "BaseSwap",
	"0x41ff9aa7e16b8b1a8a8dc4f0efacd93d02d071c9": "PancakeSwap V3",
}

// Resolver implements the five-step resolution order.
type Resolver struct {
	store   Store
	factory Factory
	log     *logrus.Entry

	cache *lru.Cache[string, string]

	pendingMu sync.Mutex
	pending   map[string]struct{}
}

// New constructs a Resolver. cacheSize bounds the in-memory LRU layer;
// the durable store has no such bound.
func New(store Store, factory Factory, log *logrus.Entry, cacheSize int) (*Resolver, error) {
	c, err := lru.New[string, string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("dex: building lru cache: %w", err)
	}
	return &Resolver{
		store:   store,
		factory: factory,
		log:     log,
		cache:   c,
		pending: make(map[string]struct{}),
	}, nil
}

// Lookup is the hot-path, synchronous, I/O-free resolution used by the
// block enricher. It never blocks on RPC; a miss here is the caller's
// signal to call Queue for an async probe and use a signature-based
// fallback name in the meantime.
func (r *Resolver) Lookup(pool string) (name string, ok bool) {
	pool = strings.ToLower(pool)

	if name, ok := singletons[pool]; ok {
		return name, true
	}
	if _, ok := curvePools[pool]; ok {
		return "Curve", true
	}
	if name, ok := r.cache.Get(pool); ok {
		return name, true
	}
	return "", false
}

// FallbackName implements the signature-based fallback of SPEC_FULL.md
// §4.4 step 5 for when a pool has no factory() method at all.
func FallbackName(topic0Kind sigs.Kind) string {
	switch topic0Kind {
	case sigs.KindSwapCurve:
		return "Curve"
	case sigs.KindSwapCL:
		return "Aerodrome CL"
	default:
		return "Unknown DEX"
	}
}

// WarmFromStore loads the entire durable pool_dex_cache into the
// in-memory LRU once at startup (the "lazy-loaded once from the store"
// behavior of SPEC_FULL.md §4.4 step 3). Lookup itself never reads the
// durable store; a pool not loaded here is found there only through
// LookupDurable.
func (r *Resolver) WarmFromStore(ctx context.Context, entries map[string]string) {
	for pool, name := range entries {
		r.cache.Add(strings.ToLower(pool), name)
	}
}

// LookupDurable consults the durable store cache directly (step 4),
// used when the caller is willing to block briefly on a local store
// read but not on RPC. Neither commitBlock's hot path nor the async
// Queue probe calls it.
func (r *Resolver) LookupDurable(ctx context.Context, pool string) (string, bool, error) {
	pool = strings.ToLower(pool)
	name, ok, err := r.store.GetPoolDex(ctx, pool)
	if err != nil {
		return "", false, err
	}
	if ok {
		r.cache.Add(pool, name)
	}
	return name, ok, nil
}

// Queue launches a fire-and-forget factory probe for pool. Two
// concurrent probes for the same pool collapse into one RPC call via
// the pending-lookups gate; both callers' results converge on the same
// durable write once it completes. The result is available to future
// blocks through Lookup, never to the block that triggered the miss.
func (r *Resolver) Queue(ctx context.Context, pool string, fallbackKind sigs.Kind) {
	pool = strings.ToLower(pool)

	r.pendingMu.Lock()
	if _, inFlight := r.pending[pool]; inFlight {
		r.pendingMu.Unlock()
		return
	}
	r.pending[pool] = struct{}{}
	r.pendingMu.Unlock()

	go func() {
		defer func() {
			r.pendingMu.Lock()
			delete(r.pending, pool)
			r.pendingMu.Unlock()
		}()
		r.probe(ctx, pool, fallbackKind)
	}()
}

func (r *Resolver) probe(ctx context.Context, pool string, fallbackKind sigs.Kind) {
	factoryAddr, ok, err := r.factory.FactoryOf(ctx, pool)
	if err != nil {
		r.log.WithError(err).WithField("pool", pool).Warn("dex: factory probe failed")
		return
	}

	var name string
	if !ok {
		name = FallbackName(fallbackKind)
	} else {
		factoryAddr = strings.ToLower(factoryAddr)
		dex, known := FactoryToDex[factoryAddr]
		if known {
			name = dex
		} else {
			name = fmt.Sprintf("Unknown(%s)", shortPrefix(factoryAddr))
		}
	}

	if err := r.store.PutPoolDex(ctx, pool, name, factoryAddr); err != nil {
		r.log.WithError(err).WithField("pool", pool).Warn("dex: persisting resolved pool failed")
		return
	}
	r.cache.Add(pool, name)
}

func shortPrefix(addr string) string {
	addr = strings.TrimPrefix(addr, "0x")
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8]
}
