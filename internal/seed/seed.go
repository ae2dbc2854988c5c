// Package seed loads the curated contract_labels table: human-readable
// names for the small set of well-known Base contracts (wrapped native
// asset, major stablecoins, DEX factories and singletons) that the
// stats CLI and any downstream consumer want resolved without a manual
// lookup. Seeding is idempotent (PutContractLabel upserts), so it runs
// unconditionally at every `ingest` startup.
package seed

import (
	"context"
	"fmt"

	"github.com/base-indexer/baseindexer/internal/store"
)

// Store is the subset of *store.Gateway the seeder needs.
type Store interface {
	PutContractLabel(ctx context.Context, label store.ContractLabel) error
}

// knownLabels is the curated set of well-known Base mainnet contracts.
// Addresses are lowercase, matching the normalization the rest of the
// pipeline applies before persisting.
var knownLabels = []store.ContractLabel{
	{Address: "0x4200000000000000000000000000000000000006", Name: "WETH", Category: "token", Protocol: "native-wrapper"},
	{Address: "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", Name: "USDC", Category: "token", Protocol: "circle"},
	{Address: "0xd9aaec86b65d86f6a7b5b1b0c42ffa531710b6ca", Name: "USDbC", Category: "token", Protocol: "circle-bridged"},
	{Address: "0x50c5725949a6f0c72e6c4a641f24049a917db0cb", Name: "DAI", Category: "token", Protocol: "makerdao"},
	{Address: "0x2ae3f1ec7f1f5012cfeab0185bfc7aa3cf0dec22", Name: "cbETH", Category: "token", Protocol: "coinbase"},
	{Address: "0x8909dc15e40173ff4699343b6eb8132c65e18ec6", Name: "Uniswap V2 Factory", Category: "dex-factory", Protocol: "uniswap"},
	{Address: "0x33128a8fc17869897dce68ed026d694621f6fdfd", Name: "Uniswap V3 Factory", Category: "dex-factory", Protocol: "uniswap"},
	{Address: "0x420dd381b31aef6683db6b902084cb0ffece40da", Name: "Aerodrome Factory", Category: "dex-factory", Protocol: "aerodrome"},
	{Address: "0x498581ff718922c3f8e6a244956af099b2652b2b", Name: "Uniswap V4 PoolManager", Category: "dex-singleton", Protocol: "uniswap"},
	{Address: "0x6e53131f68a034873b6bfa15502af094ef0c5854", Name: "Curve stableswap-ng pool", Category: "dex-pool", Protocol: "curve"},
}

// Run upserts every curated label. It attempts all rows even if one
// fails, returning the first error encountered.
func Run(ctx context.Context, st Store) error {
	var firstErr error
	for _, label := range knownLabels {
		if err := st.PutContractLabel(ctx, label); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("seed: labeling %s: %w", label.Address, err)
		}
	}
	return firstErr
}
