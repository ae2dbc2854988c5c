package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/base-indexer/baseindexer/internal/store"
)

type fakeStore struct {
	labels []store.ContractLabel
}

func (f *fakeStore) PutContractLabel(ctx context.Context, label store.ContractLabel) error {
	f.labels = append(f.labels, label)
	return nil
}

func TestRunUpsertsEveryKnownLabel(t *testing.T) {
	s := &fakeStore{}
	require.NoError(t, Run(context.Background(), s))
	require.Len(t, s.labels, len(knownLabels))

	var sawWETH bool
	for _, l := range s.labels {
		if l.Address == "0x4200000000000000000000000000000000000006" {
			sawWETH = true
			require.Equal(t, "WETH", l.Name)
		}
	}
	require.True(t, sawWETH)
}
