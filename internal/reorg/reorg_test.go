package reorg

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/base-indexer/baseindexer/internal/rpc"
	"github.com/base-indexer/baseindexer/internal/store"
)

type fakeStore struct {
	blocks           map[uint64]store.BlockRecord
	markReorgedFrom  *uint64
	rewindFrom       *uint64
	setCheckpointTo  *uint64
}

func (f *fakeStore) BlockByNumber(ctx context.Context, number uint64) (store.BlockRecord, bool, error) {
	rec, ok := f.blocks[number]
	return rec, ok, nil
}

func (f *fakeStore) MarkReorged(ctx context.Context, from uint64) error {
	f.markReorgedFrom = &from
	return nil
}

func (f *fakeStore) Rewind(ctx context.Context, from uint64) error {
	f.rewindFrom = &from
	return nil
}

func (f *fakeStore) SetCheckpoint(ctx context.Context, number uint64) error {
	f.setCheckpointTo = &number
	return nil
}

type fakeFetcher struct {
	blocks map[uint64]rpc.Block
}

func (f *fakeFetcher) BlockWithTxs(ctx context.Context, number uint64) (rpc.Block, error) {
	return f.blocks[number], nil
}

func testLog() *logrus.Entry {
	return logrus.New().WithField("test", "reorg")
}

func TestResolveProceedsWhenNoStoredPredecessor(t *testing.T) {
	s := &fakeStore{blocks: map[uint64]store.BlockRecord{}}
	f := &fakeFetcher{blocks: map[uint64]rpc.Block{}}
	c := New(s, f, testLog(), 10)

	got, err := c.Resolve(context.Background(), 98)
	require.NoError(t, err)
	require.Equal(t, uint64(98), got)
	require.Nil(t, s.rewindFrom)
}

func TestResolveProceedsWhenParentHashMatches(t *testing.T) {
	s := &fakeStore{blocks: map[uint64]store.BlockRecord{
		99: {Number: 99, Hash: "0xAA"},
	}}
	f := &fakeFetcher{blocks: map[uint64]rpc.Block{
		100: {Number: 100, ParentHash: "0xAA"},
	}}
	c := New(s, f, testLog(), 10)

	got, err := c.Resolve(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), got)
	require.Nil(t, s.rewindFrom)
}

func TestResolveRewindsOnParentHashMismatch(t *testing.T) {
	s := &fakeStore{blocks: map[uint64]store.BlockRecord{
		100: {Number: 100, Hash: "0xAA"},
	}}
	f := &fakeFetcher{blocks: map[uint64]rpc.Block{
		101: {Number: 101, ParentHash: "0xBB"},
	}}
	c := New(s, f, testLog(), 10)

	got, err := c.Resolve(context.Background(), 101)
	require.NoError(t, err)
	require.Equal(t, uint64(91), got)
	require.NotNil(t, s.markReorgedFrom)
	require.Equal(t, uint64(91), *s.markReorgedFrom)
	require.NotNil(t, s.rewindFrom)
	require.Equal(t, uint64(91), *s.rewindFrom)
	require.NotNil(t, s.setCheckpointTo)
	require.Equal(t, uint64(90), *s.setCheckpointTo)
}

func TestResolveRewindClampsAtZeroNearChainStart(t *testing.T) {
	s := &fakeStore{blocks: map[uint64]store.BlockRecord{
		4: {Number: 4, Hash: "0xAA"},
	}}
	f := &fakeFetcher{blocks: map[uint64]rpc.Block{
		5: {Number: 5, ParentHash: "0xBB"},
	}}
	c := New(s, f, testLog(), 10)

	got, err := c.Resolve(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, uint64(0), got)
	require.Equal(t, uint64(0), *s.setCheckpointTo)
}

func TestDetectedErrorFormatsMessage(t *testing.T) {
	err := &DetectedError{FirstReorgBlock: 91, Details: "stored=0xAA remote_parent=0xBB at block 101"}
	require.Contains(t, err.Error(), "91")
	require.Contains(t, err.Error(), "stored=0xAA")
}

func TestResolveSkipsComparisonAgainstAlreadyReorgedPredecessor(t *testing.T) {
	s := &fakeStore{blocks: map[uint64]store.BlockRecord{
		99: {Number: 99, Hash: "0xAA", Reorged: true},
	}}
	f := &fakeFetcher{blocks: map[uint64]rpc.Block{}}
	c := New(s, f, testLog(), 10)

	got, err := c.Resolve(context.Background(), 100)
	require.NoError(t, err)
	require.Equal(t, uint64(100), got)
}
