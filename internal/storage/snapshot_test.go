package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paper_trader/internal/models"
)

func testSnapshot() models.Snapshot {
	profit := 1000.0
	return models.Snapshot{
		Portfolio: models.SnapshotPortfolio{
			Cash:        95000,
			TotalValue:  100500,
			TotalReturn: 0.5,
			Positions: map[string]models.SnapshotPosition{
				"X": {Quantity: 100, BuyPrice: 50, CurrentPrice: 55, PnL: 500},
			},
		},
		Trades: []models.SnapshotTrade{
			{Timestamp: "2025-06-02T16:30:00Z", Symbol: "X", Action: models.ActionSell, Quantity: 100, Price: 60, Profit: &profit},
			{Timestamp: "2025-06-02T15:30:00Z", Symbol: "X", Action: models.ActionBuy, Quantity: 100, Price: 50},
		},
		Timestamp: "2025-06-02T17:00:00Z",
	}
}

func TestSnapshotStoreSaveLoad(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	snaps := NewSnapshotStore(store, "")
	ctx := context.Background()

	assert.Equal(t, DefaultSnapshotKey, snaps.Key())

	want := testSnapshot()
	require.NoError(t, snaps.Save(ctx, want))

	got, err := snaps.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want, *got)
}

func TestSnapshotStoreLoadAbsent(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	snaps := NewSnapshotStore(store, "custom/key.json")

	got, err := snaps.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSnapshotStoreLastWriterWins(t *testing.T) {
	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	snaps := NewSnapshotStore(store, "")
	ctx := context.Background()

	first := testSnapshot()
	require.NoError(t, snaps.Save(ctx, first))

	second := testSnapshot()
	second.Portfolio.Cash = 90000
	second.Timestamp = "2025-06-03T17:00:00Z"
	require.NoError(t, snaps.Save(ctx, second))

	got, err := snaps.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, second, *got)
}
