package tiles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestID136RoundTrip(t *testing.T) {
	for ty := Type(0); ty < NumTypes; ty++ {
		for id := 0; id < 4; id++ {
			tile := Tile{Type: ty, ID: id}
			got := FromID136(tile.ID136())
			require.Equal(t, tile, got)
		}
	}
}

func TestDeterministicBuilderIsReproducible(t *testing.T) {
	w1 := DeterministicBuilder{}.BuildWall(42)
	w2 := DeterministicBuilder{}.BuildWall(42)

	for i := 0; i < 20; i++ {
		t1, ok1 := w1.Draw()
		t2, ok2 := w2.Draw()
		require.Equal(t, ok1, ok2)
		require.Equal(t, t1, t2)
	}
}

func TestWallDeadWallSplit(t *testing.T) {
	w := DeterministicBuilder{}.BuildWall(7)
	require.Equal(t, NumTiles-14, w.Remaining())

	seen := map[int]bool{}
	count := 0
	for {
		tile, ok := w.Draw()
		if !ok {
			break
		}
		require.False(t, seen[tile.ID136()], "tile drawn twice")
		seen[tile.ID136()] = true
		count++
	}
	require.Equal(t, NumTiles-14, count)
	require.Equal(t, 0, w.Remaining())

	for i := 0; i < 4; i++ {
		_, ok := w.DrawReplacement()
		require.True(t, ok)
	}
	_, ok := w.DrawReplacement()
	require.False(t, ok, "only 4 replacement tiles exist")

	for i := 0; i < 5; i++ {
		_, ok := w.RevealDoraIndicator()
		require.True(t, ok)
	}
	_, ok = w.RevealDoraIndicator()
	require.False(t, ok, "only 5 dora indicators exist")
}

func TestWallCloneIsIndependent(t *testing.T) {
	w := DeterministicBuilder{}.BuildWall(1)
	clone := w.Clone()

	_, _ = w.Draw()
	require.NotEqual(t, w.Remaining(), clone.Remaining())
}
