package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFillSeatsAllHumansCoverAllSeats(t *testing.T) {
	seats, err := FillSeats([]string{"a", "b", "c", "d"}, 1)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, s := range seats {
		require.False(t, s.IsAI)
		seen[s.UserID] = true
	}
	require.Len(t, seen, 4)
}

func TestFillSeatsPartialHumansFillRestWithAI(t *testing.T) {
	seats, err := FillSeats([]string{"a"}, 7)
	require.NoError(t, err)

	humanCount, aiCount := 0, 0
	for _, s := range seats {
		if s.IsAI {
			aiCount++
			require.Empty(t, s.UserID)
			require.NotEmpty(t, s.Name)
		} else {
			humanCount++
			require.Equal(t, "a", s.UserID)
		}
	}
	require.Equal(t, 1, humanCount)
	require.Equal(t, 3, aiCount)
}

func TestFillSeatsIsDeterministicForASeed(t *testing.T) {
	s1, err := FillSeats([]string{"a", "b"}, 99)
	require.NoError(t, err)
	s2, err := FillSeats([]string{"a", "b"}, 99)
	require.NoError(t, err)
	require.Equal(t, s1, s2)
}

func TestFillSeatsRejectsEmptyOrTooManyIDs(t *testing.T) {
	_, err := FillSeats(nil, 1)
	require.Error(t, err)

	_, err = FillSeats([]string{"a", "b", "c", "d", "e"}, 1)
	require.Error(t, err)
}

func TestFillSeatsRejectsDuplicateIDs(t *testing.T) {
	_, err := FillSeats([]string{"a", "a"}, 1)
	require.Error(t, err)
}

func TestFillSeatsRejectsEmptyID(t *testing.T) {
	_, err := FillSeats([]string{"a", ""}, 1)
	require.Error(t, err)
}
