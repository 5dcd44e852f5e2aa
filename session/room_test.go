package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoomJoinReportsReadyOnceFull(t *testing.T) {
	r := NewRoom("r1", 2)
	ready, err := r.Join("a")
	require.NoError(t, err)
	require.False(t, ready)

	ready, err = r.Join("b")
	require.NoError(t, err)
	require.True(t, ready)
}

func TestRoomJoinRejectsDuplicatePlayer(t *testing.T) {
	r := NewRoom("r1", 2)
	_, err := r.Join("a")
	require.NoError(t, err)

	_, err = r.Join("a")
	require.Error(t, err)
}

func TestRoomJoinRejectsOverflow(t *testing.T) {
	r := NewRoom("r1", 1)
	_, err := r.Join("a")
	require.NoError(t, err)

	_, err = r.Join("b")
	require.Error(t, err)
}

func TestRoomPromoteRequiresFullRoster(t *testing.T) {
	r := NewRoom("r1", 2)
	_, err := r.Join("a")
	require.NoError(t, err)

	_, err = r.Promote()
	require.Error(t, err, "promoting before the room fills should fail")
}

func TestRoomPromoteReturnsRosterAndLocksFurtherJoins(t *testing.T) {
	r := NewRoom("r1", 2)
	_, _ = r.Join("a")
	_, _ = r.Join("b")

	roster, err := r.Promote()
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, roster)

	_, err = r.Join("c")
	require.Error(t, err, "a started room no longer accepts joins")

	_, err = r.Promote()
	require.Error(t, err, "a room cannot be promoted twice")
}
