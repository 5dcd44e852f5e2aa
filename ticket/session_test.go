package ticket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionSignerIssueParseRoundTrip(t *testing.T) {
	s := NewSessionSigner("session-secret", time.Hour)
	tok, err := s.Issue("user-7", "game-9", 2)
	require.NoError(t, err)

	claims, err := s.Parse(tok)
	require.NoError(t, err)
	require.Equal(t, "user-7", claims.UserID)
	require.Equal(t, "game-9", claims.GameID)
	require.Equal(t, 2, claims.Seat)
}

func TestSessionSignerRejectsExpiredToken(t *testing.T) {
	s := NewSessionSigner("session-secret", -time.Second)
	tok, err := s.Issue("user-7", "game-9", 2)
	require.NoError(t, err)

	_, err = s.Parse(tok)
	require.Error(t, err)
}

func TestSessionSignerRejectsWrongSecret(t *testing.T) {
	issuer := NewSessionSigner("secret-a", time.Hour)
	verifier := NewSessionSigner("secret-b", time.Hour)
	tok, err := issuer.Issue("user-7", "game-9", 2)
	require.NoError(t, err)

	_, err = verifier.Parse(tok)
	require.Error(t, err)
}
