package ticket

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHMACVerifierIssueVerifyRoundTrip(t *testing.T) {
	v := NewHMACVerifier("top-secret")
	tk := v.Issue("user-42")

	userID, err := v.Verify(tk)
	require.NoError(t, err)
	require.Equal(t, "user-42", userID)
}

func TestHMACVerifierRejectsTamperedPayload(t *testing.T) {
	v := NewHMACVerifier("top-secret")
	tk := v.Issue("user-42")
	parts := strings.SplitN(tk, ".", 2)

	forgedPayload := base64.RawURLEncoding.EncodeToString([]byte("user-43"))
	tampered := forgedPayload + "." + parts[1]
	_, err := v.Verify(tampered)
	require.ErrorIs(t, err, ErrInvalidTicket)
}

func TestHMACVerifierRejectsWrongSecret(t *testing.T) {
	issuer := NewHMACVerifier("secret-a")
	verifier := NewHMACVerifier("secret-b")
	tk := issuer.Issue("user-42")

	_, err := verifier.Verify(tk)
	require.ErrorIs(t, err, ErrInvalidTicket)
}

func TestHMACVerifierRejectsMalformedTicket(t *testing.T) {
	v := NewHMACVerifier("secret")

	_, err := v.Verify("no-dot-here")
	require.ErrorIs(t, err, ErrInvalidTicket)

	_, err = v.Verify("payload.not-base64!!")
	require.ErrorIs(t, err, ErrInvalidTicket)
}
