// Package ticket implements the admission-ticket verifier and the
// server-internal reconnection session token (spec §6). The two use
// different wire formats, so two different libraries are wired: the
// admission ticket is base64url(payload).base64url(sig) -- two
// segments, not the three-segment header.payload.signature a JWT
// requires -- so it's verified with crypto/hmac directly, matching the
// shape exercised by
// original_source/backend/game/tests/helpers/auth.py. The session
// token, minted only after admission, is a normal three-segment JWT via
// golang-jwt/jwt/v5 (grounded on common/jwts), since nothing about it
// needs the compact two-segment shape.
package ticket

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strings"
)

var ErrInvalidTicket = errors.New("invalid admission ticket")

// HMACVerifier implements ports.TicketVerifier.
type HMACVerifier struct {
	secret []byte
}

func NewHMACVerifier(secret string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret)}
}

// Issue mints a ticket for userID: base64url(userID).base64url(hmac).
func (v *HMACVerifier) Issue(userID string) string {
	payload := base64.RawURLEncoding.EncodeToString([]byte(userID))
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return payload + "." + sig
}

// Verify checks the ticket's signature and returns the embedded userID.
func (v *HMACVerifier) Verify(ticket string) (string, error) {
	parts := strings.SplitN(ticket, ".", 2)
	if len(parts) != 2 {
		return "", ErrInvalidTicket
	}
	payload, sigB64 := parts[0], parts[1]
	sig, err := base64.RawURLEncoding.DecodeString(sigB64)
	if err != nil {
		return "", ErrInvalidTicket
	}
	mac := hmac.New(sha256.New, v.secret)
	mac.Write([]byte(payload))
	expected := mac.Sum(nil)
	if subtle.ConstantTimeCompare(expected, sig) != 1 {
		return "", ErrInvalidTicket
	}
	userIDBytes, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", ErrInvalidTicket
	}
	return string(userIDBytes), nil
}
