package ticket

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is carried by the reconnection token handed to a client
// after the admission ticket is consumed, grounded on
// common/jwts's CustomClaims.
type SessionClaims struct {
	UserID string `json:"uid"`
	GameID string `json:"gid"`
	Seat   int    `json:"seat"`
	jwt.RegisteredClaims
}

type SessionSigner struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionSigner(secret string, ttl time.Duration) *SessionSigner {
	return &SessionSigner{secret: []byte(secret), ttl: ttl}
}

func (s *SessionSigner) Issue(userID, gameID string, seat int) (string, error) {
	claims := SessionClaims{
		UserID: userID,
		GameID: gameID,
		Seat:   seat,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *SessionSigner) Parse(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	_, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}
