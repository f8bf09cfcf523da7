// Package managetoken signs the links embedded in digest emails that
// let a subscriber pause or cancel without an account.
package managetoken

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("manage token expired")
	ErrTokenInvalid = errors.New("manage token invalid")
)

type Claims struct {
	SubscriptionID uuid.UUID `json:"subscription_id"`
	jwtlib.RegisteredClaims
}

type Service interface {
	Generate(subscriptionID uuid.UUID) (string, error)
	Validate(tokenString string) (uuid.UUID, error)
}

type HMACService struct {
	secret    []byte
	expiresIn time.Duration
	now       func() time.Time
}

func NewHMACService(secret string, expiresIn time.Duration) *HMACService {
	return &HMACService{secret: []byte(secret), expiresIn: expiresIn, now: time.Now}
}

func (s *HMACService) Generate(subscriptionID uuid.UUID) (string, error) {
	if len(s.secret) == 0 || s.expiresIn <= 0 {
		return "", ErrTokenInvalid
	}
	now := s.now().UTC()
	c := Claims{
		SubscriptionID: subscriptionID,
		RegisteredClaims: jwtlib.RegisteredClaims{
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.expiresIn)),
			Subject:   subscriptionID.String(),
		},
	}
	t := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, c)
	return t.SignedString(s.secret)
}

func (s *HMACService) Validate(tokenString string) (uuid.UUID, error) {
	p := jwtlib.NewParser(jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}))

	var c Claims
	tok, err := p.ParseWithClaims(tokenString, &c, func(token *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return uuid.Nil, ErrTokenExpired
		}
		return uuid.Nil, ErrTokenInvalid
	}
	if tok == nil || !tok.Valid || c.SubscriptionID == uuid.Nil {
		return uuid.Nil, ErrTokenInvalid
	}
	return c.SubscriptionID, nil
}
