package jwt

import (
	"errors"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// Service validates bearer tokens issued by the external auth system
// (shared HMAC secret). This service never manages accounts; it only
// needs the actor uid for audit attribution.
type Service struct {
	secret []byte
	ttl    time.Duration
}

type Claims struct {
	UID  string `json:"uid"`
	Name string `json:"name,omitempty"`
	jwtlib.RegisteredClaims
}

func New(secret string, ttl time.Duration) *Service {
	return &Service{
		secret: []byte(secret),
		ttl:    ttl,
	}
}

// GenerateToken mints a token for an actor. Used by tooling and tests;
// production tokens come from the auth collaborator.
func (s *Service) GenerateToken(uid, name string) (string, error) {
	claims := Claims{
		UID:  uid,
		Name: name,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(time.Now()),
		},
	}

	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Service) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UID == "" {
		return nil, errors.New("invalid claims")
	}
	return claims, nil
}
