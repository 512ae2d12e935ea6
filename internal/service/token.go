package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid or expired token")

const TokenTTL = 24 * time.Hour

// TokenService mints and checks the stateless credential. The secret is
// injected at startup; there is no revocation list, a token stays valid
// until its expiry.
type TokenService struct {
	Secret []byte
}

type Identity struct {
	UserID  string
	IsAdmin bool
}

func (t *TokenService) Issue(userID string, isAdmin bool) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(TokenTTL)
	claims := jwt.MapClaims{
		"sub":     userID,
		"isAdmin": isAdmin,
		"iat":     now.Unix(),
		"exp":     exp.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

func (t *TokenService) Verify(raw string) (*Identity, error) {
	token, err := jwt.Parse(raw, func(tk *jwt.Token) (interface{}, error) {
		if _, ok := tk.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signature method: %v", tk.Header["alg"])
		}
		return t.Secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, ErrInvalidToken
	}
	isAdmin, _ := claims["isAdmin"].(bool)

	return &Identity{UserID: sub, IsAdmin: isAdmin}, nil
}
