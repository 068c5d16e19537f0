package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// Actor types carried in a token
const (
	ActorCustomer = "customer"
	ActorEmployee = "employee"
	ActorAdmin    = "admin"
)

// Claims represents the JWT claims. Verified mirrors the account's
// verification state at issue time; ledger routes re-check it so a token
// minted before verification cannot move value.
type Claims struct {
	AccountID uint   `json:"account_id"`
	Actor     string `json:"actor"`
	Verified  bool   `json:"verified"`
	jwt.RegisteredClaims
}

// Generate creates a signed access token for an account.
func Generate(accountID uint, actor string, verified bool, secret string, expiryHours int) (string, error) {
	claims := Claims{
		AccountID: accountID,
		Actor:     actor,
		Verified:  verified,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiryHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "fuelpay",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Validate parses and validates an access token and returns its claims.
func Validate(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}
