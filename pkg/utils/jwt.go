package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/maheshrc27/instaflow/internal/transfer"
)

var ErrInvalidServiceToken = errors.New("invalid service token")

// GenerateServiceToken signs a token that carries the service role. Schedulers
// outside the process use it to call the job endpoints.
func GenerateServiceToken(secretKey string, tokenDuration time.Duration) (string, error) {
	claims := transfer.ServiceClaims{
		Role: transfer.ServiceRole,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenDuration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "instaflow",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secretKey))
}

func ValidateServiceToken(secretKey, tokenString string) (*transfer.ServiceClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &transfer.ServiceClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid token signing method")
		}
		return []byte(secretKey), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*transfer.ServiceClaims)
	if !ok || !token.Valid || claims.Role != transfer.ServiceRole {
		return nil, ErrInvalidServiceToken
	}

	return claims, nil
}
