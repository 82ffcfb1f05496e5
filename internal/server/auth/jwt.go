// Package auth issues and verifies admin access tokens and recovers the
// signer of wallet-signed login messages.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/failvault/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// RoleAdmin is the only role the server issues.
const RoleAdmin = "admin"

// Claims carries the admin account address and role on top of the
// registered claims.
type Claims struct {
	jwt.RegisteredClaims
	Address string `json:"address"`
	Role    string `json:"role"`
}

func GenerateAdminToken(address string, secretKey []byte, validity time.Duration) (string, error) {
	jti, err := common.MakeRandHexString(16)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   address,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validity)),
		},
		Address: address,
		Role:    RoleAdmin,
	})

	return token.SignedString(secretKey)
}

// ParseAdminToken validates the token and returns its claims. Expired tokens
// yield common.ErrTokenExpired, anything else common.ErrInvalidToken.
func ParseAdminToken(tokenString string, secretKey []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Role != RoleAdmin {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
