// Package auth issues and verifies the signed session tokens that protect
// upload and delete endpoints, and provides the middleware enforcing them.
package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the session lifetime. Tokens are stateless; expiry is
// the only invalidation mechanism.
const DefaultTokenTTL = time.Hour

var (
	errInvalidToken  = errors.New("invalid token")
	errMissingBearer = errors.New("missing bearer token")
)

// Claims carries the identity embedded in a session token. The role is
// captured at issuance time; later role changes are not reflected until
// the user logs in again.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Identity is the verified subject of a request.
type Identity struct {
	UserID int
	Role   string
}

// IssueToken signs an HS256 JWT for the user with sub, role, iat and exp claims.
func IssueToken(userID int, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseToken verifies signature and expiry and returns the embedded identity.
// Any tampering, wrong signing method, or elapsed TTL fails closed with an error.
func ParseToken(tokenString string, secret []byte) (Identity, error) {
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	})
	if err != nil {
		return Identity{}, err
	}
	if !token.Valid {
		return Identity{}, errInvalidToken
	}

	userID, err := strconv.Atoi(strings.TrimSpace(claims.Subject))
	if err != nil || userID < 1 {
		return Identity{}, errInvalidToken
	}
	if strings.TrimSpace(claims.Role) == "" {
		return Identity{}, errInvalidToken
	}
	return Identity{UserID: userID, Role: claims.Role}, nil
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header value.
func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errMissingBearer
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errMissingBearer
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}
