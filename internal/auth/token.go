package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"tunecrate/internal/store"
)

var (
	// ErrTokenMissing signals a request that carried no credential at all.
	ErrTokenMissing = errors.New("authentication required")
	// ErrTokenInvalid signals a credential that failed signature or expiry
	// checks.
	ErrTokenInvalid = errors.New("bad token")
)

// Identity is the verified caller resolved from a token.
type Identity struct {
	UserID   int64
	Username string
	Role     store.Role
}

// IsAdmin reports whether the identity carries the admin role.
func (id Identity) IsAdmin() bool {
	return id.Role == store.RoleAdmin
}

// Claims is the signed payload embedded in identity tokens.
type Claims struct {
	UserID   int64      `json:"user_id"`
	Username string     `json:"username"`
	Role     store.Role `json:"role"`
	jwt.RegisteredClaims
}

// Verifier issues and validates stateless identity tokens.
type Verifier struct {
	secret []byte
	ttl    time.Duration
}

// NewVerifier builds a Verifier signing with the given secret. A zero ttl
// issues tokens without expiry.
func NewVerifier(secret string, ttl time.Duration) *Verifier {
	return &Verifier{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token asserting the given user's identity and role.
func (v *Verifier) Issue(user store.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	if v.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(v.ttl))
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// Verify validates a token and returns the identity it asserts. An empty
// token is ErrTokenMissing; anything that fails signature or expiry checks
// is ErrTokenInvalid. Both are terminal.
func (v *Verifier) Verify(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ErrTokenMissing
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return v.secret, nil
	})
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Identity{}, ErrTokenInvalid
	}

	return Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     claims.Role,
	}, nil
}
