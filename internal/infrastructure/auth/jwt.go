package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/zenthea/sessionguard/internal/shared/authorization"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are issued by the host platform for a signed-in session.
type Claims struct {
	SessionID string                 `json:"sid"`
	UserID    string                 `json:"uid"`
	TenantID  string                 `json:"tid,omitempty"`
	Role      authorization.UserRole `json:"role"`
	jwt.RegisteredClaims
}

type JWTService struct {
	secret []byte
	issuer string
	clock  clockwork.Clock
}

func NewJWTService(secret, issuer string, clock clockwork.Clock) *JWTService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &JWTService{
		secret: []byte(secret),
		issuer: issuer,
		clock:  clock,
	}
}

// Generate signs an HS256 token. The server only verifies tokens; Generate serves
// the dev token command and tests.
func (s *JWTService) Generate(sessionID, userID, tenantID string, role authorization.UserRole, ttl time.Duration) (string, error) {
	now := s.clock.Now()

	claims := &Claims{
		SessionID: sessionID,
		UserID:    userID,
		TenantID:  tenantID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.SessionID == "" || claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing sid or uid", ErrInvalidToken)
	}
	claims.Role = authorization.ParseUserRole(string(claims.Role))

	return claims, nil
}
