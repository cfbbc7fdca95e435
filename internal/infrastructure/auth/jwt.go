package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sanad/backend/internal/infrastructure/config"
)

// TokenType distinguishes access tokens from other tokens signed with the
// same secret
type TokenType string

const TokenTypeAccess TokenType = "access"

// Validation errors
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidTokenType = errors.New("invalid token type")
	ErrInvalidClaims    = errors.New("invalid token claims")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrMissingTenantID  = errors.New("missing tenant_id in claims")
	ErrMissingUserID    = errors.New("missing user_id in claims")
)

// Claims represents custom JWT claims. TenantID is the organization the
// caller acts for; every authenticated voucher operation is scoped to it.
type Claims struct {
	jwt.RegisteredClaims
	TenantID  string    `json:"tenant_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	TokenType TokenType `json:"token_type"`
}

// JWTService issues and validates HS256 access tokens
type JWTService struct {
	secret     []byte
	expiration time.Duration
	issuer     string
}

// NewJWTService creates a new JWT service
func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret:     []byte(cfg.Secret),
		expiration: cfg.AccessTokenExpiration,
		issuer:     cfg.Issuer,
	}
}

// IssueTokenInput contains input for token issuance
type IssueTokenInput struct {
	TenantID uuid.UUID
	UserID   uuid.UUID
	Username string
	// TTL overrides the configured expiration when positive.
	TTL time.Duration
}

// IssueAccessToken signs an access token. Production tokens normally come
// from the identity provider sharing the secret; this is used by tooling
// and tests.
func (s *JWTService) IssueAccessToken(input IssueTokenInput) (string, time.Time, error) {
	ttl := s.expiration
	if input.TTL > 0 {
		ttl = input.TTL
	}
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Issuer:    s.issuer,
			Subject:   input.UserID.String(),
			Audience:  jwt.ClaimStrings{s.issuer},
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		TenantID:  input.TenantID.String(),
		UserID:    input.UserID.String(),
		Username:  input.Username,
		TokenType: TokenTypeAccess,
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// Validate runs after the registered claims check during parsing and
// rejects tokens that cannot scope a voucher operation.
func (c *Claims) Validate() error {
	switch {
	case c.TokenType != TokenTypeAccess:
		return ErrInvalidTokenType
	case c.TenantID == "":
		return ErrMissingTenantID
	case c.UserID == "":
		return ErrMissingUserID
	}
	return nil
}

// validationErrors in match order; the first hit is returned to the caller
var validationErrors = []struct {
	cause  error
	result error
}{
	{jwt.ErrTokenExpired, ErrExpiredToken},
	{jwt.ErrTokenNotValidYet, ErrTokenNotYetValid},
	{ErrInvalidTokenType, ErrInvalidTokenType},
	{ErrMissingTenantID, ErrMissingTenantID},
	{ErrMissingUserID, ErrMissingUserID},
}

// ValidateAccessToken verifies signature, issuer and lifetime of an HS256
// access token and returns its claims
func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		for _, v := range validationErrors {
			if errors.Is(err, v.cause) {
				return nil, v.result
			}
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidClaims
	}
	return claims, nil
}

// GetTenantUUID parses the tenant claim
func (c *Claims) GetTenantUUID() (uuid.UUID, error) {
	return uuid.Parse(c.TenantID)
}

// GetUserUUID parses the user claim
func (c *Claims) GetUserUUID() (uuid.UUID, error) {
	return uuid.Parse(c.UserID)
}
