package helpers

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// EmailTokenTTL is the fixed lifetime of email verification tokens
const EmailTokenTTL = time.Hour

// ErrInvalidToken is wrapped by every validation failure
var ErrInvalidToken = errors.New("invalid token")

// TokenConfig configures a JWTManager
type TokenConfig struct {
	AccessSecret string
	EmailSecret  string
	Issuer       string
	Audience     string
	AccessTTL    time.Duration
}

// JWTManager issues and validates HS256 tokens. Access tokens and email
// verification tokens are signed with distinct secrets.
type JWTManager struct {
	accessSecret []byte
	emailSecret  []byte
	issuer       string
	audience     string
	AccessTTL    time.Duration
	EmailTTL     time.Duration
	now          func() time.Time
}

type JWTOption func(*JWTManager)

// WithClock overrides the time source used for issuing and validating
func WithClock(now func() time.Time) JWTOption {
	return func(m *JWTManager) { m.now = now }
}

func NewJWTManager(cfg TokenConfig, opts ...JWTOption) *JWTManager {
	ttl := cfg.AccessTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	m := &JWTManager{
		accessSecret: []byte(cfg.AccessSecret),
		emailSecret:  []byte(cfg.EmailSecret),
		issuer:       cfg.Issuer,
		audience:     cfg.Audience,
		AccessTTL:    ttl,
		EmailTTL:     EmailTokenTTL,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type Claims struct {
	UserID string `json:"uid,omitempty"`
	Email  string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs an access token for the user. The returned time is the expiry instant.
func (m *JWTManager) IssueAccessToken(userID, email string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("user id is required")
	}
	return m.issue(userID, userID, email, m.AccessTTL, m.accessSecret)
}

// IssueEmailVerificationToken signs a one hour token used only to confirm an email address
func (m *JWTManager) IssueEmailVerificationToken(email string) (string, time.Time, error) {
	if email == "" {
		return "", time.Time{}, errors.New("email is required")
	}
	return m.issue("", email, email, m.EmailTTL, m.emailSecret)
}

func (m *JWTManager) issue(userID, subject, email string, ttl time.Duration, secret []byte) (string, time.Time, error) {
	// NumericDate has second precision; truncating keeps exp exactly iat+ttl on the wire
	iat := m.now().Truncate(time.Second)
	exp := iat.Add(ttl)
	claims := &Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ID:        uuid.NewString(),
			Issuer:    m.issuer,
			Audience:  jwt.ClaimStrings{m.audience},
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

// ValidateToken verifies an access token. A token is valid strictly before its exp instant.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr, m.accessSecret)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing uid claim", ErrInvalidToken)
	}
	return claims, nil
}

// ValidateEmailToken verifies an email verification token
func (m *JWTManager) ValidateEmailToken(tokenStr string) (*Claims, error) {
	claims, err := m.parse(tokenStr, m.emailSecret)
	if err != nil {
		return nil, err
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	return claims, nil
}

func (m *JWTManager) parse(tokenStr string, secret []byte) (*Claims, error) {
	if tokenStr == "" {
		return nil, fmt.Errorf("%w: empty token", ErrInvalidToken)
	}
	claims := &Claims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithAudience(m.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	tkn, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !tkn.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// The helpers below read claims without verifying the signature. They are
// for logging and diagnostics only and must never authenticate a request.

// ClaimsFromToken decodes claims without signature verification
func ClaimsFromToken(tokenStr string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

func UserIDFromToken(tokenStr string) (string, error) {
	claims, err := ClaimsFromToken(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func EmailFromToken(tokenStr string) (string, error) {
	claims, err := ClaimsFromToken(tokenStr)
	if err != nil {
		return "", err
	}
	return claims.Email, nil
}

// TokenExpiration returns the unverified exp claim
func TokenExpiration(tokenStr string) (time.Time, error) {
	claims, err := ClaimsFromToken(tokenStr)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, fmt.Errorf("%w: missing exp claim", ErrInvalidToken)
	}
	return claims.ExpiresAt.Time, nil
}

// IsTokenExpired reports whether the unverified exp is at or before now.
// Undecodable tokens count as expired.
func IsTokenExpired(tokenStr string, now time.Time) bool {
	exp, err := TokenExpiration(tokenStr)
	if err != nil {
		return true
	}
	return !now.Before(exp)
}
