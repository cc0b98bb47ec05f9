package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

var (
	ErrTokenInvalid      = errors.New("token is invalid")
	ErrTokenTypeMismatch = errors.New("token type mismatch")
)

// Identity is the account a token speaks for. The email rides along so the
// admin gate and request logs need no user lookup.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type Claims struct {
	TokenType TokenType `json:"typ"`
	Email     string    `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Identity returns the account named by the claims.
func (c *Claims) Identity() (Identity, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return Identity{}, ErrTokenInvalid
	}
	return Identity{UserID: userID, Email: c.Email}, nil
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	RefreshID        uuid.UUID
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RefreshHash is the digest stored in place of the refresh token.
func (p TokenPair) RefreshHash() string {
	return hashRefreshToken(p.RefreshToken)
}

// MatchesRefreshHash compares a stored digest with a presented refresh token in constant time.
func MatchesRefreshHash(hash, token string) bool {
	return subtle.ConstantTimeCompare([]byte(hash), []byte(hashRefreshToken(token))) == 1
}

func hashRefreshToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

type TokenManager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenManager(secret string, issuer string, accessTTL, refreshTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// NewTokenPair issues an access token and a refresh token for identity.
// The refresh token gets a fresh id; callers persist it with RefreshHash.
func (m *TokenManager) NewTokenPair(identity Identity) (TokenPair, error) {
	pair := TokenPair{RefreshID: uuid.New()}

	var err error
	pair.AccessToken, pair.AccessExpiresAt, err = m.sign(identity, uuid.New(), TokenTypeAccess, m.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	pair.RefreshToken, pair.RefreshExpiresAt, err = m.sign(identity, pair.RefreshID, TokenTypeRefresh, m.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return pair, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (m *TokenManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, TokenTypeAccess)
}

func (m *TokenManager) ParseRefreshToken(tokenString string) (*Claims, error) {
	return m.parse(tokenString, TokenTypeRefresh)
}

func (m *TokenManager) sign(identity Identity, tokenID uuid.UUID, tokenType TokenType, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		TokenType: tokenType,
		Email:     identity.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   identity.UserID.String(),
			ID:        tokenID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (m *TokenManager) parse(tokenString string, tokenType TokenType) (*Claims, error) {
	claims := &Claims{}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithIssuer(m.issuer))
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.TokenType != tokenType {
		return nil, ErrTokenTypeMismatch
	}

	return claims, nil
}
