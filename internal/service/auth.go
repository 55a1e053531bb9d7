// Package service holds the stub backend's authentication: bcrypt-free
// credential checks against the seeded admin set and HS256 JWTs for the
// session token the console stores.
package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
)

// Principal is the admin identity a validated token resolves to.
type Principal struct {
	AdminID string
	Email   string
}

// Credential is one seeded admin login. PasswordHash is the hex SHA-256 of
// the password; the stub never stores plaintext.
type Credential struct {
	AdminID      string
	Email        string
	PasswordHash string
}

// AuthService issues and validates the stub backend's session tokens.
type AuthService struct {
	creds     map[string]Credential // keyed by email
	jwtSecret []byte
	tokenTTL  time.Duration
}

// NewAuthService creates an AuthService over the seeded credentials.
func NewAuthService(creds []Credential, jwtSecret string, tokenTTL time.Duration) *AuthService {
	byEmail := make(map[string]Credential, len(creds))
	for _, c := range creds {
		byEmail[c.Email] = c
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		creds:     byEmail,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
	}
}

// HashPassword returns the credential hash for a plaintext password.
func HashPassword(password string) string {
	h := sha256.Sum256([]byte(password))
	return hex.EncodeToString(h[:])
}

// Login checks the credentials and returns a signed session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (token string, p *Principal, err error) {
	cred, ok := s.creds[email]
	if !ok {
		return "", nil, ErrInvalidCredentials
	}
	given := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(given), []byte(cred.PasswordHash)) != 1 {
		return "", nil, ErrInvalidCredentials
	}

	token, err = s.issue(cred.AdminID, cred.Email)
	if err != nil {
		return "", nil, err
	}
	return token, &Principal{AdminID: cred.AdminID, Email: cred.Email}, nil
}

// ValidateToken verifies a bearer token and returns the admin it names.
func (s *AuthService) ValidateToken(ctx context.Context, tokenStr string) (*Principal, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidCredentials
	}
	if !token.Valid {
		return nil, ErrInvalidCredentials
	}

	return &Principal{AdminID: claims.AdminID, Email: claims.Email}, nil
}

func (s *AuthService) issue(adminID, email string) (string, error) {
	now := time.Now()
	claims := sessionClaims{
		AdminID: adminID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			Issuer:    "adminctl-stub",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

type sessionClaims struct {
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}
