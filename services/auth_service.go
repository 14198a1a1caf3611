package services

import (
	"fmt"
	"time"

	"github.com/arenaops/bracket-engine/utils"
	"github.com/golang-jwt/jwt/v4"
)

const tokenTTL = 24 * time.Hour

// AuthService exchanges operator credentials for a signed token. The
// operator account comes from configuration; there is no user database here.
type AuthService interface {
	Authenticate(email, password string) (string, error)
}

type authService struct {
	adminEmail        string
	adminPasswordHash string
	jwtSecret         []byte
}

func NewAuthService(adminEmail, adminPasswordHash string, jwtSecret []byte) AuthService {
	return &authService{
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
	}
}

func (s *authService) Authenticate(email, password string) (string, error) {
	if email != s.adminEmail || !utils.CheckPasswordHash(password, s.adminPasswordHash) {
		return "", ErrAuthInvalidCredentials
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
