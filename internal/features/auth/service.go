package auth

import (
	"time"

	"gorm.io/gorm"

	"github.com/edusite/edusite-api/internal/features/user"
	"github.com/edusite/edusite-api/internal/utils/jwt"
)

// LoginInput carries credentials for obtaining a token pair.
type LoginInput struct {
	Email    string
	Password string
}

// TokenConfig bundles signing secrets and lifetimes.
type TokenConfig struct {
	JWTSecret          string
	JWTRefreshSecret   string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// Login verifies credentials, stamps the user's last login, and issues a
// token pair. Deactivated accounts are rejected; their last login stays
// untouched so the inactivity sweep is not reset.
func Login(db *gorm.DB, input LoginInput, cfg TokenConfig) (*jwt.TokenPair, error) {
	if input.Email == "" || input.Password == "" {
		return nil, ErrMissingFields
	}

	usr, err := user.GetByEmail(db, input.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !usr.ComparePassword(input.Password) {
		return nil, ErrInvalidCredentials
	}

	if !usr.Active {
		return nil, ErrInactiveAccount
	}

	if err := user.StampLastLogin(db, usr.ID, time.Now().UTC()); err != nil {
		return nil, err
	}

	accessToken, err := jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
	if err != nil {
		return nil, err
	}

	refreshToken, err := jwt.GenerateRefreshToken(usr.ID, cfg.JWTRefreshSecret, cfg.RefreshTokenExpiry)
	if err != nil {
		return nil, err
	}

	return &jwt.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// user must still exist and be active.
func Refresh(db *gorm.DB, refreshToken string, cfg TokenConfig) (string, error) {
	claims, err := jwt.VerifyToken(refreshToken, cfg.JWTRefreshSecret)
	if err != nil {
		return "", ErrInvalidToken
	}

	usr, err := user.Get(db, claims.UserID)
	if err != nil {
		return "", ErrInvalidToken
	}

	if !usr.Active {
		return "", ErrInactiveAccount
	}

	return jwt.GenerateAccessToken(usr.ID, cfg.JWTSecret, cfg.AccessTokenExpiry)
}
