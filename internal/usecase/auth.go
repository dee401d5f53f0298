package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/azamatb/todo-tracker/internal/domain"
	"github.com/azamatb/todo-tracker/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Tokens are valid for a week; clients re-authenticate after expiry.
const defaultTokenTTL = 7 * 24 * time.Hour

type AuthUsecase struct {
	users    repository.UserRepository
	jwtKey   []byte
	tokenTTL time.Duration
}

func NewAuthUsecase(users repository.UserRepository, jwtKey []byte) *AuthUsecase {
	return &AuthUsecase{
		users:    users,
		jwtKey:   jwtKey,
		tokenTTL: defaultTokenTTL,
	}
}

// Register validates the fields, hashes the password, persists the user
// and returns it together with a fresh bearer token.
func (u *AuthUsecase) Register(ctx context.Context, username, email, password string) (*domain.User, string, error) {
	username = strings.TrimSpace(username)
	email = domain.NormalizeEmail(email)

	if err := domain.ValidateUsername(username); err != nil {
		return nil, "", err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := domain.ValidatePassword(password); err != nil {
		return nil, "", err
	}

	// Pre-flight username check; the unique constraint still catches
	// the race between two concurrent registrations.
	if _, err := u.users.FindByUsername(ctx, username); err == nil {
		return nil, "", domain.ErrUsernameTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, "", fmt.Errorf("check username: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	created, err := u.users.Create(ctx, &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return nil, "", err
	}

	token, err := u.IssueToken(created.ID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login checks the credentials and returns the user with a fresh token.
// Unknown email and wrong password are indistinguishable to the caller.
func (u *AuthUsecase) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := u.users.FindByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("find user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := u.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *AuthUsecase) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return u.users.FindByID(ctx, id)
}

// IssueToken signs an HS256 JWT binding the user ID to a 7-day expiry.
func (u *AuthUsecase) IssueToken(userID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(u.tokenTTL).Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := t.SignedString(u.jwtKey)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return signed, nil
}

// VerifyToken parses and validates a bearer token, returning the bound
// user ID. Failures map to the token sentinels in domain.
func (u *AuthUsecase) VerifyToken(raw string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return u.jwtKey, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", domain.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", domain.ErrTokenSignature
		default:
			return "", domain.ErrTokenMalformed
		}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", domain.ErrTokenMalformed
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", domain.ErrTokenMalformed
	}
	return userID, nil
}
