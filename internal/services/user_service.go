package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/updoot/updoot-be/internal/mailer"
	"github.com/updoot/updoot-be/internal/models"
	"github.com/updoot/updoot-be/internal/storage"
	"github.com/updoot/updoot-be/internal/tokens"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(ctx context.Context, username, email, password string) (*models.User, []FieldError, error)
	Login(ctx context.Context, usernameOrEmail, password string) (*models.User, []FieldError, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, token, newPassword string) (*models.User, []FieldError, error)
}

// UserService provides business logic for accounts and credentials.
type UserService struct {
	users       storage.UserRepository
	tokens      tokens.Store
	mail        mailer.Mailer
	frontendURL string
}

// NewUserService creates a new UserService.
func NewUserService(users storage.UserRepository, tokenStore tokens.Store, mail mailer.Mailer, frontendURL string) *UserService {
	return &UserService{users: users, tokens: tokenStore, mail: mail, frontendURL: frontendURL}
}

// Register validates the input, hashes the password and creates the
// account. A taken username or email comes back as a field error; storage
// faults propagate as errors so callers can tell the two apart.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, []FieldError, error) {
	if errs := validateRegister(username, email, password); errs != nil {
		return nil, errs, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, fieldErr("username", "username already taken"), nil
		}
		return nil, nil, err
	}
	return user, nil, nil
}

// Login authenticates by username or email, picked by the presence of an
// "@" in the identifier.
func (s *UserService) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, []FieldError, error) {
	var (
		user *models.User
		err  error
	)
	if strings.Contains(usernameOrEmail, "@") {
		user, err = s.users.GetByEmail(ctx, usernameOrEmail)
	} else {
		user, err = s.users.GetByUsername(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fieldErr("usernameOrEmail", "that username doesn't exist"), nil
		}
		return nil, nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fieldErr("password", "incorrect password"), nil
	}
	return user, nil, nil
}

// GetByID retrieves a single user by their ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// ForgotPassword issues a reset token and mails a reset link. It reports
// success whether or not the email belongs to an account, so the endpoint
// cannot be used to probe for registered addresses.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// The email is not in the db: report success, do nothing.
			return nil
		}
		return err
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return err
	}

	s.mail.SendAsync(
		email,
		"Change password",
		fmt.Sprintf(`<a href="%s/change-password/%s">reset password</a>`, s.frontendURL, token),
	)
	return nil
}

// ChangePassword redeems a reset token: it validates the new password,
// rewrites the credential and consumes the token so it cannot be replayed.
func (s *UserService) ChangePassword(ctx context.Context, token, newPassword string) (*models.User, []FieldError, error) {
	if len(newPassword) <= 2 {
		return nil, fieldErr("newPassword", "length must be greater than 2"), nil
	}

	userID, err := s.tokens.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, tokens.ErrTokenInvalid) {
			return nil, fieldErr("token", "token expired"), nil
		}
		return nil, nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fieldErr("token", "user no longer exists"), nil
		}
		return nil, nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return nil, nil, err
	}

	// Single use: only a persisted password change consumes the token.
	if err := s.tokens.Delete(ctx, token); err != nil {
		return nil, nil, err
	}
	return user, nil, nil
}
