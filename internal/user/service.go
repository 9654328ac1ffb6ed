package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/user/entity"
	userrepo "github.com/ovaphlow/pitchfork/service-bookshelf-go/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-bookshelf-go/pkg/utilities"
)

const (
	// TokenTTL is the fixed lifetime of tokens issued at login.
	TokenTTL = 6 * time.Hour
	// ExpiresIn is TokenTTL as reported to clients.
	ExpiresIn = "6h"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
}

// BcryptHasher implementation. Cost 0 means bcrypt.DefaultCost.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) Hash(pw string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// Verify compares in constant time with respect to the password.
func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// Store is the credential store the service reads and writes through.
type Store interface {
	Create(ctx context.Context, u *entity.User) error
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetByID(ctx context.Context, id string) (*entity.User, error)
}

// TokenIssuer mints access tokens for authenticated principals.
type TokenIssuer interface {
	Issue(p auth.Principal, ttl time.Duration) (string, error)
}

// UserService orchestrates registration and password login.
type UserService struct {
	repo   Store
	hasher PasswordHasher
	tokens TokenIssuer
	newID  func() string
}

func NewUserService(db *sqlx.DB, r Store, hasher PasswordHasher, tokens TokenIssuer) *UserService {
	if r == nil {
		r = userrepo.NewUserRepo(db)
	}
	if hasher == nil {
		hasher = BcryptHasher{Cost: 10}
	}
	return &UserService{repo: r, hasher: hasher, tokens: tokens, newID: utilities.NewSnowflakeID}
}

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrStoreUnavailable = errors.New("credential store unavailable")
	ErrLoginCanceled    = errors.New("login canceled")
)

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken string
	ExpiresIn   string
	UserID      string
}

// Login checks email and password and issues a TokenTTL access token.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrUserNotFound
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		switch {
		case errors.Is(err, userrepo.ErrNotFound):
			return nil, ErrUserNotFound
		case ctx.Err() != nil:
			return nil, fmt.Errorf("%w: %w", ErrLoginCanceled, ctx.Err())
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, fmt.Errorf("%w: %w", ErrLoginCanceled, err)
		default:
			return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
	}

	if !s.hasher.Verify(u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	token, err := s.tokens.Issue(auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}, TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResult{AccessToken: token, ExpiresIn: ExpiresIn, UserID: u.ID}, nil
}

// RegisterInput carries already validated registration fields.
type RegisterInput struct {
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
	Password    string
}

// Register hashes the password and creates the account with DefaultRole.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &entity.User{
		ID:           s.newID(),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        normalizeEmail(in.Email),
		PhoneNumber:  strings.TrimSpace(in.PhoneNumber),
		PasswordHash: hash,
		Role:         entity.DefaultRole,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, userrepo.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return u, nil
}

// GetByID returns the user or ErrUserNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, userrepo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
