package service

import (
	"context" // Request-scoped context
	"errors"  // Error matching
	"strings" // Input normalisation
	"time"    // Token expiry

	"store_rating/internal/domain"     // Domain models
	"store_rating/internal/metrics"    // Prometheus counters
	"store_rating/internal/repository" // Data access
	"store_rating/internal/utils"      // Hashing, tokens, cache

	"github.com/sirupsen/logrus" // Structured logging
)

// SignupInput carries the fields of every user-creating operation.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     domain.Role
}

var errPasswordTooLong = domain.Validation("Password must be at most 72 bytes")

func (in *SignupInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Address = strings.TrimSpace(in.Address)
	in.Role = domain.Role(strings.TrimSpace(string(in.Role)))
}

// LoginResult is a freshly issued token and the user it was issued for.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// AuthService implements registration, login, password change and logout.
type AuthService struct {
	users       repository.UserRepository
	hasher      *utils.PasswordHasher
	issuer      *utils.TokenIssuer
	revocations *utils.RevocationList
	cache       *utils.Cache
}

// NewAuthService wires an AuthService. revocations and cache may be backed
// by a nil Redis client.
func NewAuthService(users repository.UserRepository, hasher *utils.PasswordHasher, issuer *utils.TokenIssuer,
	revocations *utils.RevocationList, cache *utils.Cache) *AuthService {
	return &AuthService{
		users:       users,
		hasher:      hasher,
		issuer:      issuer,
		revocations: revocations,
		cache:       cache,
	}
}

// RegisterNormalUser is the self-service signup: every field is required
// and the role is always normaluser.
func (s *AuthService) RegisterNormalUser(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.normalize()
	if in.Name == "" || in.Email == "" || in.Address == "" || in.Password == "" {
		return nil, domain.Validation("All fields are required")
	}
	in.Role = domain.RoleNormalUser
	return s.create(ctx, in)
}

// Signup is the generic registration; address and role are optional and
// the role defaults to normaluser. Admin accounts are only made through
// CreateUser or the seeded administrator.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.normalize()
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, domain.Validation("Name, email, password required")
	}
	if in.Role == "" {
		in.Role = domain.RoleNormalUser
	}
	if !in.Role.Valid() {
		return nil, domain.Validation("Invalid role")
	}
	if in.Role == domain.RoleAdmin {
		return nil, domain.NewError(domain.ErrForbidden, "Admin accounts can only be created by an admin")
	}
	return s.create(ctx, in)
}

// CreateUser is the admin variant: every field including role is required.
func (s *AuthService) CreateUser(ctx context.Context, in SignupInput) (*domain.User, error) {
	in.normalize()
	if in.Name == "" || in.Email == "" || in.Password == "" || in.Address == "" || in.Role == "" {
		return nil, domain.Validation("All fields are required")
	}
	if !in.Role.Valid() {
		return nil, domain.Validation("Invalid role")
	}
	return s.create(ctx, in)
}

func (s *AuthService) create(ctx context.Context, in SignupInput) (*domain.User, error) {
	if len(in.Password) > utils.MaxPasswordBytes {
		return nil, errPasswordTooLong
	}
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.Duplicate("Email already registered")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		Name:     in.Name,
		Email:    in.Email,
		Password: hash,
		Address:  in.Address,
		Role:     in.Role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent signup for the same email
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, domain.Duplicate("Email already registered")
		}
		return nil, err
	}

	invalidateAdminCache(ctx, s.cache)
	logrus.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("User registered")
	return user, nil
}

// Login checks credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, domain.Validation("Email and password required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.loginFailed(email, "unknown_email")
			return nil, domain.Validation("Invalid credentials")
		}
		return nil, err
	}
	if !s.hasher.Verify(user.Password, password) {
		s.loginFailed(email, "wrong_password")
		return nil, domain.Validation("Invalid credentials")
	}

	token, claims, err := s.issuer.Issue(user.ID, user.Role, user.Name)
	if err != nil {
		return nil, err
	}
	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return &LoginResult{Token: token, ExpiresAt: claims.ExpiresAt.Time, User: user}, nil
}

func (s *AuthService) loginFailed(email, reason string) {
	metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
	logrus.WithFields(logrus.Fields{
		"email":  email,
		"reason": reason,
	}).Warn("Login failed")
}

// UpdatePassword replaces the password of userID after checking the old one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return domain.Validation("Old and new password required")
	}
	if len(newPassword) > utils.MaxPasswordBytes {
		return errPasswordTooLong
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("User not found")
		}
		return err
	}
	if !s.hasher.Verify(user.Password, oldPassword) {
		return domain.Validation("Old password is incorrect")
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.NotFound("User not found")
		}
		return err
	}
	logrus.WithField("user_id", userID).Info("Password updated")
	return nil
}

// Logout revokes the presented token for the rest of its lifetime. Without
// Redis this is a no-op and the token stays valid until it expires.
func (s *AuthService) Logout(ctx context.Context, claims *utils.Claims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}
