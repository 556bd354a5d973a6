package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/photo-portfolio/photo_portfolio/internal/apperr"
	"github.com/photo-portfolio/photo_portfolio/internal/logging"
	"github.com/photo-portfolio/photo_portfolio/internal/password"
)

const maxUsernameLength = 64

// fallbackDecoyHash is a well-formed bcrypt hash compared against when a
// fresh decoy cannot be generated.
const fallbackDecoyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Service manages the credential lifecycle: registration and password checks.
type Service struct {
	repo   Repository
	hasher password.Hasher
	logger *slog.Logger

	decoyMu   sync.Mutex
	decoyHash string
}

// NewService creates a new identity service.
func NewService(repo Repository, hasher password.Hasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Service{repo: repo, hasher: hasher, logger: logger}
}

// Register validates the input and stores a new credential with the user role.
// It never logs the user in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (User, error) {
	return s.create(ctx, in, RoleUser)
}

// EnsureAdmin creates an admin credential unless one with the same email
// already exists. The boolean reports whether a record was created.
func (s *Service) EnsureAdmin(ctx context.Context, in RegisterInput) (User, bool, error) {
	in, err := normalizeRegistration(in)
	if err != nil {
		return User{}, false, err
	}
	existing, err := s.repo.FindByEmail(ctx, in.Email)
	if err == nil {
		if existing.Role != RoleAdmin {
			s.logger.Warn("bootstrap admin email belongs to a non-admin account", slog.String("user_id", existing.ID))
		}
		return existing, false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return User{}, false, err
	}
	user, err := s.create(ctx, in, RoleAdmin)
	if err != nil {
		return User{}, false, err
	}
	return user, true, nil
}

func (s *Service) create(ctx context.Context, in RegisterInput, role Role) (User, error) {
	in, err := normalizeRegistration(in)
	if err != nil {
		return User{}, err
	}

	if err := s.ensureAvailable(ctx, in); err != nil {
		return User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	// The store's unique constraints settle races the pre-check above cannot see.
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	s.logger.Info("identity.user created", slog.String("user_id", user.ID), slog.String("role", string(user.Role)))
	return user, nil
}

func (s *Service) ensureAvailable(ctx context.Context, in RegisterInput) error {
	if _, err := s.repo.FindByEmail(ctx, in.Email); err == nil {
		return apperr.ErrConflict
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	if _, err := s.repo.FindByUsername(ctx, in.Username); err == nil {
		return apperr.ErrConflict
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}
	return nil
}

// Authenticate checks an email/password pair. Unknown email and wrong
// password both return apperr.ErrInvalidCredentials after a full hash
// comparison.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	email := normalizeEmail(creds.Email)
	if email == "" {
		return User{}, apperr.Validation("email is required")
	}
	if creds.Password == "" {
		return User{}, apperr.Validation("password is required")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_, _ = s.hasher.Verify(creds.Password, s.decoy())
		return User{}, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return User{}, err
	}

	ok, err := s.hasher.Verify(creds.Password, user.PasswordHash)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, apperr.ErrInvalidCredentials
	}
	return user, nil
}

// FindByID loads a credential by identifier.
func (s *Service) FindByID(ctx context.Context, id string) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// decoy returns a hash to compare against when the account does not exist.
// A failed generation is retried on the next call.
func (s *Service) decoy() string {
	s.decoyMu.Lock()
	defer s.decoyMu.Unlock()
	if s.decoyHash != "" {
		return s.decoyHash
	}
	hash, err := s.hasher.Hash(uuid.NewString())
	if err != nil {
		s.logger.Warn("decoy hash generation failed", slog.Any("error", err))
		return fallbackDecoyHash
	}
	s.decoyHash = hash
	return s.decoyHash
}

func normalizeRegistration(in RegisterInput) (RegisterInput, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)

	switch {
	case in.Username == "":
		return in, apperr.Validation("username is required")
	case in.Email == "":
		return in, apperr.Validation("email is required")
	case in.Password == "":
		return in, apperr.Validation("password is required")
	}
	if len(in.Username) > maxUsernameLength {
		return in, apperr.Validation("username is too long")
	}
	if !validEmail(in.Email) {
		return in, apperr.Validation("email is not a valid address")
	}
	if len(in.Password) > password.MaxLength {
		return in, apperr.Validation("password is too long")
	}
	return in, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// validEmail accepts bare addresses only, rejecting display-name forms.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
