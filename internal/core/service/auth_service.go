package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/suivipro/platform/internal/core/domain"
	"github.com/suivipro/platform/internal/core/ports"
)

// AuthService implements self-service account operations: registration,
// login, profile and password change.
type AuthService struct {
	users    ports.UserRepository
	tokens   ports.TokenIssuer
	notifier ports.Notifier
	audit    ports.AuditSink
	limiter  ports.LoginLimiter
	cost     int
	dummy    []byte
	log      zerolog.Logger
	now      func() time.Time
}

// NewAuthService wires the service. audit and limiter may be nil.
func NewAuthService(
	users ports.UserRepository,
	tokens ports.TokenIssuer,
	notifier ports.Notifier,
	audit ports.AuditSink,
	limiter ports.LoginLimiter,
	bcryptCost int,
	log zerolog.Logger,
) *AuthService {
	if audit == nil {
		audit = nopAudit{}
	}
	if limiter == nil {
		limiter = nopLimiter{}
	}
	cost := normalizeCost(bcryptCost)
	return &AuthService{
		users:    users,
		tokens:   tokens,
		notifier: notifier,
		audit:    audit,
		limiter:  limiter,
		cost:     cost,
		dummy:    dummyHash(cost),
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	username := strings.TrimSpace(in.Username)
	email := domain.NormalizeEmail(in.Email)
	firstName := strings.TrimSpace(in.FirstName)
	lastName := strings.TrimSpace(in.LastName)

	problems := identityProblems(username, email, firstName, lastName)
	problems = append(problems, domain.PasswordProblems(in.Password)...)
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	if err := ensureAvailable(ctx, s.users, username, email); err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	now := s.now()
	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.users.Create(ctx, user, []string{domain.RoleUser})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	token, err := s.tokens.Issue(created)
	if err != nil {
		return nil, fmt.Errorf("register: issue token: %w", err)
	}

	s.audit.Publish(domain.AuditEvent{
		Action:    domain.AuditUserSelfRegistered,
		ActorID:   created.ID,
		SubjectID: created.ID,
		At:        now,
	})
	s.log.Info().Str("user_id", created.ID).Str("username", created.Username).Msg("user registered")

	return &ports.AuthResult{Token: token, User: created}, nil
}

// Login authenticates by username (or email). Unknown users and wrong
// passwords both yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*ports.AuthResult, error) {
	login := strings.TrimSpace(username)
	if login == "" || password == "" {
		return nil, domain.NewValidationError("username and password are required")
	}
	key := strings.ToLower(login)

	blocked, err := s.limiter.Blocked(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("login", key).Msg("login limiter check failed, continuing")
	} else if blocked {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, login, domain.NormalizeEmail(login))
	if errors.Is(err, domain.ErrUserNotFound) {
		// Burn a comparison so timing does not reveal whether the user exists.
		_ = bcrypt.CompareHashAndPassword(s.dummy, []byte(password))
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if !checkPassword(user.PasswordHash, password) {
		s.recordFailure(ctx, key)
		return nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, domain.ErrAccountDisabled
	}

	if err := s.limiter.Reset(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("login", key).Msg("failed to reset login limiter")
	}

	now := s.now()
	user.LastLogin = &now
	user.UpdatedAt = now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("login: record last login: %w", err)
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	return &ports.AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) Profile(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	return user, nil
}

// ChangePassword verifies the current password, stores the new hash and
// clears the must-change flag. The confirmation email is best effort.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	problems := []string{}
	if currentPassword == "" {
		problems = append(problems, "currentPassword is required")
	}
	problems = append(problems, domain.PasswordProblems(newPassword)...)
	if len(problems) > 0 {
		return domain.NewValidationError(problems...)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	if !checkPassword(user.PasswordHash, currentPassword) {
		return fmt.Errorf("change password: %w", domain.ErrPasswordMismatch)
	}

	hash, err := hashPassword(newPassword, s.cost)
	if err != nil {
		return fmt.Errorf("change password: %w", err)
	}
	user.PasswordHash = hash
	user.MustChangePassword = false
	user.UpdatedAt = s.now()
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("change password: %w", err)
	}

	if res := s.notifier.SendPasswordChanged(ctx, user); !res.Sent {
		s.log.Warn().Err(res.Err).Str("user_id", user.ID).Msg("password change confirmation not sent")
	}

	s.audit.Publish(domain.AuditEvent{
		Action:    domain.AuditPasswordChanged,
		ActorID:   user.ID,
		SubjectID: user.ID,
		At:        user.UpdatedAt,
	})
	return nil
}

func (s *AuthService) recordFailure(ctx context.Context, key string) {
	if err := s.limiter.RecordFailure(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("login", key).Msg("failed to record login failure")
	}
}

// identityProblems validates the fields shared by registration and admin
// provisioning. Inputs must already be trimmed.
func identityProblems(username, email, firstName, lastName string) []string {
	problems := domain.UsernameProblems(username)
	if email == "" {
		problems = append(problems, "email is required")
	} else if !emailRE.MatchString(email) {
		problems = append(problems, "email must be a valid email")
	}
	if len([]rune(firstName)) > domain.NameMaxLen {
		problems = append(problems, fmt.Sprintf("firstName must be at most %d characters", domain.NameMaxLen))
	}
	if len([]rune(lastName)) > domain.NameMaxLen {
		problems = append(problems, fmt.Sprintf("lastName must be at most %d characters", domain.NameMaxLen))
	}
	return problems
}

// ensureAvailable is an early conflict check. The store's unique indexes
// remain the authority.
func ensureAvailable(ctx context.Context, users ports.UserRepository, username, email string) error {
	existing, err := users.FindByUsernameOrEmail(ctx, username, email)
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return nil
	case err != nil:
		return err
	case existing != nil:
		return domain.ErrUserExists
	}
	return nil
}
