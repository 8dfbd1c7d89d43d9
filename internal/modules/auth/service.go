package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"aloka/internal/domain"
	"aloka/internal/metrics"
	"aloka/internal/pkg/logger"
	"aloka/internal/pkg/validator"
	"aloka/internal/repository"
)

// Service contains the account signup and identity lookup logic
type Service struct {
	users      UserRepository
	tokens     TokenIssuer
	bcryptCost int
	log        zerolog.Logger
}

func NewService(users UserRepository, tokens TokenIssuer) *Service {
	return &Service{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcrypt.DefaultCost,
		log:        logger.WithComponent("auth"),
	}
}

type SignupResult struct {
	User  *domain.User
	Token string
}

// Signup creates an account and issues a session token for it.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*SignupResult, error) {
	req.trim()
	if fields := validator.Validate(req); len(fields) > 0 {
		metrics.RecordSignup("invalid")
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		metrics.RecordSignup("duplicate")
		return nil, ErrEmailAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := domain.RoleClient
	if req.Role != "" {
		role = domain.UserRole(req.Role)
	}

	user := &domain.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// lost a race with a concurrent signup for the same email
		if errors.Is(err, repository.ErrDuplicateEmail) {
			metrics.RecordSignup("duplicate")
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	metrics.RecordSignup("created")
	s.log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("account created")
	return &SignupResult{User: user, Token: token}, nil
}

// Me loads the account a verified token refers to.
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	if userID == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}
