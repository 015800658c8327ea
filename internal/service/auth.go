package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coursecatalog/internal/metrics"
	"coursecatalog/internal/models"
	"coursecatalog/internal/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ( // Define custom errors
	ErrMissingCredentials = errors.New("missing credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordTooLong    = errors.New("password exceeds 72 bytes")
)

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

type AuthService interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.PublicUser, string, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.PublicUser, string, error)
	CheckSession(token string) (*models.Claims, error)
	Logout(token string)
}

type authService struct {
	repo       repository.UserRepository
	tokens     *TokenManager
	bcryptCost int
	// dummyHash is compared against when no user matches, so a miss costs
	// the same as a wrong password.
	dummyHash []byte
	logger    *zap.Logger
}

func NewAuthService(repo repository.UserRepository, tokens *TokenManager, bcryptCost int, logger *zap.Logger) (AuthService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}
	return &authService{
		repo:       repo,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		dummyHash:  dummy,
		logger:     logger,
	}, nil
}

func (s *authService) Signup(ctx context.Context, req models.SignupRequest) (*models.PublicUser, string, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		metrics.RecordAuth("signup", "invalid")
		return nil, "", ErrMissingCredentials
	}
	if len(req.Password) > maxPasswordBytes {
		metrics.RecordAuth("signup", "invalid")
		return nil, "", ErrPasswordTooLong
	}

	existing, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to look up user by email", zap.Error(err))
		return nil, "", fmt.Errorf("failed to check existing users: %w", err)
	}
	if existing != nil {
		metrics.RecordAuth("signup", "conflict")
		return nil, "", ErrEmailTaken
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = models.DefaultRole
	}

	user := &models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(passwordHash),
		Role:         role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			metrics.RecordAuth("signup", "conflict")
			return nil, "", ErrEmailTaken
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, "", fmt.Errorf("failed to create user: %w", err)
	}

	tokenString, _, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return nil, "", err
	}

	metrics.RecordAuth("signup", "ok")
	s.logger.Info("User signed up.", zap.Int64("user_id", user.ID), zap.String("role", user.Role))
	return user.Public(), tokenString, nil
}

func (s *authService) Login(ctx context.Context, req models.LoginRequest) (*models.PublicUser, string, error) {
	email := strings.TrimSpace(req.Email)
	username := strings.TrimSpace(req.Username)
	if req.Password == "" || (email == "" && username == "") {
		metrics.RecordAuth("login", "invalid")
		return nil, "", ErrMissingCredentials
	}
	if len(req.Password) > maxPasswordBytes {
		// No stored hash can match it.
		metrics.RecordAuth("login", "rejected")
		return nil, "", ErrInvalidCredentials
	}

	var (
		user *models.User
		err  error
	)
	if email != "" {
		user, err = s.repo.GetUserByEmail(ctx, email)
	} else {
		user, err = s.repo.GetUserByName(ctx, username)
	}
	if err != nil {
		s.logger.Error("Failed to retrieve user", zap.Error(err))
		return nil, "", fmt.Errorf("failed to retrieve user: %w", err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		metrics.RecordAuth("login", "rejected")
		return nil, "", ErrInvalidCredentials
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		metrics.RecordAuth("login", "rejected")
		return nil, "", ErrInvalidCredentials
	}

	tokenString, _, err := s.tokens.Issue(user)
	if err != nil {
		s.logger.Error("Failed to generate JWT token", zap.Error(err))
		return nil, "", err
	}

	metrics.RecordAuth("login", "ok")
	s.logger.Info("User logged in successfully.", zap.Int64("user_id", user.ID))
	return user.Public(), tokenString, nil
}

func (s *authService) CheckSession(token string) (*models.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			s.logger.Debug("Rejected session token", zap.Error(err))
		}
		return nil, err
	}
	return claims, nil
}

// Logout only records the event. Sessions are stateless, so a token handed
// out earlier keeps working until it expires.
func (s *authService) Logout(token string) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		s.logger.Info("Logout without a valid session.")
		return
	}
	s.logger.Info("User logged out.", zap.Int64("user_id", claims.UserID))
}
