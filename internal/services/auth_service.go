package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrAccountExists is returned when a username or e-mail is already registered.
var ErrAccountExists = errors.New("account already exists")

// ErrBootstrapClosed is returned by Bootstrap once any admin account exists.
var ErrBootstrapClosed = errors.New("an admin account already exists; sign in to register more")

// AuthService authenticates back-office users and issues their tokens.
type AuthService struct {
	users     repositories.AdminUserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	log       *zap.Logger
	// mu serializes account creation so the uniqueness and bootstrap checks
	// see every earlier insert.
	mu sync.Mutex
}

// NewAuthService creates a new AuthService. Tokens are valid for 24 hours.
func NewAuthService(users repositories.AdminUserRepository, jwtSecret string, log *zap.Logger) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  24 * time.Hour,
		log:       log,
	}
}

// Register hashes the password and stores a new admin user.
func (s *AuthService) Register(user *models.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(user)
}

// Bootstrap registers the first admin account. It fails with
// ErrBootstrapClosed when another account already exists, including one
// created by a concurrent Bootstrap.
func (s *AuthService) Bootstrap(user *models.AdminUser) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.users.Count()
	if err != nil {
		return fmt.Errorf("failed to count admin users: %w", err)
	}
	if n > 0 {
		return ErrBootstrapClosed
	}
	s.log.Info("creating first admin account", zap.String("username", user.Username))
	return s.register(user)
}

func (s *AuthService) register(user *models.AdminUser) error {
	if existing, err := s.users.GetByUsername(user.Username); err == nil && existing != nil {
		return fmt.Errorf("%w: username '%s' already taken", ErrAccountExists, user.Username)
	}
	if existing, err := s.users.GetByEmail(user.Email); err == nil && existing != nil {
		return fmt.Errorf("%w: email '%s' already registered", ErrAccountExists, user.Email)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)

	if err := s.users.Create(user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	return nil
}

// Login checks the credentials and returns a signed HS256 token.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(username, password string) (string, error) {
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      now.Add(s.tokenTTL).Unix(),
		"iat":      now.Unix(),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.log.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
