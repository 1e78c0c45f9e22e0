package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/logger"
	"github.com/easyrent/vehiclerental/internal/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const defaultPasswordCost = 10

type UserUseCase interface {
	SignUp(ctx context.Context, input SignUpInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Logout(ctx context.Context, sessionID string) error
	Resolve(ctx context.Context, sessionID string) (int64, error)
	Profile(ctx context.Context, userID int64) (*domain.User, error)
	UpdateProfile(ctx context.Context, userID int64, input UpdateProfileInput) error
	SetAvatar(ctx context.Context, userID int64, path string) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, userID int64, ttl time.Duration) error
	ResolveSession(ctx context.Context, sessionID string) (int64, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

type CaptchaVerifier interface {
	Verify(ctx context.Context, id, answer string) error
}

type SignUpInput struct {
	FullName string
	DOB      time.Time
	Email    string
	Contact  string
	City     string
	State    string
	Pincode  string
	Username string
	Password string
}

// UpdateProfileInput changes the address fields. A non-empty Password is
// only applied together with a solved CAPTCHA.
type UpdateProfileInput struct {
	City          string
	State         string
	Pincode       string
	Password      string
	CaptchaID     string
	CaptchaAnswer string
}

type UserService struct {
	users        repository.UserRepository
	sessions     SessionStore
	captcha      CaptchaVerifier
	sessionTTL   time.Duration
	passwordCost int
	log          logger.Logger
}

type UserServiceOption func(*UserService)

func WithSessionTTL(ttl time.Duration) UserServiceOption {
	return func(s *UserService) {
		s.sessionTTL = ttl
	}
}

func WithPasswordCost(cost int) UserServiceOption {
	return func(s *UserService) {
		s.passwordCost = cost
	}
}

func WithLogger(log logger.Logger) UserServiceOption {
	return func(s *UserService) {
		s.log = log
	}
}

func NewUserService(users repository.UserRepository, sessions SessionStore, captcha CaptchaVerifier, opts ...UserServiceOption) *UserService {
	s := &UserService{
		users:        users,
		sessions:     sessions,
		captcha:      captcha,
		sessionTTL:   24 * time.Hour,
		passwordCost: defaultPasswordCost,
		log:          logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Action("users")
	return s
}

func (s *UserService) SignUp(ctx context.Context, in SignUpInput) (*domain.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.FullName == "" || in.DOB.IsZero() || in.Email == "" || in.Contact == "" || in.City == "" ||
		in.State == "" || in.Pincode == "" || in.Username == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: all fields are required", domain.ErrValidation)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateUser
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		FullName:     in.FullName,
		DOB:          in.DOB,
		Email:        in.Email,
		Contact:      in.Contact,
		City:         in.City,
		State:        in.State,
		Pincode:      in.Pincode,
		Username:     in.Username,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks the credentials and opens a session. Unknown email and wrong
// password are reported identically.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("%w: email and password required", domain.ErrValidation)
	}

	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", domain.ErrInvalidCredentials
		}
		return nil, "", err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", domain.ErrInvalidCredentials
	}

	sessionID := uuid.NewString()
	if err := s.sessions.CreateSession(ctx, sessionID, user.ID, s.sessionTTL); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}
	return user, sessionID, nil
}

func (s *UserService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}

func (s *UserService) Resolve(ctx context.Context, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, domain.ErrUnauthorized
	}
	return s.sessions.ResolveSession(ctx, sessionID)
}

func (s *UserService) Profile(ctx context.Context, userID int64) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID int64, in UpdateProfileInput) error {
	if in.City == "" || in.State == "" || in.Pincode == "" {
		return fmt.Errorf("%w: city, state and pincode are required", domain.ErrValidation)
	}

	var hash []byte
	if in.Password != "" {
		if err := s.captcha.Verify(ctx, in.CaptchaID, in.CaptchaAnswer); err != nil {
			return err
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(in.Password), s.passwordCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	if err := s.users.UpdateProfile(ctx, userID, in.City, in.State, in.Pincode); err != nil {
		return err
	}
	if hash != nil {
		if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
			return err
		}
		s.log.Info("password changed", "user_id", userID)
	}
	return nil
}

func (s *UserService) SetAvatar(ctx context.Context, userID int64, path string) error {
	return s.users.UpdateAvatar(ctx, userID, path)
}

var _ UserUseCase = (*UserService)(nil)
