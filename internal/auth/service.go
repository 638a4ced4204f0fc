package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yuluo11/CET-Smart-Learn/internal/config"
	"github.com/yuluo11/CET-Smart-Learn/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrEmailRequired      = errors.New("email is required")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrInvalidCredentials = errors.New("邮箱或密码错误")
	ErrEmailNotVerified   = errors.New("邮箱尚未验证，请先输入验证码完成验证")
	ErrInvalidOTP         = errors.New("验证码错误或已过期")
	ErrInvalidToken       = errors.New("invalid token")
	ErrSessionNotFound    = errors.New("session not found")
)

// EventType classifies a session change notification.
type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventTokenRefreshed EventType = "token_refreshed"
	EventSignedOut      EventType = "signed_out"
)

// Event is an asynchronous session-change notification. Session is nil for
// sign-out events.
type Event struct {
	Type    EventType
	Session *Session
}

// Session is an issued token-pair session. AccessToken and RefreshToken are
// populated only when the session is created or refreshed; lookups by ID
// return them empty because only hashes are stored.
type Session struct {
	ID           string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	User         *entities.User
}

// Service handles authentication and session lifecycle. It is the identity
// provider behind the session store: every sign-in, token refresh and
// sign-out is broadcast to subscribers.
type Service struct {
	db     *gorm.DB
	config config.Auth

	mu          sync.Mutex
	subscribers map[int]chan Event
	nextSubID   int
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:          db,
		config:      cfg,
		subscribers: make(map[int]chan Event),
	}
}

// Subscribe registers for session-change events. The returned func cancels
// the subscription and closes the channel.
func (s *Service) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan Event, 8)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

func (s *Service) emit(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- event:
		default:
			// Slow subscribers drop events rather than block sign-in.
		}
	}
}

// SignUp registers a new, unverified user. A one-time code must be verified
// before any session is granted. The code is logged in place of a mailer.
func (s *Service) SignUp(email, password, username string) (*entities.User, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}

	var existing entities.User
	err := s.db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	code, err := GenerateOTPCode()
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	expires := time.Now().Add(s.config.OTPLifetime)

	user := &entities.User{
		Email:        email,
		PasswordHash: passwordHash,
		OTPCode:      code,
		OTPExpiresAt: &expires,
		Metadata:     map[string]any{},
	}
	if username != "" {
		user.Metadata["username"] = username
	}

	if err := s.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("Verification code for %s: %s (expires %s)", email, code, expires.Format(time.RFC3339))

	return user, nil
}

// VerifyOTP checks a one-time code, marks the user verified, ensures an
// initial stats row exists and grants the first session.
func (s *Service) VerifyOTP(email, code string) (*Session, error) {
	var user entities.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOTP
		}
		return nil, err
	}

	if user.OTPCode == "" || user.OTPCode != code {
		return nil, ErrInvalidOTP
	}
	if user.OTPExpiresAt == nil || time.Now().After(*user.OTPExpiresAt) {
		return nil, ErrInvalidOTP
	}

	err := s.db.Model(&user).Updates(map[string]any{
		"verified":       true,
		"otp_code":       "",
		"otp_expires_at": nil,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to verify user: %w", err)
	}
	user.Verified = true
	user.OTPCode = ""
	user.OTPExpiresAt = nil

	if err := s.ensureStatsRow(user.ID); err != nil {
		return nil, err
	}

	session, err := s.createSession(&user)
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

// SignIn validates credentials and issues a session. The session-change event
// is emitted regardless of whether the caller uses the returned session.
func (s *Service) SignIn(email, password string) (*Session, error) {
	var user entities.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !user.Verified {
		return nil, ErrEmailNotVerified
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	now := time.Now()
	s.db.Model(&user).Update("last_login_at", now)

	session, err := s.createSession(&user)
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventSignedIn, Session: session})
	return session, nil
}

// RefreshSession rotates a token pair. The old session row is replaced.
func (s *Service) RefreshSession(refreshToken string) (*Session, error) {
	var row entities.AuthSession
	err := s.db.Preload("User").
		Where("refresh_token_hash = ?", HashToken(refreshToken)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := s.db.Delete(&entities.AuthSession{}, "id = ?", row.ID).Error; err != nil {
		return nil, err
	}

	session, err := s.createSession(&row.User)
	if err != nil {
		return nil, err
	}

	s.emit(Event{Type: EventTokenRefreshed, Session: session})
	return session, nil
}

// SignOut revokes a session by ID and broadcasts the sign-out.
func (s *Service) SignOut(sessionID string) error {
	result := s.db.Delete(&entities.AuthSession{}, "id = ?", sessionID)
	if result.Error != nil {
		return fmt.Errorf("failed to revoke session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	s.emit(Event{Type: EventSignedOut, Session: nil})
	return nil
}

// UpdateMetadata merges key/value pairs into the user's metadata and returns
// the updated user.
func (s *Service) UpdateMetadata(userID string, data map[string]any) (*entities.User, error) {
	var user entities.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.Metadata == nil {
		user.Metadata = map[string]any{}
	}
	for k, v := range data {
		user.Metadata[k] = v
	}

	if err := s.db.Model(&user).Update("metadata", user.Metadata).Error; err != nil {
		return nil, fmt.Errorf("failed to update metadata: %w", err)
	}
	return &user, nil
}

// CurrentSession returns the most recent unexpired session, with token fields
// empty (only hashes are stored). Returns nil when no session exists.
func (s *Service) CurrentSession() (*Session, error) {
	var row entities.AuthSession
	err := s.db.Preload("User").
		Where("expires_at > ?", time.Now()).
		Order("created_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &Session{ID: row.ID, ExpiresAt: row.ExpiresAt, User: &row.User}, nil
}

// ValidateToken resolves a bearer access token to its user.
func (s *Service) ValidateToken(token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	var row entities.AuthSession
	err := s.db.Preload("User").
		Where("token_hash = ? AND expires_at > ?", HashToken(token), time.Now()).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return &row.User, nil
}

// GetUserByID retrieves a user by ID.
func (s *Service) GetUserByID(id string) (*entities.User, error) {
	var user entities.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DeleteExpiredOTPCodes clears verification codes that are past their expiry.
// Called by the scheduler.
func (s *Service) DeleteExpiredOTPCodes() (int64, error) {
	result := s.db.Model(&entities.User{}).
		Where("otp_code != '' AND otp_expires_at < ?", time.Now()).
		Updates(map[string]any{"otp_code": "", "otp_expires_at": nil})
	return result.RowsAffected, result.Error
}

func (s *Service) createSession(user *entities.User) (*Session, error) {
	access, accessHash, err := GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, refreshHash, err := GenerateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	row := entities.AuthSession{
		UserID:           user.ID,
		TokenHash:        accessHash,
		RefreshTokenHash: refreshHash,
		ExpiresAt:        time.Now().Add(s.config.TokenExpiry),
	}
	if err := s.db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	return &Session{
		ID:           row.ID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    row.ExpiresAt,
		User:         user,
	}, nil
}

func (s *Service) ensureStatsRow(userID string) error {
	var count int64
	err := s.db.Model(&entities.UserStats{}).Where("user_id = ?", userID).Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	return s.db.Create(&entities.UserStats{UserID: userID, DailyGoal: 50}).Error
}
