package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an authenticated identity. Metadata holds free-form profile values
// (username, avatar URL, avatar seed) merged via the metadata update endpoint.
type User struct {
	ID           string         `gorm:"primaryKey;size:36" json:"id"`
	Email        string         `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string         `gorm:"size:100" json:"-"`
	Verified     bool           `gorm:"default:false" json:"verified"`
	OTPCode      string         `gorm:"size:10" json:"-"`
	OTPExpiresAt *time.Time     `json:"-"`
	Metadata     map[string]any `gorm:"serializer:json" json:"metadata"`
	LastLoginAt  *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// AuthSession is a persisted token-pair session. Only token hashes are stored.
// Named auth_sessions because the cookie session store owns the sessions table.
type AuthSession struct {
	ID               string    `gorm:"primaryKey;size:36" json:"id"`
	UserID           string    `gorm:"index;size:36" json:"user_id"`
	TokenHash        string    `gorm:"uniqueIndex;size:64" json:"-"`
	RefreshTokenHash string    `gorm:"uniqueIndex;size:64" json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	User             User      `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
}

func (User) TableName() string        { return "users" }
func (AuthSession) TableName() string { return "auth_sessions" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (s *AuthSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
