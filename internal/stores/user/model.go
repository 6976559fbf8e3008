package user

import "time"

// User represents a dashboard account
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at"`

	Email        string `json:"email" gorm:"column:email;unique;not null;size:255"`
	PasswordHash string `json:"-" gorm:"column:password_hash;not null;size:255"`
	Name         string `json:"name" gorm:"column:name;not null;size:255"`
}

// TableName overrides the default GORM table name
func (User) TableName() string {
	return "users"
}

// Session represents one authenticated browser session. The token value is
// the session cookie contents
type Session struct {
	Token     string    `json:"token" gorm:"primaryKey;size:36"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at"`

	UserID    string    `json:"user_id" gorm:"column:user_id;size:36;not null;index"`
	ExpiresAt time.Time `json:"expires_at" gorm:"column:expires_at;not null"`
}

// TableName overrides the default GORM table name
func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is past its expiry
func (s *Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}
