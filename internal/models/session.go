package models

import "time"

// DefaultSessionTTL is the token validity window used when configuration
// does not override it.
const DefaultSessionTTL = 14 * 24 * time.Hour

// Session is one issued auth token. Expiry is lazy: rows persist past
// expiration_time until logout or an explicit purge.
type Session struct {
	AuthToken      ID        `json:"auth_token" gorm:"primaryKey"`
	UserID         ID        `json:"user_id" gorm:"not null;index"`
	CreationTime   time.Time `json:"creation_time" gorm:"not null"`
	ExpirationTime time.Time `json:"expiration_time" gorm:"not null"`
}

func (Session) TableName() string {
	return "sessions"
}

// NewSession issues a fresh token for a user.
func NewSession(userID ID, ttl time.Duration) *Session {
	now := time.Now().UTC()
	return &Session{
		AuthToken:      NewID(),
		UserID:         userID,
		CreationTime:   now,
		ExpirationTime: now.Add(ttl),
	}
}

// Expired reports whether the token is past its window at the given time.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpirationTime)
}
