package domain

import "time"

// Session is the server-side record behind the session cookie. The identity
// fields are a snapshot taken at login and only resynchronised by a profile update.
type Session struct {
	SessionID string    `json:"id" dynamodbav:"session_id"`
	UserID    string    `json:"user_id" dynamodbav:"user_id"`
	Email     string    `json:"email" dynamodbav:"email"`
	Name      string    `json:"name" dynamodbav:"name"`
	Phone     string    `json:"phone" dynamodbav:"phone"`
	Role      string    `json:"role" dynamodbav:"role"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	ExpiresAt int64     `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
}

// Expired reports whether the absolute session lifetime has elapsed at now.
func (s *Session) Expired(now time.Time) bool {
	return now.Unix() >= s.ExpiresAt
}

// ExpiresTime returns ExpiresAt as a time.Time.
func (s *Session) ExpiresTime() time.Time {
	return time.Unix(s.ExpiresAt, 0).UTC()
}
