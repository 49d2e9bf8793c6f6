package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an account that owns documents. IDs are 36-char UUID strings,
// assigned at creation when absent.
type User struct {
	ID              string         `json:"id"`
	Email           string         `json:"email"`
	HashedPassword  string         `json:"-"`
	FullName        string         `json:"full_name,omitempty"`
	IsActive        bool           `json:"is_active"`
	IsSuperuser     bool           `json:"is_superuser"`
	Company         string         `json:"company,omitempty"`
	JobTitle        string         `json:"job_title,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	AvatarURL       string         `json:"avatar_url,omitempty"`
	Preferences     map[string]any `json:"preferences,omitempty"`
	APIKey          string         `json:"-"`
	APIKeyExpiresAt *time.Time     `json:"api_key_expires_at,omitempty"`
	LastLoginAt     *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// SetPassword hashes and stores the credential.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hashed)
	return nil
}

// CheckPassword reports whether plain matches the stored credential.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(plain)) == nil
}

// APIKeyValid reports whether the user's API key is present and unexpired at
// the given time.
func (u *User) APIKeyValid(now time.Time) bool {
	if u.APIKey == "" {
		return false
	}
	if u.APIKeyExpiresAt == nil {
		return true
	}
	return now.Before(*u.APIKeyExpiresAt)
}
