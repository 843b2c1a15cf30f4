package model

import (
	"strings"
	"time"
)

// User is a registered account. Artifacts reference it through OwnerID.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// NewUser creates a User with a normalized email.
func NewUser(id, username, email, passwordHash string) User {
	return User{
		ID:           id,
		Username:     strings.TrimSpace(username),
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}

// NormalizeEmail lower-cases and trims an address so lookups are stable.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DefaultSourceLanguage is assumed when a translate request names none.
const DefaultSourceLanguage = "en"

// supportedLanguages are the translation targets the client offers.
var supportedLanguages = map[string]string{
	"hi": "Hindi",
	"fr": "French",
	"ru": "Russian",
	"de": "German",
	"ta": "Tamil",
	"ar": "Arabic",
	"zh": "Chinese",
	"el": "Greek",
}

// IsSupportedLanguage reports whether tag is a recognized translation target.
func IsSupportedLanguage(tag string) bool {
	_, ok := supportedLanguages[tag]
	return ok
}

// LanguageName returns the English name for a tag, or the tag itself.
func LanguageName(tag string) string {
	if name, ok := supportedLanguages[tag]; ok {
		return name
	}
	if tag == "en" {
		return "English"
	}
	return tag
}
