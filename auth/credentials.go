package auth

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode"

	"fresh/apperr"
	"fresh/globals"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLen = 8

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func checkPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func validUsername(s string) bool {
	if len(s) < 3 || len(s) > 32 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return false
		}
	}
	return true
}

func normalizeEmail(s string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return "", apperr.BadRequest("Invalid email address")
	}
	return strings.ToLower(addr.Address), nil
}

func validatePassword(p string) error {
	if len(p) < minPasswordLen {
		return apperr.BadRequest("Password must be at least 8 characters")
	}
	if len(p) > 72 {
		return apperr.BadRequest("Password must be at most 72 characters")
	}
	return nil
}

// setAuthCookie stores token in an httpOnly cookie that lives as long as
// the token.
func setAuthCookie(w http.ResponseWriter, name, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(globals.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   globals.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAuthCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   globals.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
}
