package server

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"yatube/internal/logging"
)

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// reservedUsernames would be shadowed by fixed routes.
var reservedUsernames = map[string]bool{
	"about":   true,
	"auth":    true,
	"follow":  true,
	"group":   true,
	"media":   true,
	"metrics": true,
	"new":     true,
}

func profileURL(username string) string {
	return "/" + url.PathEscape(username) + "/"
}

func postURL(username string, id uint) string {
	return profileURL(username) + strconv.FormatUint(uint64(id), 10) + "/"
}

func loginURL(next string) string {
	return "/auth/login/?next=" + url.QueryEscape(next)
}

// safeNext only allows local redirect targets.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

func parseID(s string) (uint, bool) {
	id, err := strconv.ParseUint(s, 10, 0)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func redirect(w http.ResponseWriter, r *http.Request, to string) {
	logging.Logger.WithField("to", to).Debug("Redirecting")
	http.Redirect(w, r, to, http.StatusFound)
}
