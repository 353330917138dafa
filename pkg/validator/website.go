package validator

import (
	"net/url"
	"strings"
)

// MinCheckInterval минимально допустимый интервал проверки в минутах
const MinCheckInterval = 1

func ValidateURL(target string) bool {
	if target == "" {
		return false
	}

	u, err := url.Parse(target)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func ValidateInterval(minutes int) bool {
	return minutes >= MinCheckInterval
}

func ValidateEmail(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	// Домен должен содержать хотя бы одну точку
	return strings.Contains(email[at+1:], ".")
}
