package utils

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	emailRegex   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	controlChars = regexp.MustCompile(`[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]`)
	htmlTags     = regexp.MustCompile(`<[^>]*>`)
)

// IsValidEmail validates email format
func IsValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// NormalizeEmail normalizes an email address for consistent comparison
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SanitizeString strips control characters and markup from free text
func SanitizeString(input string) string {
	sanitized := controlChars.ReplaceAllString(input, "")
	sanitized = htmlTags.ReplaceAllString(sanitized, "")
	return strings.TrimSpace(sanitized)
}

// ValidateUUID validates UUID format
func ValidateUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// EscapeLike escapes LIKE wildcards so the input matches literally under ESCAPE '\'
func EscapeLike(input string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(input)
}

// ParseStringList accepts either a JSON array of strings or a comma-separated list
func ParseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	var list []string
	if strings.HasPrefix(raw, "[") && json.Unmarshal([]byte(raw), &list) == nil {
		return compact(list)
	}

	return compact(strings.Split(raw, ","))
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
