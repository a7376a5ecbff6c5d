package middleware

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
)

// Field length limits for ledger-bound input.
const (
	MaxTitleLen       = 200
	MaxContentHashLen = 128
)

var (
	// accountRe matches a 0x-prefixed 20-byte hex address.
	accountRe = regexp.MustCompile(`^0x[0-9a-f]{40}$`)
	// contentHashRe matches IPFS CIDs and local content ids.
	contentHashRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]*$`)
)

// ErrorResponse is a helper that returns a standard API error response.
func ErrorResponse(c fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
		},
	})
}

// ValidateArticleID parses a positive article id from a path or query
// string value.
func ValidateArticleID(raw string) (uint64, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "article id is required"
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, "article id must be a positive integer"
	}
	return id, ""
}

// ValidateAccount checks that an account is a well-formed 0x-prefixed
// address and normalizes it to lowercase.
func ValidateAccount(account string) (string, string) {
	account = strings.ToLower(strings.TrimSpace(account))
	if account == "" {
		return "", "account is required"
	}
	if !accountRe.MatchString(account) {
		return "", "account must be a 0x-prefixed 40-character hex address"
	}
	return account, ""
}

// ValidateTitle checks that a title is non-empty and within limits.
func ValidateTitle(title string) (string, string) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "title is required"
	}
	if len(title) > MaxTitleLen {
		return "", "title must be at most 200 characters"
	}
	return title, ""
}

// ValidateContentHash checks that a content hash looks like an IPFS CID
// or a local content id.
func ValidateContentHash(hash string) (string, string) {
	hash = strings.TrimSpace(hash)
	if hash == "" {
		return "", "contentHash is required"
	}
	if len(hash) > MaxContentHashLen {
		return "", "contentHash must be at most 128 characters"
	}
	if !contentHashRe.MatchString(hash) {
		return "", "contentHash contains invalid characters"
	}
	return hash, ""
}
