package handlers

import (
	"net/mail"
	"strings"
	"unicode/utf8"
)

// Validation limits for form fields.
const (
	maxTitleLen    = 255
	maxContentLen  = 100_000
	maxNameLen     = 255
	maxEmailLen    = 255
	minPasswordLen = 6
	maxPasswordLen = 72 // bcrypt ignores anything longer
	maxCommentLen  = 5_000
)

// validatePost checks post form inputs and returns the first error found.
func validatePost(title, content string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 255 characters)."
	}
	if utf8.RuneCountInString(content) > maxContentLen {
		return "Content is too long (max 100,000 characters)."
	}
	return ""
}

// validateTitle checks a category or tag title.
func validateTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 255 characters)."
	}
	return ""
}

// validateUser checks user form inputs. The password is required on
// create only; on update an empty password keeps the current one.
func validateUser(name, email, password string, requirePassword bool) (field, msg string) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	switch {
	case name == "":
		return "name", "Name is required."
	case utf8.RuneCountInString(name) > maxNameLen:
		return "name", "Name is too long (max 255 characters)."
	case email == "":
		return "email", "Email is required."
	case len(email) > maxEmailLen:
		return "email", "Email is too long (max 255 characters)."
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Name != "" || addr.Address != email {
		return "email", "Email is not a valid address."
	}
	if password == "" {
		if requirePassword {
			return "password", "Password is required."
		}
		return "", ""
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "password", "Password is too short (min 6 characters)."
	}
	if len(password) > maxPasswordLen {
		return "password", "Password is too long (max 72 bytes)."
	}
	return "", ""
}

// validateComment checks a comment body.
func validateComment(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return "Comment text is required."
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "Comment is too long (max 5,000 characters)."
	}
	return ""
}
