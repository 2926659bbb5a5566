package security

import (
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Link tokens are plain base64 of delimited plaintext. They are not
// signed; the trust boundary is possession of the link itself.
const (
	ResetTokenTTL  = time.Hour
	InviteTokenTTL = 30 * 24 * time.Hour
)

var (
	ErrTokenMalformed = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token has expired")
)

// NewResetToken encodes email:unixMillis.
func NewResetToken(email string, now time.Time) string {
	return base64.URLEncoding.EncodeToString(
		[]byte(email + ":" + strconv.FormatInt(now.UnixMilli(), 10)))
}

// ParseResetToken returns the email baked into a reset token, rejecting
// tokens older than ResetTokenTTL.
func ParseResetToken(token string, now time.Time) (string, error) {
	parts, err := decodeParts(token, 2)
	if err != nil {
		return "", err
	}

	if err := checkAge(parts[1], now, ResetTokenTTL); err != nil {
		return "", err
	}

	return parts[0], nil
}

// NewInviteToken encodes email:workspaceCode:unixMillis.
func NewInviteToken(email, workspaceCode string, now time.Time) string {
	return base64.URLEncoding.EncodeToString(
		[]byte(email + ":" + workspaceCode + ":" + strconv.FormatInt(now.UnixMilli(), 10)))
}

// ParseInviteToken returns the email and workspace code of an invite
// token, rejecting tokens older than InviteTokenTTL.
func ParseInviteToken(token string, now time.Time) (email, workspaceCode string, err error) {
	parts, err := decodeParts(token, 3)
	if err != nil {
		return "", "", err
	}

	if err := checkAge(parts[2], now, InviteTokenTTL); err != nil {
		return "", "", err
	}

	return parts[0], parts[1], nil
}

func decodeParts(token string, want int) ([]string, error) {
	raw, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	parts := strings.Split(string(raw), ":")
	if len(parts) != want {
		return nil, ErrTokenMalformed
	}

	for _, p := range parts {
		if p == "" {
			return nil, ErrTokenMalformed
		}
	}

	return parts, nil
}

func checkAge(millis string, now time.Time, ttl time.Duration) error {
	ts, err := strconv.ParseInt(millis, 10, 64)
	if err != nil {
		return ErrTokenMalformed
	}

	issued := time.UnixMilli(ts)
	if now.Sub(issued) > ttl {
		return ErrTokenExpired
	}

	return nil
}
