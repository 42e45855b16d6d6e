package chat

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxBodyLength caps a single message body in runes.
const MaxBodyLength = 500

var (
	ErrEmptyBody    = errors.New("message body is empty")
	ErrBodyTooLong  = errors.New("message body too long")
	ErrChatDisabled = errors.New("chat is disabled for this league")
)

// Message is one chat line on a league's message board.
type Message struct {
	ID        string
	LeagueID  string
	UserID    string
	Body      string
	CreatedAt time.Time
}

// NormalizeBody trims the body and enforces length bounds.
func NormalizeBody(body string) (string, error) {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return "", ErrEmptyBody
	}
	if n := len([]rune(trimmed)); n > MaxBodyLength {
		return "", fmt.Errorf("%w: %d runes, max %d", ErrBodyTooLong, n, MaxBodyLength)
	}
	return trimmed, nil
}
