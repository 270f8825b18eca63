package domain

import (
	"errors"
	"fmt"
)

// Platform error codes the relay reacts to.
const (
	CodeCannotMessageUser = 50007
	CodeInvalidFormBody   = 50035
)

var (
	// ErrInvalidChannel is returned when a forward target cannot be found.
	ErrInvalidChannel = errors.New("invalid channel")

	// ErrCannotWrite is returned when the bot lacks send permission at a
	// destination and no webhook is configured for it.
	ErrCannotWrite = errors.New("missing send permission")

	// ErrPayloadTooLong matches platform rejections of oversized messages.
	ErrPayloadTooLong = errors.New("message too long")

	// ErrRecipientUnreachable matches rejections by users who block direct
	// messages from the bot.
	ErrRecipientUnreachable = errors.New("recipient does not accept direct messages")

	// ErrEmojiMismatch is returned when translated text carries more custom
	// emoji sites than the source message has emoji.
	ErrEmojiMismatch = errors.New("custom emoji count mismatch")
)

// APIError is a rejected platform call.
type APIError struct {
	Code    int
	Message string
	Status  int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("platform error %d: %s", e.Code, e.Message)
}

// Is maps platform codes onto the relay's sentinel errors.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrPayloadTooLong:
		return e.Code == CodeInvalidFormBody
	case ErrRecipientUnreachable:
		return e.Code == CodeCannotMessageUser
	}
	return false
}
