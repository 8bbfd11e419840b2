package common

import (
	"errors"
	"fmt"
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to the user
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (bad input, refused action)
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: MsgGenericError,
		LogMessage:  logMessage,
		Err:         err,
	}
}

// UserMessage picks the text shown to the user for err
func UserMessage(err error) string {
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.UserMessage != "" {
		return botErr.UserMessage
	}
	return MsgGenericError
}

// IsUserError reports whether err was caused by the user rather than the system
func IsUserError(err error) bool {
	var botErr *BotError
	return errors.As(err, &botErr) && botErr.Err == nil
}
