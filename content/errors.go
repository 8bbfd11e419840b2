package content

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound = errors.New("not found")
	// ErrNoResult means every attempt failed or returned nothing usable
	ErrNoResult = errors.New("no usable result")
)

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("content api status %d: %s", e.Status, e.Body)
}
