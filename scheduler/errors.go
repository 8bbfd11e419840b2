package scheduler

import "fmt"

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("sender panicked: %v", e.value)
}
