package tasks

import "fmt"

// UnknownTaskError reports a task name with no registered runnable.
type UnknownTaskError struct {
	Name string
}

func (e UnknownTaskError) Error() string {
	return fmt.Sprintf("no background task registered as '%s'", e.Name)
}
