package helpers

import "fmt"

// Must panics with a message-annotated error if err is not nil.
func Must(err error, msg string, args ...any) {
	if err == nil {
		return
	}
	panic(fmt.Errorf("%s: %w", fmt.Sprintf(msg, args...), err))
}
