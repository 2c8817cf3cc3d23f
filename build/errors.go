package build

import (
	"fmt"
	"strings"
)

// MissingProfileError reports that the selected profile has no file. It is
// raised before any document is parsed or any output written.
type MissingProfileError struct {
	Profile string
	Path    string
	// Available lists the profiles that do exist, sorted.
	Available []string
}

// Error implements the error interface.
func (e *MissingProfileError) Error() string {
	msg := fmt.Sprintf("profile not found: %s", e.Path)
	if len(e.Available) > 0 {
		msg += fmt.Sprintf(" (available: %s)", strings.Join(e.Available, ", "))
	}
	return msg
}
