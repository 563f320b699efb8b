package platform

import (
	"github.com/google/uuid"
)

// NewID returns a fresh UUID, used to correlate the log lines of one
// interactive run.
func NewID() string {
	return uuid.New().String()
}
