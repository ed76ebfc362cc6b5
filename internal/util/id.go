package util

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a compact unique identifier for documents and files.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
