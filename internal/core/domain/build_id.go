package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// NewBuildID generates a unique identifier for one build invocation. The
// timestamp prefix keeps IDs sortable in logs; the UUID suffix makes them
// collision-free across machines.
func NewBuildID() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102T150405"), uuid.NewString()[:8])
}
