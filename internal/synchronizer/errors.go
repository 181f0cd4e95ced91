package synchronizer

import (
	"errors"
	"fmt"
)

// NotFoundLocallyError reports a referenced parent that is not in the store
type NotFoundLocallyError struct {
	Kind      string
	SpecialID string
}

func (e *NotFoundLocallyError) Error() string {
	return fmt.Sprintf("%s %s not found locally", e.Kind, e.SpecialID)
}

// IsNotFoundLocally reports whether err wraps a NotFoundLocallyError
func IsNotFoundLocally(err error) bool {
	var nf *NotFoundLocallyError
	return errors.As(err, &nf)
}
