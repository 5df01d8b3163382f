package loading

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateRegistration = errors.New("loading: collection registered twice")
	ErrNoStore               = errors.New("loading: no asset store in world")
)

// PhaseError is the failure of one run of a loading phase.
type PhaseError struct {
	Phase string
	Errs  []error
}

func (e *PhaseError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("loading: phase %s failed: %s", e.Phase, strings.Join(msgs, "; "))
}

func (e *PhaseError) Unwrap() []error {
	return e.Errs
}
