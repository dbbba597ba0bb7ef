package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("project not found")
	ErrEvaluationNotFound = errors.New("evaluation not found")
	ErrNotATemplate       = errors.New("cannot create from non-template project")
	ErrAlreadyCompleted   = errors.New("evaluation already completed")
)

// SchemaError reports a malformed or unversioned project record. It
// collects every problem found so callers can surface them all at once.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("invalid project record: %s", strings.Join(e.Problems, "; "))
}

// ForbiddenError blocks a mutation with a human-readable reason. The
// reason is shown to users as-is.
type ForbiddenError struct {
	Reason string
}

func (e *ForbiddenError) Error() string {
	return e.Reason
}
