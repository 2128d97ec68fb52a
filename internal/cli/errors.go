package cli

import (
	"errors"

	"toolbar-cli/internal/reorder"
	"toolbar-cli/internal/store"
)

func errNotFound(kind, id string) error {
	return &store.NotFoundError{Kind: kind, ID: id}
}

// ExitCode maps command errors to process exit codes: 2 invalid input, 3 not found,
// 4 saved state could not be written, 1 anything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var nf *store.NotFoundError
	var verr *store.ValidationError
	var perr *reorder.PersistError
	switch {
	case errors.As(err, &nf), errors.Is(err, reorder.ErrItemNotFound):
		return 3
	case errors.As(err, &verr), errors.Is(err, reorder.ErrNotReorderable), errors.Is(err, errUsage):
		return 2
	case errors.As(err, &perr):
		return 4
	default:
		return 1
	}
}

var errUsage = errors.New("usage")
