package reorder

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionActive is returned when a second drag session is requested, or when the list
	// owner tries to replace items while a drag is in progress.
	ErrSessionActive = errors.New("reorder: drag session already active")

	ErrItemNotFound    = errors.New("reorder: item not found")
	ErrNotReorderable  = errors.New("reorder: item is not reorderable")
	ErrElementDetached = errors.New("reorder: element is no longer in the layout")
)

// PersistError reports that the host rejected a committed order. The order stays committed in
// memory and on screen.
type PersistError struct {
	Order []string
	Err   error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("reorder: persist %d items: %v", len(e.Order), e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
