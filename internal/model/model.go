package model

import "time"

type ButtonKind string

const (
	// ButtonKindBuiltin runs one of the client's own toolbar actions.
	ButtonKindBuiltin ButtonKind = "builtin"
	// ButtonKindCommand runs a command palette entry by id.
	ButtonKindCommand ButtonKind = "command"
	// ButtonKindTemplate inserts a text snippet.
	ButtonKindTemplate ButtonKind = "template"
)

func (k ButtonKind) Valid() bool {
	switch k {
	case ButtonKindBuiltin, ButtonKindCommand, ButtonKindTemplate:
		return true
	default:
		return false
	}
}

// Button is one entry of the toolbar row. SortKey defines display order; keys are contiguous
// from 1 after every reorder.
type Button struct {
	ID      string     `json:"id" validate:"required,startswith=btn-"`
	Name    string     `json:"name" validate:"required,max=48"`
	Icon    string     `json:"icon" validate:"max=8"`
	Kind    ButtonKind `json:"kind" validate:"required,oneof=builtin command template"`
	Action  string     `json:"action" validate:"required,max=512"`
	Width   int        `json:"width" validate:"gte=1,lte=16"`
	SortKey int        `json:"sortKey" validate:"gte=0"`

	Enabled bool `json:"enabled"`
	// Pinned buttons are always shown first and cannot be dragged.
	Pinned bool `json:"pinned"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Label is the icon and name as shown in lists.
func (b Button) Label() string {
	if b.Icon == "" {
		return b.Name
	}
	return b.Icon + " " + b.Name
}
