package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"toolbar-cli/internal/model"
	"toolbar-cli/internal/reorder"
)

type DB struct {
	Version int            `json:"version"`
	Buttons []model.Button `json:"buttons"`
}

type Store struct {
	Dir string
}

// DefaultDir resolves the data directory: TOOLBAR_DIR, else <configDir>/data.
func DefaultDir() (string, error) {
	if v := strings.TrimSpace(os.Getenv("TOOLBAR_DIR")); v != "" {
		return v, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) Load(ctx context.Context) (*DB, error) {
	return s.LoadSQLite(ctx)
}

func (s Store) Save(ctx context.Context, db *DB) error {
	return s.SaveSQLite(ctx, db)
}

// DefaultDB is the toolbar a fresh install starts with. The settings button is pinned first.
func DefaultDB(now time.Time) (*DB, error) {
	defs := []struct {
		name, icon, action string
		kind               model.ButtonKind
		pinned             bool
	}{
		{"Settings", "⚙", "open-settings", model.ButtonKindBuiltin, true},
		{"Search", "⌕", "global-search", model.ButtonKindBuiltin, false},
		{"Daily note", "◷", "open-daily-note", model.ButtonKindCommand, false},
		{"New note", "+", "new-note", model.ButtonKindBuiltin, false},
		{"Outline", "≡", "toggle-outline", model.ButtonKindBuiltin, false},
		{"Timestamp", "⏱", "{{now}}", model.ButtonKindTemplate, false},
	}
	db := &DB{Version: 1}
	for i, d := range defs {
		id, err := db.NewButtonID()
		if err != nil {
			return nil, err
		}
		db.Buttons = append(db.Buttons, model.Button{
			ID:        id,
			Name:      d.name,
			Icon:      d.icon,
			Kind:      d.kind,
			Action:    d.action,
			Width:     2,
			SortKey:   i + 1,
			Enabled:   true,
			Pinned:    d.pinned,
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	return db, nil
}

// Sorted returns the buttons in display order: pinned first, then by sort key.
func (db *DB) Sorted() []model.Button {
	out := append([]model.Button{}, db.Buttons...)
	sortButtons(out)
	return out
}

func sortButtons(bs []model.Button) {
	sort.SliceStable(bs, func(i, j int) bool {
		if bs[i].Pinned != bs[j].Pinned {
			return bs[i].Pinned
		}
		if bs[i].SortKey != bs[j].SortKey {
			return bs[i].SortKey < bs[j].SortKey
		}
		return bs[i].ID < bs[j].ID
	})
}

// normalize sorts buttons into display order and makes sort keys contiguous from 1.
func (db *DB) normalize() {
	if db.Version == 0 {
		db.Version = 1
	}
	sortButtons(db.Buttons)
	for i := range db.Buttons {
		db.Buttons[i].SortKey = i + 1
	}
}

func (db *DB) FindButton(id string) (*model.Button, bool) {
	id = strings.TrimSpace(id)
	for i := range db.Buttons {
		if db.Buttons[i].ID == id {
			return &db.Buttons[i], true
		}
	}
	return nil, false
}

func (db *DB) AddButton(b model.Button, now time.Time) (model.Button, error) {
	if b.ID == "" {
		id, err := db.NewButtonID()
		if err != nil {
			return model.Button{}, err
		}
		b.ID = id
	}
	if _, exists := db.FindButton(b.ID); exists {
		return model.Button{}, fmt.Errorf("button already exists: %s", b.ID)
	}
	if b.Width == 0 {
		b.Width = 2
	}
	b.SortKey = db.NextSortKey()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := ValidateButton(b); err != nil {
		return model.Button{}, err
	}
	db.Buttons = append(db.Buttons, b)
	db.normalize()
	return b, nil
}

// NextSortKey is one past the largest sort key in use.
func (db *DB) NextSortKey() int {
	next := 1
	for _, b := range db.Buttons {
		if b.SortKey >= next {
			next = b.SortKey + 1
		}
	}
	return next
}

func (db *DB) RemoveButton(id string) error {
	for i := range db.Buttons {
		if db.Buttons[i].ID == id {
			db.Buttons = append(db.Buttons[:i], db.Buttons[i+1:]...)
			db.normalize()
			return nil
		}
	}
	return errNotFound("button", id)
}

// ReorderItems projects the buttons, in display order, onto the reorder core's item type.
func (db *DB) ReorderItems() []reorder.Item {
	sorted := db.Sorted()
	out := make([]reorder.Item, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, ButtonItem(b))
	}
	return out
}

func ButtonItem(b model.Button) reorder.Item {
	return reorder.Item{ID: b.ID, SortKey: b.SortKey, Enabled: b.Enabled, Pinned: b.Pinned}
}

// ApplyOrder copies the sort keys of order onto the matching buttons.
func (db *DB) ApplyOrder(order []reorder.Item, now time.Time) {
	keys := make(map[string]int, len(order))
	for _, it := range order {
		keys[it.ID] = it.SortKey
	}
	for i := range db.Buttons {
		if k, ok := keys[db.Buttons[i].ID]; ok && db.Buttons[i].SortKey != k {
			db.Buttons[i].SortKey = k
			db.Buttons[i].UpdatedAt = now
		}
	}
	sortButtons(db.Buttons)
}
