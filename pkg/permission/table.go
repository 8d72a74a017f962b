package permission

import (
	"encoding/json"

	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

// Row is one menu in the override editor
type Row struct {
	MenuID   uint
	MenuName string
	MenuPath string
	Default  Grant
	Override Override
}

// Effective returns the permissions enforced for the row
func (r Row) Effective() Grant {
	return r.Override.Resolve(r.Default)
}

// IsCustomized reports whether the row deviates from the role on any action
func (r Row) IsCustomized() bool {
	return r.Override.IsCustomized()
}

// IsInherited reports whether one action follows the role default
func (r Row) IsInherited(a Action) bool {
	return r.Override.Get(a) == nil
}

func (r Row) clone() Row {
	r.Override = r.Override.Clone()
	return r
}

type rowJSON struct {
	MenuID   uint   `json:"menu_id"`
	MenuName string `json:"menu_name"`
	MenuPath string `json:"menu_path"`
	Override
	IsCustomized bool  `json:"is_customized"`
	Effective    Grant `json:"effective"`
	RoleDefault  Grant `json:"role_default"`
}

// MarshalJSON renders the raw override, the resolved values and the
// customized flag side by side
func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(rowJSON{
		MenuID:       r.MenuID,
		MenuName:     r.MenuName,
		MenuPath:     r.MenuPath,
		Override:     r.Override,
		IsCustomized: r.IsCustomized(),
		Effective:    r.Effective(),
		RoleDefault:  r.Default,
	})
}

// UnmarshalJSON reads the fields written by MarshalJSON. Derived fields are
// ignored.
func (r *Row) UnmarshalJSON(data []byte) error {
	var v rowJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = Row{
		MenuID:   v.MenuID,
		MenuName: v.MenuName,
		MenuPath: v.MenuPath,
		Default:  v.RoleDefault,
		Override: v.Override,
	}
	return nil
}

// Table is the override editor state for one user
type Table struct {
	rows  []Row
	index map[uint]int
	cfg   config
}

// NewTable builds one row per menu in the tree. Entries in defaults or
// overrides that do not match a menu are ignored; menus without a default
// start with nothing granted.
func NewTable(menus []menu.Node, defaults map[uint]Grant, overrides map[uint]Override, opts ...Option) *Table {
	t := &Table{cfg: newConfig(opts)}
	t.build(menus, defaults, overrides)
	t.notify()
	return t
}

func (t *Table) build(menus []menu.Node, defaults map[uint]Grant, overrides map[uint]Override) {
	entries := menu.Flatten(menus)
	t.rows = make([]Row, 0, len(entries))
	t.index = make(map[uint]int, len(entries))
	for _, e := range entries {
		if _, dup := t.index[e.ID]; dup {
			continue
		}
		t.index[e.ID] = len(t.rows)
		t.rows = append(t.rows, Row{
			MenuID:   e.ID,
			MenuName: e.DisplayName,
			MenuPath: e.Path,
			Default:  defaults[e.ID],
			Override: overrides[e.ID].Clone(),
		})
	}
}

// Rebuild replaces the table contents with rows computed from new inputs
func (t *Table) Rebuild(menus []menu.Node, defaults map[uint]Grant, overrides map[uint]Override) {
	t.build(menus, defaults, overrides)
	t.notify()
}

// ReadOnly reports whether mutations are disabled
func (t *Table) ReadOnly() bool {
	return t.cfg.readOnly
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns a copy of every row in menu order
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// Row returns a copy of the row for menuID
func (t *Table) Row(menuID uint) (Row, bool) {
	i, ok := t.index[menuID]
	if !ok {
		return Row{}, false
	}
	return t.rows[i].clone(), true
}

// Customized returns copies of the rows carrying at least one override
func (t *Table) Customized() []Row {
	var out []Row
	for _, r := range t.rows {
		if r.IsCustomized() {
			out = append(out, r.clone())
		}
	}
	return out
}

// CustomizedCount returns the number of rows carrying an override
func (t *Table) CustomizedCount() int {
	n := 0
	for _, r := range t.rows {
		if r.IsCustomized() {
			n++
		}
	}
	return n
}

// Cycle advances one action of a row through inherit -> !default -> false
// -> inherit. It returns false when the menu is unknown or the table is
// read-only.
func (t *Table) Cycle(menuID uint, a Action) bool {
	if t.cfg.readOnly || !a.IsAAction() {
		return false
	}
	i, ok := t.index[menuID]
	if !ok {
		return false
	}
	r := &t.rows[i]
	r.Override = r.Override.With(a, Next(r.Override.Get(a), r.Default.Get(a)))
	t.notify()
	return true
}

// Reset returns every action of a row to the role default. The change
// callback only fires when the row was customized.
func (t *Table) Reset(menuID uint) bool {
	if t.cfg.readOnly {
		return false
	}
	i, ok := t.index[menuID]
	if !ok {
		return false
	}
	if t.rows[i].IsCustomized() {
		t.rows[i].Override = Override{}
		t.notify()
	}
	return true
}

// ResetAll returns every row to the role defaults
func (t *Table) ResetAll() bool {
	if t.cfg.readOnly {
		return false
	}
	changed := false
	for i := range t.rows {
		if t.rows[i].IsCustomized() {
			t.rows[i].Override = Override{}
			changed = true
		}
	}
	if changed {
		t.notify()
	}
	return true
}

func (t *Table) notify() {
	if t.cfg.onChange != nil {
		t.cfg.onChange(t.Rows())
	}
}
