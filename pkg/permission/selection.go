package permission

import (
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

// SelectionRow is one menu in the role editor
type SelectionRow struct {
	MenuID   uint   `json:"menu_id"`
	MenuName string `json:"menu_name"`
	MenuPath string `json:"menu_path"`
	Depth    int    `json:"depth"`
	Selected bool   `json:"is_selected"`
	Grant
}

// Selection is the role editor state. Unlike Table there is no inherit
// state: a menu is either assigned to the role with four flags or not
// assigned at all.
type Selection struct {
	rows  []SelectionRow
	index map[uint]int
	cfg   config
}

// NewSelection builds one row per menu in the tree. A menu is selected iff
// it appears in assigned.
func NewSelection(menus []menu.Node, assigned map[uint]Grant, opts ...Option) *Selection {
	s := &Selection{cfg: newConfig(opts)}
	entries := menu.Flatten(menus)
	s.rows = make([]SelectionRow, 0, len(entries))
	s.index = make(map[uint]int, len(entries))
	for _, e := range entries {
		if _, dup := s.index[e.ID]; dup {
			continue
		}
		g, ok := assigned[e.ID]
		s.index[e.ID] = len(s.rows)
		s.rows = append(s.rows, SelectionRow{
			MenuID:   e.ID,
			MenuName: e.Indented(),
			MenuPath: e.Path,
			Depth:    e.Depth,
			Selected: ok,
			Grant:    g,
		})
	}
	s.notify()
	return s
}

// ReadOnly reports whether mutations are disabled
func (s *Selection) ReadOnly() bool {
	return s.cfg.readOnly
}

// Rows returns a copy of every row in menu order
func (s *Selection) Rows() []SelectionRow {
	out := make([]SelectionRow, len(s.rows))
	copy(out, s.rows)
	return out
}

// Row returns a copy of the row for menuID
func (s *Selection) Row(menuID uint) (SelectionRow, bool) {
	i, ok := s.index[menuID]
	if !ok {
		return SelectionRow{}, false
	}
	return s.rows[i], true
}

// Selected returns the rows assigned to the role
func (s *Selection) Selected() []SelectionRow {
	var out []SelectionRow
	for _, r := range s.rows {
		if r.Selected {
			out = append(out, r)
		}
	}
	return out
}

// SelectedCount returns the number of rows assigned to the role
func (s *Selection) SelectedCount() int {
	n := 0
	for _, r := range s.rows {
		if r.Selected {
			n++
		}
	}
	return n
}

// ToggleSelected flips whether a menu is assigned. Deselecting clears all
// four flags and reselecting does not restore them.
func (s *Selection) ToggleSelected(menuID uint) bool {
	if s.cfg.readOnly {
		return false
	}
	i, ok := s.index[menuID]
	if !ok {
		return false
	}
	r := &s.rows[i]
	r.Selected = !r.Selected
	if !r.Selected {
		r.Grant = Grant{}
	}
	s.notify()
	return true
}

// Toggle flips one flag of a selected row. Unselected rows are left alone
// and false is returned.
func (s *Selection) Toggle(menuID uint, a Action) bool {
	if s.cfg.readOnly || !a.IsAAction() {
		return false
	}
	i, ok := s.index[menuID]
	if !ok || !s.rows[i].Selected {
		return false
	}
	r := &s.rows[i]
	r.Grant = r.Grant.With(a, !r.Grant.Get(a))
	s.notify()
	return true
}

// SelectAll selects every row and grants read on each. Other flags keep
// their values.
func (s *Selection) SelectAll() bool {
	if s.cfg.readOnly {
		return false
	}
	for i := range s.rows {
		s.rows[i].Selected = true
		s.rows[i].Read = true
	}
	s.notify()
	return true
}

// DeselectAll unselects every row and clears its flags
func (s *Selection) DeselectAll() bool {
	if s.cfg.readOnly {
		return false
	}
	for i := range s.rows {
		s.rows[i].Selected = false
		s.rows[i].Grant = Grant{}
	}
	s.notify()
	return true
}

func (s *Selection) notify() {
	if s.cfg.onSelectionChange != nil {
		s.cfg.onSelectionChange(s.Rows())
	}
}
