package policy

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/menu"
)

// LoadResult summarizes an applied document
type LoadResult struct {
	Roles  []AppliedStatement `json:"roles"`
	Users  []AppliedStatement `json:"users"`
	DryRun bool               `json:"dry_run"`
}

// AppliedStatement is one role or user written by the loader
type AppliedStatement struct {
	ID      uint `json:"id"`
	Entries int  `json:"entries"`
	// Dropped counts override entries without any action set
	Dropped int `json:"dropped,omitempty"`
}

// Unresolved is a menu reference that matched no active menu
type Unresolved struct {
	Kind    Kind
	Subject uint
	Ref     MenuRef
	Reason  string
}

func (u Unresolved) String() string {
	return fmt.Sprintf("%s %d: %s %s", u.Kind.Tag(), u.Subject, u.Ref, u.Reason)
}

// UnresolvedError is returned when a document references unknown menus
type UnresolvedError struct {
	Refs []Unresolved
}

func (e *UnresolvedError) Error() string {
	lines := make([]string, 0, len(e.Refs))
	for _, ref := range e.Refs {
		lines = append(lines, ref.String())
	}
	return fmt.Sprintf("%d unresolved menu reference(s):\n  %s", len(e.Refs), strings.Join(lines, "\n  "))
}

// Loader applies rights documents through a backend
type Loader struct {
	backend backend.Backend
	dryRun  bool
}

// NewLoader creates a new document loader
func NewLoader(b backend.Backend) *Loader {
	return &Loader{backend: b}
}

// WithDryRun sets whether to resolve references without applying changes
func (l *Loader) WithDryRun(dryRun bool) *Loader {
	l.dryRun = dryRun
	return l
}

// LoadFromReader parses and loads a document from an io.Reader
func (l *Loader) LoadFromReader(ctx context.Context, r io.Reader) (*LoadResult, error) {
	statements, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rights document: %w", err)
	}
	return l.Load(ctx, statements)
}

type menuIndex struct {
	byID   map[uint]menu.Entry
	byPath map[string]menu.Entry
}

func newMenuIndex(tree []menu.Node) menuIndex {
	idx := menuIndex{
		byID:   make(map[uint]menu.Entry),
		byPath: make(map[string]menu.Entry),
	}
	for _, entry := range menu.Flatten(tree) {
		idx.byID[entry.ID] = entry
		if entry.Path != "" {
			if _, dup := idx.byPath[entry.Path]; !dup {
				idx.byPath[entry.Path] = entry
			}
		}
	}
	return idx
}

// resolve returns the menu id a reference names, or a reason it names none
func (idx menuIndex) resolve(ref MenuRef) (uint, string) {
	switch {
	case ref.Menu == 0 && ref.Path == "":
		return 0, "is empty"
	case ref.Menu != 0:
		entry, ok := idx.byID[ref.Menu]
		if !ok {
			return 0, "does not exist"
		}
		if ref.Path != "" && ref.Path != entry.Path {
			return 0, fmt.Sprintf("does not match path %q", entry.Path)
		}
		return entry.ID, ""
	default:
		entry, ok := idx.byPath[ref.Path]
		if !ok {
			return 0, "does not exist"
		}
		return entry.ID, ""
	}
}

type roleWrite struct {
	id    uint
	menus []backend.RoleMenuPermission
}

type userWrite struct {
	id          uint
	permissions []backend.UserMenuPermission
	dropped     int
}

// Load resolves every menu reference and then applies role statements
// before user statements, each in document order. Nothing is written when a
// reference is unresolved.
func (l *Loader) Load(ctx context.Context, statements Statements) (*LoadResult, error) {
	tree, err := l.backend.MenuTree(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch menu tree: %w", err)
	}
	idx := newMenuIndex(tree)

	var (
		unresolved []Unresolved
		roles      []roleWrite
		users      []userWrite
	)

	for _, statement := range statements {
		switch s := statement.(type) {
		case Role:
			w := roleWrite{id: s.ID}
			for _, m := range s.Menus {
				id, reason := idx.resolve(m.MenuRef)
				if reason != "" {
					unresolved = append(unresolved, Unresolved{Kind: KindRole, Subject: s.ID, Ref: m.MenuRef, Reason: reason})
					continue
				}
				w.menus = append(w.menus, backend.RoleMenuPermission{
					MenuID:    id,
					CanRead:   m.Read,
					CanWrite:  m.Write,
					CanUpdate: m.Update,
					CanDelete: m.Delete,
				})
			}
			w.menus = backend.LastPerMenu(w.menus, func(p backend.RoleMenuPermission) uint { return p.MenuID })
			roles = append(roles, w)
		case User:
			w := userWrite{id: s.ID}
			for _, o := range s.Overrides {
				id, reason := idx.resolve(o.MenuRef)
				if reason != "" {
					unresolved = append(unresolved, Unresolved{Kind: KindUser, Subject: s.ID, Ref: o.MenuRef, Reason: reason})
					continue
				}
				w.permissions = append(w.permissions, backend.UserMenuPermission{
					MenuID:    id,
					CanRead:   o.Read,
					CanWrite:  o.Write,
					CanUpdate: o.Update,
					CanDelete: o.Delete,
				})
			}
			// an empty entry repeating a menu still replaces the earlier one
			w.permissions = lo.Filter(
				backend.LastPerMenu(w.permissions, func(p backend.UserMenuPermission) uint { return p.MenuID }),
				func(p backend.UserMenuPermission, _ int) bool {
					if p.Override().IsCustomized() {
						return true
					}
					w.dropped++
					return false
				},
			)
			users = append(users, w)
		default:
			return nil, fmt.Errorf("unsupported statement %T", statement)
		}
	}

	if len(unresolved) > 0 {
		return nil, &UnresolvedError{Refs: unresolved}
	}

	result := &LoadResult{DryRun: l.dryRun}
	for _, w := range roles {
		if !l.dryRun {
			if err := l.backend.AssignRoleMenus(ctx, w.id, w.menus); err != nil {
				return result, fmt.Errorf("failed to assign menus to role %d: %w", w.id, err)
			}
		}
		result.Roles = append(result.Roles, AppliedStatement{ID: w.id, Entries: len(w.menus)})
	}
	for _, w := range users {
		if !l.dryRun {
			if _, err := l.backend.SaveUserRights(ctx, w.id, w.permissions); err != nil {
				return result, fmt.Errorf("failed to save overrides of user %d: %w", w.id, err)
			}
		}
		result.Users = append(result.Users, AppliedStatement{ID: w.id, Entries: len(w.permissions), Dropped: w.dropped})
	}

	return result, nil
}
