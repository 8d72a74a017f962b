package audit

import (
	"fmt"
	"strconv"

	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

type overrideValues struct {
	MenuID    uint  `json:"menu_id"`
	CanRead   *bool `json:"can_read"`
	CanWrite  *bool `json:"can_write"`
	CanUpdate *bool `json:"can_update"`
	CanDelete *bool `json:"can_delete"`
}

func newOverrideValues(menuID uint, o permission.Override) overrideValues {
	return overrideValues{MenuID: menuID, CanRead: o.Read, CanWrite: o.Write, CanUpdate: o.Update, CanDelete: o.Delete}
}

// OverrideEvent represents a change to one override in an edit session
type OverrideEvent struct {
	Origin
	UserID uint
	MenuID uint
	// Action is the changed action, empty when the whole row was reset
	Action string
	// Value is the new override: "true", "false" or "inherit"
	Value  string
	Before permission.Override
	After  permission.Override
}

func (e OverrideEvent) Record() Record {
	action := ActionUpdate
	if e.Action == "" {
		action = ActionReset
	}
	r := e.record(action, ResourceRightsAccess, strconv.FormatUint(uint64(e.UserID), 10), true)
	r.OldValues = jsonValues(newOverrideValues(e.MenuID, e.Before))
	r.NewValues = jsonValues(newOverrideValues(e.MenuID, e.After))
	return r
}

func (e OverrideEvent) Message() string {
	if e.Action == "" {
		return fmt.Sprintf("%s reset overrides of user %d on menu %d", e.Actor, e.UserID, e.MenuID)
	}
	return fmt.Sprintf("%s set %s of user %d on menu %d to %s", e.Actor, e.Action, e.UserID, e.MenuID, e.Value)
}

// SaveKind names what a SaveEvent persisted
type SaveKind string

const (
	SaveUserRights  SaveKind = "user-rights"
	ClearUserRights SaveKind = "user-rights-clear"
	SaveRoleMenus   SaveKind = "role-menus"
)

type saveValues struct {
	Count   int    `json:"count"`
	Entries any    `json:"entries,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SaveEvent represents a save of user overrides or role menus
type SaveEvent struct {
	Origin
	Kind   SaveKind
	Target uint
	Count  int
	// Entries is the payload sent to the backend
	Entries      any
	Success      bool
	ErrorMessage string
}

func (e SaveEvent) Record() Record {
	target := strconv.FormatUint(uint64(e.Target), 10)
	var r Record
	switch e.Kind {
	case SaveRoleMenus:
		r = e.record(ActionAssign, ResourceRoleMenus, target, e.Success)
	case ClearUserRights:
		r = e.record(ActionDelete, ResourceRightsAccess, target, e.Success)
		if e.ErrorMessage != "" {
			r.NewValues = jsonValues(saveValues{Error: e.ErrorMessage})
		}
		return r
	default:
		r = e.record(ActionSave, ResourceRightsAccess, target, e.Success)
	}
	r.NewValues = jsonValues(saveValues{Count: e.Count, Entries: e.Entries, Error: e.ErrorMessage})
	return r
}

func (e SaveEvent) subject() string {
	switch e.Kind {
	case SaveRoleMenus:
		return fmt.Sprintf("menus of role %d", e.Target)
	default:
		return fmt.Sprintf("rights of user %d", e.Target)
	}
}

func (e SaveEvent) Message() string {
	var msg string
	switch {
	case e.Success && e.Kind == ClearUserRights:
		return fmt.Sprintf("%s cleared %s", e.Actor, e.subject())
	case e.Success:
		return fmt.Sprintf("%s saved %s (%d entries)", e.Actor, e.subject(), e.Count)
	case e.Kind == ClearUserRights:
		msg = fmt.Sprintf("%s tried to clear %s", e.Actor, e.subject())
	default:
		msg = fmt.Sprintf("%s tried to save %s", e.Actor, e.subject())
	}
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}

type policyValues struct {
	Roles int    `json:"roles"`
	Users int    `json:"users"`
	Error string `json:"error,omitempty"`
}

// PolicyEvent represents a rights document being applied
type PolicyEvent struct {
	Origin
	Source       string
	Roles        int
	Users        int
	DryRun       bool
	Success      bool
	ErrorMessage string
}

func (e PolicyEvent) Record() Record {
	action := ActionApply
	if e.DryRun {
		action = ActionValidate
	}
	r := e.record(action, ResourceRightsDocument, e.Source, e.Success)
	r.NewValues = jsonValues(policyValues{Roles: e.Roles, Users: e.Users, Error: e.ErrorMessage})
	return r
}

func (e PolicyEvent) Message() string {
	verb := "applied"
	if e.DryRun {
		verb = "validated"
	}
	if e.Success {
		return fmt.Sprintf("%s %s rights document %s (%d roles, %d users)", e.Actor, verb, e.Source, e.Roles, e.Users)
	}
	msg := fmt.Sprintf("%s tried to apply rights document %s", e.Actor, e.Source)
	if e.ErrorMessage != "" {
		msg += ": " + e.ErrorMessage
	}
	return msg
}
