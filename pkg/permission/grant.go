package permission

// Grant is a resolved set of the four actions, used both for role defaults
// and for effective permissions
type Grant struct {
	Read   bool `json:"can_read" yaml:"read"`
	Write  bool `json:"can_write" yaml:"write"`
	Update bool `json:"can_update" yaml:"update"`
	Delete bool `json:"can_delete" yaml:"delete"`
}

// Get returns the value of one action
func (g Grant) Get(a Action) bool {
	switch a {
	case ActionRead:
		return g.Read
	case ActionWrite:
		return g.Write
	case ActionUpdate:
		return g.Update
	case ActionDelete:
		return g.Delete
	default:
		return false
	}
}

// With returns a copy of g with one action set
func (g Grant) With(a Action, v bool) Grant {
	switch a {
	case ActionRead:
		g.Read = v
	case ActionWrite:
		g.Write = v
	case ActionUpdate:
		g.Update = v
	case ActionDelete:
		g.Delete = v
	}
	return g
}

// Any reports whether at least one action is granted
func (g Grant) Any() bool {
	return g.Read || g.Write || g.Update || g.Delete
}

// Override holds per-user exceptions to a role default. A nil field
// inherits the role default.
type Override struct {
	Read   *bool `json:"can_read" yaml:"read,omitempty"`
	Write  *bool `json:"can_write" yaml:"write,omitempty"`
	Update *bool `json:"can_update" yaml:"update,omitempty"`
	Delete *bool `json:"can_delete" yaml:"delete,omitempty"`
}

// Get returns the override for one action, nil when inherited
func (o Override) Get(a Action) *bool {
	switch a {
	case ActionRead:
		return o.Read
	case ActionWrite:
		return o.Write
	case ActionUpdate:
		return o.Update
	case ActionDelete:
		return o.Delete
	default:
		return nil
	}
}

// With returns a copy of o with one action set. The copy never shares
// pointers with o or v.
func (o Override) With(a Action, v *bool) Override {
	o = o.Clone()
	v = clonePtr(v)
	switch a {
	case ActionRead:
		o.Read = v
	case ActionWrite:
		o.Write = v
	case ActionUpdate:
		o.Update = v
	case ActionDelete:
		o.Delete = v
	}
	return o
}

// Clone returns a deep copy of o
func (o Override) Clone() Override {
	return Override{
		Read:   clonePtr(o.Read),
		Write:  clonePtr(o.Write),
		Update: clonePtr(o.Update),
		Delete: clonePtr(o.Delete),
	}
}

// IsCustomized reports whether any action is overridden
func (o Override) IsCustomized() bool {
	return o.Read != nil || o.Write != nil || o.Update != nil || o.Delete != nil
}

// Resolve applies o on top of the role default d
func (o Override) Resolve(d Grant) Grant {
	return Grant{
		Read:   resolve(o.Read, d.Read),
		Write:  resolve(o.Write, d.Write),
		Update: resolve(o.Update, d.Update),
		Delete: resolve(o.Delete, d.Delete),
	}
}

// Next returns the value following current in the edit cycle
// inherit -> !roleDefault -> false -> inherit.
//
// When the role default is true the first step already lands on false and
// the following step returns to inherit.
func Next(current *bool, roleDefault bool) *bool {
	switch {
	case current == nil:
		return Bool(!roleDefault)
	case *current:
		return Bool(false)
	default:
		return nil
	}
}

// Bool returns a pointer to v
func Bool(v bool) *bool {
	return &v
}

func resolve(override *bool, fallback bool) bool {
	if override != nil {
		return *override
	}
	return fallback
}

func clonePtr(v *bool) *bool {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
