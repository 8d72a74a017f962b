package policy

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Statement is one tagged entry of a rights document
type Statement interface {
	Kind() Kind
	Subject() uint
}

// MenuRef names a menu by id or by path
type MenuRef struct {
	Menu uint   `yaml:"menu,omitempty"`
	Path string `yaml:"path,omitempty"`
}

func (r MenuRef) String() string {
	switch {
	case r.Menu != 0 && r.Path != "":
		return fmt.Sprintf("menu %d (%s)", r.Menu, r.Path)
	case r.Menu != 0:
		return fmt.Sprintf("menu %d", r.Menu)
	default:
		return fmt.Sprintf("path %q", r.Path)
	}
}

// RoleMenu is a menu assigned to a role with its default grants
type RoleMenu struct {
	MenuRef `yaml:",inline"`
	Read    bool `yaml:"read,omitempty"`
	Write   bool `yaml:"write,omitempty"`
	Update  bool `yaml:"update,omitempty"`
	Delete  bool `yaml:"delete,omitempty"`
}

// Role replaces the menus of a role
type Role struct {
	ID    uint       `yaml:"id"`
	Menus []RoleMenu `yaml:"menus,omitempty"`
}

func (Role) Kind() Kind      { return KindRole }
func (r Role) Subject() uint { return r.ID }

// UserOverride is an override of one menu. Unset actions inherit the role.
type UserOverride struct {
	MenuRef `yaml:",inline"`
	Read    *bool `yaml:"read,omitempty"`
	Write   *bool `yaml:"write,omitempty"`
	Update  *bool `yaml:"update,omitempty"`
	Delete  *bool `yaml:"delete,omitempty"`
}

// User replaces the overrides of a user
type User struct {
	ID        uint           `yaml:"id"`
	Overrides []UserOverride `yaml:"overrides,omitempty"`
}

func (User) Kind() Kind      { return KindUser }
func (u User) Subject() uint { return u.ID }

// Statements is a parsed rights document
type Statements []Statement

func (s *Statements) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: rights document must be a sequence of statements", value.Line)
	}

	statements := make(Statements, 0, len(value.Content))
	for _, node := range value.Content {
		var statement Statement

		switch node.Tag {
		case KindRole.Tag():
			var role Role
			if err := node.Decode(&role); err != nil {
				return err
			}
			statement = role
		case KindUser.Tag():
			var user User
			if err := node.Decode(&user); err != nil {
				return err
			}
			statement = user
		default:
			return fmt.Errorf("line %d: unknown statement tag %q", node.Line, node.Tag)
		}
		if statement.Subject() == 0 {
			return fmt.Errorf("line %d: %s statement requires an id", node.Line, node.Tag)
		}
		statements = append(statements, statement)
	}

	*s = statements
	return nil
}

func (r Role) MarshalYAML() (interface{}, error) {
	type role Role
	return marshalWithTag(role(r), KindRole)
}

func (u User) MarshalYAML() (interface{}, error) {
	type user User
	return marshalWithTag(user(u), KindUser)
}

func marshalWithTag(v interface{}, kind Kind) (interface{}, error) {
	node := &yaml.Node{}
	if err := node.Encode(v); err != nil {
		return nil, err
	}
	node.Tag = kind.Tag()
	node.Style = yaml.TaggedStyle
	return node, nil
}
