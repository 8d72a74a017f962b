package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	defaults := Grant{Read: true, Write: false, Update: true, Delete: false}

	t.Run("inherits when nothing is overridden", func(t *testing.T) {
		assert.Equal(t, defaults, Override{}.Resolve(defaults))
	})

	t.Run("override wins regardless of default", func(t *testing.T) {
		o := Override{Read: Bool(false), Write: Bool(true), Update: Bool(true), Delete: Bool(false)}
		assert.Equal(t, Grant{Write: true, Update: true}, o.Resolve(defaults))
	})

	t.Run("fields resolve independently", func(t *testing.T) {
		o := Override{Delete: Bool(true)}
		assert.Equal(t, Grant{Read: true, Update: true, Delete: true}, o.Resolve(defaults))
	})
}

func TestNext(t *testing.T) {
	tests := []struct {
		name        string
		current     *bool
		roleDefault bool
		want        *bool
	}{
		{"inherit with default false", nil, false, Bool(true)},
		{"inherit with default true", nil, true, Bool(false)},
		{"true", Bool(true), false, Bool(false)},
		{"false with default false", Bool(false), false, nil},
		{"false with default true", Bool(false), true, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Next(tt.current, tt.roleDefault))
		})
	}
}

func TestNext_ThreeStepsReturnToInherit(t *testing.T) {
	var v *bool
	for i := 0; i < 3; i++ {
		v = Next(v, false)
	}
	assert.Nil(t, v)
}

func TestNext_DefaultTrueReturnsAfterTwoSteps(t *testing.T) {
	v := Next(nil, true)
	assert.Equal(t, Bool(false), v)
	assert.Nil(t, Next(v, true))
}

func TestOverride_With(t *testing.T) {
	v := Bool(true)
	orig := Override{Read: Bool(false)}

	o := orig.With(ActionWrite, v)
	*v = false

	assert.Equal(t, Bool(true), o.Write)
	assert.Nil(t, orig.Write)

	*o.Read = true
	assert.False(t, *orig.Read)
}

func TestOverride_IsCustomized(t *testing.T) {
	assert.False(t, Override{}.IsCustomized())
	for _, a := range ActionValues() {
		assert.True(t, Override{}.With(a, Bool(false)).IsCustomized(), a.String())
	}
}

func TestGrant_GetWith(t *testing.T) {
	var g Grant
	for _, a := range ActionValues() {
		g = g.With(a, true)
		assert.True(t, g.Get(a))
	}
	assert.Equal(t, Grant{Read: true, Write: true, Update: true, Delete: true}, g)
	assert.True(t, g.Any())
	assert.False(t, Grant{}.Any())
}

func TestAction(t *testing.T) {
	a, err := ActionString("update")
	assert.NoError(t, err)
	assert.Equal(t, ActionUpdate, a)
	assert.Equal(t, "Update", a.Label())

	_, err = ActionString("execute")
	assert.Error(t, err)
}
