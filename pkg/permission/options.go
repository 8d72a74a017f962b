package permission

type config struct {
	readOnly          bool
	onChange          func([]Row)
	onSelectionChange func([]SelectionRow)
}

// Option configures a Table or Selection
type Option func(*config)

// WithOnChange registers a callback receiving the full row list every time
// a Table is built or changes
func WithOnChange(fn func([]Row)) Option {
	return func(c *config) {
		c.onChange = fn
	}
}

// WithSelectionChange registers a callback receiving the full row list
// every time a Selection changes
func WithSelectionChange(fn func([]SelectionRow)) Option {
	return func(c *config) {
		c.onSelectionChange = fn
	}
}

// ReadOnly turns every mutation into a no-op
func ReadOnly() Option {
	return func(c *config) {
		c.readOnly = true
	}
}

func newConfig(opts []Option) config {
	var c config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
