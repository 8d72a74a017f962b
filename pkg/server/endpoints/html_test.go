package endpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Users", "Users"},
		{"a|b", `a\|b`},
		{`C:\reports`, `C:\\reports`},
		{`ends with \`, `ends with \\`},
		{`\|`, `\\\|`},
		{"<b>_x_</b>", `&lt;b&gt;\_x\_&lt;/b&gt;`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, escapeMarkdown(tt.in), tt.in)
	}
}
