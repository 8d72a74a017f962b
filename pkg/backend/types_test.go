package backend

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogQuery_Normalized(t *testing.T) {
	q := AuditLogQuery{}.Normalized()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, DefaultAuditLogLimit, q.Limit)
	assert.Equal(t, "timestamp", q.SortBy)
	assert.Equal(t, "desc", q.SortOrder)

	q = AuditLogQuery{Page: 3, Limit: 500, SortBy: "action", SortOrder: "ASC"}.Normalized()
	assert.Equal(t, 3, q.Page)
	assert.Equal(t, MaxAuditLogLimit, q.Limit)
	assert.Equal(t, "action", q.SortBy)
	assert.Equal(t, "asc", q.SortOrder)

	assert.Equal(t, "desc", AuditLogQuery{SortOrder: "sideways"}.Normalized().SortOrder)
}

func TestRecipients_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Recipients
	}{
		{"array", `["a@example.com","b@example.com"]`, Recipients{"a@example.com", "b@example.com"}},
		{"stored text", `"[\"a@example.com\"]"`, Recipients{"a@example.com"}},
		{"empty text", `""`, nil},
		{"null", `null`, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Recipients
			require.NoError(t, json.Unmarshal([]byte(tt.in), &r))
			assert.Equal(t, tt.want, r)
		})
	}

	var r Recipients
	assert.Error(t, json.Unmarshal([]byte(`"not json"`), &r))
	assert.Error(t, json.Unmarshal([]byte(`42`), &r))
}
