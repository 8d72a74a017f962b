package gorm

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
)

var auditLogColumns = []string{
	"id", "user_id", "username", "action", "resource_type", "resource_id", "old_values", "new_values",
	"ip_address", "user_agent", "correlation_id", "timestamp", "created_at", "deleted_at",
}

var emailLogColumns = []string{
	"id", "template_id", "template_name", "from", "to", "cc", "bcc", "subject", "status", "resend_id",
	"error_message", "sent_by_user_id", "sent_by_username", "ip_address", "sent_at", "created_at",
}

func TestBackend_AuditLogs(t *testing.T) {
	b, mock := setupTestDB(t)
	now := time.Now().UTC()
	start := now.Add(-time.Hour)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "audit_logs" WHERE user_id = \$1 AND username ILIKE \$2 AND resource_type = \$3 AND timestamp >= \$4 AND "audit_logs"."deleted_at" IS NULL`).
		WithArgs(4, "%ali%", "rights_access", start).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))
	mock.ExpectQuery(`SELECT \* FROM "audit_logs" WHERE .* ORDER BY timestamp desc LIMIT 20 OFFSET 20`).
		WillReturnRows(sqlmock.NewRows(auditLogColumns).
			AddRow(9, 4, "alice", "UPDATE", "rights_access", "10", nil, `{"menu_id":1,"can_read":true}`,
				"10.0.0.1", nil, "req-9", now, now, nil))

	userID := uint(4)
	page, err := b.AuditLogs(context.Background(), backend.AuditLogQuery{
		UserID: &userID, Username: "ali", ResourceType: "rights_access", StartDate: start, Page: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, 20, page.PageSize)
	require.Len(t, page.Data, 1)
	assert.Equal(t, backend.AuditLog{
		ID: 9, UserID: &userID, Username: "alice", Action: "UPDATE", ResourceType: "rights_access",
		ResourceID: "10", NewValues: `{"menu_id":1,"can_read":true}`, IPAddress: "10.0.0.1",
		CorrelationID: "req-9", Timestamp: now,
	}, page.Data[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_AuditLogs_SortWhitelist(t *testing.T) {
	b, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT count`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY timestamp asc LIMIT 100`).WillReturnRows(sqlmock.NewRows(auditLogColumns))

	page, err := b.AuditLogs(context.Background(), backend.AuditLogQuery{
		SortBy: "timestamp; DROP TABLE audit_logs", SortOrder: "asc", Limit: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
	assert.Empty(t, page.Data)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_EmailLogs(t *testing.T) {
	b, mock := setupTestDB(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "email_logs" WHERE \(+"to" ILIKE \$1 OR subject ILIKE \$2 OR template_name ILIKE \$3 OR sent_by_username ILIKE \$4\)+ AND status = \$5`).
		WithArgs("%ann%", "%ann%", "%ann%", "%ann%", "failed").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT \* FROM "email_logs" WHERE .* ORDER BY created_at DESC LIMIT 10`).
		WillReturnRows(sqlmock.NewRows(emailLogColumns).
			AddRow(8, nil, "welcome", "noreply@example.com", `["ann@example.com"]`, `["ops@example.com"]`, nil,
				"Welcome", "failed", nil, "rejected", 1, "admin", "10.0.0.1", nil, now))

	page, err := b.EmailLogs(context.Background(), backend.EmailLogQuery{
		ListParams: backend.ListParams{Search: "ann"},
		Status:     backend.EmailStatusFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Data, 1)
	l := page.Data[0]
	assert.Equal(t, backend.Recipients{"ann@example.com"}, l.To)
	assert.Equal(t, backend.Recipients{"ops@example.com"}, l.Cc)
	assert.Nil(t, l.Bcc)
	assert.Equal(t, "welcome", l.TemplateName)
	assert.Equal(t, "rejected", l.ErrorMessage)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_EmailLogs_Sort(t *testing.T) {
	b, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT count`).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`ORDER BY sent_at LIMIT 5`).WillReturnRows(sqlmock.NewRows(emailLogColumns))

	_, err := b.EmailLogs(context.Background(), backend.EmailLogQuery{ListParams: backend.ListParams{SortBy: "sent_at", PageSize: 5}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_EmailLog(t *testing.T) {
	b, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "email_logs" WHERE "email_logs"."id" = \$1`).
		WillReturnRows(sqlmock.NewRows(emailLogColumns).
			AddRow(8, nil, nil, "noreply@example.com", `["ann@example.com"]`, nil, nil,
				"Welcome", "sent", "re_1", nil, nil, nil, nil, time.Now(), time.Now()))
	mock.ExpectQuery(`SELECT \* FROM "email_logs"`).
		WillReturnRows(sqlmock.NewRows(emailLogColumns))

	l, err := b.EmailLog(context.Background(), 8)
	require.NoError(t, err)
	assert.Equal(t, "re_1", l.ResendID)
	assert.NotNil(t, l.SentAt)

	_, err = b.EmailLog(context.Background(), 9)
	assert.ErrorIs(t, err, backend.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBackend_EmailLog_InvalidRecipients(t *testing.T) {
	b, mock := setupTestDB(t)

	mock.ExpectQuery(`SELECT \* FROM "email_logs"`).
		WillReturnRows(sqlmock.NewRows(emailLogColumns).
			AddRow(8, nil, nil, "noreply@example.com", `ann@example.com`, nil, nil,
				"Welcome", "sent", nil, nil, nil, nil, nil, nil, time.Now()))

	_, err := b.EmailLog(context.Background(), 8)
	assert.ErrorContains(t, err, "email log 8")
}
