package audit

import (
	"database/sql"
	"io"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodlesbykumbi/rights-console/pkg/permission"
)

func TestStoreSave(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStoreWithDB(db)
	now := time.Now().UTC()

	r := OverrideEvent{
		Origin: origin,
		UserID: 7,
		MenuID: 3,
		Action: "read",
		Value:  "true",
		After:  permission.Override{Read: permission.Bool(true)},
	}.Record()
	r.Timestamp = now

	mock.ExpectExec(`INSERT INTO audit_logs \(user_id, username, action, resource_type, resource_id, old_values, new_values, ip_address, user_agent, correlation_id, timestamp\)`).
		WithArgs(
			int64(1),
			"admin",
			"UPDATE",
			"rights_access",
			"7",
			`{"menu_id":3,"can_read":null,"can_write":null,"can_update":null,"can_delete":null}`,
			`{"menu_id":3,"can_read":true,"can_write":null,"can_update":null,"can_delete":null}`,
			"192.168.1.1",
			"curl/8.0",
			"req-1",
			now,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Save(r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveStoresNulls(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewStoreWithDB(db)
	r := SaveEvent{Origin: Origin{Actor: "cli"}, Kind: ClearUserRights, Target: 7, Success: true}.Record()

	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(nil, "cli", "DELETE", "rights_access", "7", nil, nil, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, store.Save(r))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO audit_logs`).WillReturnError(sql.ErrConnDone)

	err = NewStoreWithDB(db).Save(PolicyEvent{Origin: Origin{Actor: "cli"}, Source: "-", Success: true}.Record())
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestLogPersistsToDefaultStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	previous := DefaultStore
	DefaultStore = NewStoreWithDB(db)
	defer func() { DefaultStore = previous }()
	DefaultLogger.SetWriter(io.Discard)

	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(nil, "cli", "APPLY", "rights_document", "rights.yml", nil, `{"roles":1,"users":0}`, nil, nil, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	Log(PolicyEvent{Origin: Origin{Actor: "cli"}, Source: "rights.yml", Roles: 1, Success: true})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreNilDB(t *testing.T) {
	store := &Store{db: nil}
	assert.NoError(t, store.Save(Record{}))
	assert.NoError(t, store.Close())
}

func TestStoreClose(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	mock.ExpectClose()
	require.NoError(t, NewStoreWithDB(db).Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
