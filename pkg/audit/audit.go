package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Actions recorded in the audit log. A failed attempt carries the
// FailedSuffix.
const (
	ActionUpdate   = "UPDATE"
	ActionReset    = "RESET"
	ActionSave     = "SAVE"
	ActionDelete   = "DELETE"
	ActionAssign   = "ASSIGN"
	ActionApply    = "APPLY"
	ActionValidate = "VALIDATE"

	FailedSuffix = "_FAILED"
)

// Resource types recorded in the audit log
const (
	ResourceRightsAccess   = "rights_access"
	ResourceRoleMenus      = "role_menus"
	ResourceRightsDocument = "rights_document"
)

// Origin identifies who made a change and from where
type Origin struct {
	Actor         string
	ActorID       *uint
	IPAddress     string
	UserAgent     string
	CorrelationID string
}

// Record is one row of the audit_logs table. OldValues and NewValues hold
// JSON documents and are empty when there is nothing to record.
type Record struct {
	UserID        *uint
	Username      string
	Action        string
	ResourceType  string
	ResourceID    string
	OldValues     string
	NewValues     string
	IPAddress     string
	UserAgent     string
	CorrelationID string
	Timestamp     time.Time
}

// Failed reports whether the record describes a failed attempt
func (r Record) Failed() bool {
	return strings.HasSuffix(r.Action, FailedSuffix)
}

func (o Origin) record(action, resourceType, resourceID string, success bool) Record {
	if !success {
		action += FailedSuffix
	}
	return Record{
		UserID:        o.ActorID,
		Username:      o.Actor,
		Action:        action,
		ResourceType:  resourceType,
		ResourceID:    resourceID,
		IPAddress:     o.IPAddress,
		UserAgent:     o.UserAgent,
		CorrelationID: o.CorrelationID,
	}
}

// Event is a change worth recording
type Event interface {
	Record() Record
	Message() string
}

func jsonValues(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// Logger writes audit records as JSON lines
type Logger struct {
	log *logrus.Logger
}

// NewLogger creates a logger writing to stdout
func NewLogger() *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	return &Logger{log: l}
}

// SetWriter sets the output writer for the logger
func (l *Logger) SetWriter(w io.Writer) {
	l.log.SetOutput(w)
}

// Log writes one record. Failed attempts are logged as warnings.
func (l *Logger) Log(r Record, message string) {
	fields := logrus.Fields{
		"audit":         true,
		"username":      r.Username,
		"action":        r.Action,
		"resource_type": r.ResourceType,
		"resource_id":   r.ResourceID,
	}
	if r.UserID != nil {
		fields["user_id"] = *r.UserID
	}
	if r.IPAddress != "" {
		fields["ip_address"] = r.IPAddress
	}
	if r.CorrelationID != "" {
		fields["correlation_id"] = r.CorrelationID
	}
	entry := l.log.WithFields(fields).WithTime(r.Timestamp)
	if r.Failed() {
		entry.Warn(message)
		return
	}
	entry.Info(message)
}

// Default logger instance
var DefaultLogger = NewLogger()

// Default store for database persistence (nil if AUDIT_DATABASE_URL not set).
// A store assigned before the first Log is kept.
var DefaultStore *Store

// Audit enabled state, defaults to true.
// Disabled with RIGHTS_AUDIT_ENABLED=false.
var (
	auditEnabled     = true
	auditEnabledOnce sync.Once
	storeInitOnce    sync.Once
)

// IsEnabled returns whether audit logging is enabled
func IsEnabled() bool {
	auditEnabledOnce.Do(func() {
		if env := os.Getenv("RIGHTS_AUDIT_ENABLED"); env != "" {
			auditEnabled = env != "false" && env != "0" && env != "no"
		}
	})
	return auditEnabled
}

// SetEnabled allows programmatic control of audit logging.
// It should be called before any Log calls.
func SetEnabled(enabled bool) {
	auditEnabled = enabled
}

// Log writes an event to the default logger and store (if audit is enabled)
func Log(event Event) {
	if !IsEnabled() {
		return
	}
	r := event.Record()
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	DefaultLogger.Log(r, event.Message())

	storeInitOnce.Do(func() {
		if DefaultStore != nil {
			return
		}
		var err error
		DefaultStore, err = NewStore()
		if err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to connect to audit database: %v\n", err)
		}
	})

	if DefaultStore != nil {
		if err := DefaultStore.Save(r); err != nil {
			fmt.Fprintf(os.Stderr, "audit: failed to save record: %v\n", err)
		}
	}
}
