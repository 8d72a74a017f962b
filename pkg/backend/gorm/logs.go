package gorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/doodlesbykumbi/rights-console/pkg/backend"
	"github.com/doodlesbykumbi/rights-console/pkg/model"
)

var auditLogSortColumns = map[string]string{
	"id":            "id",
	"timestamp":     "timestamp",
	"user_id":       "user_id",
	"username":      "username",
	"action":        "action",
	"resource_type": "resource_type",
}

var emailLogSortColumns = map[string]string{
	"created_at":    "created_at",
	"sent_at":       "sent_at",
	"status":        "status",
	"template_name": "template_name",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toAuditLog(l model.AuditLog) backend.AuditLog {
	return backend.AuditLog{
		ID:            l.ID,
		UserID:        l.UserID,
		Username:      l.Username,
		Action:        l.Action,
		ResourceType:  l.ResourceType,
		ResourceID:    deref(l.ResourceID),
		OldValues:     deref(l.OldValues),
		NewValues:     deref(l.NewValues),
		IPAddress:     deref(l.IPAddress),
		UserAgent:     deref(l.UserAgent),
		CorrelationID: deref(l.CorrelationID),
		Timestamp:     l.Timestamp,
	}
}

func toEmailLog(l model.EmailLog) (backend.EmailLog, error) {
	out := backend.EmailLog{
		ID:             l.ID,
		TemplateID:     l.TemplateID,
		TemplateName:   deref(l.TemplateName),
		From:           l.From,
		Subject:        l.Subject,
		Status:         l.Status,
		ResendID:       deref(l.ResendID),
		ErrorMessage:   deref(l.ErrorMessage),
		SentByUserID:   l.SentByUserID,
		SentByUsername: deref(l.SentByUsername),
		IPAddress:      deref(l.IPAddress),
		SentAt:         l.SentAt,
		CreatedAt:      l.CreatedAt,
	}
	if err := out.To.Scan(l.To); err != nil {
		return out, fmt.Errorf("email log %d: %w", l.ID, err)
	}
	if err := out.Cc.Scan(deref(l.Cc)); err != nil {
		return out, fmt.Errorf("email log %d: %w", l.ID, err)
	}
	if err := out.Bcc.Scan(deref(l.Bcc)); err != nil {
		return out, fmt.Errorf("email log %d: %w", l.ID, err)
	}
	return out, nil
}

// AuditLogs returns one page of audit records matching the query
func (b *Backend) AuditLogs(ctx context.Context, q backend.AuditLogQuery) (*backend.Page[backend.AuditLog], error) {
	q = q.Normalized()
	query := b.db.WithContext(ctx).Model(&model.AuditLog{})

	if q.UserID != nil {
		query = query.Where("user_id = ?", *q.UserID)
	}
	if q.Username != "" {
		query = query.Where("username ILIKE ?", "%"+q.Username+"%")
	}
	if q.Action != "" {
		query = query.Where("action = ?", q.Action)
	}
	if q.ResourceType != "" {
		query = query.Where("resource_type = ?", q.ResourceType)
	}
	if q.ResourceID != "" {
		query = query.Where("resource_id = ?", q.ResourceID)
	}
	if q.IPAddress != "" {
		query = query.Where("ip_address = ?", q.IPAddress)
	}
	if q.CorrelationID != "" {
		query = query.Where("correlation_id = ?", q.CorrelationID)
	}
	if !q.StartDate.IsZero() {
		query = query.Where("timestamp >= ?", q.StartDate)
	}
	if !q.EndDate.IsZero() {
		query = query.Where("timestamp <= ?", q.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count audit logs: %w", err)
	}

	column, ok := auditLogSortColumns[q.SortBy]
	if !ok {
		column = "timestamp"
	}
	var rows []model.AuditLog
	err := query.Order(column + " " + q.SortOrder).
		Limit(q.Limit).
		Offset((q.Page - 1) * q.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	page := &backend.Page[backend.AuditLog]{
		Data:       make([]backend.AuditLog, 0, len(rows)),
		Total:      int(total),
		Page:       q.Page,
		PageSize:   q.Limit,
		TotalPages: (int(total) + q.Limit - 1) / q.Limit,
	}
	for _, r := range rows {
		page.Data = append(page.Data, toAuditLog(r))
	}
	return page, nil
}

// EmailLogs returns one page of sent emails, newest first unless sorted
// otherwise. Search matches recipients, subject, template name and sender
// case-insensitively.
func (b *Backend) EmailLogs(ctx context.Context, q backend.EmailLogQuery) (*backend.Page[backend.EmailLog], error) {
	pageNum := q.Page
	if pageNum < 1 {
		pageNum = 1
	}
	size := q.PageSize
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}

	query := b.db.WithContext(ctx).Model(&model.EmailLog{})
	if search := strings.TrimSpace(q.Search); search != "" {
		pattern := "%" + search + "%"
		query = query.Where(`("to" ILIKE ? OR subject ILIKE ? OR template_name ILIKE ? OR sent_by_username ILIKE ?)`,
			pattern, pattern, pattern, pattern)
	}
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count email logs: %w", err)
	}

	order := "created_at DESC"
	if column, ok := emailLogSortColumns[q.SortBy]; ok {
		order = column
		if q.SortDesc {
			order += " DESC"
		}
	}
	var rows []model.EmailLog
	err := query.Order(order).Limit(size).Offset((pageNum - 1) * size).Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list email logs: %w", err)
	}

	page := &backend.Page[backend.EmailLog]{
		Data:       make([]backend.EmailLog, 0, len(rows)),
		Total:      int(total),
		Page:       pageNum,
		PageSize:   size,
		TotalPages: (int(total) + size - 1) / size,
	}
	for _, r := range rows {
		l, err := toEmailLog(r)
		if err != nil {
			return nil, err
		}
		page.Data = append(page.Data, l)
	}
	return page, nil
}

// EmailLog returns one sent email
func (b *Backend) EmailLog(ctx context.Context, id uint) (*backend.EmailLog, error) {
	var row model.EmailLog
	err := b.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("email log %d: %w", id, backend.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch email log %d: %w", id, err)
	}
	l, err := toEmailLog(row)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
