package audit

import (
	"encoding/json"
	"fmt"

	"backoffice-backend/internal/database"
	"backoffice-backend/internal/models"
)

const (
	EntityShiftSummary = "shift_summary"
	EntityStaffForm    = "staff_form"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityKey   string
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// Writer stores one audit entry. WriteLog is the database-backed one.
type Writer func(opts LogOptions) error

func WriteLog(opts LogOptions) error {
	entry := NewEntry(opts)
	if err := database.DB.Create(&entry).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// NewEntry builds the row for opts. Missing snapshots are stored as JSON
// null since the columns are jsonb.
func NewEntry(opts LogOptions) models.AuditLog {
	return models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityKey:   opts.EntityKey,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  snapshot(opts.Before),
		AfterData:   snapshot(opts.After),
	}
}

func snapshot(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}
