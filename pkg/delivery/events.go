package delivery

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/riskhub/notify/pkg/notification"
)

// ActivityDue is an activity approaching its due date.
type ActivityDue struct {
	UserID       int64
	OriginUserID *int64
	ActivityID   int64
	ActivityName string
	ProjectID    *int64
	ProjectName  string
	DueDate      time.Time
}

// NotifyActivityDue sends VENCIMIENTO_ACTIVIDAD through the user's
// preferences. Activities due within a day, or already overdue, are ALTA.
func (m *Manager) NotifyActivityDue(ctx context.Context, ev ActivityDue) (SendResult, error) {
	daysLeft := int(math.Ceil(ev.DueDate.Sub(m.now()).Hours() / 24))

	req := SendRequest{
		Type:         notification.TypeActivityDue,
		UserID:       ev.UserID,
		OriginUserID: ev.OriginUserID,
		Data: map[string]any{
			"activity_name": ev.ActivityName,
			"project_name":  ev.ProjectName,
			"due_date":      ev.DueDate,
			"days_left":     daysLeft,
		},
		Related: notification.Related{
			ActivityID: &ev.ActivityID,
			ProjectID:  ev.ProjectID,
		},
		Metadata: map[string]any{"days_left": daysLeft},
	}
	if daysLeft <= 1 {
		high := notification.PriorityHigh
		req.Priority = &high
	}
	return m.Send(ctx, req)
}

// CriticalRisk is a risk evaluated at critical level.
type CriticalRisk struct {
	UserID       int64
	OriginUserID *int64
	RiskID       int64
	RiskName     string
	RiskLevel    string
	ProjectID    *int64
	ProjectName  string
}

// NotifyCriticalRisk always sends RIESGO_CRITICO at CRITICA priority,
// bypassing preferences and deduplication.
func (m *Manager) NotifyCriticalRisk(ctx context.Context, ev CriticalRisk) (SendResult, error) {
	critical := notification.PriorityCritical
	return m.Send(ctx, SendRequest{
		Type:         notification.TypeCriticalRisk,
		UserID:       ev.UserID,
		OriginUserID: ev.OriginUserID,
		Data: map[string]any{
			"risk_name":    ev.RiskName,
			"risk_level":   ev.RiskLevel,
			"project_name": ev.ProjectName,
		},
		Related: notification.Related{
			RiskID:    &ev.RiskID,
			ProjectID: ev.ProjectID,
		},
		Priority: &critical,
		Force:    true,
	})
}

// SecurityIncident is a reported security incident.
type SecurityIncident struct {
	UserID        int64
	OriginUserID  *int64
	IncidentID    int64
	IncidentTitle string
	Severity      string
	Description   string
}

// NotifySecurityIncident always sends INCIDENTE_SEGURIDAD, bypassing
// preferences and deduplication. Critical severities raise the priority to
// CRITICA; everything else is ALTA.
func (m *Manager) NotifySecurityIncident(ctx context.Context, ev SecurityIncident) (SendResult, error) {
	priority := notification.PriorityHigh
	switch strings.ToUpper(strings.TrimSpace(ev.Severity)) {
	case "CRITICA", "CRÍTICA", "CRITICAL":
		priority = notification.PriorityCritical
	}

	return m.Send(ctx, SendRequest{
		Type:         notification.TypeSecurityIncident,
		UserID:       ev.UserID,
		OriginUserID: ev.OriginUserID,
		Data: map[string]any{
			"incident_title": ev.IncidentTitle,
			"severity":       ev.Severity,
			"description":    ev.Description,
		},
		Related:  notification.Related{IncidentID: &ev.IncidentID},
		Priority: &priority,
		Force:    true,
	})
}

// AuditScheduled is an audit put on the calendar.
type AuditScheduled struct {
	UserID       int64
	OriginUserID *int64
	AuditID      int64
	AuditName    string
	AuditDate    time.Time
	Auditor      string
}

// NotifyAuditScheduled sends AUDITORIA_PROGRAMADA through the user's
// preferences.
func (m *Manager) NotifyAuditScheduled(ctx context.Context, ev AuditScheduled) (SendResult, error) {
	return m.Send(ctx, SendRequest{
		Type:         notification.TypeAuditScheduled,
		UserID:       ev.UserID,
		OriginUserID: ev.OriginUserID,
		Data: map[string]any{
			"audit_name": ev.AuditName,
			"audit_date": ev.AuditDate,
			"auditor":    ev.Auditor,
		},
		Related: notification.Related{AuditID: &ev.AuditID},
	})
}
