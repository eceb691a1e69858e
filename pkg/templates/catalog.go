package templates

import (
	"maps"

	"github.com/riskhub/notify/pkg/notification"
)

// Template is the content recipe for one notification type. Title and Body
// may contain {name} placeholders and {name || "literal"} fallbacks.
type Template struct {
	Title    string                `yaml:"title"`
	Body     string                `yaml:"body"`
	Priority notification.Priority `yaml:"priority"`
	Channel  notification.Channel  `yaml:"channel"`
	// ExpiryHours is the lifetime of produced notifications. Zero means they
	// never expire.
	ExpiryHours int `yaml:"expiry_hours"`
}

// Catalog maps every notification type to its template.
type Catalog map[notification.Type]Template

var defaultCatalog = Catalog{
	notification.TypeActivityDue: {
		Title:       `Actividad próxima a vencer: {activity_name}`,
		Body:        `La actividad "{activity_name}" del proyecto {project_name || "sin proyecto"} vence el {due_date}. Días restantes: {days_left}.`,
		Priority:    notification.PriorityMedium,
		Channel:     notification.ChannelEmail,
		ExpiryHours: 72,
	},
	notification.TypeCriticalRisk: {
		Title:    `Riesgo crítico: {risk_name}`,
		Body:     `Se identificó el riesgo "{risk_name}" con nivel {risk_level || "CRÍTICO"} en el proyecto {project_name || "sin asignar"}. Requiere atención inmediata.`,
		Priority: notification.PriorityCritical,
		Channel:  notification.ChannelEmail,
	},
	notification.TypePendingFinding: {
		Title:       `Hallazgo pendiente: {finding_title}`,
		Body:        `El hallazgo "{finding_title}" de la auditoría {audit_name || "sin auditoría"} sigue pendiente desde el {since_date}.`,
		Priority:    notification.PriorityHigh,
		Channel:     notification.ChannelEmail,
		ExpiryHours: 168,
	},
	notification.TypeProjectOverdue: {
		Title:       `Proyecto excedido en tiempo: {project_name}`,
		Body:        `El proyecto "{project_name}" superó su fecha de fin prevista ({end_date}) por {days_over} días.`,
		Priority:    notification.PriorityHigh,
		Channel:     notification.ChannelEmail,
		ExpiryHours: 48,
	},
	notification.TypeNewEvidence: {
		Title:       `Nueva evidencia: {evidence_name}`,
		Body:        `{uploader || "Un usuario"} cargó la evidencia "{evidence_name}" para {entity_name || "un elemento"}.`,
		Priority:    notification.PriorityLow,
		Channel:     notification.ChannelSystem,
		ExpiryHours: 168,
	},
	notification.TypeAuditScheduled: {
		Title:    `Auditoría programada: {audit_name}`,
		Body:     `La auditoría "{audit_name}" está programada para el {audit_date}. Auditor responsable: {auditor || "por asignar"}.`,
		Priority: notification.PriorityMedium,
		Channel:  notification.ChannelEmail,
	},
	notification.TypeSecurityIncident: {
		Title:    `Incidente de seguridad: {incident_title}`,
		Body:     `Se reportó el incidente "{incident_title}" con severidad {severity || "ALTA"}. {description || "Revise el detalle en la plataforma."}`,
		Priority: notification.PriorityHigh,
		Channel:  notification.ChannelEmail,
	},
	notification.TypeControlExpired: {
		Title:       `Control vencido: {control_name}`,
		Body:        `El control "{control_name}" venció el {expiry_date} y debe ser reevaluado.`,
		Priority:    notification.PriorityHigh,
		Channel:     notification.ChannelEmail,
		ExpiryHours: 72,
	},
}

// DefaultCatalog returns a copy of the built-in catalog.
func DefaultCatalog() Catalog {
	return maps.Clone(defaultCatalog)
}

// Lookup returns the template for typ.
func (c Catalog) Lookup(typ notification.Type) (Template, error) {
	tpl, ok := c[typ]
	if !ok {
		return Template{}, ErrUnknownType
	}
	return tpl, nil
}
