package notification

// Type identifies the domain event a notification is about.
type Type string

const (
	TypeActivityDue      Type = "VENCIMIENTO_ACTIVIDAD"
	TypeCriticalRisk     Type = "RIESGO_CRITICO"
	TypePendingFinding   Type = "HALLAZGO_PENDIENTE"
	TypeProjectOverdue   Type = "PROYECTO_EXCEDE_TIEMPO"
	TypeNewEvidence      Type = "NUEVA_EVIDENCIA"
	TypeAuditScheduled   Type = "AUDITORIA_PROGRAMADA"
	TypeSecurityIncident Type = "INCIDENTE_SEGURIDAD"
	TypeControlExpired   Type = "CONTROL_VENCIDO"
)

// Types lists every notification type in catalog order.
func Types() []Type {
	return []Type{
		TypeActivityDue,
		TypeCriticalRisk,
		TypePendingFinding,
		TypeProjectOverdue,
		TypeNewEvidence,
		TypeAuditScheduled,
		TypeSecurityIncident,
		TypeControlExpired,
	}
}

// Channel is a delivery medium.
type Channel string

const (
	ChannelEmail  Channel = "EMAIL"
	ChannelSystem Channel = "SISTEMA"
	// ChannelSMS is recognized but has no transport; delivering through it
	// always fails.
	ChannelSMS Channel = "SMS"
)

func Channels() []Channel {
	return []Channel{ChannelEmail, ChannelSystem, ChannelSMS}
}

// Priority is totally ordered: BAJA < MEDIA < ALTA < CRITICA.
type Priority string

const (
	PriorityLow      Priority = "BAJA"
	PriorityMedium   Priority = "MEDIA"
	PriorityHigh     Priority = "ALTA"
	PriorityCritical Priority = "CRITICA"
)

func Priorities() []Priority {
	return []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical}
}

// Rank returns the position of p in the priority order, or -1 for unknown values.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityCritical:
		return 3
	default:
		return -1
	}
}

// AtLeast reports whether p ranks at or above floor.
func (p Priority) AtLeast(floor Priority) bool {
	return p.Rank() >= floor.Rank()
}

// State is the lifecycle state of a notification.
type State string

const (
	StatePending State = "PENDIENTE"
	StateSent    State = "ENVIADA"
	StateRead    State = "LEIDA"
	StateError   State = "ERROR"
)

func States() []State {
	return []State{StatePending, StateSent, StateRead, StateError}
}

// Name makes State usable in a statemachine.Table.
func (s State) Name() string {
	return string(s)
}

// Related holds optional links to the entities a notification is about.
// Nil means "not linked".
type Related struct {
	RiskID     *int64 `json:"risk_id,omitempty"`
	ProjectID  *int64 `json:"project_id,omitempty"`
	AuditID    *int64 `json:"audit_id,omitempty"`
	FindingID  *int64 `json:"finding_id,omitempty"`
	ActivityID *int64 `json:"activity_id,omitempty"`
	IncidentID *int64 `json:"incident_id,omitempty"`
	ControlID  *int64 `json:"control_id,omitempty"`
}

func (r Related) ids() [7]*int64 {
	return [7]*int64{r.RiskID, r.ProjectID, r.AuditID, r.FindingID, r.ActivityID, r.IncidentID, r.ControlID}
}

// IsZero reports whether no entity is linked.
func (r Related) IsZero() bool {
	for _, id := range r.ids() {
		if id != nil {
			return false
		}
	}
	return true
}

// Matches reports whether other links the same entity for every id set on r.
// Ids unset on r are not compared.
func (r Related) Matches(other Related) bool {
	mine, theirs := r.ids(), other.ids()
	for i, id := range mine {
		if id == nil {
			continue
		}
		if theirs[i] == nil || *theirs[i] != *id {
			return false
		}
	}
	return true
}

// Ref returns a pointer to v. Handy for optional ids.
func Ref[T any](v T) *T {
	return &v
}
