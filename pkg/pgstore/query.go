package pgstore

import (
	"strconv"
	"strings"
	"time"

	"github.com/riskhub/notify/pkg/notification"
)

// conditions accumulates AND-ed predicates with positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

// arg registers v and returns its placeholder.
func (c *conditions) arg(v any) string {
	c.args = append(c.args, v)
	return "$" + strconv.Itoa(len(c.args))
}

func (c *conditions) add(clause string) {
	c.clauses = append(c.clauses, clause)
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

// filterConditions translates a Filter into SQL predicates. It must select
// the same rows as Filter.Match.
func filterConditions(f notification.Filter) *conditions {
	c := &conditions{}

	if f.UserID != nil {
		c.add("user_id = " + c.arg(*f.UserID))
	}
	if f.OriginUserID != nil {
		c.add("origin_user_id = " + c.arg(*f.OriginUserID))
	}
	if len(f.Types) > 0 {
		c.add("type = ANY(" + c.arg(strs(f.Types)) + ")")
	}
	if len(f.States) > 0 {
		c.add("state = ANY(" + c.arg(strs(f.States)) + ")")
	}
	if len(f.Channels) > 0 {
		c.add("channel = ANY(" + c.arg(strs(f.Channels)) + ")")
	}
	if len(f.Priorities) > 0 {
		c.add("priority = ANY(" + c.arg(strs(f.Priorities)) + ")")
	}
	if f.CreatedFrom != nil {
		c.add("created_at >= " + c.arg(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		c.add("created_at <= " + c.arg(*f.CreatedTo))
	}
	if f.UnreadOnly {
		c.add("state <> " + c.arg(string(notification.StateRead)))
	}
	if f.ExpiredOnly {
		now := f.Now
		if now.IsZero() {
			now = time.Now()
		}
		c.add("expires_at < " + c.arg(now))
	}

	related := []struct {
		column string
		id     *int64
	}{
		{"risk_id", f.Related.RiskID},
		{"project_id", f.Related.ProjectID},
		{"audit_id", f.Related.AuditID},
		{"finding_id", f.Related.FindingID},
		{"activity_id", f.Related.ActivityID},
		{"incident_id", f.Related.IncidentID},
		{"control_id", f.Related.ControlID},
	}
	for _, r := range related {
		if r.id != nil {
			c.add(r.column + " = " + c.arg(*r.id))
		}
	}

	return c
}

// paginate appends LIMIT and OFFSET for p.
func (c *conditions) paginate(p notification.Page) string {
	var sb strings.Builder
	if p.Limit > 0 {
		sb.WriteString(" LIMIT " + c.arg(p.Limit))
	}
	if p.Offset > 0 {
		sb.WriteString(" OFFSET " + c.arg(p.Offset))
	}
	return sb.String()
}
