package models

import "time"

// AuditAction constants represent lifecycle events to be logged.
const (
	AuditActionCreate     = "PREINSCRIPCION_CREATE"
	AuditActionAmend      = "PREINSCRIPCION_AMEND"
	AuditActionTransition = "PREINSCRIPCION_TRANSITION"
	AuditActionSoftDelete = "PREINSCRIPCION_DELETE"
	AuditActionRestore    = "PREINSCRIPCION_RESTORE"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	Actor      *string   `db:"actor" json:"actor,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resource_id,omitempty"`
	Summary    string    `db:"summary" json:"summary"`
	OldValues  []byte    `db:"old_values" json:"old_values,omitempty"`
	NewValues  []byte    `db:"new_values" json:"new_values,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ip_address"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AdminClaims identifies the administrator driving a state transition. Tokens
// are issued by the institutional SSO; this API only validates them.
type AdminClaims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}
