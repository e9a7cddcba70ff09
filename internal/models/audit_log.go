package models

import "time"

type AuditAction string

const (
	ActionRegisterOK       AuditAction = "register_ok"
	ActionRegisterRejected AuditAction = "register_rejected"
	ActionLoginOK          AuditAction = "login_ok"
	ActionLoginFailed      AuditAction = "login_failed"
)

type AuditLog struct {
	ID         string         `json:"id"`
	EntityType Role           `json:"entity_type"`
	EntityID   *string        `json:"entity_id"`
	Action     AuditAction    `json:"action"`
	Details    map[string]any `json:"details"`
	CreatedAt  time.Time      `json:"created_at"`
}
