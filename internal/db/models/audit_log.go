// Package models - audit_log.go defines the AuditLog model, an append-only record of one
// admin mutation with the entity snapshot taken at that moment.
package models

import "time"

// Audited entity types
const (
	EntityTypeExtension     = "extension"
	EntityTypeBucket        = "bucket"
	EntityTypeConfiguration = "configuration"
	EntityTypeSettings      = "settings"
	EntityTypeUserGroup     = "userGroup"
	EntityTypeUser          = "user"
)

// Audit actions
const (
	AuditActionCreate = "create"
	AuditActionUpdate = "update"
	AuditActionDelete = "delete"
)

// AuditLog represents one audit log entry
type AuditLog struct {
	ID         int64     `db:"id" json:"id"`
	EntityType string    `db:"entity_type" json:"entityType"`
	EntityID   string    `db:"entity_id" json:"entityId"`
	Action     string    `db:"action" json:"action"`
	UserID     string    `db:"user_id" json:"userId"`
	UserName   *string   `db:"user_name" json:"userName,omitempty"`
	Snapshot   JSONMap   `db:"snapshot" json:"snapshot"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

// IsValidEntityType reports whether t is one of the audited entity types.
func IsValidEntityType(t string) bool {
	switch t {
	case EntityTypeExtension, EntityTypeBucket, EntityTypeConfiguration,
		EntityTypeSettings, EntityTypeUserGroup, EntityTypeUser:
		return true
	}
	return false
}
