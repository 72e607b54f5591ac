// Package audit records admin mutations in the audit_log table and forwards the
// written entries to external sinks.
//
// The audit_log row is the record of truth. Forwarding to shippers (file,
// webhook, syslog) and to the Redis channel happens after the insert, in the
// background, and never changes the outcome of the mutation that produced it.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Redacted replaces secret values in snapshots and API responses.
const Redacted = "********"

// PerformedBy identifies the actor of a mutation.
type PerformedBy struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// UserName returns the actor name or nil when it is unknown.
func (p PerformedBy) UserName() *string {
	if p.Name == "" {
		return nil
	}
	name := p.Name
	return &name
}

// ToSnapshot converts a snapshot struct into the plain JSON object stored in
// audit_log.snapshot. Field order follows the struct, so equal input yields
// byte-identical JSON.
func ToSnapshot(v interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("snapshot is not a JSON object: %w", err)
	}
	return out, nil
}

// ErrSyslogUnsupported is returned by NewSyslogShipper on platforms without syslog.
var ErrSyslogUnsupported = errors.New("audit: syslog is not supported on this platform")
