//go:build windows || plan9

package audit

import (
	"context"

	"github.com/codecentric/c4-genai-suite/backend/internal/config"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

// SyslogShipper is unavailable on this platform
type SyslogShipper struct{}

// NewSyslogShipper always fails with ErrSyslogUnsupported
func NewSyslogShipper(_ *config.AuditSyslogConfig) (*SyslogShipper, error) {
	return nil, ErrSyslogUnsupported
}

// Ship implements Shipper
func (s *SyslogShipper) Ship(_ context.Context, _ *models.AuditLog) error {
	return ErrSyslogUnsupported
}

// Close implements Shipper
func (s *SyslogShipper) Close() error { return nil }
