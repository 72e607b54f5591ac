//go:build !windows && !plan9

package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/syslog"
	"strings"

	"github.com/codecentric/c4-genai-suite/backend/internal/config"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

// SyslogShipper writes entries as JSON messages to a syslog daemon
type SyslogShipper struct {
	writer *syslog.Writer
}

// NewSyslogShipper dials the configured syslog endpoint. An empty network and
// address use the local daemon.
func NewSyslogShipper(cfg *config.AuditSyslogConfig) (*SyslogShipper, error) {
	facility, err := parseFacility(cfg.Facility)
	if err != nil {
		return nil, err
	}
	tag := cfg.Tag
	if tag == "" {
		tag = "c4-audit"
	}

	w, err := syslog.Dial(cfg.Network, cfg.Address, facility|syslog.LOG_INFO, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to syslog: %w", err)
	}
	return &SyslogShipper{writer: w}, nil
}

// Ship writes one entry at info level
func (s *SyslogShipper) Ship(_ context.Context, entry *models.AuditLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	return s.writer.Info(string(data))
}

// Close closes the syslog connection
func (s *SyslogShipper) Close() error {
	return s.writer.Close()
}

func parseFacility(name string) (syslog.Priority, error) {
	switch strings.ToLower(name) {
	case "", "auth":
		return syslog.LOG_AUTH, nil
	case "authpriv":
		return syslog.LOG_AUTHPRIV, nil
	case "daemon":
		return syslog.LOG_DAEMON, nil
	case "user":
		return syslog.LOG_USER, nil
	case "local0":
		return syslog.LOG_LOCAL0, nil
	case "local1":
		return syslog.LOG_LOCAL1, nil
	case "local2":
		return syslog.LOG_LOCAL2, nil
	case "local3":
		return syslog.LOG_LOCAL3, nil
	case "local4":
		return syslog.LOG_LOCAL4, nil
	case "local5":
		return syslog.LOG_LOCAL5, nil
	case "local6":
		return syslog.LOG_LOCAL6, nil
	case "local7":
		return syslog.LOG_LOCAL7, nil
	}
	return 0, fmt.Errorf("unknown syslog facility: %s", name)
}
