package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/codecentric/c4-genai-suite/backend/internal/config"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
)

const defaultWebhookTimeout = 10 * time.Second

// Shipper forwards stored audit entries to a destination outside the database
type Shipper interface {
	Ship(ctx context.Context, entry *models.AuditLog) error
	Close() error
}

type shipperBuilder func(cfg config.AuditShipperConfig) (Shipper, error)

var shipperBuilders = map[string]shipperBuilder{
	"syslog": func(cfg config.AuditShipperConfig) (Shipper, error) {
		if cfg.Syslog == nil {
			return nil, errors.New("syslog section missing")
		}
		return NewSyslogShipper(cfg.Syslog)
	},
	"webhook": func(cfg config.AuditShipperConfig) (Shipper, error) {
		if cfg.Webhook == nil {
			return nil, errors.New("webhook section missing")
		}
		return NewWebhookShipper(cfg.Webhook)
	},
	"file": func(cfg config.AuditShipperConfig) (Shipper, error) {
		if cfg.File == nil {
			return nil, errors.New("file section missing")
		}
		return NewFileShipper(cfg.File.Path)
	},
}

// MultiShipper fans one entry out to every enabled shipper
type MultiShipper struct {
	mu       sync.RWMutex
	shippers []Shipper
}

// NewMultiShipper builds the enabled entries of configs. Disabled entries are
// ignored; a syslog entry on a platform without syslog is skipped with a warning.
func NewMultiShipper(configs []config.AuditShipperConfig) (*MultiShipper, error) {
	ms := &MultiShipper{}
	for i, cfg := range configs {
		if !cfg.Enabled {
			continue
		}
		build, ok := shipperBuilders[cfg.Type]
		if !ok {
			ms.Close()
			return nil, fmt.Errorf("audit shipper %d: unknown type %q", i, cfg.Type)
		}
		shipper, err := build(cfg)
		if errors.Is(err, ErrSyslogUnsupported) {
			slog.Warn("skipping syslog audit shipper", "index", i, "error", err)
			continue
		}
		if err != nil {
			ms.Close()
			return nil, fmt.Errorf("audit shipper %d (%s): %w", i, cfg.Type, err)
		}
		ms.shippers = append(ms.shippers, shipper)
	}
	return ms, nil
}

// Len reports how many shippers are active
func (ms *MultiShipper) Len() int {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.shippers)
}

// Ship hands entry to every shipper, even after one fails, and joins the errors.
func (ms *MultiShipper) Ship(ctx context.Context, entry *models.AuditLog) error {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	var errs []error
	for _, s := range ms.shippers {
		if err := s.Ship(ctx, entry); err != nil {
			slog.Warn("audit shipper failed", "entity_type", entry.EntityType, "entity_id", entry.EntityID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (ms *MultiShipper) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var errs []error
	for _, s := range ms.shippers {
		errs = append(errs, s.Close())
	}
	ms.shippers = nil
	return errors.Join(errs...)
}

// WebhookShipper POSTs every entry as a JSON document
type WebhookShipper struct {
	url     string
	headers map[string]string
	client  *http.Client
}

func NewWebhookShipper(cfg *config.AuditWebhookConfig) (*WebhookShipper, error) {
	if cfg.URL == "" {
		return nil, errors.New("webhook url is required")
	}
	timeout := defaultWebhookTimeout
	if cfg.TimeoutSecs > 0 {
		timeout = time.Duration(cfg.TimeoutSecs) * time.Second
	}
	return &WebhookShipper{url: cfg.URL, headers: cfg.Headers, client: &http.Client{Timeout: timeout}}, nil
}

func (ws *WebhookShipper) Ship(ctx context.Context, entry *models.AuditLog) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode audit entry %d: %w", entry.ID, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ws.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for name, value := range ws.headers {
		req.Header.Set(name, value)
	}

	resp, err := ws.client.Do(req)
	if err != nil {
		return fmt.Errorf("post audit entry %d: %w", entry.ID, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("post audit entry %d: webhook answered %s", entry.ID, resp.Status)
	}
	return nil
}

func (ws *WebhookShipper) Close() error { return nil }

// FileShipper appends one JSON document per line
type FileShipper struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

func NewFileShipper(path string) (*FileShipper, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open audit file: %w", err)
	}
	return &FileShipper{f: f, enc: json.NewEncoder(f)}, nil
}

func (fs *FileShipper) Ship(_ context.Context, entry *models.AuditLog) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if err := fs.enc.Encode(entry); err != nil {
		return fmt.Errorf("append audit entry %d: %w", entry.ID, err)
	}
	return nil
}

func (fs *FileShipper) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.f.Close()
}
