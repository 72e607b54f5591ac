package extensions

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/crypto"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
)

// ConfigurationStore persists configurations
type ConfigurationStore interface {
	Get(ctx context.Context, id int64) (*models.Configuration, error)
	List(ctx context.Context, enabledOnly bool) ([]*models.Configuration, error)
	Create(ctx context.Context, c *models.Configuration) error
	Update(ctx context.Context, c *models.Configuration) error
	Delete(ctx context.Context, id int64) error
	SoftDelete(ctx context.Context, id int64) error
}

// ExtensionStore persists extensions
type ExtensionStore interface {
	Get(ctx context.Context, id int64) (*models.Extension, error)
	ListByConfiguration(ctx context.Context, configurationID int64) ([]*models.Extension, error)
	Create(ctx context.Context, e *models.Extension) error
	Update(ctx context.Context, e *models.Extension) error
	Delete(ctx context.Context, id int64) error
}

// UserGroupFinder resolves user group ids; unknown ids are absent from the result
type UserGroupFinder interface {
	FindByIDs(ctx context.Context, ids []string) ([]*models.UserGroup, error)
}

// BucketFinder loads the buckets extensions refer to
type BucketFinder interface {
	Get(ctx context.Context, id int64) (*models.Bucket, error)
}

// AuditLogger appends audit entries
type AuditLogger interface {
	CreateAuditLog(ctx context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error)
}

// Service runs configuration and extension commands and queries
type Service struct {
	configurations ConfigurationStore
	extensions     ExtensionStore
	userGroups     UserGroupFinder
	explorer       *Explorer
	audit          AuditLogger
	cipher         *crypto.SecretCipher
	buckets        BucketFinder
	version        string
}

// NewService creates the configuration and extension service
func NewService(configurations ConfigurationStore, extensions ExtensionStore, userGroups UserGroupFinder, explorer *Explorer, auditLogger AuditLogger) *Service {
	return &Service{
		configurations: configurations,
		extensions:     extensions,
		userGroups:     userGroups,
		explorer:       explorer,
		audit:          auditLogger,
	}
}

// WithCipher encrypts secret extension values at rest
func (s *Service) WithCipher(cipher *crypto.SecretCipher) *Service {
	s.cipher = cipher
	return s
}

// WithBuckets enables GetBucketAvailability
func (s *Service) WithBuckets(buckets BucketFinder) *Service {
	s.buckets = buckets
	return s
}

// WithVersion sets the server version stamped on exports and compared on import
func (s *Service) WithVersion(v string) *Service {
	s.version = v
	return s
}

func (s *Service) writeAudit(ctx context.Context, entityType, entityID, action string, by audit.PerformedBy, snapshot map[string]interface{}) error {
	_, err := s.audit.CreateAuditLog(ctx, audit.CreateAuditLogParams{
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		UserID:     by.ID,
		UserName:   by.UserName(),
		Snapshot:   snapshot,
	})
	if err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// resolveUserGroups keeps only the ids that exist
func (s *Service) resolveUserGroups(ctx context.Context, ids []string) ([]string, error) {
	groups, err := s.userGroups.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user groups: %w", err)
	}
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.ID)
	}
	return out, nil
}

// sealValues encrypts the secret arguments of values in place, including
// secrets nested in object arguments
func (s *Service) sealValues(p *Provider, values map[string]interface{}) error {
	if s.cipher == nil {
		return nil
	}
	return s.sealArguments(p.Arguments, values, "")
}

func (s *Service) sealArguments(args map[string]ArgumentSpec, values map[string]interface{}, prefix string) error {
	for key, spec := range args {
		switch v := values[key].(type) {
		case string:
			if !spec.IsSecret() {
				continue
			}
			sealed, err := s.cipher.Seal(v)
			if err != nil {
				return fmt.Errorf("failed to encrypt %s%s: %w", prefix, key, err)
			}
			values[key] = sealed
		case map[string]interface{}:
			if len(spec.Properties) == 0 {
				continue
			}
			nested := models.JSONMap(v).Clone()
			if err := s.sealArguments(spec.Properties, nested, prefix+key+"."); err != nil {
				return err
			}
			values[key] = map[string]interface{}(nested)
		}
	}
	return nil
}

// openValues returns a copy of values with sealed secrets decrypted at any depth
func (s *Service) openValues(values map[string]interface{}) (map[string]interface{}, error) {
	return s.openNested(values, "")
}

func (s *Service) openNested(values map[string]interface{}, prefix string) (map[string]interface{}, error) {
	if values == nil {
		return nil, nil
	}
	out := make(map[string]interface{}, len(values))
	for key, v := range values {
		switch val := v.(type) {
		case string:
			if crypto.IsSealed(val) {
				if s.cipher == nil {
					return nil, fmt.Errorf("value %s%s is encrypted but no encryption key is configured", prefix, key)
				}
				plain, err := s.cipher.Open(val)
				if err != nil {
					return nil, fmt.Errorf("failed to decrypt %s%s: %w", prefix, key, err)
				}
				v = plain
			}
		case map[string]interface{}:
			opened, err := s.openNested(val, prefix+key+".")
			if err != nil {
				return nil, err
			}
			v = opened
		}
		out[key] = v
	}
	return out, nil
}

func notFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperr.NotFound(format, args...)
	}
	return err
}
