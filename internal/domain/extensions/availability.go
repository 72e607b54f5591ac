package extensions

import (
	"context"
	"errors"
	"fmt"

	"github.com/codecentric/c4-genai-suite/backend/internal/apperr"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
)

// BucketAvailability tells whether a configuration offers a bucket of a type
// and which extension provides it
type BucketAvailability struct {
	Available     bool   `json:"available"`
	ExtensionID   *int64 `json:"extensionId,omitempty"`
	ExtensionName string `json:"extensionName,omitempty"`
}

// bucketReference is the value of a bucket-format argument
type bucketReference struct {
	Bucket int64 `json:"bucket"`
}

// GetBucketAvailability reports the first enabled extension of the
// configuration that refers to a bucket of bucketType. Only user and
// conversation buckets can be asked for. References to buckets that no
// longer exist are ignored.
func (s *Service) GetBucketAvailability(ctx context.Context, id int64, bucketType string) (*BucketAvailability, error) {
	switch bucketType {
	case models.BucketTypeUser, models.BucketTypeConversation:
	default:
		return nil, apperr.Validation("invalid bucket type %q, expected user or conversation", bucketType)
	}
	if s.buckets == nil {
		return nil, errors.New("bucket lookup is not configured")
	}

	c, err := s.configurations.Get(ctx, id)
	if err != nil {
		return nil, notFound(err, "Configuration %d not found", id)
	}
	if c.Status == models.ConfigurationStatusDeleted {
		return nil, apperr.NotFound("Configuration %d not found", id)
	}
	items, err := s.extensions.ListByConfiguration(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list extensions: %w", err)
	}

	for _, e := range items {
		if !e.Enabled {
			continue
		}
		provider, ok := s.explorer.GetExtension(e.Name)
		if !ok || !hasBucketArgument(provider) {
			continue
		}
		ref, err := Decode[bucketReference](e.Values)
		if err != nil {
			return nil, fmt.Errorf("extension %d: %w", e.ID, err)
		}
		if ref.Bucket == 0 {
			continue
		}
		bucket, err := s.buckets.Get(ctx, ref.Bucket)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load bucket %d: %w", ref.Bucket, err)
		}
		if bucket.Type == bucketType {
			extensionID := e.ID
			return &BucketAvailability{Available: true, ExtensionID: &extensionID, ExtensionName: provider.Title}, nil
		}
	}
	return &BucketAvailability{Available: false}, nil
}

func hasBucketArgument(p *Provider) bool {
	for _, spec := range p.Arguments {
		if spec.Format == FormatBucket {
			return true
		}
	}
	return false
}
