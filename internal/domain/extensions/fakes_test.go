package extensions

import (
	"context"
	"sort"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
)

type memoryConfigurations struct {
	items         map[int64]*models.Configuration
	nextID        int64
	referenced    map[int64]bool
	noReplacement bool
}

func newMemoryConfigurations() *memoryConfigurations {
	return &memoryConfigurations{items: map[int64]*models.Configuration{}, referenced: map[int64]bool{}}
}

func (m *memoryConfigurations) clone(c *models.Configuration) *models.Configuration {
	out := *c
	out.UserGroupIDs = append([]string(nil), c.UserGroupIDs...)
	return &out
}

func (m *memoryConfigurations) Get(_ context.Context, id int64) (*models.Configuration, error) {
	c, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return m.clone(c), nil
}

func (m *memoryConfigurations) List(_ context.Context, enabledOnly bool) ([]*models.Configuration, error) {
	var out []*models.Configuration
	for _, c := range m.items {
		if c.Status == models.ConfigurationStatusDeleted || (enabledOnly && !c.Enabled()) {
			continue
		}
		out = append(out, m.clone(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryConfigurations) Create(_ context.Context, c *models.Configuration) error {
	if c.ID == 0 {
		m.nextID++
		c.ID = m.nextID
	}
	m.items[c.ID] = m.clone(c)
	return nil
}

func (m *memoryConfigurations) Update(_ context.Context, c *models.Configuration) error {
	if _, ok := m.items[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.items[c.ID] = m.clone(c)
	return nil
}

func (m *memoryConfigurations) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	if m.referenced[id] {
		return repositories.ErrReferenced
	}
	delete(m.items, id)
	return nil
}

func (m *memoryConfigurations) SoftDelete(_ context.Context, id int64) error {
	c, ok := m.items[id]
	if !ok {
		return repositories.ErrNotFound
	}
	if m.noReplacement {
		return repositories.ErrNoReplacement
	}
	c.Status = models.ConfigurationStatusDeleted
	return nil
}

type memoryExtensions struct {
	items  map[int64]*models.Extension
	nextID int64
}

func newMemoryExtensions() *memoryExtensions {
	return &memoryExtensions{items: map[int64]*models.Extension{}}
}

func (m *memoryExtensions) clone(e *models.Extension) *models.Extension {
	out := *e
	out.Values = e.Values.Clone()
	return &out
}

func (m *memoryExtensions) Get(_ context.Context, id int64) (*models.Extension, error) {
	e, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return m.clone(e), nil
}

func (m *memoryExtensions) ListByConfiguration(_ context.Context, configurationID int64) ([]*models.Extension, error) {
	var out []*models.Extension
	for _, e := range m.items {
		if e.ConfigurationID == configurationID {
			out = append(out, m.clone(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memoryExtensions) Create(_ context.Context, e *models.Extension) error {
	m.nextID++
	e.ID = m.nextID
	m.items[e.ID] = m.clone(e)
	return nil
}

func (m *memoryExtensions) Update(_ context.Context, e *models.Extension) error {
	if _, ok := m.items[e.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.items[e.ID] = m.clone(e)
	return nil
}

func (m *memoryExtensions) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memoryGroups map[string]*models.UserGroup

func (m memoryGroups) FindByIDs(_ context.Context, ids []string) ([]*models.UserGroup, error) {
	var out []*models.UserGroup
	for _, id := range ids {
		if g, ok := m[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

type memoryBuckets map[int64]*models.Bucket

func (m memoryBuckets) Get(_ context.Context, id int64) (*models.Bucket, error) {
	b, ok := m[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return b, nil
}

type recordingAudit struct {
	entries []audit.CreateAuditLogParams
	err     error
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.entries = append(r.entries, params)
	return &models.AuditLog{
		ID:         int64(len(r.entries)),
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		Action:     params.Action,
		UserID:     params.UserID,
		UserName:   params.UserName,
		Snapshot:   params.Snapshot,
	}, nil
}

func (r *recordingAudit) last() audit.CreateAuditLogParams {
	return r.entries[len(r.entries)-1]
}

type fixture struct {
	svc            *Service
	configurations *memoryConfigurations
	extensions     *memoryExtensions
	buckets        memoryBuckets
	audit          *recordingAudit
}

func newFixture(extra ...Provider) *fixture {
	f := &fixture{
		configurations: newMemoryConfigurations(),
		extensions:     newMemoryExtensions(),
		buckets:        memoryBuckets{},
		audit:          &recordingAudit{},
	}
	groups := memoryGroups{
		"admin":   {ID: "admin", Name: "Admin", IsAdmin: true, IsBuiltIn: true},
		"default": {ID: "default", Name: "Default", IsBuiltIn: true},
		"sales":   {ID: "sales", Name: "Sales"},
	}
	f.svc = NewService(f.configurations, f.extensions, groups, NewExplorer(append(DefaultProviders(), extra...)...), f.audit).
		WithBuckets(f.buckets).
		WithVersion(testVersion)
	return f
}

const testVersion = "1.4.0"

var admin = audit.PerformedBy{ID: "u1", Name: "Alice"}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }
