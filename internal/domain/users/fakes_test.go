package users

import (
	"context"
	"sort"
	"strings"

	"github.com/codecentric/c4-genai-suite/backend/internal/audit"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/models"
	"github.com/codecentric/c4-genai-suite/backend/internal/db/repositories"
)

type memoryUsers struct {
	items map[string]*models.User
}

func (m *memoryUsers) clone(u *models.User) *models.User {
	out := *u
	out.UserGroupIDs = append([]string(nil), u.UserGroupIDs...)
	return &out
}

func (m *memoryUsers) Get(_ context.Context, id string) (*models.User, error) {
	u, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return m.clone(u), nil
}

func (m *memoryUsers) List(_ context.Context, query string, limit, offset int) ([]*models.User, int, error) {
	var all []*models.User
	for _, u := range m.items {
		if query == "" || strings.Contains(u.Name, query) || strings.Contains(u.Email, query) {
			all = append(all, m.clone(u))
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := len(all)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *memoryUsers) emailTaken(u *models.User) bool {
	for _, other := range m.items {
		if other.ID != u.ID && other.Email == u.Email {
			return true
		}
	}
	return false
}

func (m *memoryUsers) Create(_ context.Context, u *models.User) error {
	if m.emailTaken(u) {
		return repositories.ErrDuplicate
	}
	m.items[u.ID] = m.clone(u)
	return nil
}

func (m *memoryUsers) Update(_ context.Context, u *models.User) error {
	if _, ok := m.items[u.ID]; !ok {
		return repositories.ErrNotFound
	}
	if m.emailTaken(u) {
		return repositories.ErrDuplicate
	}
	m.items[u.ID] = m.clone(u)
	return nil
}

func (m *memoryUsers) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type memoryGroups struct {
	items map[string]*models.UserGroup
	users *memoryUsers
}

func (m *memoryGroups) Get(_ context.Context, id string) (*models.UserGroup, error) {
	g, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	out := *g
	return &out, nil
}

func (m *memoryGroups) List(_ context.Context) ([]*models.UserGroup, error) {
	out := make([]*models.UserGroup, 0, len(m.items))
	for _, g := range m.items {
		c := *g
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memoryGroups) FindByIDs(_ context.Context, ids []string) ([]*models.UserGroup, error) {
	var out []*models.UserGroup
	for _, id := range ids {
		if g, ok := m.items[id]; ok {
			c := *g
			out = append(out, &c)
		}
	}
	return out, nil
}

func (m *memoryGroups) Create(_ context.Context, g *models.UserGroup) error {
	c := *g
	m.items[g.ID] = &c
	return nil
}

func (m *memoryGroups) Update(_ context.Context, g *models.UserGroup) error {
	if _, ok := m.items[g.ID]; !ok {
		return repositories.ErrNotFound
	}
	c := *g
	m.items[g.ID] = &c
	return nil
}

func (m *memoryGroups) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memoryGroups) CountUsers(_ context.Context, id string) (int, error) {
	n := 0
	for _, u := range m.users.items {
		for _, g := range u.UserGroupIDs {
			if g == id {
				n++
			}
		}
	}
	return n, nil
}

type recordingAudit struct {
	entries []audit.CreateAuditLogParams
}

func (r *recordingAudit) CreateAuditLog(_ context.Context, params audit.CreateAuditLogParams) (*models.AuditLog, error) {
	r.entries = append(r.entries, params)
	return &models.AuditLog{ID: int64(len(r.entries))}, nil
}

func (r *recordingAudit) last() audit.CreateAuditLogParams {
	return r.entries[len(r.entries)-1]
}

type fixture struct {
	svc    *Service
	users  *memoryUsers
	groups *memoryGroups
	audit  *recordingAudit
}

func newFixture() *fixture {
	users := &memoryUsers{items: map[string]*models.User{}}
	groups := &memoryGroups{users: users, items: map[string]*models.UserGroup{
		models.UserGroupAdmin:   {ID: models.UserGroupAdmin, Name: "Admin", IsAdmin: true, IsBuiltIn: true},
		models.UserGroupDefault: {ID: models.UserGroupDefault, Name: "Default", IsBuiltIn: true},
		"sales":                 {ID: "sales", Name: "Sales"},
	}}
	rec := &recordingAudit{}
	return &fixture{
		svc:    NewService(users, groups, rec),
		users:  users,
		groups: groups,
		audit:  rec,
	}
}

var admin = audit.PerformedBy{ID: "u1", Name: "Alice"}

func strPtr(s string) *string { return &s }
