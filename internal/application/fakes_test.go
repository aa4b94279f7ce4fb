package application

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/prison-staff-admin/internal/domain/entity"
	repo "github.com/oksasatya/prison-staff-admin/internal/domain/repository"
	"github.com/oksasatya/prison-staff-admin/pkg/validation"
)

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

const (
	adminRoleID    = "00000000-0000-0000-0000-00000000000a"
	directorRoleID = "00000000-0000-0000-0000-00000000000d"
	wardRoleID     = "00000000-0000-0000-0000-00000000000e"
)

type memUsers struct {
	mu     sync.Mutex
	byID   map[string]entity.User
	writes int
	err    error
}

func newMemUsers() *memUsers { return &memUsers{byID: map[string]entity.User{}} }

func (m *memUsers) put(u entity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byID[u.ID] = u
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return &u, nil
}

func (m *memUsers) GetByLogin(_ context.Context, login string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Username == login || u.Email == login {
			u := u
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.byID[u.ID]; !ok {
		return repo.ErrNotFound
	}
	m.writes++
	m.byID[u.ID] = *u
	return nil
}

func (m *memUsers) UpdatePassword(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	m.writes++
	u.Password = hash
	m.byID[id] = u
	return nil
}

func (m *memUsers) SetState(_ context.Context, id string, state bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return repo.ErrNotFound
	}
	m.writes++
	u.State = state
	m.byID[id] = u
	return nil
}

func (m *memUsers) ListByRole(_ context.Context, q repo.ListQuery) ([]entity.User, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var all []entity.User
	for _, u := range m.byID {
		if u.RoleID == q.RoleID && strings.Contains(u.Username, q.Search) {
			all = append(all, u)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].FirstName != all[j].FirstName {
			return all[i].FirstName < all[j].FirstName
		}
		return all[i].LastName < all[j].LastName
	})
	total := len(all)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return all[q.Offset:end], total, nil
}

func (m *memUsers) Exists(_ context.Context, field, value, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.ID == excludeID {
			continue
		}
		if (field == "username" && u.Username == value) || (field == "email" && u.Email == value) {
			return true, nil
		}
	}
	return false, nil
}

type memRoles struct{}

func (memRoles) GetByName(_ context.Context, name string) (*entity.Role, error) {
	switch name {
	case entity.RoleAdmin:
		return &entity.Role{ID: adminRoleID, Name: name}, nil
	case entity.RoleDirector:
		return &entity.Role{ID: directorRoleID, Name: name}, nil
	case entity.RoleWard:
		return &entity.Role{ID: wardRoleID, Name: name}, nil
	}
	return nil, repo.ErrNotFound
}

type recordingNotifier struct {
	sent []Notification
	err  error
}

func (r *recordingNotifier) Notify(_ context.Context, n Notification) error {
	r.sent = append(r.sent, n)
	return r.err
}

type memAvatars struct {
	saved   []string
	deleted []string
	err     error
}

func (a *memAvatars) Save(_ context.Context, userID, sourceURL string) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	url := sourceURL + "#" + userID
	a.saved = append(a.saved, url)
	return url, nil
}

func (a *memAvatars) Delete(_ context.Context, url string) error {
	a.deleted = append(a.deleted, url)
	return nil
}

type memIndex struct {
	indexed map[string]entity.User
	err     error
}

func (i *memIndex) Index(_ context.Context, u *entity.User) error {
	if i.err != nil {
		return i.err
	}
	if i.indexed == nil {
		i.indexed = map[string]entity.User{}
	}
	i.indexed[u.ID] = *u
	return nil
}

func (i *memIndex) Search(_ context.Context, role, q string, size int) ([]map[string]any, error) {
	var out []map[string]any
	for _, u := range i.indexed {
		if u.RoleName == role && strings.Contains(u.Username, q) && len(out) < size {
			out = append(out, map[string]any{"id": u.ID, "username": u.Username})
		}
	}
	return out, nil
}

type memSessions struct{ revoked []string }

func (s *memSessions) Revoke(_ context.Context, userID string) error {
	s.revoked = append(s.revoked, userID)
	return nil
}

type harness struct {
	svc      *AccountService
	users    *memUsers
	notifier *recordingNotifier
	avatars  *memAvatars
	index    *memIndex
	sessions *memSessions
}

func newHarness() *harness {
	h := &harness{
		users:    newMemUsers(),
		notifier: &recordingNotifier{},
		avatars:  &memAvatars{},
		index:    &memIndex{},
		sessions: &memSessions{},
	}
	v := validation.New(func() time.Time { return fixedNow })
	h.svc = NewAccountService(h.users, memRoles{}, h.avatars, h.notifier, h.index, v, nil, "")
	h.svc.Sessions = h.sessions
	return h
}

var (
	admin    = entity.Actor{UserID: "admin-1", Username: "root", Role: entity.RoleAdmin}
	director = entity.Actor{UserID: "dir-1", Username: "chief", Role: entity.RoleDirector}
)

func anaFields() map[string]string {
	return map[string]string{
		FieldFirstName:     "Ana",
		FieldLastName:      "Ruiz",
		FieldUsername:      "aruiz01",
		FieldEmail:         "ana@x.com",
		FieldBirthdate:     "15/03/1995",
		FieldPersonalPhone: "0991234567",
		FieldHomePhone:     "022345678",
		FieldAddress:       "Av. Central 123",
	}
}

func copyFields(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var errBoom = errors.New("boom")
