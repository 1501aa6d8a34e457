package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"shiftswap/internal/model"
	pkgerrors "shiftswap/pkg/errors"
)

// ── Mock EmployeeRepository ──

type mockEmployeeRepo struct {
	employees map[string]*model.Employee // key: user_id
	getErr    error
}

func newMockEmployeeRepo() *mockEmployeeRepo {
	return &mockEmployeeRepo{employees: make(map[string]*model.Employee)}
}

func (m *mockEmployeeRepo) Create(_ context.Context, e *model.Employee) error {
	m.employees[e.UserID] = e
	return nil
}

func (m *mockEmployeeRepo) GetByID(_ context.Context, id string) (*model.Employee, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if e, ok := m.employees[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByEmployeeNo(_ context.Context, employeeNo string) (*model.Employee, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, e := range m.employees {
		if e.EmployeeNo == employeeNo {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEmployeeRepo) GetByIDs(_ context.Context, ids []string) ([]model.Employee, error) {
	var out []model.Employee
	for _, id := range ids {
		if e, ok := m.employees[id]; ok {
			out = append(out, *e)
		}
	}
	return out, nil
}

// ── Mock SwapRequestRepository ──

type mockSwapRequestRepo struct {
	mu        sync.Mutex
	items     map[string]*model.SwapRequest
	decideErr error
	createErr error
	decided   int
}

func newMockSwapRequestRepo() *mockSwapRequestRepo {
	return &mockSwapRequestRepo{items: make(map[string]*model.SwapRequest)}
}

func (m *mockSwapRequestRepo) Create(_ context.Context, r *model.SwapRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.items[r.SwapRequestID]; ok {
		return gorm.ErrDuplicatedKey
	}
	r.Version = 1
	cp := *r
	m.items[r.SwapRequestID] = &cp
	return nil
}

func (m *mockSwapRequestRepo) GetByID(_ context.Context, id string) (*model.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.items[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSwapRequestRepo) List(_ context.Context) ([]model.SwapRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.SwapRequest, 0, len(m.items))
	for _, r := range m.items {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockSwapRequestRepo) Decide(_ context.Context, r *model.SwapRequest, status, decidedBy string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.decideErr != nil {
		return m.decideErr
	}
	stored, ok := m.items[r.SwapRequestID]
	if !ok || stored.Status != "pending" || stored.Version != r.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.Status = status
	stored.DecidedBy = &decidedBy
	stored.Version++
	r.Status = status
	r.DecidedBy = &decidedBy
	r.Version = stored.Version
	m.decided++
	return nil
}

func (m *mockSwapRequestRepo) seed(id, requesterID, requesterName, counterpartyID, counterpartyName, status string, createdAt time.Time) {
	m.items[id] = &model.SwapRequest{
		SwapRequestID:    id,
		RequesterID:      requesterID,
		RequesterName:    requesterName,
		CounterpartyID:   counterpartyID,
		CounterpartyName: counterpartyName,
		GivenShiftDate:   "2026-03-10",
		GivenShiftTime:   "09:00-17:00",
		GivenShiftType:   "Morning",
		TakenShiftDate:   "2026-03-12",
		TakenShiftTime:   "22:00-06:00",
		TakenShiftType:   "Night",
		Status:           status,
		VersionedModel: model.VersionedModel{
			SoftDeleteModel: model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedAt: createdAt}},
			Version:         1,
		},
	}
}

// ── Mock Redis ──

type mockBlacklist struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (m *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if ttl > 0 {
		m.revoked[jti] = ttl
	}
	return nil
}

func (m *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	_, ok := m.revoked[jti]
	return ok, nil
}

type mockLocker struct {
	mu       sync.Mutex
	held     map[string]string
	err      error
	released int
}

func newMockLocker() *mockLocker {
	return &mockLocker{held: make(map[string]string)}
}

func (m *mockLocker) AcquireLock(_ context.Context, key string, _ time.Duration) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	if _, ok := m.held[key]; ok {
		return "", nil
	}
	token := "tok-" + key
	m.held[key] = token
	return token, nil
}

func (m *mockLocker) ReleaseLock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.held[key] != token {
		return errors.New("token mismatch")
	}
	delete(m.held, key)
	m.released++
	return nil
}
