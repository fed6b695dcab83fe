package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/nihal711/noah/internal/model"
	"github.com/nihal711/noah/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.EmployeeID == user.EmployeeID || strings.EqualFold(u.Email, user.Email) {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) find(match func(*model.User) bool) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.Username == username })
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return strings.EqualFold(u.Email, email) })
}

func (m *mockUserRepo) GetByEmployeeID(_ context.Context, employeeID string) (*model.User, error) {
	return m.find(func(u *model.User) bool { return u.EmployeeID == employeeID })
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user.UpdatedAt = time.Now()
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) ListWithFilters(_ context.Context, filters *repository.UserListFilters, offset, limit int) ([]model.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, u := range m.users {
		if filters != nil {
			if filters.Department != "" && u.Department != filters.Department {
				continue
			}
			if filters.Role != "" && u.Role != filters.Role {
				continue
			}
			if filters.Keyword != "" && !strings.Contains(strings.ToLower(u.FullName+u.Username), strings.ToLower(filters.Keyword)) {
				continue
			}
		}
		result = append(result, *u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UserID < result[j].UserID })
	total := int64(len(result))
	if limit > 0 {
		if offset >= len(result) {
			return []model.User{}, total, nil
		}
		end := offset + limit
		if end > len(result) {
			end = len(result)
		}
		result = result[offset:end]
	}
	return result, total, nil
}

func (m *mockUserRepo) ListByManager(_ context.Context, managerID string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.User
	for _, u := range m.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) ClearManager(_ context.Context, managerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.ManagerID != nil && *u.ManagerID == managerID {
			u.ManagerID = nil
		}
	}
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.users, id)
	return nil
}

// ── Mock RequestRepository (leave / bank letter / visa letter) ──

type mockRequestRepo[M model.Approvable] struct {
	mu     sync.Mutex
	items  map[string]*M
	seq    int
	prefix string
	setID  func(m *M, id string)
	users  *mockUserRepo // resolves ManagerID filters
	clock  time.Time
}

func newMockRequestRepo[M model.Approvable](prefix string, users *mockUserRepo, setID func(*M, string)) *mockRequestRepo[M] {
	return &mockRequestRepo[M]{
		items:  make(map[string]*M),
		prefix: prefix,
		setID:  setID,
		users:  users,
		clock:  time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// put stores m as is; tests use it to seed fixtures
func (m *mockRequestRepo[M]) put(item *M) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[(*item).RecordID()] = item
}

func (m *mockRequestRepo[M]) Create(_ context.Context, item *M) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if (*item).RecordID() == "" {
		m.setID(item, fmt.Sprintf("%s-%d", m.prefix, m.seq))
	}
	// strictly increasing timestamps keep orderings deterministic
	m.clock = m.clock.Add(time.Minute)
	setTimestamps(item, m.clock)
	m.items[(*item).RecordID()] = item
	return nil
}

func (m *mockRequestRepo[M]) GetByID(_ context.Context, id string) (*M, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if item, ok := m.items[id]; ok {
		cp := *item
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequestRepo[M]) GetByIDForUpdate(ctx context.Context, id string) (*M, error) {
	return m.GetByID(ctx, id)
}

func (m *mockRequestRepo[M]) List(_ context.Context, filter *repository.RequestFilter) ([]M, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if filter == nil {
		filter = &repository.RequestFilter{}
	}
	var result []M
	for _, item := range m.items {
		if filter.UserID != "" && (*item).OwnerID() != filter.UserID {
			continue
		}
		if filter.Status != "" && (*item).CurrentStatus() != filter.Status {
			continue
		}
		if filter.ManagerID != "" {
			owner, err := m.users.GetByID(context.Background(), (*item).OwnerID())
			if err != nil || owner.ManagerID == nil || *owner.ManagerID != filter.ManagerID {
				continue
			}
		}
		result = append(result, *item)
	}
	sort.Slice(result, func(i, j int) bool {
		ti, tj := createdAt(&result[i]), createdAt(&result[j])
		if filter.OldestFirst {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})
	total := int64(len(result))
	if filter.Limit > 0 {
		if filter.Offset >= len(result) {
			return []M{}, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[filter.Offset:end]
	}
	return result, total, nil
}

func (m *mockRequestRepo[M]) Decide(_ context.Context, id string, d model.Decision) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok || (*item).CurrentStatus() != model.StatusPending {
		return 0, nil
	}
	setDecision(item, d)
	return 1, nil
}

func (m *mockRequestRepo[M]) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockRequestRepo[M]) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, item := range m.items {
		if (*item).OwnerID() == userID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *mockRequestRepo[M]) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// the three request models embed Decision and Timestamps; reach them without reflection
func setDecision(item any, d model.Decision) {
	switch v := item.(type) {
	case *model.LeaveRequest:
		v.Decision = d
	case *model.BankLetterRequest:
		v.Decision = d
	case *model.VisaLetterRequest:
		v.Decision = d
	}
}

func setTimestamps(item any, t time.Time) {
	switch v := item.(type) {
	case *model.LeaveRequest:
		v.CreatedAt, v.UpdatedAt = t, t
	case *model.BankLetterRequest:
		v.CreatedAt, v.UpdatedAt = t, t
	case *model.VisaLetterRequest:
		v.CreatedAt, v.UpdatedAt = t, t
	}
}

func createdAt(item any) time.Time {
	switch v := item.(type) {
	case *model.LeaveRequest:
		return v.CreatedAt
	case *model.BankLetterRequest:
		return v.CreatedAt
	case *model.VisaLetterRequest:
		return v.CreatedAt
	}
	return time.Time{}
}

// ── Mock LeaveBalanceRepository ──

type mockLeaveBalanceRepo struct {
	mu       sync.Mutex
	balances map[string]*model.LeaveBalance // key: leave_balance_id
	seq      int
}

func newMockLeaveBalanceRepo() *mockLeaveBalanceRepo {
	return &mockLeaveBalanceRepo{balances: make(map[string]*model.LeaveBalance)}
}

func (m *mockLeaveBalanceRepo) Create(_ context.Context, b *model.LeaveBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.balances {
		if x.UserID == b.UserID && x.Year == b.Year && strings.EqualFold(x.LeaveType, b.LeaveType) {
			return gorm.ErrDuplicatedKey
		}
	}
	if b.LeaveBalanceID == "" {
		m.seq++
		b.LeaveBalanceID = fmt.Sprintf("bal-%d", m.seq)
	}
	cp := *b
	m.balances[b.LeaveBalanceID] = &cp
	return nil
}

func (m *mockLeaveBalanceRepo) Update(_ context.Context, b *model.LeaveBalance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.balances[b.LeaveBalanceID] = &cp
	return nil
}

func (m *mockLeaveBalanceRepo) ListByUser(_ context.Context, userID string) ([]model.LeaveBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.LeaveBalance
	for _, b := range m.balances {
		if b.UserID == userID {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].LeaveType < result[j].LeaveType })
	return result, nil
}

func (m *mockLeaveBalanceRepo) Get(_ context.Context, userID, leaveType string, year int) (*model.LeaveBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.balances {
		if b.UserID == userID && b.Year == year && strings.EqualFold(b.LeaveType, leaveType) {
			cp := *b
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockLeaveBalanceRepo) GetForUpdate(ctx context.Context, userID, leaveType string, year int) (*model.LeaveBalance, error) {
	return m.Get(ctx, userID, leaveType, year)
}

// Consume mirrors the conditional UPDATE: all or nothing under the lock
func (m *mockLeaveBalanceRepo) Consume(_ context.Context, id string, days decimal.Decimal) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.balances[id]
	if !ok || b.UsedDays.Add(days).GreaterThan(b.TotalDays) {
		return 0, nil
	}
	b.UsedDays = b.UsedDays.Add(days)
	return 1, nil
}

func (m *mockLeaveBalanceRepo) Release(_ context.Context, id string, days decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.balances[id]; ok {
		b.UsedDays = decimal.Max(b.UsedDays.Sub(days), decimal.Zero)
	}
	return nil
}

func (m *mockLeaveBalanceRepo) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, b := range m.balances {
		if b.UserID == userID {
			delete(m.balances, id)
		}
	}
	return nil
}

// seed adds a balance for tests
func (m *mockLeaveBalanceRepo) seed(userID, leaveType string, year int, total, used float64) *model.LeaveBalance {
	b := &model.LeaveBalance{
		UserID:    userID,
		LeaveType: leaveType,
		Year:      year,
		TotalDays: decimal.NewFromFloat(total),
		UsedDays:  decimal.NewFromFloat(used),
	}
	_ = m.Create(context.Background(), b)
	return b
}

func (m *mockLeaveBalanceRepo) used(userID, leaveType string, year int) decimal.Decimal {
	b, err := m.Get(context.Background(), userID, leaveType, year)
	if err != nil {
		return decimal.Zero
	}
	return b.UsedDays
}

// ── Mock AttachmentRepository ──

type mockAttachmentRepo struct {
	mu    sync.Mutex
	items map[string]*model.Attachment
	seq   int
	// owners resolves DeleteByUser without joins: owner_id → user_id
	owners func(ownerType, ownerID string) string
}

func newMockAttachmentRepo() *mockAttachmentRepo {
	return &mockAttachmentRepo{items: make(map[string]*model.Attachment)}
}

func (m *mockAttachmentRepo) Create(_ context.Context, a *model.Attachment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	if a.AttachmentID == "" {
		a.AttachmentID = fmt.Sprintf("att-%d", m.seq)
	}
	a.CreatedAt = time.Now()
	cp := *a
	m.items[a.AttachmentID] = &cp
	return nil
}

func (m *mockAttachmentRepo) ListByOwner(_ context.Context, ownerType, ownerID string) ([]model.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []model.Attachment
	for _, a := range m.items {
		if a.OwnerType == ownerType && a.OwnerID == ownerID {
			cp := *a
			cp.FileSize = len(cp.FileData)
			cp.FileData = nil
			result = append(result, cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AttachmentID < result[j].AttachmentID })
	return result, nil
}

func (m *mockAttachmentRepo) GetByID(_ context.Context, ownerType, ownerID, id string) (*model.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.OwnerType != ownerType || a.OwnerID != ownerID {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAttachmentRepo) DeleteByOwner(_ context.Context, ownerType, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.items {
		if a.OwnerType == ownerType && a.OwnerID == ownerID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *mockAttachmentRepo) DeleteByUser(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, a := range m.items {
		if m.owners != nil && m.owners(a.OwnerType, a.OwnerID) == userID {
			delete(m.items, id)
		}
	}
	return nil
}

func (m *mockAttachmentRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// ── fixture ──

// testRepos the mock aggregate plus typed handles on every mock
type testRepos struct {
	repo        *repository.Repository
	users       *mockUserRepo
	leaves      *mockRequestRepo[model.LeaveRequest]
	balances    *mockLeaveBalanceRepo
	banks       *mockRequestRepo[model.BankLetterRequest]
	visas       *mockRequestRepo[model.VisaLetterRequest]
	attachments *mockAttachmentRepo
}

func newTestRepos() *testRepos {
	users := newMockUserRepo()
	leaves := newMockRequestRepo[model.LeaveRequest]("leave", users,
		func(m *model.LeaveRequest, id string) { m.LeaveRequestID = id })
	banks := newMockRequestRepo[model.BankLetterRequest]("bank", users,
		func(m *model.BankLetterRequest, id string) { m.BankLetterRequestID = id })
	visas := newMockRequestRepo[model.VisaLetterRequest]("visa", users,
		func(m *model.VisaLetterRequest, id string) { m.VisaLetterRequestID = id })
	balances := newMockLeaveBalanceRepo()
	attachments := newMockAttachmentRepo()
	attachments.owners = func(ownerType, ownerID string) string {
		var owner interface{ OwnerID() string }
		var err error
		switch ownerType {
		case model.OwnerBankLetter:
			owner, err = banks.GetByID(context.Background(), ownerID)
		default:
			owner, err = visas.GetByID(context.Background(), ownerID)
		}
		if err != nil {
			return ""
		}
		return owner.OwnerID()
	}

	return &testRepos{
		repo: &repository.Repository{
			User:         users,
			LeaveRequest: leaves,
			LeaveBalance: balances,
			BankLetter:   banks,
			VisaLetter:   visas,
			Attachment:   attachments,
		},
		users:       users,
		leaves:      leaves,
		balances:    balances,
		banks:       banks,
		visas:       visas,
		attachments: attachments,
	}
}

// addUser seeds a user with sensible defaults
func (r *testRepos) addUser(id, username, role string, managerID *string) *model.User {
	u := &model.User{
		UserID:       id,
		Username:     username,
		Email:        username + "@company.com",
		EmployeeID:   "EMP-" + id,
		FullName:     strings.ToUpper(username[:1]) + username[1:],
		Department:   "Engineering",
		Position:     "Engineer",
		Gender:       "male",
		Religion:     "other",
		ManagerID:    managerID,
		Role:         role,
		PasswordHash: "x",
		IsActive:     true,
	}
	_ = r.users.Create(context.Background(), u)
	return u
}

func strPtr(s string) *string { return &s }
