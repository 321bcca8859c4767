package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/example/nivaran/internal/core/grievance"
	"github.com/example/nivaran/internal/core/routing"
	"github.com/example/nivaran/internal/ports/secondary"
)

// Ensure the mocks implement the secondary ports
var (
	_ secondary.GrievanceRepository           = (*mockGrievanceRepository)(nil)
	_ secondary.EscalationAuditRepository     = (*mockAuditRepository)(nil)
	_ secondary.FollowerRepository            = (*mockFollowerRepository)(nil)
	_ secondary.ClosureConfirmationRepository = (*mockConfirmationRepository)(nil)
	_ secondary.JurisdictionRepository        = (*mockJurisdictionRepository)(nil)
	_ secondary.SLAPolicyRepository           = (*mockSLAPolicyRepository)(nil)
	_ secondary.Store                         = (*mockStore)(nil)
	_ secondary.UnitOfWork                    = (*mockUnitOfWork)(nil)
)

// mockGrievanceRepository implements secondary.GrievanceRepository for
// testing. GetByID returns copies so that mutations only land via Update,
// which enforces the version guard like the real adapter.
type mockGrievanceRepository struct {
	grievances map[string]*secondary.GrievanceRecord
	nextID     int
	updateErr  error
}

func newMockGrievanceRepository() *mockGrievanceRepository {
	return &mockGrievanceRepository{
		grievances: make(map[string]*secondary.GrievanceRecord),
		nextID:     1,
	}
}

func (m *mockGrievanceRepository) Create(ctx context.Context, g *secondary.GrievanceRecord) error {
	if g.Version == 0 {
		g.Version = 1
	}
	clone := *g
	m.grievances[g.ID] = &clone
	return nil
}

func (m *mockGrievanceRepository) GetByID(ctx context.Context, id string) (*secondary.GrievanceRecord, error) {
	if g, ok := m.grievances[id]; ok {
		clone := *g
		return &clone, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockGrievanceRepository) List(ctx context.Context, filters secondary.GrievanceFilters) ([]*secondary.GrievanceRecord, error) {
	var result []*secondary.GrievanceRecord
	for _, id := range m.sortedIDs() {
		g := m.grievances[id]
		if filters.Status != "" && g.Status != filters.Status {
			continue
		}
		if filters.Severity != "" && g.Severity != filters.Severity {
			continue
		}
		if filters.Category != "" && g.Category != filters.Category {
			continue
		}
		if filters.JurisdictionID != "" && g.JurisdictionID != filters.JurisdictionID {
			continue
		}
		clone := *g
		result = append(result, &clone)
		if filters.Limit > 0 && len(result) >= filters.Limit {
			break
		}
	}
	return result, nil
}

func (m *mockGrievanceRepository) Update(ctx context.Context, g *secondary.GrievanceRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	stored, ok := m.grievances[g.ID]
	if !ok {
		return secondary.ErrNotFound
	}
	if stored.Version != g.Version {
		return secondary.ErrConflict
	}
	g.Version++
	clone := *g
	m.grievances[g.ID] = &clone
	return nil
}

func (m *mockGrievanceRepository) ListOverdue(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	for _, id := range m.sortedIDs() {
		g := m.grievances[id]
		if grievance.Status(g.Status).Active() && g.SLADeadline.Before(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockGrievanceRepository) ListClosureExpired(ctx context.Context, now time.Time) ([]string, error) {
	var ids []string
	for _, id := range m.sortedIDs() {
		g := m.grievances[id]
		if g.PendingClosure && g.ClosureDeadline != nil && g.ClosureDeadline.Before(now) {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m *mockGrievanceRepository) GetNextID(ctx context.Context) (string, error) {
	id := fmt.Sprintf("GRV-%03d", m.nextID)
	m.nextID++
	return id, nil
}

func (m *mockGrievanceRepository) CountByStatus(ctx context.Context) (secondary.StatusCounts, error) {
	var counts secondary.StatusCounts
	for _, g := range m.grievances {
		counts.Total++
		switch grievance.Status(g.Status) {
		case grievance.StatusOpen:
			counts.Open++
		case grievance.StatusInProgress:
			counts.InProgress++
		case grievance.StatusEscalated:
			counts.Escalated++
		case grievance.StatusResolved:
			counts.Resolved++
		}
	}
	return counts, nil
}

func (m *mockGrievanceRepository) sortedIDs() []string {
	ids := make([]string, 0, len(m.grievances))
	for id := range m.grievances {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mockAuditRepository implements secondary.EscalationAuditRepository.
type mockAuditRepository struct {
	entries []*secondary.AuditRecord
}

func newMockAuditRepository() *mockAuditRepository {
	return &mockAuditRepository{}
}

func (m *mockAuditRepository) Append(ctx context.Context, entry *secondary.AuditRecord) error {
	if entry.ID == "" {
		entry.ID = fmt.Sprintf("audit-%d", len(m.entries)+1)
	}
	clone := *entry
	m.entries = append(m.entries, &clone)
	return nil
}

func (m *mockAuditRepository) ListByGrievance(ctx context.Context, grievanceID string) ([]*secondary.AuditRecord, error) {
	var result []*secondary.AuditRecord
	for _, e := range m.entries {
		if e.GrievanceID == grievanceID {
			clone := *e
			result = append(result, &clone)
		}
	}
	return result, nil
}

// mockFollowerRepository implements secondary.FollowerRepository.
type mockFollowerRepository struct {
	followers []*secondary.FollowerRecord
}

func newMockFollowerRepository() *mockFollowerRepository {
	return &mockFollowerRepository{}
}

func (m *mockFollowerRepository) Add(ctx context.Context, grievanceID, userID string) error {
	exists, _ := m.Exists(ctx, grievanceID, userID)
	if exists {
		return secondary.ErrDuplicate
	}
	m.followers = append(m.followers, &secondary.FollowerRecord{
		GrievanceID: grievanceID,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	})
	return nil
}

func (m *mockFollowerRepository) Exists(ctx context.Context, grievanceID, userID string) (bool, error) {
	for _, f := range m.followers {
		if f.GrievanceID == grievanceID && f.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockFollowerRepository) Count(ctx context.Context, grievanceID string) (int, error) {
	count := 0
	for _, f := range m.followers {
		if f.GrievanceID == grievanceID {
			count++
		}
	}
	return count, nil
}

func (m *mockFollowerRepository) List(ctx context.Context, grievanceID string) ([]*secondary.FollowerRecord, error) {
	var result []*secondary.FollowerRecord
	for _, f := range m.followers {
		if f.GrievanceID == grievanceID {
			clone := *f
			result = append(result, &clone)
		}
	}
	return result, nil
}

// mockConfirmationRepository implements secondary.ClosureConfirmationRepository.
type mockConfirmationRepository struct {
	confirmations []*secondary.ConfirmationRecord
}

func newMockConfirmationRepository() *mockConfirmationRepository {
	return &mockConfirmationRepository{}
}

func (m *mockConfirmationRepository) Create(ctx context.Context, c *secondary.ConfirmationRecord) error {
	exists, _ := m.Exists(ctx, c.GrievanceID, c.UserID)
	if exists {
		return secondary.ErrDuplicate
	}
	if c.ID == "" {
		c.ID = fmt.Sprintf("conf-%d", len(m.confirmations)+1)
	}
	clone := *c
	m.confirmations = append(m.confirmations, &clone)
	return nil
}

func (m *mockConfirmationRepository) Exists(ctx context.Context, grievanceID, userID string) (bool, error) {
	for _, c := range m.confirmations {
		if c.GrievanceID == grievanceID && c.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockConfirmationRepository) Counts(ctx context.Context, grievanceID string) (secondary.ConfirmationCounts, error) {
	var counts secondary.ConfirmationCounts
	for _, c := range m.confirmations {
		if c.GrievanceID != grievanceID {
			continue
		}
		switch c.Type {
		case "confirmed":
			counts.Confirmed++
		case "disputed":
			counts.Disputed++
		}
	}
	return counts, nil
}

// mockJurisdictionRepository implements secondary.JurisdictionRepository.
type mockJurisdictionRepository struct {
	jurisdictions map[string]*secondary.JurisdictionRecord
}

func newMockJurisdictionRepository() *mockJurisdictionRepository {
	return &mockJurisdictionRepository{
		jurisdictions: make(map[string]*secondary.JurisdictionRecord),
	}
}

func (m *mockJurisdictionRepository) Create(ctx context.Context, j *secondary.JurisdictionRecord) error {
	clone := *j
	m.jurisdictions[j.ID] = &clone
	return nil
}

func (m *mockJurisdictionRepository) GetByID(ctx context.Context, id string) (*secondary.JurisdictionRecord, error) {
	if j, ok := m.jurisdictions[id]; ok {
		clone := *j
		return &clone, nil
	}
	return nil, secondary.ErrNotFound
}

func (m *mockJurisdictionRepository) ListByLevel(ctx context.Context, level string) ([]*secondary.JurisdictionRecord, error) {
	var result []*secondary.JurisdictionRecord
	for _, id := range m.sortedIDs() {
		j := m.jurisdictions[id]
		if strings.EqualFold(j.Level, level) {
			clone := *j
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (m *mockJurisdictionRepository) List(ctx context.Context) ([]*secondary.JurisdictionRecord, error) {
	var result []*secondary.JurisdictionRecord
	for _, id := range m.sortedIDs() {
		clone := *m.jurisdictions[id]
		result = append(result, &clone)
	}
	return result, nil
}

func (m *mockJurisdictionRepository) sortedIDs() []string {
	ids := make([]string, 0, len(m.jurisdictions))
	for id := range m.jurisdictions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// mockSLAPolicyRepository implements secondary.SLAPolicyRepository.
type mockSLAPolicyRepository struct {
	policies []*secondary.SLAPolicyRecord
}

func newMockSLAPolicyRepository() *mockSLAPolicyRepository {
	return &mockSLAPolicyRepository{}
}

func (m *mockSLAPolicyRepository) Create(ctx context.Context, p *secondary.SLAPolicyRecord) error {
	clone := *p
	m.policies = append(m.policies, &clone)
	return nil
}

func (m *mockSLAPolicyRepository) List(ctx context.Context) ([]*secondary.SLAPolicyRecord, error) {
	return m.policies, nil
}

// mockStore bundles the repository mocks into a secondary.Store.
type mockStore struct {
	grievances    *mockGrievanceRepository
	audit         *mockAuditRepository
	followers     *mockFollowerRepository
	confirmations *mockConfirmationRepository
}

func newMockStore() *mockStore {
	return &mockStore{
		grievances:    newMockGrievanceRepository(),
		audit:         newMockAuditRepository(),
		followers:     newMockFollowerRepository(),
		confirmations: newMockConfirmationRepository(),
	}
}

func (s *mockStore) Grievances() secondary.GrievanceRepository { return s.grievances }
func (s *mockStore) Audit() secondary.EscalationAuditRepository {
	return s.audit
}
func (s *mockStore) Followers() secondary.FollowerRepository { return s.followers }
func (s *mockStore) Confirmations() secondary.ClosureConfirmationRepository {
	return s.confirmations
}

// mockUnitOfWork runs the function against the shared store. It does not
// roll anything back; tests assert on the observable guard behavior
// instead.
type mockUnitOfWork struct {
	store *mockStore
	doErr error
	calls int
}

func (u *mockUnitOfWork) Do(ctx context.Context, fn func(s secondary.Store) error) error {
	u.calls++
	if u.doErr != nil {
		return u.doErr
	}
	return fn(u.store)
}

// testEnv wires the services over the mocks with a fixed clock and a
// small jurisdiction directory covering Karnataka.
type testEnv struct {
	store         *mockStore
	uow           *mockUnitOfWork
	jurisdictions *mockJurisdictionRepository
	policies      *mockSLAPolicyRepository
	directory     *Directory
	router        *Router
	sla           *SLACalculator
	now           time.Time
}

func newTestEnv() *testEnv {
	store := newMockStore()
	jurisdictions := newMockJurisdictionRepository()
	policies := newMockSLAPolicyRepository()

	ctx := context.Background()
	seed := []*secondary.JurisdictionRecord{
		{ID: "JUR-LOC-001", Name: "Bengaluru Ward Office", Level: "local", Authority: "Ward Officer", States: []string{"karnataka"}, Districts: []string{"bengaluru-urban"}, Cities: []string{"bengaluru"}},
		{ID: "JUR-DIS-001", Name: "Bengaluru Urban District", Level: "district", Authority: "District Collector", States: []string{"karnataka"}, Districts: []string{"bengaluru-urban"}},
		{ID: "JUR-STA-001", Name: "Karnataka State Cell", Level: "state", Authority: "State Grievance Officer", States: []string{"karnataka"}},
		{ID: "JUR-NAT-001", Name: "National Grievance Cell", Level: "national", Authority: "National Ombudsman", States: []string{"karnataka", "kerala"}},
	}
	for _, j := range seed {
		_ = jurisdictions.Create(ctx, j)
	}

	for _, p := range []*secondary.SLAPolicyRecord{
		{ID: "SLA-001", Severity: "critical", Hours: 24},
		{ID: "SLA-002", Severity: "high", Hours: 48},
		{ID: "SLA-003", Severity: "critical", Level: "national", Hours: 12},
	} {
		_ = policies.Create(ctx, p)
	}

	directory := NewDirectory(jurisdictions)
	router := NewRouter(directory, routing.Rules{})

	return &testEnv{
		store:         store,
		uow:           &mockUnitOfWork{store: store},
		jurisdictions: jurisdictions,
		policies:      policies,
		directory:     directory,
		router:        router,
		sla:           NewSLACalculator(policies, 72),
		now:           time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (e *testEnv) grievanceService() *GrievanceServiceImpl {
	svc := NewGrievanceService(e.uow, e.store, e.directory, e.router, e.sla)
	svc.now = func() time.Time { return e.now }
	return svc
}

func (e *testEnv) escalationService() *EscalationServiceImpl {
	svc := NewEscalationService(e.uow, e.store, e.directory, e.router, e.sla)
	svc.now = func() time.Time { return e.now }
	return svc
}

func (e *testEnv) closureService() *ClosureServiceImpl {
	svc := NewClosureService(e.uow, e.store)
	svc.now = func() time.Time { return e.now }
	return svc
}

// seedGrievance stores a grievance record with sensible defaults applied.
func (e *testEnv) seedGrievance(g *secondary.GrievanceRecord) *secondary.GrievanceRecord {
	if g.Category == "" {
		g.Category = "sanitation"
	}
	if g.Severity == "" {
		g.Severity = "medium"
	}
	if g.Status == "" {
		g.Status = "open"
	}
	if g.State == "" {
		g.State = "karnataka"
	}
	if g.District == "" {
		g.District = "bengaluru-urban"
	}
	if g.City == "" {
		g.City = "bengaluru"
	}
	if g.JurisdictionID == "" {
		g.JurisdictionID = "JUR-DIS-001"
	}
	if g.AssignedAuthority == "" {
		g.AssignedAuthority = "District Collector"
	}
	if g.SLADeadline.IsZero() {
		g.SLADeadline = e.now.Add(72 * time.Hour)
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = e.now.Add(-24 * time.Hour)
	}
	if g.UpdatedAt.IsZero() {
		g.UpdatedAt = g.CreatedAt
	}
	_ = e.store.grievances.Create(context.Background(), g)
	return g
}

// follow registers userIDs as followers of a grievance.
func (e *testEnv) follow(grievanceID string, userIDs ...string) {
	for _, u := range userIDs {
		_ = e.store.followers.Add(context.Background(), grievanceID, u)
	}
}
