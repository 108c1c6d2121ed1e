package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
)

// ── 内存存储：所有 mock 仓储共享，便于跨仓储断言 ──

type memStore struct {
	seq int

	specialties map[string]*model.Specialty
	contractors map[string]*model.Contractor
	workers     map[string]*model.Worker

	projects           map[string]*model.Project
	projectContractors map[string][]string
	projectWorkers     map[string][]string
	projectPayments    map[string]*model.ProjectPayment
	concepts           map[string]*model.Concept
	conceptPayments    map[string]*model.ConceptPayment
	expenses           map[string]*model.Expense

	prospects map[string]*model.Prospect
	followUps map[string]*model.ProspectFollowUp

	projectHistories  map[string]*model.ProjectHistory
	prospectHistories map[string]*model.ProspectHistory

	weeks    map[string]*model.PayrollWeek
	payments map[string]*model.PayrollPayment

	folders map[string]*model.Folder
	files   map[string]*model.StoredFile

	// 调用顺序记录（用于断言删除顺序）
	calls []string
}

func newMemStore() *memStore {
	return &memStore{
		specialties:        map[string]*model.Specialty{},
		contractors:        map[string]*model.Contractor{},
		workers:            map[string]*model.Worker{},
		projects:           map[string]*model.Project{},
		projectContractors: map[string][]string{},
		projectWorkers:     map[string][]string{},
		projectPayments:    map[string]*model.ProjectPayment{},
		concepts:           map[string]*model.Concept{},
		conceptPayments:    map[string]*model.ConceptPayment{},
		expenses:           map[string]*model.Expense{},
		prospects:          map[string]*model.Prospect{},
		followUps:          map[string]*model.ProspectFollowUp{},
		projectHistories:   map[string]*model.ProjectHistory{},
		prospectHistories:  map[string]*model.ProspectHistory{},
		weeks:              map[string]*model.PayrollWeek{},
		payments:           map[string]*model.PayrollPayment{},
		folders:            map[string]*model.Folder{},
		files:              map[string]*model.StoredFile{},
	}
}

// newID 生成合法的 UUID 字符串
func (m *memStore) newID() string {
	m.seq++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", m.seq)
}

func (m *memStore) record(call string) { m.calls = append(m.calls, call) }

// newMockRepository 创建基于内存存储的 Repository 聚合（无 db，RunInTx 直接执行）
func newMockRepository() (*repository.Repository, *memStore) {
	st := newMemStore()
	return &repository.Repository{
		Specialty:      &mockSpecialtyRepo{st},
		Contractor:     &mockContractorRepo{st},
		Worker:         &mockWorkerRepo{st},
		Project:        &mockProjectRepo{st},
		Concept:        &mockConceptRepo{st},
		Expense:        &mockExpenseRepo{st},
		Prospect:       &mockProspectRepo{st},
		History:        &mockHistoryRepo{st},
		PayrollWeek:    &mockPayrollWeekRepo{st},
		PayrollPayment: &mockPayrollPaymentRepo{st},
		Folder:         &mockFolderRepo{st},
		File:           &mockFileRepo{st},
		Dashboard:      &mockDashboardRepo{st},
	}, st
}

func paginate[T any](list []T, offset, limit int) []T {
	if offset >= len(list) {
		return []T{}
	}
	end := len(list)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return list[offset:end]
}

func containsFold(s, q string) bool {
	return q == "" || strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(q)))
}

// ── Mock SpecialtyRepository ──

type mockSpecialtyRepo struct{ *memStore }

func (m *mockSpecialtyRepo) Create(_ context.Context, s *model.Specialty) error {
	for _, existing := range m.specialties {
		if strings.EqualFold(existing.Name, s.Name) {
			return gorm.ErrDuplicatedKey
		}
	}
	if s.SpecialtyID == "" {
		s.SpecialtyID = m.newID()
	}
	c := *s
	m.specialties[s.SpecialtyID] = &c
	return nil
}

func (m *mockSpecialtyRepo) GetByID(_ context.Context, id string) (*model.Specialty, error) {
	if s, ok := m.specialties[id]; ok {
		c := *s
		return &c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSpecialtyRepo) GetByName(_ context.Context, name string) (*model.Specialty, error) {
	for _, s := range m.specialties {
		if strings.EqualFold(s.Name, name) {
			c := *s
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSpecialtyRepo) List(_ context.Context, query string) ([]model.Specialty, error) {
	var result []model.Specialty
	for _, s := range m.specialties {
		if containsFold(s.Name, query) {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockSpecialtyRepo) Update(_ context.Context, s *model.Specialty) error {
	if _, ok := m.specialties[s.SpecialtyID]; !ok {
		return gorm.ErrRecordNotFound
	}
	c := *s
	m.specialties[s.SpecialtyID] = &c
	return nil
}

func (m *mockSpecialtyRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.specialties, id)
	return nil
}

func (m *mockSpecialtyRepo) CountUsage(_ context.Context, id string) (int64, error) {
	var n int64
	for _, w := range m.workers {
		if w.SpecialtyID != nil && *w.SpecialtyID == id && w.IsActive {
			n++
		}
	}
	for _, c := range m.contractors {
		if c.SpecialtyID != nil && *c.SpecialtyID == id && c.IsActive {
			n++
		}
	}
	return n, nil
}

// ── Mock ContractorRepository ──

type mockContractorRepo struct{ *memStore }

func (m *mockContractorRepo) Create(_ context.Context, c *model.Contractor) error {
	if c.ContractorID == "" {
		c.ContractorID = m.newID()
	}
	cp := *c
	m.contractors[c.ContractorID] = &cp
	return nil
}

func (m *mockContractorRepo) GetByID(_ context.Context, id string) (*model.Contractor, error) {
	if c, ok := m.contractors[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockContractorRepo) List(_ context.Context, f repository.ListFilter) ([]model.Contractor, int64, error) {
	var result []model.Contractor
	for _, c := range m.contractors {
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		if containsFold(c.Name, f.Query) || containsFold(c.Company, f.Query) {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, f.Offset, f.Limit), int64(len(result)), nil
}

func (m *mockContractorRepo) ListByIDs(_ context.Context, ids []string) ([]model.Contractor, error) {
	var result []model.Contractor
	for _, id := range ids {
		if c, ok := m.contractors[id]; ok {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockContractorRepo) Update(_ context.Context, c *model.Contractor) error {
	if _, ok := m.contractors[c.ContractorID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Specialty = nil
	m.contractors[c.ContractorID] = &cp
	return nil
}

func (m *mockContractorRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.contractors, id)
	return nil
}

// ── Mock WorkerRepository ──

type mockWorkerRepo struct{ *memStore }

func (m *mockWorkerRepo) Create(_ context.Context, w *model.Worker) error {
	if w.WorkerID == "" {
		w.WorkerID = m.newID()
	}
	cp := *w
	m.workers[w.WorkerID] = &cp
	return nil
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string) (*model.Worker, error) {
	if w, ok := m.workers[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) List(_ context.Context, f repository.ListFilter) ([]model.Worker, int64, error) {
	var result []model.Worker
	for _, w := range m.workers {
		if f.ActiveOnly && !w.IsActive {
			continue
		}
		if containsFold(w.Name, f.Query) {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, f.Offset, f.Limit), int64(len(result)), nil
}

func (m *mockWorkerRepo) ListByIDs(_ context.Context, ids []string) ([]model.Worker, error) {
	var result []model.Worker
	for _, id := range ids {
		if w, ok := m.workers[id]; ok {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *mockWorkerRepo) Update(_ context.Context, w *model.Worker) error {
	if _, ok := m.workers[w.WorkerID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *w
	cp.Specialty = nil
	m.workers[w.WorkerID] = &cp
	return nil
}

func (m *mockWorkerRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.workers, id)
	return nil
}

// ── Mock ProjectRepository ──

type mockProjectRepo struct{ *memStore }

func (m *mockProjectRepo) Create(_ context.Context, p *model.Project) error {
	if p.ProjectID == "" {
		p.ProjectID = m.newID()
	}
	if p.Version == 0 {
		p.Version = 1
	}
	cp := *p
	m.projects[p.ProjectID] = &cp
	return nil
}

func (m *mockProjectRepo) GetByID(_ context.Context, id string) (*model.Project, error) {
	if p, ok := m.projects[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) GetWithRelations(ctx context.Context, id string) (*model.Project, error) {
	p, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, cid := range m.projectContractors[id] {
		if c, ok := m.contractors[cid]; ok {
			p.Contractors = append(p.Contractors, *c)
		}
	}
	for _, wid := range m.projectWorkers[id] {
		if w, ok := m.workers[wid]; ok {
			p.Workers = append(p.Workers, *w)
		}
	}
	for _, pay := range m.projectPayments {
		if pay.ProjectID == id {
			p.Payments = append(p.Payments, *pay)
		}
	}
	sort.Slice(p.Payments, func(i, j int) bool { return p.Payments[i].PaidAt.Before(p.Payments[j].PaidAt) })
	concepts, _ := (&mockConceptRepo{m.memStore}).ListByProject(ctx, id)
	p.Concepts = concepts
	for _, e := range m.expenses {
		if e.ProjectID != nil && *e.ProjectID == id {
			p.Expenses = append(p.Expenses, *e)
		}
	}
	sort.Slice(p.Expenses, func(i, j int) bool { return p.Expenses[i].SpentAt.Before(p.Expenses[j].SpentAt) })
	return p, nil
}

func (m *mockProjectRepo) List(_ context.Context, f repository.ProjectFilter) ([]model.Project, int64, error) {
	var result []model.Project
	for _, p := range m.projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if containsFold(p.Name, f.Query) || containsFold(p.ClientName, f.Query) {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, f.Offset, f.Limit), int64(len(result)), nil
}

func (m *mockProjectRepo) Update(_ context.Context, p *model.Project) error {
	stored, ok := m.projects[p.ProjectID]
	if !ok || stored.Version != p.Version {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	cp := *p
	cp.Contractors, cp.Workers, cp.Payments, cp.Concepts, cp.Expenses = nil, nil, nil, nil, nil
	m.projects[p.ProjectID] = &cp
	return nil
}

func (m *mockProjectRepo) Delete(_ context.Context, id string) error {
	m.record("project.delete")
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) ReplaceContractors(_ context.Context, projectID string, ids []string) error {
	m.projectContractors[projectID] = append([]string(nil), ids...)
	return nil
}

func (m *mockProjectRepo) ReplaceWorkers(_ context.Context, projectID string, ids []string) error {
	m.projectWorkers[projectID] = append([]string(nil), ids...)
	return nil
}

func (m *mockProjectRepo) DeleteAssociations(_ context.Context, projectID string) error {
	m.record("project.delete_associations")
	delete(m.projectContractors, projectID)
	delete(m.projectWorkers, projectID)
	return nil
}

func (m *mockProjectRepo) CreatePayment(_ context.Context, pay *model.ProjectPayment) error {
	if pay.ProjectPaymentID == "" {
		pay.ProjectPaymentID = m.newID()
	}
	cp := *pay
	m.projectPayments[pay.ProjectPaymentID] = &cp
	return nil
}

func (m *mockProjectRepo) GetPayment(_ context.Context, id string) (*model.ProjectPayment, error) {
	if p, ok := m.projectPayments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProjectRepo) DeletePayment(_ context.Context, id string) error {
	delete(m.projectPayments, id)
	return nil
}

func (m *mockProjectRepo) DeletePaymentsByProject(_ context.Context, projectID string) error {
	m.record("project.delete_payments")
	for id, p := range m.projectPayments {
		if p.ProjectID == projectID {
			delete(m.projectPayments, id)
		}
	}
	return nil
}

func (m *mockProjectRepo) Totals(_ context.Context, projectID string) (*repository.ProjectTotals, error) {
	t := &repository.ProjectTotals{}
	for _, p := range m.projectPayments {
		if p.ProjectID == projectID {
			t.ClientPaid = t.ClientPaid.Add(p.Amount)
		}
	}
	for _, cp := range m.conceptPayments {
		if c, ok := m.concepts[cp.ConceptID]; ok && c.ProjectID == projectID {
			t.ConceptSpent = t.ConceptSpent.Add(cp.Amount)
		}
	}
	for _, e := range m.expenses {
		if e.ProjectID != nil && *e.ProjectID == projectID {
			t.Expenses = t.Expenses.Add(e.Amount)
		}
	}
	return t, nil
}

// ── Mock ConceptRepository ──

type mockConceptRepo struct{ *memStore }

func (m *mockConceptRepo) Create(_ context.Context, c *model.Concept) error {
	if c.ConceptID == "" {
		c.ConceptID = m.newID()
	}
	cp := *c
	cp.Payments = nil
	m.concepts[c.ConceptID] = &cp
	return nil
}

func (m *mockConceptRepo) withPayments(c model.Concept) model.Concept {
	c.Payments = nil
	for _, p := range m.conceptPayments {
		if p.ConceptID == c.ConceptID {
			c.Payments = append(c.Payments, *p)
		}
	}
	sort.Slice(c.Payments, func(i, j int) bool { return c.Payments[i].PaidAt.Before(c.Payments[j].PaidAt) })
	return c
}

func (m *mockConceptRepo) GetByID(_ context.Context, id string) (*model.Concept, error) {
	if c, ok := m.concepts[id]; ok {
		cp := m.withPayments(*c)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConceptRepo) ListByProject(_ context.Context, projectID string) ([]model.Concept, error) {
	var result []model.Concept
	for _, c := range m.concepts {
		if c.ProjectID == projectID {
			result = append(result, m.withPayments(*c))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ConceptID < result[j].ConceptID })
	return result, nil
}

func (m *mockConceptRepo) Update(_ context.Context, c *model.Concept) error {
	if _, ok := m.concepts[c.ConceptID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *c
	cp.Payments = nil
	m.concepts[c.ConceptID] = &cp
	return nil
}

func (m *mockConceptRepo) Delete(_ context.Context, id string) error {
	delete(m.concepts, id)
	return nil
}

func (m *mockConceptRepo) DeleteByProject(_ context.Context, projectID string) error {
	m.record("concept.delete_by_project")
	for id, c := range m.concepts {
		if c.ProjectID == projectID {
			delete(m.concepts, id)
		}
	}
	return nil
}

func (m *mockConceptRepo) CreatePayment(_ context.Context, pay *model.ConceptPayment) error {
	if pay.ConceptPaymentID == "" {
		pay.ConceptPaymentID = m.newID()
	}
	cp := *pay
	m.conceptPayments[pay.ConceptPaymentID] = &cp
	return nil
}

func (m *mockConceptRepo) GetPayment(_ context.Context, id string) (*model.ConceptPayment, error) {
	if p, ok := m.conceptPayments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockConceptRepo) DeletePayment(_ context.Context, id string) error {
	delete(m.conceptPayments, id)
	return nil
}

func (m *mockConceptRepo) DeletePaymentsByConcept(_ context.Context, conceptID string) error {
	for id, p := range m.conceptPayments {
		if p.ConceptID == conceptID {
			delete(m.conceptPayments, id)
		}
	}
	return nil
}

func (m *mockConceptRepo) DeletePaymentsByProject(_ context.Context, projectID string) error {
	m.record("concept.delete_payments_by_project")
	for id, p := range m.conceptPayments {
		if c, ok := m.concepts[p.ConceptID]; ok && c.ProjectID == projectID {
			delete(m.conceptPayments, id)
		}
	}
	return nil
}

// ── Mock ExpenseRepository ──

type mockExpenseRepo struct{ *memStore }

func (m *mockExpenseRepo) Create(_ context.Context, e *model.Expense) error {
	if e.PayrollPaymentID != nil {
		for _, existing := range m.expenses {
			if existing.PayrollPaymentID != nil && *existing.PayrollPaymentID == *e.PayrollPaymentID {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if e.ExpenseID == "" {
		e.ExpenseID = m.newID()
	}
	cp := *e
	cp.Project = nil
	m.expenses[e.ExpenseID] = &cp
	return nil
}

func (m *mockExpenseRepo) GetByID(_ context.Context, id string) (*model.Expense, error) {
	if e, ok := m.expenses[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExpenseRepo) GetByPayrollPayment(_ context.Context, paymentID string) (*model.Expense, error) {
	for _, e := range m.expenses {
		if e.PayrollPaymentID != nil && *e.PayrollPaymentID == paymentID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockExpenseRepo) List(_ context.Context, f repository.ExpenseFilter) ([]model.Expense, int64, error) {
	var result []model.Expense
	for _, e := range m.expenses {
		if f.ProjectID != "" && (e.ProjectID == nil || *e.ProjectID != f.ProjectID) {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Source != "" && e.Source != f.Source {
			continue
		}
		if f.From != nil && e.SpentAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.SpentAt.After(*f.To) {
			continue
		}
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SpentAt.After(result[j].SpentAt) })
	return paginate(result, f.Offset, f.Limit), int64(len(result)), nil
}

func (m *mockExpenseRepo) Update(_ context.Context, e *model.Expense) error {
	if _, ok := m.expenses[e.ExpenseID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *e
	cp.Project = nil
	m.expenses[e.ExpenseID] = &cp
	return nil
}

func (m *mockExpenseRepo) Delete(_ context.Context, id string) error {
	delete(m.expenses, id)
	return nil
}

func (m *mockExpenseRepo) DeleteByPayrollPayment(_ context.Context, paymentID string) error {
	for id, e := range m.expenses {
		if e.PayrollPaymentID != nil && *e.PayrollPaymentID == paymentID {
			delete(m.expenses, id)
		}
	}
	return nil
}

func (m *mockExpenseRepo) DeleteByProject(_ context.Context, projectID string) error {
	m.record("expense.delete_by_project")
	for id, e := range m.expenses {
		if e.ProjectID != nil && *e.ProjectID == projectID {
			delete(m.expenses, id)
		}
	}
	return nil
}

func (m *mockExpenseRepo) DeleteByPayrollYear(_ context.Context, year int) (int64, error) {
	var n int64
	for id, e := range m.expenses {
		if e.Source != model.ExpenseSourcePayroll || e.PayrollPaymentID == nil {
			continue
		}
		pay, ok := m.payments[*e.PayrollPaymentID]
		if !ok {
			continue
		}
		if w, ok := m.weeks[pay.WeekID]; ok && w.Year == year {
			delete(m.expenses, id)
			n++
		}
	}
	return n, nil
}

// ── Mock ProspectRepository ──

type mockProspectRepo struct{ *memStore }

func (m *mockProspectRepo) Create(_ context.Context, p *model.Prospect) error {
	if p.ProspectID == "" {
		p.ProspectID = m.newID()
	}
	cp := *p
	cp.FollowUps = nil
	m.prospects[p.ProspectID] = &cp
	return nil
}

func (m *mockProspectRepo) GetByID(_ context.Context, id string) (*model.Prospect, error) {
	p, ok := m.prospects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	for _, f := range m.followUps {
		if f.ProspectID == id {
			cp.FollowUps = append(cp.FollowUps, *f)
		}
	}
	sort.Slice(cp.FollowUps, func(i, j int) bool { return cp.FollowUps[i].HappenedAt.Before(cp.FollowUps[j].HappenedAt) })
	return &cp, nil
}

func (m *mockProspectRepo) List(_ context.Context, f repository.ProspectFilter) ([]model.Prospect, int64, error) {
	var result []model.Prospect
	for _, p := range m.prospects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if containsFold(p.Name, f.Query) || containsFold(p.ClientName, f.Query) {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, f.Offset, f.Limit), int64(len(result)), nil
}

func (m *mockProspectRepo) Update(_ context.Context, p *model.Prospect) error {
	if _, ok := m.prospects[p.ProspectID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	cp.FollowUps = nil
	m.prospects[p.ProspectID] = &cp
	return nil
}

func (m *mockProspectRepo) Delete(_ context.Context, id string) error {
	m.record("prospect.delete")
	delete(m.prospects, id)
	return nil
}

func (m *mockProspectRepo) CreateFollowUp(_ context.Context, f *model.ProspectFollowUp) error {
	if f.FollowUpID == "" {
		f.FollowUpID = m.newID()
	}
	cp := *f
	m.followUps[f.FollowUpID] = &cp
	return nil
}

func (m *mockProspectRepo) DeleteFollowUps(_ context.Context, prospectID string) error {
	m.record("prospect.delete_follow_ups")
	for id, f := range m.followUps {
		if f.ProspectID == prospectID {
			delete(m.followUps, id)
		}
	}
	return nil
}

// ── Mock HistoryRepository ──

type mockHistoryRepo struct{ *memStore }

func (m *mockHistoryRepo) CreateProject(_ context.Context, h *model.ProjectHistory) error {
	m.record("history.create_project")
	if h.HistoryID == "" {
		h.HistoryID = m.newID()
	}
	cp := *h
	m.projectHistories[h.HistoryID] = &cp
	return nil
}

func (m *mockHistoryRepo) GetProject(_ context.Context, id string) (*model.ProjectHistory, error) {
	if h, ok := m.projectHistories[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHistoryRepo) ListProjects(_ context.Context, query string, offset, limit int) ([]model.ProjectHistory, int64, error) {
	var result []model.ProjectHistory
	for _, h := range m.projectHistories {
		if containsFold(h.Name, query) {
			result = append(result, *h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ArchivedAt.After(result[j].ArchivedAt) })
	return paginate(result, offset, limit), int64(len(result)), nil
}

func (m *mockHistoryRepo) CreateProspect(_ context.Context, h *model.ProspectHistory) error {
	m.record("history.create_prospect")
	if h.HistoryID == "" {
		h.HistoryID = m.newID()
	}
	cp := *h
	m.prospectHistories[h.HistoryID] = &cp
	return nil
}

func (m *mockHistoryRepo) GetProspect(_ context.Context, id string) (*model.ProspectHistory, error) {
	if h, ok := m.prospectHistories[id]; ok {
		cp := *h
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHistoryRepo) ListProspects(_ context.Context, query, reason string, offset, limit int) ([]model.ProspectHistory, int64, error) {
	var result []model.ProspectHistory
	for _, h := range m.prospectHistories {
		if reason != "" && h.Reason != reason {
			continue
		}
		if containsFold(h.Name, query) {
			result = append(result, *h)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ArchivedAt.After(result[j].ArchivedAt) })
	return paginate(result, offset, limit), int64(len(result)), nil
}

// ── Mock PayrollWeekRepository ──

type mockPayrollWeekRepo struct{ *memStore }

func (m *mockPayrollWeekRepo) sorted(filter func(w *model.PayrollWeek) bool) []model.PayrollWeek {
	var result []model.PayrollWeek
	for _, w := range m.weeks {
		if filter == nil || filter(w) {
			result = append(result, *w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartDate.Before(result[j].StartDate) })
	return result
}

func (m *mockPayrollWeekRepo) BatchCreate(_ context.Context, weeks []model.PayrollWeek) error {
	for i := range weeks {
		for _, existing := range m.weeks {
			if existing.Year == weeks[i].Year && existing.WeekNumber == weeks[i].WeekNumber {
				return gorm.ErrDuplicatedKey
			}
		}
		if weeks[i].WeekID == "" {
			weeks[i].WeekID = m.newID()
		}
		cp := weeks[i]
		m.weeks[cp.WeekID] = &cp
	}
	return nil
}

func (m *mockPayrollWeekRepo) CountByYear(_ context.Context, year int) (int64, error) {
	return int64(len(m.sorted(func(w *model.PayrollWeek) bool { return w.Year == year }))), nil
}

func (m *mockPayrollWeekRepo) ListByYear(_ context.Context, year int) ([]model.PayrollWeek, error) {
	return m.sorted(func(w *model.PayrollWeek) bool { return w.Year == year }), nil
}

func (m *mockPayrollWeekRepo) GetByID(ctx context.Context, id string) (*model.PayrollWeek, error) {
	w, ok := m.weeks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *w
	cp.Payments, _ = (&mockPayrollPaymentRepo{m.memStore}).ListByWeek(ctx, id)
	return &cp, nil
}

func (m *mockPayrollWeekRepo) LockByID(_ context.Context, id string) (*model.PayrollWeek, error) {
	if w, ok := m.weeks[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPayrollWeekRepo) UpdateNotes(_ context.Context, id, notes string, _ *string) error {
	w, ok := m.weeks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.Notes = notes
	return nil
}

func (m *mockPayrollWeekRepo) SetClosed(_ context.Context, id string, closed bool, _ *string) error {
	w, ok := m.weeks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.Closed = closed
	return nil
}

func (m *mockPayrollWeekRepo) UpdateTotals(_ context.Context, id string, totals model.StatusTotals) error {
	w, ok := m.weeks[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	w.TotalPaid = totals.Paid
	w.TotalPending = totals.Pending
	return nil
}

func (m *mockPayrollWeekRepo) DeleteByYear(_ context.Context, year int) (int64, error) {
	var n int64
	for id, w := range m.weeks {
		if w.Year != year {
			continue
		}
		for pid, p := range m.payments {
			if p.WeekID == id {
				delete(m.payments, pid)
			}
		}
		delete(m.weeks, id)
		n++
	}
	return n, nil
}

func (m *mockPayrollWeekRepo) ListYears(_ context.Context) ([]model.YearSummary, error) {
	byYear := map[int]*model.YearSummary{}
	for _, w := range m.weeks {
		s, ok := byYear[w.Year]
		if !ok {
			s = &model.YearSummary{Year: w.Year}
			byYear[w.Year] = s
		}
		s.Weeks++
		if w.Closed {
			s.ClosedWeeks++
		}
		s.TotalPaid = s.TotalPaid.Add(w.TotalPaid)
		s.TotalPending = s.TotalPending.Add(w.TotalPending)
	}
	var result []model.YearSummary
	for _, s := range byYear {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Year > result[j].Year })
	return result, nil
}

func (m *mockPayrollWeekRepo) ListRecent(_ context.Context, limit int) ([]model.PayrollWeek, error) {
	all := m.sorted(nil)
	sort.Slice(all, func(i, j int) bool { return all[i].StartDate.After(all[j].StartDate) })
	return paginate(all, 0, limit), nil
}

func (m *mockPayrollWeekRepo) first(list []model.PayrollWeek) (*model.PayrollWeek, error) {
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[0], nil
}

func (m *mockPayrollWeekRepo) FindContaining(_ context.Context, day time.Time) (*model.PayrollWeek, error) {
	return m.first(m.sorted(func(w *model.PayrollWeek) bool { return w.Contains(day) }))
}

func (m *mockPayrollWeekRepo) FindNextAfter(_ context.Context, day time.Time) (*model.PayrollWeek, error) {
	return m.first(m.sorted(func(w *model.PayrollWeek) bool { return w.StartDate.After(day) }))
}

func (m *mockPayrollWeekRepo) FindLastBefore(_ context.Context, day time.Time) (*model.PayrollWeek, error) {
	list := m.sorted(func(w *model.PayrollWeek) bool { return w.EndDate.Before(day) })
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[len(list)-1], nil
}

func (m *mockPayrollWeekRepo) FindLatest(_ context.Context) (*model.PayrollWeek, error) {
	list := m.sorted(nil)
	if len(list) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &list[len(list)-1], nil
}

// ── Mock PayrollPaymentRepository ──

type mockPayrollPaymentRepo struct{ *memStore }

func (m *mockPayrollPaymentRepo) Create(_ context.Context, p *model.PayrollPayment) error {
	if p.PaymentID == "" {
		p.PaymentID = m.newID()
	}
	cp := *p
	cp.Worker = nil
	m.payments[p.PaymentID] = &cp
	return nil
}

func (m *mockPayrollPaymentRepo) GetByID(_ context.Context, id string) (*model.PayrollPayment, error) {
	if p, ok := m.payments[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPayrollPaymentRepo) ListByWeek(_ context.Context, weekID string) ([]model.PayrollPayment, error) {
	var result []model.PayrollPayment
	for _, p := range m.payments {
		if p.WeekID == weekID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].PayDate.Equal(result[j].PayDate) {
			return result[i].PayDate.Before(result[j].PayDate)
		}
		return result[i].PaymentID < result[j].PaymentID
	})
	return result, nil
}

func (m *mockPayrollPaymentRepo) Update(_ context.Context, p *model.PayrollPayment) error {
	if _, ok := m.payments[p.PaymentID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Worker = nil
	m.payments[p.PaymentID] = &cp
	return nil
}

func (m *mockPayrollPaymentRepo) Delete(_ context.Context, id string) error {
	m.record("payment.delete")
	delete(m.payments, id)
	return nil
}

func (m *mockPayrollPaymentRepo) SumByStatus(_ context.Context, weekID string) (model.StatusTotals, error) {
	totals := model.StatusTotals{Paid: decimal.Zero, Pending: decimal.Zero}
	for _, p := range m.payments {
		if p.WeekID != weekID {
			continue
		}
		if p.IsPaid() {
			totals.Paid = totals.Paid.Add(p.Amount)
		} else {
			totals.Pending = totals.Pending.Add(p.Amount)
		}
	}
	return totals, nil
}

// ── Mock FolderRepository ──

type mockFolderRepo struct{ *memStore }

func (m *mockFolderRepo) Create(_ context.Context, f *model.Folder) error {
	if f.FolderID == "" {
		f.FolderID = m.newID()
	}
	cp := *f
	m.folders[f.FolderID] = &cp
	return nil
}

func (m *mockFolderRepo) GetByID(_ context.Context, id string) (*model.Folder, error) {
	if f, ok := m.folders[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *mockFolderRepo) ListChildren(_ context.Context, parentID *string) ([]model.Folder, error) {
	var result []model.Folder
	for _, f := range m.folders {
		if sameParent(f.ParentID, parentID) {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockFolderRepo) ListByProject(_ context.Context, projectID string) ([]model.Folder, error) {
	var result []model.Folder
	for _, f := range m.folders {
		if f.ProjectID != nil && *f.ProjectID == projectID {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockFolderRepo) Update(_ context.Context, f *model.Folder) error {
	if _, ok := m.folders[f.FolderID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *f
	m.folders[f.FolderID] = &cp
	return nil
}

func (m *mockFolderRepo) ListSubtreeIDs(_ context.Context, id string) ([]string, error) {
	if _, ok := m.folders[id]; !ok {
		return nil, nil
	}
	ids := []string{id}
	for i := 0; i < len(ids); i++ {
		for _, f := range m.folders {
			if f.ParentID != nil && *f.ParentID == ids[i] {
				ids = append(ids, f.FolderID)
			}
		}
	}
	return ids, nil
}

func (m *mockFolderRepo) DeleteByIDs(_ context.Context, ids []string) error {
	for _, id := range ids {
		delete(m.folders, id)
	}
	return nil
}

func (m *mockFolderRepo) ClearProjectLink(_ context.Context, projectID string) error {
	m.record("folder.clear_project_link")
	for _, f := range m.folders {
		if f.ProjectID != nil && *f.ProjectID == projectID {
			f.ProjectID = nil
		}
	}
	return nil
}

// ── Mock FileRepository ──

type mockFileRepo struct{ *memStore }

func (m *mockFileRepo) Create(_ context.Context, f *model.StoredFile) error {
	if f.FileID == "" {
		f.FileID = m.newID()
	}
	cp := *f
	m.files[f.FileID] = &cp
	return nil
}

func (m *mockFileRepo) GetByID(_ context.Context, id string) (*model.StoredFile, error) {
	if f, ok := m.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFileRepo) ListByFolder(_ context.Context, folderID *string) ([]model.StoredFile, error) {
	var result []model.StoredFile
	for _, f := range m.files {
		if sameParent(f.FolderID, folderID) {
			result = append(result, *f)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockFileRepo) ListByFolders(_ context.Context, folderIDs []string) ([]model.StoredFile, error) {
	set := map[string]bool{}
	for _, id := range folderIDs {
		set[id] = true
	}
	var result []model.StoredFile
	for _, f := range m.files {
		if f.FolderID != nil && set[*f.FolderID] {
			result = append(result, *f)
		}
	}
	return result, nil
}

func (m *mockFileRepo) Update(_ context.Context, f *model.StoredFile) error {
	if _, ok := m.files[f.FileID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *f
	m.files[f.FileID] = &cp
	return nil
}

func (m *mockFileRepo) Delete(_ context.Context, id string) error {
	delete(m.files, id)
	return nil
}

func (m *mockFileRepo) DeleteByFolders(_ context.Context, folderIDs []string) error {
	set := map[string]bool{}
	for _, id := range folderIDs {
		set[id] = true
	}
	for id, f := range m.files {
		if f.FolderID != nil && set[*f.FolderID] {
			delete(m.files, id)
		}
	}
	return nil
}

// ── Mock DashboardRepository ──

type mockDashboardRepo struct{ *memStore }

func (m *mockDashboardRepo) ProjectsByStatus(_ context.Context) ([]repository.CountByKey, error) {
	counts := map[string]int64{}
	for _, p := range m.projects {
		counts[p.Status]++
	}
	var result []repository.CountByKey
	for k, n := range counts {
		result = append(result, repository.CountByKey{Key: k, Count: n})
	}
	return result, nil
}

func (m *mockDashboardRepo) CountActiveWorkers(_ context.Context) (int64, error) {
	var n int64
	for _, w := range m.workers {
		if w.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockDashboardRepo) CountActiveContractors(_ context.Context) (int64, error) {
	var n int64
	for _, c := range m.contractors {
		if c.IsActive {
			n++
		}
	}
	return n, nil
}

func (m *mockDashboardRepo) CountOpenProspects(_ context.Context) (int64, error) {
	var n int64
	for _, p := range m.prospects {
		if p.Status != model.ProspectStatusWon && p.Status != model.ProspectStatusLost {
			n++
		}
	}
	return n, nil
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && !t.After(to)
}

func (m *mockDashboardRepo) SumClientPayments(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.projectPayments {
		if inRange(p.PaidAt, from, to) {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func (m *mockDashboardRepo) SumExpenses(_ context.Context, from, to time.Time) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range m.expenses {
		if inRange(e.SpentAt, from, to) {
			total = total.Add(e.Amount)
		}
	}
	return total, nil
}

func (m *mockDashboardRepo) ExpensesByCategory(_ context.Context, from, to time.Time, limit int) ([]repository.AmountByKey, error) {
	sums := map[string]decimal.Decimal{}
	for _, e := range m.expenses {
		if inRange(e.SpentAt, from, to) {
			sums[e.Category] = sums[e.Category].Add(e.Amount)
		}
	}
	var result []repository.AmountByKey
	for k, v := range sums {
		result = append(result, repository.AmountByKey{Key: k, Amount: v})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Amount.GreaterThan(result[j].Amount) })
	return paginate(result, 0, limit), nil
}

func (m *mockDashboardRepo) PayrollTotals(_ context.Context, year int) (model.StatusTotals, error) {
	totals := model.StatusTotals{Paid: decimal.Zero, Pending: decimal.Zero}
	for _, w := range m.weeks {
		if w.Year == year {
			totals.Paid = totals.Paid.Add(w.TotalPaid)
			totals.Pending = totals.Pending.Add(w.TotalPending)
		}
	}
	return totals, nil
}

// ── Mock Cache ──

type mockCache struct {
	data    map[string][]byte
	deletes int
}

func newMockCache() *mockCache { return &mockCache{data: map[string][]byte{}} }

func (c *mockCache) GetJSON(_ context.Context, key string, dst interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (c *mockCache) SetJSON(_ context.Context, key string, v interface{}, _ time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
	}
	c.deletes++
	return nil
}
