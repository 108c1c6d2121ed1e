package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Specialty      SpecialtyRepository
	Contractor     ContractorRepository
	Worker         WorkerRepository
	Project        ProjectRepository
	Concept        ConceptRepository
	Expense        ExpenseRepository
	Prospect       ProspectRepository
	History        HistoryRepository
	PayrollWeek    PayrollWeekRepository
	PayrollPayment PayrollPaymentRepository
	Folder         FolderRepository
	File           FileRepository
	Dashboard      DashboardRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:             db,
		Specialty:      NewSpecialtyRepo(db),
		Contractor:     NewContractorRepo(db),
		Worker:         NewWorkerRepo(db),
		Project:        NewProjectRepo(db),
		Concept:        NewConceptRepo(db),
		Expense:        NewExpenseRepo(db),
		Prospect:       NewProspectRepo(db),
		History:        NewHistoryRepo(db),
		PayrollWeek:    NewPayrollWeekRepo(db),
		PayrollPayment: NewPayrollPaymentRepo(db),
		Folder:         NewFolderRepo(db),
		File:           NewFileRepo(db),
		Dashboard:      NewDashboardRepo(db),
	}
}

// BeginTx 开启事务；无底层连接（单元测试 mock 聚合）时返回 nil
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	if r.db == nil {
		return nil, nil
	}
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务连接的 Repository 聚合；tx 为 nil 时返回自身
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return NewRepository(tx)
}

// RunInTx 在单个事务内执行 fn，fn 返回错误或 panic 时整体回滚
func (r *Repository) RunInTx(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// ── 查询辅助 ──

// likePattern 构造 ILIKE 模糊匹配参数，转义通配符
func likePattern(q string) string {
	q = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.TrimSpace(q))
	return "%" + q + "%"
}
