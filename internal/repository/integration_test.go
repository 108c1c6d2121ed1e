//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	"obra-admin/backend/internal/service"
	"obra-admin/backend/pkg/database"
	pkgerrors "obra-admin/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("obra_admin_test"),
		tcpostgres.WithUsername("obra"),
		tcpostgres.WithPassword("obra"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法启动 PostgreSQL 容器: %v\n", err)
		os.Exit(1)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取连接串失败: %v\n", err)
		os.Exit(1)
	}

	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	sqlDB, err := testDB.DB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "获取 sql.DB 失败: %v\n", err)
		os.Exit(1)
	}
	if err := database.RunMigrations(sqlDB, zap.NewNop()); err != nil {
		fmt.Fprintf(os.Stderr, "执行迁移失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// createWeek 创建一个独立的工资周（以 year 区分，避免测试间唯一约束冲突）
func createWeek(t *testing.T, repo *repository.Repository, year int, start time.Time) *model.PayrollWeek {
	t.Helper()
	week := model.PayrollWeek{
		Year:       year,
		WeekNumber: 1,
		StartDate:  start,
		EndDate:    start.AddDate(0, 0, 6),
	}
	weeks := []model.PayrollWeek{week}
	require.NoError(t, repo.PayrollWeek.BatchCreate(context.Background(), weeks))
	return &weeks[0]
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestRunInTx_Rollback(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	var specialtyID string
	errBoom := errors.New("boom")
	err := repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		s := &model.Specialty{Name: fmt.Sprintf("回滚-%d", time.Now().UnixNano())}
		if err := txRepo.Specialty.Create(ctx, s); err != nil {
			return err
		}
		specialtyID = s.SpecialtyID
		return errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.NotEmpty(t, specialtyID)

	_, err = repo.Specialty.GetByID(ctx, specialtyID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestBeginTx_Commit(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	tx, err := repo.BeginTx(ctx)
	require.NoError(t, err)

	s := &model.Specialty{Name: fmt.Sprintf("提交-%d", time.Now().UnixNano())}
	if err := repo.WithTx(tx).Specialty.Create(ctx, s); err != nil {
		tx.Rollback()
		t.Fatalf("事务内创建失败: %v", err)
	}
	require.NoError(t, tx.Commit().Error)

	found, err := repo.Specialty.GetByID(ctx, s.SpecialtyID)
	require.NoError(t, err)
	assert.Equal(t, s.Name, found.Name)
}

// ═══════════════════════════════════════════════════════════
// Test: Project
// ═══════════════════════════════════════════════════════════

func TestProject_OptimisticLock(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	p := &model.Project{Name: "乐观锁项目", ClientName: "客户", Status: model.ProjectStatusPlanning, StartDate: date(2025, 3, 1)}
	require.NoError(t, repo.Project.Create(ctx, p))

	first, err := repo.Project.GetByID(ctx, p.ProjectID)
	require.NoError(t, err)
	second, err := repo.Project.GetByID(ctx, p.ProjectID)
	require.NoError(t, err)

	first.Name = "第一次修改"
	require.NoError(t, repo.Project.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Name = "过期修改"
	err = repo.Project.Update(ctx, second)
	assert.ErrorIs(t, err, pkgerrors.ErrOptimisticLock)
}

func TestProject_RelationsAndTotals(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	c := &model.Contractor{Name: "电工承包", IsActive: true}
	require.NoError(t, repo.Contractor.Create(ctx, c))
	w := &model.Worker{Name: "张师傅", DailyRate: decimal.NewFromInt(600), IsActive: true}
	require.NoError(t, repo.Worker.Create(ctx, w))

	p := &model.Project{Name: "关联项目", ClientName: "客户", Status: model.ProjectStatusActive, StartDate: date(2025, 1, 10), Budget: decimal.NewFromInt(100000)}
	require.NoError(t, repo.Project.Create(ctx, p))
	require.NoError(t, repo.Project.ReplaceContractors(ctx, p.ProjectID, []string{c.ContractorID}))
	require.NoError(t, repo.Project.ReplaceWorkers(ctx, p.ProjectID, []string{w.WorkerID}))

	require.NoError(t, repo.Project.CreatePayment(ctx, &model.ProjectPayment{ProjectID: p.ProjectID, Amount: decimal.NewFromInt(20000), PaidAt: date(2025, 2, 1)}))
	concept := &model.Concept{ProjectID: p.ProjectID, Name: "基础", BudgetedAmount: decimal.NewFromInt(30000)}
	require.NoError(t, repo.Concept.Create(ctx, concept))
	require.NoError(t, repo.Concept.CreatePayment(ctx, &model.ConceptPayment{ConceptID: concept.ConceptID, Amount: decimal.NewFromInt(5000), PaidAt: date(2025, 2, 3)}))
	require.NoError(t, repo.Expense.Create(ctx, &model.Expense{ProjectID: &p.ProjectID, Category: "材料", Amount: decimal.NewFromInt(1500), SpentAt: date(2025, 2, 4), Source: model.ExpenseSourceManual}))

	loaded, err := repo.Project.GetWithRelations(ctx, p.ProjectID)
	require.NoError(t, err)
	assert.Len(t, loaded.Contractors, 1)
	assert.Len(t, loaded.Workers, 1)
	assert.Len(t, loaded.Payments, 1)
	require.Len(t, loaded.Concepts, 1)
	assert.Len(t, loaded.Concepts[0].Payments, 1)
	assert.Len(t, loaded.Expenses, 1)

	totals, err := repo.Project.Totals(ctx, p.ProjectID)
	require.NoError(t, err)
	assert.True(t, totals.ClientPaid.Equal(decimal.NewFromInt(20000)))
	assert.True(t, totals.ConceptSpent.Equal(decimal.NewFromInt(5000)))
	assert.True(t, totals.Expenses.Equal(decimal.NewFromInt(1500)))

	// 有序删除依赖后可删除项目本身
	require.NoError(t, repo.Concept.DeletePaymentsByProject(ctx, p.ProjectID))
	require.NoError(t, repo.Concept.DeleteByProject(ctx, p.ProjectID))
	require.NoError(t, repo.Project.DeletePaymentsByProject(ctx, p.ProjectID))
	require.NoError(t, repo.Expense.DeleteByProject(ctx, p.ProjectID))
	require.NoError(t, repo.Project.DeleteAssociations(ctx, p.ProjectID))
	require.NoError(t, repo.Project.Delete(ctx, p.ProjectID))

	_, err = repo.Project.GetByID(ctx, p.ProjectID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// ═══════════════════════════════════════════════════════════
// Test: Payroll
// ═══════════════════════════════════════════════════════════

func TestPayroll_SumByStatusAndLock(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	week := createWeek(t, repo, 1990, date(1990, 1, 1))

	totals, err := repo.PayrollPayment.SumByStatus(ctx, week.WeekID)
	require.NoError(t, err)
	assert.True(t, totals.Paid.IsZero())
	assert.True(t, totals.Pending.IsZero())

	require.NoError(t, repo.PayrollPayment.Create(ctx, &model.PayrollPayment{WeekID: week.WeekID, RecipientName: "A", Amount: decimal.NewFromInt(500), PayDate: date(1990, 1, 2), Status: model.PaymentStatusPending}))
	require.NoError(t, repo.PayrollPayment.Create(ctx, &model.PayrollPayment{WeekID: week.WeekID, RecipientName: "B", Amount: decimal.NewFromInt(300), PayDate: date(1990, 1, 3), Status: model.PaymentStatusPaid}))

	err = repo.RunInTx(ctx, func(txRepo *repository.Repository) error {
		locked, err := txRepo.PayrollWeek.LockByID(ctx, week.WeekID)
		if err != nil {
			return err
		}
		sums, err := txRepo.PayrollPayment.SumByStatus(ctx, locked.WeekID)
		if err != nil {
			return err
		}
		return txRepo.PayrollWeek.UpdateTotals(ctx, locked.WeekID, sums)
	})
	require.NoError(t, err)

	reloaded, err := repo.PayrollWeek.GetByID(ctx, week.WeekID)
	require.NoError(t, err)
	assert.True(t, reloaded.TotalPending.Equal(decimal.NewFromInt(500)))
	assert.True(t, reloaded.TotalPaid.Equal(decimal.NewFromInt(300)))
	assert.Len(t, reloaded.Payments, 2)
}

func TestPayroll_DeleteByYearCascades(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	week := createWeek(t, repo, 1991, date(1990, 12, 31))

	pay := &model.PayrollPayment{WeekID: week.WeekID, RecipientName: "C", Amount: decimal.NewFromInt(100), PayDate: date(1991, 1, 2), Status: model.PaymentStatusPaid}
	require.NoError(t, repo.PayrollPayment.Create(ctx, pay))
	require.NoError(t, repo.Expense.Create(ctx, &model.Expense{Category: "nomina", Amount: pay.Amount, SpentAt: pay.PayDate, Source: model.ExpenseSourcePayroll, PayrollPaymentID: &pay.PaymentID}))

	removed, err := repo.Expense.DeleteByPayrollYear(ctx, 1991)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	deleted, err := repo.PayrollWeek.DeleteByYear(ctx, 1991)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, err = repo.PayrollPayment.GetByID(ctx, pay.PaymentID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPayroll_CurrentWeekLookups(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	w := createWeek(t, repo, 1985, date(1985, 1, 7))

	found, err := repo.PayrollWeek.FindContaining(ctx, date(1985, 1, 9))
	require.NoError(t, err)
	assert.Equal(t, w.WeekID, found.WeekID)

	next, err := repo.PayrollWeek.FindNextAfter(ctx, date(1985, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, w.WeekID, next.WeekID)
}

// ═══════════════════════════════════════════════════════════
// Test: History / Folder
// ═══════════════════════════════════════════════════════════

func TestHistory_SnapshotRoundTrip(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	snap := model.ProjectSnapshot{
		ProjectID:  "7b0c2d8e-2f55-4d43-9d1c-2a1f9d6a0c11",
		Name:       "归档项目",
		ClientName: "客户",
		Status:     model.ProjectStatusFinished,
		StartDate:  date(2024, 5, 1),
		Budget:     decimal.RequireFromString("1234.50"),
		Workers:    []model.WorkerRef{{WorkerID: "w1", Name: "李四", DailyRate: decimal.NewFromInt(500)}},
	}
	h := &model.ProjectHistory{
		OriginalProjectID: snap.ProjectID,
		Name:              snap.Name,
		ArchivedAt:        time.Now().UTC(),
		Snapshot:          snap,
	}
	require.NoError(t, repo.History.CreateProject(ctx, h))

	got, err := repo.History.GetProject(ctx, h.HistoryID)
	require.NoError(t, err)
	assert.Equal(t, snap.Name, got.Snapshot.Name)
	assert.True(t, got.Snapshot.Budget.Equal(snap.Budget))
	require.Len(t, got.Snapshot.Workers, 1)
	assert.Equal(t, "李四", got.Snapshot.Workers[0].Name)
}

func TestFolder_SubtreeDelete(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	root := &model.Folder{Name: "根"}
	require.NoError(t, repo.Folder.Create(ctx, root))
	child := &model.Folder{Name: "子", ParentID: &root.FolderID}
	require.NoError(t, repo.Folder.Create(ctx, child))
	grandchild := &model.Folder{Name: "孙", ParentID: &child.FolderID}
	require.NoError(t, repo.Folder.Create(ctx, grandchild))

	ids, err := repo.Folder.ListSubtreeIDs(ctx, root.FolderID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{root.FolderID, child.FolderID, grandchild.FolderID}, ids)

	require.NoError(t, repo.File.Create(ctx, &model.StoredFile{FolderID: &grandchild.FolderID, Name: "plano.pdf", ContentType: "application/pdf", Size: 10, StorageKey: fmt.Sprintf("k-%d", time.Now().UnixNano())}))
	require.NoError(t, repo.File.DeleteByFolders(ctx, ids))
	require.NoError(t, repo.Folder.DeleteByIDs(ctx, ids))

	_, err = repo.Folder.GetByID(ctx, child.FolderID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

// ═══════════════════════════════════════════════════════════
// Test: Service Transaction Rollback
// ═══════════════════════════════════════════════════════════

// failProjectDelete 安装触发器，使指定项目的删除在数据库内失败
func failProjectDelete(t *testing.T, projectID string) {
	t.Helper()
	require.NoError(t, testDB.Exec(`
CREATE OR REPLACE FUNCTION test_block_project_delete() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION 'project delete blocked';
END;
$$ LANGUAGE plpgsql`).Error)
	require.NoError(t, testDB.Exec(fmt.Sprintf(`
CREATE TRIGGER test_block_project_delete
BEFORE DELETE OR UPDATE ON projects
FOR EACH ROW WHEN (OLD.project_id = '%s')
EXECUTE FUNCTION test_block_project_delete()`, projectID)).Error)
	t.Cleanup(func() {
		testDB.Exec(`DROP TRIGGER IF EXISTS test_block_project_delete ON projects`)
		testDB.Exec(`DROP FUNCTION IF EXISTS test_block_project_delete()`)
	})
}

func TestArchiveProject_RollsBackOnFailure(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	p := &model.Project{Name: "归档回滚项目", ClientName: "客户", Status: model.ProjectStatusActive, StartDate: date(2025, 4, 1), Budget: decimal.NewFromInt(50000)}
	require.NoError(t, repo.Project.Create(ctx, p))
	concept := &model.Concept{ProjectID: p.ProjectID, Name: "结构", BudgetedAmount: decimal.NewFromInt(10000)}
	require.NoError(t, repo.Concept.Create(ctx, concept))
	require.NoError(t, repo.Concept.CreatePayment(ctx, &model.ConceptPayment{ConceptID: concept.ConceptID, Amount: decimal.NewFromInt(2500), PaidAt: date(2025, 4, 3)}))
	require.NoError(t, repo.Project.CreatePayment(ctx, &model.ProjectPayment{ProjectID: p.ProjectID, Amount: decimal.NewFromInt(8000), PaidAt: date(2025, 4, 2)}))

	failProjectDelete(t, p.ProjectID)

	svc := service.NewArchiveService(repo, nil, nil, zap.NewNop())
	_, err := svc.ArchiveProject(ctx, p.ProjectID, "admin-001")
	require.Error(t, err)

	var histories int64
	require.NoError(t, testDB.Model(&model.ProjectHistory{}).Where("original_project_id = ?", p.ProjectID).Count(&histories).Error)
	assert.Zero(t, histories, "失败的归档不应留下历史记录")

	_, err = repo.Project.GetByID(ctx, p.ProjectID)
	assert.NoError(t, err, "项目应保留")
	concepts, err := repo.Concept.ListByProject(ctx, p.ProjectID)
	require.NoError(t, err)
	require.Len(t, concepts, 1, "科目应保留")
	totals, err := repo.Project.Totals(ctx, p.ProjectID)
	require.NoError(t, err)
	assert.True(t, totals.ConceptSpent.Equal(decimal.NewFromInt(2500)), "科目付款应保留")
	assert.True(t, totals.ClientPaid.Equal(decimal.NewFromInt(8000)), "客户回款应保留")
}

// failingPaymentHandler 对已付事件返回错误
type failingPaymentHandler struct{ err error }

func (h failingPaymentHandler) HandlePaymentEvent(_ context.Context, _ *repository.Repository, ev service.PaymentEvent) error {
	if ev.Type == service.PaymentMarkedPaid {
		return h.err
	}
	return nil
}

func TestPayrollCreatePayment_HandlerFailureRollsBack(t *testing.T) {
	repo := repository.NewRepository(testDB)
	ctx := context.Background()
	logger := zap.NewNop()
	week := createWeek(t, repo, 1992, date(1992, 1, 6))

	errHandler := errors.New("expense posting failed")
	bus := service.NewPaymentEventBus(service.NewExpensePoster("nomina", logger), failingPaymentHandler{err: errHandler})
	svc := service.NewPayrollService(repo, bus, nil, nil, logger)

	amount := decimal.NewFromInt(750)
	_, err := svc.CreatePayment(ctx, week.WeekID, &dto.CreatePaymentRequest{
		Recipient: "Luis Gómez", Amount: &amount, PayDate: "1992-01-08", Status: model.PaymentStatusPaid,
	}, "admin-001")
	require.ErrorIs(t, err, errHandler)

	payments, err := repo.PayrollPayment.ListByWeek(ctx, week.WeekID)
	require.NoError(t, err)
	assert.Empty(t, payments, "处理器失败时不应写入发放")

	stored, err := repo.PayrollWeek.GetByID(ctx, week.WeekID)
	require.NoError(t, err)
	assert.True(t, stored.TotalPaid.IsZero(), "已付合计应保持不变")
	assert.True(t, stored.TotalPending.IsZero(), "待付合计应保持不变")

	var posted int64
	require.NoError(t, testDB.Model(&model.Expense{}).Where("source = ? AND category = ? AND spent_at = ?", model.ExpenseSourcePayroll, "nomina", date(1992, 1, 8)).Count(&posted).Error)
	assert.Zero(t, posted, "先执行的自动记账也应一并回滚")
}
