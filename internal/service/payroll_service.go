package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
	"obra-admin/backend/pkg/metrics"
)

// ── 工资模块业务错误 ──

var (
	ErrWeekNotFound          = pkgerrors.NewNotFound(20001, "工资周不存在")
	ErrWeeksAlreadyExist     = pkgerrors.NewConflict(20002, "该年份的工资周已存在")
	ErrWeekClosed            = pkgerrors.NewConflict(20003, "工资周已关闭，不能修改发放记录")
	ErrPaymentNotFound       = pkgerrors.NewNotFound(20004, "工资发放记录不存在")
	ErrPayDateOutsideWeek    = pkgerrors.NewValidation(20005, "发放日期必须在工资周范围内")
	ErrRecipientRequired     = pkgerrors.NewValidation(20006, "必须指定工人或收款人")
	ErrInvalidPayrollYear    = pkgerrors.NewValidation(20007, "年份必须在 2000-2100 之间")
	ErrNoPayrollWeeks        = pkgerrors.NewNotFound(20008, "尚未生成任何工资周")
	ErrYearHasNoWeeks        = pkgerrors.NewNotFound(20009, "该年份没有工资周")
	ErrPaymentWorkerNotFound = pkgerrors.NewValidation(20010, "指定的工人不存在")
	ErrInvalidPaymentStatus  = pkgerrors.NewValidation(20011, "发放状态只能为 pending 或 paid")
)

// PayrollService 工资周与工资发放业务接口
type PayrollService interface {
	PreviewWeeks(year int) ([]dto.WeekRangeResponse, error)
	GenerateWeeks(ctx context.Context, year int, callerID string) (*dto.GenerateWeeksResponse, error)
	ListWeeks(ctx context.Context, year int) ([]dto.PayrollWeekResponse, error)
	ListYears(ctx context.Context) ([]dto.PayrollYearResponse, error)
	CurrentWeek(ctx context.Context) (*dto.PayrollWeekResponse, error)
	GetWeek(ctx context.Context, id string) (*dto.PayrollWeekResponse, error)
	UpdateWeek(ctx context.Context, id string, req *dto.UpdateWeekRequest, callerID string) (*dto.PayrollWeekResponse, error)
	SetWeekClosed(ctx context.Context, id string, closed bool, callerID string) (*dto.PayrollWeekResponse, error)
	RecalculateTotals(ctx context.Context, id string) (*dto.PayrollWeekResponse, error)
	PurgeYear(ctx context.Context, year int, callerID string) (*dto.PurgeYearResponse, error)

	ListPayments(ctx context.Context, weekID string) ([]dto.PayrollPaymentResponse, error)
	CreatePayment(ctx context.Context, weekID string, req *dto.CreatePaymentRequest, callerID string) (*dto.PaymentMutationResponse, error)
	UpdatePayment(ctx context.Context, weekID, paymentID string, req *dto.UpdatePaymentRequest, callerID string) (*dto.PaymentMutationResponse, error)
	DeletePayment(ctx context.Context, weekID, paymentID string, callerID string) (*dto.PaymentMutationResponse, error)
}

type payrollService struct {
	repo    *repository.Repository
	events  *PaymentEventBus
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewPayrollService 创建 PayrollService 实例
func NewPayrollService(
	repo *repository.Repository,
	events *PaymentEventBus,
	cache Cache,
	m *metrics.Metrics,
	logger *zap.Logger,
) PayrollService {
	return &payrollService{
		repo:    repo,
		events:  events,
		cache:   cache,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// ────────────────────── PreviewWeeks ──────────────────────

func (s *payrollService) PreviewWeeks(year int) ([]dto.WeekRangeResponse, error) {
	if err := validatePayrollYear(year); err != nil {
		return nil, err
	}
	ranges := GenerateWeekRanges(year)
	result := make([]dto.WeekRangeResponse, 0, len(ranges))
	for _, r := range ranges {
		result = append(result, dto.WeekRangeResponse{
			WeekNumber: r.WeekNumber,
			StartDate:  dto.FormatDate(r.Start),
			EndDate:    dto.FormatDate(r.End),
		})
	}
	return result, nil
}

// ────────────────────── GenerateWeeks ──────────────────────

// GenerateWeeks 在单个事务内批量创建某年全部工资周；该年已有任何周时拒绝
func (s *payrollService) GenerateWeeks(ctx context.Context, year int, callerID string) (*dto.GenerateWeeksResponse, error) {
	if err := validatePayrollYear(year); err != nil {
		return nil, err
	}

	ranges := GenerateWeekRanges(year)
	weeks := make([]model.PayrollWeek, 0, len(ranges))
	for _, r := range ranges {
		w := model.PayrollWeek{
			Year:       year,
			WeekNumber: r.WeekNumber,
			StartDate:  r.Start,
			EndDate:    r.End,
		}
		w.Audit(callerID)
		weeks = append(weeks, w)
	}

	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		count, err := tx.PayrollWeek.CountByYear(ctx, year)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrWeeksAlreadyExist
		}
		return tx.PayrollWeek.BatchCreate(ctx, weeks)
	})
	if err != nil {
		if isDuplicateKey(err) {
			err = ErrWeeksAlreadyExist
		}
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.generate_weeks", yearID(year), err)
		return nil, err
	}

	s.metrics.AddWeeksGenerated(len(weeks))
	s.logger.Info("工资周已生成", zap.Int("year", year), zap.Int("count", len(weeks)))

	resp := &dto.GenerateWeeksResponse{
		Year:  year,
		Count: len(weeks),
		Weeks: make([]dto.PayrollWeekResponse, 0, len(weeks)),
	}
	for i := range weeks {
		resp.Weeks = append(resp.Weeks, toPayrollWeekResponse(&weeks[i], false))
	}
	return resp, nil
}

// ────────────────────── ListWeeks / ListYears ──────────────────────

func (s *payrollService) ListWeeks(ctx context.Context, year int) ([]dto.PayrollWeekResponse, error) {
	if err := validatePayrollYear(year); err != nil {
		return nil, err
	}
	weeks, err := s.repo.PayrollWeek.ListByYear(ctx, year)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.list_weeks", yearID(year), err)
		return nil, err
	}
	result := make([]dto.PayrollWeekResponse, 0, len(weeks))
	for i := range weeks {
		result = append(result, toPayrollWeekResponse(&weeks[i], false))
	}
	return result, nil
}

func (s *payrollService) ListYears(ctx context.Context) ([]dto.PayrollYearResponse, error) {
	years, err := s.repo.PayrollWeek.ListYears(ctx)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.list_years", "", err)
		return nil, err
	}
	result := make([]dto.PayrollYearResponse, 0, len(years))
	for _, y := range years {
		result = append(result, dto.PayrollYearResponse{
			Year:         y.Year,
			Weeks:        y.Weeks,
			ClosedWeeks:  y.ClosedWeeks,
			TotalPaid:    y.TotalPaid,
			TotalPending: y.TotalPending,
		})
	}
	return result, nil
}

// ────────────────────── CurrentWeek ──────────────────────

// CurrentWeek 解析"当前"工资周：包含今天的周 → 最近的未来周 → 最近的过去周 → 最近年份的最后一周
func (s *payrollService) CurrentWeek(ctx context.Context) (*dto.PayrollWeekResponse, error) {
	today := model.DateOnly(s.now())

	lookups := []func(context.Context, time.Time) (*model.PayrollWeek, error){
		s.repo.PayrollWeek.FindContaining,
		s.repo.PayrollWeek.FindNextAfter,
		s.repo.PayrollWeek.FindLastBefore,
	}
	for _, find := range lookups {
		week, err := find(ctx, today)
		if err == nil {
			resp := toPayrollWeekResponse(week, false)
			return &resp, nil
		}
		if !isNotFound(err) {
			err = pkgerrors.Storage(err)
			logOpError(s.logger, "payroll.current_week", dto.FormatDate(today), err)
			return nil, err
		}
	}

	week, err := s.repo.PayrollWeek.FindLatest(ctx)
	if err != nil {
		return nil, storageErr(err, ErrNoPayrollWeeks)
	}
	resp := toPayrollWeekResponse(week, false)
	return &resp, nil
}

// ────────────────────── GetWeek / UpdateWeek ──────────────────────

func (s *payrollService) GetWeek(ctx context.Context, id string) (*dto.PayrollWeekResponse, error) {
	if err := requireID(id, ErrWeekNotFound); err != nil {
		return nil, err
	}
	week, err := s.repo.PayrollWeek.GetByID(ctx, id)
	if err != nil {
		err = storageErr(err, ErrWeekNotFound)
		logOpError(s.logger, "payroll.get_week", id, err)
		return nil, err
	}
	resp := toPayrollWeekResponse(week, true)
	return &resp, nil
}

func (s *payrollService) UpdateWeek(ctx context.Context, id string, req *dto.UpdateWeekRequest, callerID string) (*dto.PayrollWeekResponse, error) {
	if err := requireID(id, ErrWeekNotFound); err != nil {
		return nil, err
	}
	week, err := s.repo.PayrollWeek.GetByID(ctx, id)
	if err != nil {
		err = storageErr(err, ErrWeekNotFound)
		logOpError(s.logger, "payroll.update_week", id, err)
		return nil, err
	}
	if req.Notes != nil {
		week.Notes = *req.Notes
		if err := s.repo.PayrollWeek.UpdateNotes(ctx, id, week.Notes, auditPtr(callerID)); err != nil {
			err = pkgerrors.Storage(err)
			logOpError(s.logger, "payroll.update_week", id, err)
			return nil, err
		}
	}
	resp := toPayrollWeekResponse(week, true)
	return &resp, nil
}

// SetWeekClosed 关闭/重新打开工资周；与发放变更共用行锁，保证关闭判断的一致性
func (s *payrollService) SetWeekClosed(ctx context.Context, id string, closed bool, callerID string) (*dto.PayrollWeekResponse, error) {
	if err := requireID(id, ErrWeekNotFound); err != nil {
		return nil, err
	}
	var week *model.PayrollWeek
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		w, err := tx.PayrollWeek.LockByID(ctx, id)
		if err != nil {
			return storageErr(err, ErrWeekNotFound)
		}
		if w.Closed != closed {
			if err := tx.PayrollWeek.SetClosed(ctx, id, closed, auditPtr(callerID)); err != nil {
				return err
			}
			w.Closed = closed
		}
		week = w
		return nil
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.set_week_closed", id, err)
		return nil, err
	}
	s.logger.Info("工资周状态已更新", zap.String("week_id", id), zap.Bool("closed", closed))
	resp := toPayrollWeekResponse(week, false)
	return &resp, nil
}

// ────────────────────── RecalculateTotals ──────────────────────

// RecalculateTotals 手动对账（修复用）
func (s *payrollService) RecalculateTotals(ctx context.Context, id string) (*dto.PayrollWeekResponse, error) {
	if err := requireID(id, ErrWeekNotFound); err != nil {
		return nil, err
	}
	var week *model.PayrollWeek
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		w, err := tx.PayrollWeek.LockByID(ctx, id)
		if err != nil {
			return storageErr(err, ErrWeekNotFound)
		}
		if err := s.reconcile(ctx, tx, w); err != nil {
			return err
		}
		week = w
		return nil
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.recalculate", id, err)
		return nil, err
	}
	invalidateDashboard(ctx, s.cache, s.logger)
	resp := toPayrollWeekResponse(week, false)
	return &resp, nil
}

// reconcile 按状态汇总发放金额并写回工资周；调用方须已在同一事务内锁定该周
func (s *payrollService) reconcile(ctx context.Context, tx *repository.Repository, week *model.PayrollWeek) error {
	totals, err := tx.PayrollPayment.SumByStatus(ctx, week.WeekID)
	if err != nil {
		return err
	}
	if err := tx.PayrollWeek.UpdateTotals(ctx, week.WeekID, totals); err != nil {
		return err
	}
	week.TotalPaid = totals.Paid
	week.TotalPending = totals.Pending
	s.metrics.IncReconciliation()
	return nil
}

// ────────────────────── PurgeYear ──────────────────────

// PurgeYear 删除某年全部工资周（级联删除发放记录）及其自动记账支出
func (s *payrollService) PurgeYear(ctx context.Context, year int, callerID string) (*dto.PurgeYearResponse, error) {
	if err := validatePayrollYear(year); err != nil {
		return nil, err
	}

	resp := &dto.PurgeYearResponse{Year: year}
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		count, err := tx.PayrollWeek.CountByYear(ctx, year)
		if err != nil {
			return err
		}
		if count == 0 {
			return ErrYearHasNoWeeks
		}
		// 发放删除时外键会把支出的 payroll_payment_id 置空，须先删支出
		if resp.DeletedExpenses, err = tx.Expense.DeleteByPayrollYear(ctx, year); err != nil {
			return err
		}
		resp.DeletedWeeks, err = tx.PayrollWeek.DeleteByYear(ctx, year)
		return err
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.purge_year", yearID(year), err)
		return nil, err
	}

	s.logger.Info("工资年度已清除",
		zap.Int("year", year),
		zap.Int64("weeks", resp.DeletedWeeks),
		zap.Int64("expenses", resp.DeletedExpenses),
		zap.String("by", callerID),
	)
	invalidateDashboard(ctx, s.cache, s.logger)
	return resp, nil
}

// ────────────────────── Payments ──────────────────────

func (s *payrollService) ListPayments(ctx context.Context, weekID string) ([]dto.PayrollPaymentResponse, error) {
	if err := requireID(weekID, ErrWeekNotFound); err != nil {
		return nil, err
	}
	if _, err := s.repo.PayrollWeek.GetByID(ctx, weekID); err != nil {
		return nil, storageErr(err, ErrWeekNotFound)
	}
	payments, err := s.repo.PayrollPayment.ListByWeek(ctx, weekID)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.list_payments", weekID, err)
		return nil, err
	}
	result := make([]dto.PayrollPaymentResponse, 0, len(payments))
	for i := range payments {
		result = append(result, toPayrollPaymentResponse(&payments[i]))
	}
	return result, nil
}

// CreatePayment 锁周 → 关闭校验 → 参数校验 → 写入 → 对账 → 分发事件，全部在同一事务内
func (s *payrollService) CreatePayment(ctx context.Context, weekID string, req *dto.CreatePaymentRequest, callerID string) (*dto.PaymentMutationResponse, error) {
	if err := requireID(weekID, ErrWeekNotFound); err != nil {
		return nil, err
	}
	amount, err := requirePositive("amount", req.Amount)
	if err != nil {
		return nil, err
	}
	payDate, err := parseDate("pay_date", req.PayDate)
	if err != nil {
		return nil, err
	}
	if err := validatePaymentStatus(req.Status); err != nil {
		return nil, err
	}
	recipient := strings.TrimSpace(req.Recipient)
	if req.WorkerID == nil && recipient == "" {
		return nil, ErrRecipientRequired.WithField("recipient", "required")
	}

	var resp *dto.PaymentMutationResponse
	err = s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		week, err := lockOpenWeek(ctx, tx, weekID)
		if err != nil {
			return err
		}
		if !week.Contains(payDate) {
			return ErrPayDateOutsideWeek.WithField("pay_date", "within_week")
		}
		name, err := resolveRecipient(ctx, tx, req.WorkerID, recipient)
		if err != nil {
			return err
		}

		payment := &model.PayrollPayment{
			WeekID:        week.WeekID,
			WorkerID:      req.WorkerID,
			RecipientName: name,
			Amount:        amount,
			PayDate:       payDate,
			Status:        req.Status,
			Concept:       req.Concept,
			Notes:         req.Notes,
		}
		payment.Audit(callerID)
		if err := tx.PayrollPayment.Create(ctx, payment); err != nil {
			return err
		}
		if err := s.reconcile(ctx, tx, week); err != nil {
			return err
		}
		if err := s.dispatch(ctx, tx, nil, payment, week, callerID); err != nil {
			return err
		}

		p := toPayrollPaymentResponse(payment)
		resp = &dto.PaymentMutationResponse{Payment: &p, Week: toPayrollWeekResponse(week, false)}
		return nil
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.create_payment", weekID, err)
		return nil, err
	}

	s.metrics.IncPaymentMutation("create")
	invalidateDashboard(ctx, s.cache, s.logger)
	return resp, nil
}

func (s *payrollService) UpdatePayment(ctx context.Context, weekID, paymentID string, req *dto.UpdatePaymentRequest, callerID string) (*dto.PaymentMutationResponse, error) {
	if err := requireID(weekID, ErrWeekNotFound); err != nil {
		return nil, err
	}
	if err := requireID(paymentID, ErrPaymentNotFound); err != nil {
		return nil, err
	}
	var resp *dto.PaymentMutationResponse
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		week, err := lockOpenWeek(ctx, tx, weekID)
		if err != nil {
			return err
		}
		payment, err := loadWeekPayment(ctx, tx, weekID, paymentID)
		if err != nil {
			return err
		}
		before := *payment

		if err := applyPaymentUpdate(ctx, tx, week, payment, req); err != nil {
			return err
		}
		payment.UpdatedBy = auditPtr(callerID)

		if err := tx.PayrollPayment.Update(ctx, payment); err != nil {
			return err
		}
		if err := s.reconcile(ctx, tx, week); err != nil {
			return err
		}
		if err := s.dispatch(ctx, tx, &before, payment, week, callerID); err != nil {
			return err
		}

		p := toPayrollPaymentResponse(payment)
		resp = &dto.PaymentMutationResponse{Payment: &p, Week: toPayrollWeekResponse(week, false)}
		return nil
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.update_payment", paymentID, err)
		return nil, err
	}

	s.metrics.IncPaymentMutation("update")
	invalidateDashboard(ctx, s.cache, s.logger)
	return resp, nil
}

func (s *payrollService) DeletePayment(ctx context.Context, weekID, paymentID string, callerID string) (*dto.PaymentMutationResponse, error) {
	if err := requireID(weekID, ErrWeekNotFound); err != nil {
		return nil, err
	}
	if err := requireID(paymentID, ErrPaymentNotFound); err != nil {
		return nil, err
	}
	var resp *dto.PaymentMutationResponse
	err := s.repo.RunInTx(ctx, func(tx *repository.Repository) error {
		week, err := lockOpenWeek(ctx, tx, weekID)
		if err != nil {
			return err
		}
		payment, err := loadWeekPayment(ctx, tx, weekID, paymentID)
		if err != nil {
			return err
		}

		// 先撤销自动记账：删除发放后外键 ON DELETE SET NULL 会切断支出关联
		if err := s.dispatch(ctx, tx, payment, nil, week, callerID); err != nil {
			return err
		}
		if err := tx.PayrollPayment.Delete(ctx, paymentID); err != nil {
			return err
		}
		if err := s.reconcile(ctx, tx, week); err != nil {
			return err
		}

		resp = &dto.PaymentMutationResponse{Week: toPayrollWeekResponse(week, false)}
		return nil
	})
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "payroll.delete_payment", paymentID, err)
		return nil, err
	}

	s.metrics.IncPaymentMutation("delete")
	invalidateDashboard(ctx, s.cache, s.logger)
	return resp, nil
}

// ── 内部辅助方法 ──

// dispatch 根据状态迁移分发领域事件；删除时 after 为 nil，事件携带删除前的发放
func (s *payrollService) dispatch(ctx context.Context, tx *repository.Repository, before, after *model.PayrollPayment, week *model.PayrollWeek, callerID string) error {
	evType, ok := paymentTransition(before, after)
	if !ok {
		return nil
	}
	payment := after
	if payment == nil {
		payment = before
	}
	return s.events.Dispatch(ctx, tx, PaymentEvent{
		Type:     evType,
		Payment:  *payment,
		Week:     *week,
		CallerID: callerID,
	})
}

// lockOpenWeek 锁定工资周并校验未关闭
func lockOpenWeek(ctx context.Context, tx *repository.Repository, weekID string) (*model.PayrollWeek, error) {
	week, err := tx.PayrollWeek.LockByID(ctx, weekID)
	if err != nil {
		return nil, storageErr(err, ErrWeekNotFound)
	}
	if week.Closed {
		return nil, ErrWeekClosed
	}
	return week, nil
}

// loadWeekPayment 加载并校验发放属于该周
func loadWeekPayment(ctx context.Context, tx *repository.Repository, weekID, paymentID string) (*model.PayrollPayment, error) {
	payment, err := tx.PayrollPayment.GetByID(ctx, paymentID)
	if err != nil {
		return nil, storageErr(err, ErrPaymentNotFound)
	}
	if payment.WeekID != weekID {
		return nil, ErrPaymentNotFound
	}
	return payment, nil
}

// resolveRecipient 校验工人存在；未给出收款人时使用工人姓名
func resolveRecipient(ctx context.Context, tx *repository.Repository, workerID *string, recipient string) (string, error) {
	if workerID == nil {
		return recipient, nil
	}
	worker, err := tx.Worker.GetByID(ctx, *workerID)
	if err != nil {
		if isNotFound(err) {
			return "", ErrPaymentWorkerNotFound.WithField("worker_id", "exists")
		}
		return "", err
	}
	if recipient == "" {
		return worker.Name, nil
	}
	return recipient, nil
}

// applyPaymentUpdate 局部更新发放字段并校验
func applyPaymentUpdate(ctx context.Context, tx *repository.Repository, week *model.PayrollWeek, payment *model.PayrollPayment, req *dto.UpdatePaymentRequest) error {
	if req.Amount != nil {
		amount, err := requirePositive("amount", req.Amount)
		if err != nil {
			return err
		}
		payment.Amount = amount
	}
	if req.PayDate != nil {
		payDate, err := parseDate("pay_date", *req.PayDate)
		if err != nil {
			return err
		}
		payment.PayDate = payDate
	}
	if !week.Contains(payment.PayDate) {
		return ErrPayDateOutsideWeek.WithField("pay_date", "within_week")
	}
	if req.Status != nil {
		if err := validatePaymentStatus(*req.Status); err != nil {
			return err
		}
		payment.Status = *req.Status
	}
	if req.Concept != nil {
		payment.Concept = *req.Concept
	}
	if req.Notes != nil {
		payment.Notes = *req.Notes
	}

	recipient := payment.RecipientName
	if req.Recipient != nil {
		recipient = strings.TrimSpace(*req.Recipient)
	}
	if req.WorkerID != nil {
		workerID, err := optionalID("worker_id", *req.WorkerID)
		if err != nil {
			return err
		}
		if workerID != nil && req.Recipient == nil {
			// 更换工人且未显式指定收款人时，收款人跟随新工人
			recipient = ""
		}
		payment.WorkerID = workerID
	}
	name, err := resolveRecipient(ctx, tx, payment.WorkerID, recipient)
	if err != nil {
		return err
	}
	if name == "" {
		return ErrRecipientRequired.WithField("recipient", "required")
	}
	payment.RecipientName = name
	return nil
}

func validatePaymentStatus(status string) error {
	if status != model.PaymentStatusPending && status != model.PaymentStatusPaid {
		return ErrInvalidPaymentStatus.WithField("status", "oneof=pending paid")
	}
	return nil
}

func validatePayrollYear(year int) error {
	if year < MinPayrollYear || year > MaxPayrollYear {
		return ErrInvalidPayrollYear.WithField("year", "min=2000,max=2100")
	}
	return nil
}

func yearID(year int) string {
	return strconv.Itoa(year)
}

func toPayrollWeekResponse(w *model.PayrollWeek, withPayments bool) dto.PayrollWeekResponse {
	resp := dto.PayrollWeekResponse{
		ID:           w.WeekID,
		Year:         w.Year,
		WeekNumber:   w.WeekNumber,
		StartDate:    dto.FormatDate(w.StartDate),
		EndDate:      dto.FormatDate(w.EndDate),
		TotalPaid:    w.TotalPaid,
		TotalPending: w.TotalPending,
		Closed:       w.Closed,
		Notes:        w.Notes,
	}
	if withPayments {
		resp.Payments = make([]dto.PayrollPaymentResponse, 0, len(w.Payments))
		for i := range w.Payments {
			resp.Payments = append(resp.Payments, toPayrollPaymentResponse(&w.Payments[i]))
		}
	}
	return resp
}

func toPayrollPaymentResponse(p *model.PayrollPayment) dto.PayrollPaymentResponse {
	return dto.PayrollPaymentResponse{
		ID:        p.PaymentID,
		WeekID:    p.WeekID,
		WorkerID:  p.WorkerID,
		Recipient: p.RecipientName,
		Amount:    p.Amount,
		PayDate:   dto.FormatDate(p.PayDate),
		Status:    p.Status,
		Concept:   p.Concept,
		Notes:     p.Notes,
	}
}
