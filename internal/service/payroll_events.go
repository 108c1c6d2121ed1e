package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
)

// PaymentEventType 工资发放领域事件类型
type PaymentEventType string

const (
	// PaymentMarkedPaid 发放进入已付状态（以已付创建，或 pending → paid）
	PaymentMarkedPaid PaymentEventType = "payment.marked_paid"
	// PaymentUnmarkedPaid 发放离开已付状态（paid → pending，或删除已付发放）
	PaymentUnmarkedPaid PaymentEventType = "payment.unmarked_paid"
	// PaymentPaidChanged 已付发放的金额/日期/收款人被修改
	PaymentPaidChanged PaymentEventType = "payment.paid_changed"
)

// PaymentEvent 工资发放领域事件
type PaymentEvent struct {
	Type     PaymentEventType
	Payment  model.PayrollPayment
	Week     model.PayrollWeek
	CallerID string
}

// PaymentEventHandler 在发放变更事务内同步处理事件；返回错误将回滚整个变更
type PaymentEventHandler interface {
	HandlePaymentEvent(ctx context.Context, txRepo *repository.Repository, ev PaymentEvent) error
}

// PaymentEventBus 同步事件分发器
type PaymentEventBus struct {
	handlers []PaymentEventHandler
}

// NewPaymentEventBus 创建事件分发器
func NewPaymentEventBus(handlers ...PaymentEventHandler) *PaymentEventBus {
	return &PaymentEventBus{handlers: handlers}
}

// Subscribe 注册处理器
func (b *PaymentEventBus) Subscribe(h PaymentEventHandler) {
	b.handlers = append(b.handlers, h)
}

// Dispatch 依次分发事件，任一处理器失败即返回
func (b *PaymentEventBus) Dispatch(ctx context.Context, txRepo *repository.Repository, events ...PaymentEvent) error {
	if b == nil {
		return nil
	}
	for _, ev := range events {
		for _, h := range b.handlers {
			if err := h.HandlePaymentEvent(ctx, txRepo, ev); err != nil {
				return fmt.Errorf("处理事件 %s 失败: %w", ev.Type, err)
			}
		}
	}
	return nil
}

// paymentTransition 根据变更前后状态推导事件；before 为 nil 表示新建，after 为 nil 表示删除
func paymentTransition(before, after *model.PayrollPayment) (PaymentEventType, bool) {
	wasPaid := before != nil && before.IsPaid()
	isPaid := after != nil && after.IsPaid()
	switch {
	case !wasPaid && isPaid:
		return PaymentMarkedPaid, true
	case wasPaid && !isPaid:
		return PaymentUnmarkedPaid, true
	case wasPaid && isPaid && paidFieldsChanged(before, after):
		return PaymentPaidChanged, true
	}
	return "", false
}

func paidFieldsChanged(before, after *model.PayrollPayment) bool {
	return !before.Amount.Equal(after.Amount) ||
		!before.PayDate.Equal(after.PayDate) ||
		before.RecipientName != after.RecipientName
}

// ── ExpensePoster ──

// ExpensePoster 把已付工资记入一般支出（source = payroll），撤销时删除对应支出
type ExpensePoster struct {
	category string
	logger   *zap.Logger
}

// NewExpensePoster 创建自动记账处理器
func NewExpensePoster(category string, logger *zap.Logger) *ExpensePoster {
	return &ExpensePoster{category: category, logger: logger}
}

func (p *ExpensePoster) HandlePaymentEvent(ctx context.Context, txRepo *repository.Repository, ev PaymentEvent) error {
	switch ev.Type {
	case PaymentMarkedPaid:
		return p.post(ctx, txRepo, ev)
	case PaymentUnmarkedPaid:
		if err := txRepo.Expense.DeleteByPayrollPayment(ctx, ev.Payment.PaymentID); err != nil {
			return err
		}
		p.logger.Debug("已撤销工资自动记账", zap.String("payment_id", ev.Payment.PaymentID))
		return nil
	case PaymentPaidChanged:
		existing, err := txRepo.Expense.GetByPayrollPayment(ctx, ev.Payment.PaymentID)
		if err != nil {
			if isNotFound(err) {
				return p.post(ctx, txRepo, ev)
			}
			return err
		}
		existing.Amount = ev.Payment.Amount
		existing.SpentAt = ev.Payment.PayDate
		existing.Description = p.describe(ev)
		existing.UpdatedBy = auditPtr(ev.CallerID)
		return txRepo.Expense.Update(ctx, existing)
	}
	return nil
}

func (p *ExpensePoster) post(ctx context.Context, txRepo *repository.Repository, ev PaymentEvent) error {
	paymentID := ev.Payment.PaymentID
	expense := &model.Expense{
		Category:         p.category,
		Description:      p.describe(ev),
		Amount:           ev.Payment.Amount,
		SpentAt:          ev.Payment.PayDate,
		Source:           model.ExpenseSourcePayroll,
		PayrollPaymentID: &paymentID,
	}
	expense.Audit(ev.CallerID)
	if err := txRepo.Expense.Create(ctx, expense); err != nil {
		return err
	}
	p.logger.Debug("已记入工资支出",
		zap.String("payment_id", paymentID),
		zap.String("expense_id", expense.ExpenseID),
	)
	return nil
}

func (p *ExpensePoster) describe(ev PaymentEvent) string {
	return fmt.Sprintf("工资 %d 年第 %d 周 · %s", ev.Week.Year, ev.Week.WeekNumber, ev.Payment.RecipientName)
}
