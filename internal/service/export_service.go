package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"obra-admin/backend/internal/dto"
	"obra-admin/backend/internal/model"
	"obra-admin/backend/internal/repository"
	pkgerrors "obra-admin/backend/pkg/errors"
)

// ExportService 导出业务接口
//
//   - 工资周导出为 Excel (.xlsx)，每笔发放一行，末尾为合计行
//   - 年度工资周导出为 iCalendar (.ics)，每周一个全天事件
//   - 内容以 bytes.Buffer 返回，由 Handler 层设置响应头后写入
type ExportService interface {
	ExportWeek(ctx context.Context, weekID string) (*bytes.Buffer, string, error)
	ExportCalendar(ctx context.Context, year int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

var paymentStatusLabel = map[string]string{
	model.PaymentStatusPaid:    "已付",
	model.PaymentStatusPending: "待付",
}

// ═══════════════════════════════════════════════════════════
// ExportWeek 导出工资周为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 第 1 行标题：年份 + 周次 + 起止日期
//   - 第 2 行表头：日期 | 收款人 | 事项 | 状态 | 金额 | 备注
//   - 数据行按发放日期排序
//   - 合计行：已付 / 待付 / 总计

func (s *exportService) ExportWeek(ctx context.Context, weekID string) (*bytes.Buffer, string, error) {
	if err := requireID(weekID, ErrWeekNotFound); err != nil {
		return nil, "", err
	}
	week, err := s.repo.PayrollWeek.GetByID(ctx, weekID)
	if err != nil {
		err = storageErr(err, ErrWeekNotFound)
		logOpError(s.logger, "export.week", weekID, err)
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := fmt.Sprintf("第%d周", week.WeekNumber)
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"日期", "收款人", "事项", "状态", "金额", "备注"}
	widths := []float64{12, 28, 24, 8, 14, 36}
	for i, w := range widths {
		col := colName(i)
		f.SetColWidth(sheet, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	moneyFmt := "#,##0.00"
	moneyStyle, _ := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &moneyFmt,
	})

	// 标题行
	title := fmt.Sprintf("%d 年第 %d 周工资（%s ~ %s）", week.Year, week.WeekNumber,
		dto.FormatDate(week.StartDate), dto.FormatDate(week.EndDate))
	if week.Closed {
		title += " [已关闭]"
	}
	f.SetCellValue(sheet, "A1", title)
	f.MergeCell(sheet, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	// 表头
	row := 2
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell(colName(len(headers)-1), row), headerStyle)

	// 数据行
	row = 3
	for _, p := range week.Payments {
		f.SetCellValue(sheet, cell("A", row), dto.FormatDate(p.PayDate))
		f.SetCellValue(sheet, cell("B", row), p.RecipientName)
		f.SetCellValue(sheet, cell("C", row), p.Concept)
		f.SetCellValue(sheet, cell("D", row), paymentStatusLabel[p.Status])
		f.SetCellValue(sheet, cell("E", row), p.Amount.InexactFloat64())
		f.SetCellValue(sheet, cell("F", row), p.Notes)
		f.SetCellStyle(sheet, cell("E", row), cell("E", row), moneyStyle)
		row++
	}

	// 合计行
	totals := []struct {
		label  string
		amount decimal.Decimal
	}{
		{"已付合计", week.TotalPaid},
		{"待付合计", week.TotalPending},
		{"总计", week.TotalPaid.Add(week.TotalPending)},
	}
	row++
	for _, t := range totals {
		f.SetCellValue(sheet, cell("D", row), t.label)
		f.SetCellValue(sheet, cell("E", row), t.amount.InexactFloat64())
		f.SetCellStyle(sheet, cell("D", row), cell("E", row), totalStyle)
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("week_id", weekID), zap.Error(err))
		return nil, "", pkgerrors.Storage(fmt.Errorf("生成 Excel 失败: %w", err))
	}

	filename := fmt.Sprintf("nomina_%d_semana_%02d.xlsx", week.Year, week.WeekNumber)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar 导出年度工资周为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 每周一个全天 VEVENT：DTSTART=周一，DTEND=周日次日（不含）；
// SUMMARY 含已付/待付合计，DESCRIPTION 标注是否关闭。UID 以周 ID 保证订阅端稳定。

func (s *exportService) ExportCalendar(ctx context.Context, year int) (*bytes.Buffer, string, error) {
	if err := validatePayrollYear(year); err != nil {
		return nil, "", err
	}
	weeks, err := s.repo.PayrollWeek.ListByYear(ctx, year)
	if err != nil {
		err = pkgerrors.Storage(err)
		logOpError(s.logger, "export.calendar", yearID(year), err)
		return nil, "", err
	}
	if len(weeks) == 0 {
		return nil, "", ErrYearHasNoWeeks
	}

	stamp := s.now().UTC()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//obra-admin//payroll//ES")
	cal.SetXWRCalName(fmt.Sprintf("Nómina %d", year))

	for i := range weeks {
		w := &weeks[i]
		event := cal.AddEvent(w.WeekID + "@obra-admin")
		event.SetDtStampTime(stamp)
		event.SetAllDayStartAt(w.StartDate)
		event.SetAllDayEndAt(model.DateOnly(w.EndDate).AddDate(0, 0, 1))
		event.SetSummary(weekSummary(w))
		event.SetDescription(weekDescription(w))
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return buf, fmt.Sprintf("nomina_%d.ics", year), nil
}

func weekSummary(w *model.PayrollWeek) string {
	return fmt.Sprintf("Semana %d: pagado %s / pendiente %s",
		w.WeekNumber, w.TotalPaid.StringFixed(2), w.TotalPending.StringFixed(2))
}

func weekDescription(w *model.PayrollWeek) string {
	lines := []string{
		fmt.Sprintf("%s ~ %s", dto.FormatDate(w.StartDate), dto.FormatDate(w.EndDate)),
	}
	if w.Closed {
		lines = append(lines, "Estado: cerrada")
	} else {
		lines = append(lines, "Estado: abierta")
	}
	if w.Notes != "" {
		lines = append(lines, w.Notes)
	}
	return strings.Join(lines, "\n")
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
