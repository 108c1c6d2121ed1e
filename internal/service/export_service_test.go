package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"obra-admin/backend/internal/model"
)

func TestExportService_ExportWeek(t *testing.T) {
	f := setupTestPayrollService(t)
	week := f.firstWeek(t)
	f.createPayment(t, week.ID, "500", model.PaymentStatusPaid)
	svc := NewExportService(f.repo, zap.NewNop())

	buf, filename, err := svc.ExportWeek(context.Background(), week.ID)
	if err != nil {
		t.Fatalf("ExportWeek 应成功: %v", err)
	}
	if filename != "nomina_2025_semana_01.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	book, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应可被打开: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "第1周" {
		t.Fatalf("期望唯一工作表 第1周，实际 %v", sheets)
	}
	checks := map[string]string{
		"A2": "日期",
		"A3": "2025-01-10",
		"B3": "Juan Pérez",
		"D3": "已付",
		"D5": "已付合计",
		"D7": "总计",
	}
	for c, want := range checks {
		got, _ := book.GetCellValue("第1周", c)
		if got != want {
			t.Errorf("单元格 %s 期望 %q，实际 %q", c, want, got)
		}
	}
	title, _ := book.GetCellValue("第1周", "A1")
	if !strings.Contains(title, "2025-01-06") || strings.Contains(title, "已关闭") {
		t.Errorf("标题错误: %s", title)
	}
}

func TestExportService_ExportWeek_NotFound(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	_, _, err := svc.ExportWeek(context.Background(), "00000000-0000-4000-8000-999999999999")
	if !errors.Is(err, ErrWeekNotFound) {
		t.Errorf("期望 ErrWeekNotFound，实际: %v", err)
	}
}

func TestExportService_ExportCalendar(t *testing.T) {
	f := setupTestPayrollService(t)
	week := f.firstWeek(t)
	f.createPayment(t, week.ID, "300", model.PaymentStatusPending)
	svc := NewExportService(f.repo, zap.NewNop())

	buf, filename, err := svc.ExportCalendar(context.Background(), 2025)
	if err != nil {
		t.Fatalf("ExportCalendar 应成功: %v", err)
	}
	if filename != "nomina_2025.ics" {
		t.Errorf("文件名错误: %s", filename)
	}

	body := buf.String()
	if !strings.Contains(body, "BEGIN:VCALENDAR") {
		t.Error("应包含 VCALENDAR")
	}
	if n := strings.Count(body, "BEGIN:VEVENT"); n != len(GenerateWeekRanges(2025)) {
		t.Errorf("期望每周一个事件，实际 %d", n)
	}
	if !strings.Contains(body, week.ID+"@obra-admin") {
		t.Error("事件 UID 应基于工资周 ID")
	}
	if !strings.Contains(body, "20250106") || !strings.Contains(body, "20250113") {
		t.Error("第 1 周应为全天事件 2025-01-06 ~ 2025-01-13（不含）")
	}
}

func TestExportService_ExportCalendar_Errors(t *testing.T) {
	repo, _ := newMockRepository()
	svc := NewExportService(repo, zap.NewNop())

	if _, _, err := svc.ExportCalendar(context.Background(), 2025); !errors.Is(err, ErrYearHasNoWeeks) {
		t.Errorf("期望 ErrYearHasNoWeeks，实际: %v", err)
	}
	if _, _, err := svc.ExportCalendar(context.Background(), 1800); !errors.Is(err, ErrInvalidPayrollYear) {
		t.Errorf("期望 ErrInvalidPayrollYear，实际: %v", err)
	}
}
