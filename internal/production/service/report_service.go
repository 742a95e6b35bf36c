package service

import (
	"bytes"
	"context"
	"fmt"

	"github.com/newsergiomail-lgtm/sofany-crm-sub004/internal/production/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ReportService выгрузка месячной зарплатной ведомости в Excel
type ReportService struct {
	payrollRepo  *repository.PayrollRepository
	employeeRepo *repository.EmployeeRepository
	logger       *zap.Logger
}

func NewReportService(payrollRepo *repository.PayrollRepository, employeeRepo *repository.EmployeeRepository, logger *zap.Logger) *ReportService {
	return &ReportService{payrollRepo: payrollRepo, employeeRepo: employeeRepo, logger: logger}
}

// PayrollReport builds the monthly payroll sheet: одна строка на сотрудника
// с агрегатами за период.
func (s *ReportService) PayrollReport(ctx context.Context, period string) ([]byte, error) {
	records, err := s.payrollRepo.FindByPeriod(ctx, period)
	if err != nil {
		return nil, fmt.Errorf("load payroll records: %w", err)
	}

	employees, err := s.employeeRepo.FindAll(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load employees: %w", err)
	}
	names := make(map[string]string, len(employees))
	departments := make(map[string]string, len(employees))
	for _, e := range employees {
		names[e.ID] = e.Name
		departments[e.ID] = e.Department
	}

	f := excelize.NewFile()
	defer f.Close()
	sheet := "Зарплата " + period
	f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})

	headers := []string{"Сотрудник", "Отдел", "Период", "Работ", "Часы", "Сумма, руб"}
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, name)
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(headers), 1)
	f.SetCellStyle(sheet, "A1", lastCol, headerStyle)

	var totalAmount, totalHours float64
	row := 2
	for _, rec := range records {
		name := names[rec.EmployeeID]
		if name == "" {
			name = rec.EmployeeID
		}
		values := []interface{}{
			name,
			departments[rec.EmployeeID],
			rec.Period,
			rec.WorkCount,
			rec.TotalHours,
			rec.TotalAmount,
		}
		for i, v := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			f.SetCellValue(sheet, cell, v)
		}
		totalAmount += rec.TotalAmount
		totalHours += rec.TotalHours
		row++
	}

	// итоговая строка
	f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Итого")
	f.SetCellValue(sheet, fmt.Sprintf("E%d", row), totalHours)
	f.SetCellValue(sheet, fmt.Sprintf("F%d", row), totalAmount)
	totalStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	f.SetCellStyle(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("F%d", row), totalStyle)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("payroll report generated",
		zap.String("period", period),
		zap.Int("rows", len(records)),
	)
	return buf.Bytes(), nil
}
