package generate_excel

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"shift-crm/internal/service/report"
)

const sheet = "Отчёт"

type ReportSource interface {
	Financial(ctx context.Context, tenantID string, q report.Query) (*report.Report, error)
}

type GenerateExcelService struct {
	reports ReportSource
}

func NewGenerateService(reports ReportSource) *GenerateExcelService {
	return &GenerateExcelService{reports: reports}
}

var headers = []string{"Модель", "ID", "Смен", "Соло, $", "Пары, $", "Доля в парах, $", "Итого, $", "Зарплата"}

func (g *GenerateExcelService) GenerateExcel(ctx context.Context, tenantID string, q report.Query) ([]byte, error) {
	const op = "service.generate_excel.GenerateExcel"

	rep, err := g.reports.Financial(ctx, tenantID, q)
	if err != nil {
		return nil, fmt.Errorf("%s: fetch report: %w", op, err)
	}

	data, err := Render(rep)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

// Render пишет отчёт в xlsx: шапка, строка на модель, строка итогов.
func Render(rep *report.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, fmt.Errorf("header style: %w", err)
	}

	totalStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "000000", Style: 1}},
	})
	if err != nil {
		return nil, fmt.Errorf("total style: %w", err)
	}

	// период и курс над таблицей
	f.SetCellValue(sheet, "A1", fmt.Sprintf("Период: %s .. %s", openBound(rep.From), openBound(rep.To)))
	f.SetCellValue(sheet, "D1", "Курс")
	f.SetCellValue(sheet, "E1", rep.ExchangeRate)

	const headerRow = 2
	for i, name := range headers {
		f.SetCellValue(sheet, cellName(i+1, headerRow), name)
	}
	f.SetCellStyle(sheet, cellName(1, headerRow), cellName(len(headers), headerRow), headerStyle)

	row := headerRow + 1
	for _, m := range rep.Models {
		f.SetCellValue(sheet, cellName(1, row), m.ModelName)
		f.SetCellValue(sheet, cellName(2, row), m.ModelID)
		f.SetCellValue(sheet, cellName(3, row), m.Shifts)
		f.SetCellValue(sheet, cellName(4, row), m.Solo)
		f.SetCellValue(sheet, cellName(5, row), m.Pair)
		f.SetCellValue(sheet, cellName(6, row), m.PairShare)
		f.SetCellValue(sheet, cellName(7, row), m.Total)
		f.SetCellValue(sheet, cellName(8, row), m.Salary)
		row++
	}

	// в итогах парные выплаты посчитаны один раз
	f.SetCellValue(sheet, cellName(1, row), "Итого")
	f.SetCellValue(sheet, cellName(4, row), rep.TotalSolo)
	f.SetCellValue(sheet, cellName(5, row), rep.TotalPair)
	f.SetCellValue(sheet, cellName(7, row), rep.Total)
	f.SetCellValue(sheet, cellName(8, row), rep.TotalSalary)
	f.SetCellStyle(sheet, cellName(1, row), cellName(len(headers), row), totalStyle)

	f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: cellName(1, headerRow+1),
		ActivePane:  "bottomLeft",
	})

	f.SetColWidth(sheet, "A", "A", 24)
	f.SetColWidth(sheet, "B", "H", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}

	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func openBound(s string) string {
	if s == "" {
		return "*"
	}
	return s
}
