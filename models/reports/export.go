package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportMovementReportExcel renders the movement report as an xlsx workbook
// with the detail lines on Sheet1 and the origin totals below them.
func ExportMovementReportExcel(ctx context.Context, filter *MovementReportFilter) (*bytes.Buffer, error) {
	report, err := BuildMovementReport(ctx, filter)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Sheet1"
	headers := []string{"Fecha", "Origen", "Descripción", "Monto", "Saldo Factura"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, line := range report.Details {
		f.SetCellValue(sheet, "A"+fmt.Sprint(row), line.Date.Format("2006-01-02"))
		f.SetCellValue(sheet, "B"+fmt.Sprint(row), string(line.Origin))
		f.SetCellValue(sheet, "C"+fmt.Sprint(row), line.Description)
		f.SetCellValue(sheet, "D"+fmt.Sprint(row), line.Amount.InexactFloat64())
		if line.InvoiceRemaining != nil {
			f.SetCellValue(sheet, "E"+fmt.Sprint(row), line.InvoiceRemaining.InexactFloat64())
		}
		row++
	}

	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total Ingresos")
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), report.TotalIncomes.InexactFloat64())
	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total Pagos")
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), report.TotalPayments.InexactFloat64())
	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Total Cargos")
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), report.TotalCharges.InexactFloat64())
	row++
	f.SetCellValue(sheet, "A"+fmt.Sprint(row), "Balance Neto")
	f.SetCellValue(sheet, "B"+fmt.Sprint(row), report.NetBalance.InexactFloat64())

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf, nil
}
