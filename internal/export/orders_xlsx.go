// Package export produces admin-dashboard spreadsheet exports.
package export

import (
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/sellora/client-go/internal/model"
)

var orderHeader = []string{"Order ID", "Customer", "Status", "Items", "Total Amount", "Created At"}

// WriteOrdersXLSX writes the given orders to an XLSX file: one header row,
// one row per order.
func WriteOrdersXLSX(path string, orders []model.Order) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, title := range orderHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to compute header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}

	for i, order := range orders {
		itemCount := 0
		for _, item := range order.Items {
			itemCount += item.Quantity
		}
		values := []interface{}{
			order.ID,
			order.CustomerID,
			string(order.Status),
			itemCount,
			order.TotalAmount,
			order.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to compute cell for row %s: %w", strconv.Itoa(i+2), err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write order %s: %w", order.ID, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save XLSX file: %w", err)
	}
	return nil
}
