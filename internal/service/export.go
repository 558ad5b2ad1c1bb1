package service

import (
	"context"
	"fmt"
	"io"

	"pharmacy-storefront/internal/store"
	"pharmacy-storefront/internal/util"

	"github.com/tealeg/xlsx"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var medicineExportHeaders = []string{
	"ID", "Name", "Category", "Price", "Stock", "In Stock", "Requires Prescription",
	"Dosage", "Manufacturer", "Featured", "Updated At",
}

// ExportMedicines writes the catalog with stock levels as an .xlsx workbook
func (s *BackofficeService) ExportMedicines(ctx context.Context, staff StaffCapability, w io.Writer) error {
	ctx, span := util.StartSpan(ctx, "BackofficeService.ExportMedicines")
	defer span.End()

	if err := staff.check(); err != nil {
		return err
	}

	medicines, err := s.repo.ListMedicines(ctx, store.MedicineFilter{})
	if err != nil {
		return err
	}
	categories, err := s.repo.ListCategories(ctx, 0)
	if err != nil {
		return err
	}
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Medicines")
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, h := range medicineExportHeaders {
		header.AddCell().SetString(h)
	}

	for _, m := range medicines {
		row := sheet.AddRow()
		row.AddCell().SetInt64(m.ID)
		row.AddCell().SetString(m.Name)
		row.AddCell().SetString(names[m.CategoryID])
		row.AddCell().SetString(m.Price.StringFixed(2))
		row.AddCell().SetInt(m.Stock)
		row.AddCell().SetBool(m.InStock())
		row.AddCell().SetBool(m.RequiresPrescription)
		row.AddCell().SetString(m.Dosage)
		row.AddCell().SetString(m.Manufacturer)
		row.AddCell().SetBool(m.Featured)
		row.AddCell().SetString(m.UpdatedAt.Format(exportTimeLayout))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
