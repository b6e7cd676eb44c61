package service

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/banglehouse/bangles-backend/internal/app/model"
	"github.com/xuri/excelize/v2"
)

const catalogSheet = "Bangles"

// Catalog spreadsheet columns. Import matches headers by name, so column
// order and extra columns do not matter.
var catalogHeaders = []string{
	"ID", "Name", "Description", "Price", "Wholesale Price",
	"Sizes", "Colors", "Stock", "Active", "Image URL",
}

// ExportCatalog writes bangles as an xlsx workbook to w.
// Sizes are comma separated; colors are "Name:#hex" pairs separated by ";".
func ExportCatalog(bangles []model.Bangle, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), catalogSheet); err != nil {
		return err
	}

	for col, header := range catalogHeaders {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(catalogSheet, cell, header); err != nil {
			return err
		}
	}

	for i, b := range bangles {
		colors := make([]string, 0, len(b.Colors))
		for _, c := range b.Colors {
			colors = append(colors, c.Name+":"+c.Hex)
		}
		row := []interface{}{
			b.ID, b.Name, b.Description, b.Price, b.WholesalePrice,
			strings.Join(b.Sizes, ","), strings.Join(colors, ";"),
			b.StockQuantity, b.IsActive, b.ImageURL,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(catalogSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

// CatalogRowError describes a spreadsheet row that could not be imported.
type CatalogRowError struct {
	Row    int
	Reason string
}

// ReadCatalog parses the first sheet of an xlsx workbook into bangles. Rows
// that fail validation are skipped and reported; a missing Name or Price
// header fails the whole import.
func ReadCatalog(r io.Reader) ([]model.Bangle, []CatalogRowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	if sheetName == "" {
		return nil, nil, fmt.Errorf("no sheets found in XLSX file")
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no data found in XLSX file")
	}

	index := make(map[string]int)
	for i, header := range rows[0] {
		index[strings.ToLower(strings.TrimSpace(header))] = i
	}
	for _, required := range []string{"name", "price"} {
		if _, ok := index[required]; !ok {
			return nil, nil, fmt.Errorf("missing %q column", required)
		}
	}

	cell := func(row []string, header string) string {
		i, ok := index[header]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var bangles []model.Bangle
	var rowErrors []CatalogRowError
	for i, row := range rows[1:] {
		rowNum := i + 2
		bangle, err := parseCatalogRow(func(h string) string { return cell(row, h) })
		if err != nil {
			rowErrors = append(rowErrors, CatalogRowError{Row: rowNum, Reason: err.Error()})
			continue
		}
		bangles = append(bangles, bangle)
	}

	return bangles, rowErrors, nil
}

func parseCatalogRow(cell func(header string) string) (model.Bangle, error) {
	input := BangleInput{
		Name:        cell("name"),
		Description: cell("description"),
		ImageURL:    cell("image url"),
	}

	var err error
	if input.Price, err = strconv.ParseFloat(cell("price"), 64); err != nil {
		return model.Bangle{}, fmt.Errorf("invalid price %q", cell("price"))
	}
	if v := cell("wholesale price"); v != "" {
		if input.WholesalePrice, err = strconv.ParseFloat(v, 64); err != nil {
			return model.Bangle{}, fmt.Errorf("invalid wholesale price %q", v)
		}
	}
	if v := cell("stock"); v != "" {
		if input.StockQuantity, err = strconv.Atoi(v); err != nil {
			return model.Bangle{}, fmt.Errorf("invalid stock %q", v)
		}
	}
	if v := cell("sizes"); v != "" {
		input.Sizes = strings.Split(v, ",")
	}
	if v := cell("colors"); v != "" {
		for _, pair := range strings.Split(v, ";") {
			name, hex, ok := strings.Cut(pair, ":")
			if !ok {
				return model.Bangle{}, fmt.Errorf("invalid color %q", pair)
			}
			input.Colors = append(input.Colors, model.BangleColor{Name: name, Hex: hex})
		}
	}

	active := true
	if v := cell("active"); v != "" {
		if active, err = strconv.ParseBool(strings.ToLower(v)); err != nil {
			return model.Bangle{}, fmt.Errorf("invalid active flag %q", v)
		}
	}

	if err := normalizeBangleInput(&input); err != nil {
		return model.Bangle{}, err
	}

	return model.Bangle{
		ID:             cell("id"),
		Name:           input.Name,
		Description:    input.Description,
		Price:          input.Price,
		WholesalePrice: input.WholesalePrice,
		ImageURL:       input.ImageURL,
		Sizes:          model.SizeList(input.Sizes),
		Colors:         input.Colors,
		StockQuantity:  input.StockQuantity,
		IsActive:       active,
	}, nil
}
