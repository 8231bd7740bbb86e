// Package export writes the order history as CSV or XLSX, one row per
// ordered line.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"

	"github.com/R3E-Network/lab_order/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (supported: csv, xlsx)", s)
	}
}

// Row is one exported order line.
type Row struct {
	OrderNumber   string `csv:"order_number"`
	OrderDate     string `csv:"order_date"`
	Status        string `csv:"status"`
	MemberName    string `csv:"member_name"`
	MemberEmail   string `csv:"member_email"`
	ProductID     string `csv:"product_id"`
	ShortName     string `csv:"short_name"`
	Name          string `csv:"name"`
	Manufacturer  string `csv:"manufacturer"`
	CatalogNumber string `csv:"catalog_number"`
	Capacity      string `csv:"capacity"`
	UsagePlace    string `csv:"usage_place"`
	Quantity      int    `csv:"quantity"`
	Notes         string `csv:"notes"`
}

// Rows flattens orders into one row per line. Orders with no decodable
// lines produce no rows.
func Rows(orders []domain.Order) []Row {
	var rows []Row
	for _, o := range orders {
		for _, l := range o.Lines() {
			rows = append(rows, Row{
				OrderNumber:   o.OrderNumber,
				OrderDate:     o.OrderDate,
				Status:        o.StatusLabel(),
				MemberName:    o.MemberName,
				MemberEmail:   o.MemberEmail,
				ProductID:     l.ProductID,
				ShortName:     l.ShortName,
				Name:          l.Name,
				Manufacturer:  l.Manufacturer,
				CatalogNumber: l.CatalogNumber,
				Capacity:      l.Capacity,
				UsagePlace:    l.UsagePlace,
				Quantity:      l.Quantity,
				Notes:         o.Notes,
			})
		}
	}
	return rows
}

// Write exports orders to w in format.
func Write(w io.Writer, format Format, orders []domain.Order) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, orders)
	case FormatXLSX:
		return WriteXLSX(w, orders)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// WriteCSV writes a header line followed by one line per order line.
func WriteCSV(w io.Writer, orders []domain.Order) error {
	rows := Rows(orders)
	if rows == nil {
		rows = []Row{}
	}
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// SheetName is the worksheet holding exported rows.
const SheetName = "Orders"

var xlsxHeader = []string{
	"Order number", "Order date", "Status", "Member", "Email",
	"Product id", "Short name", "Name", "Manufacturer", "Catalog number",
	"Capacity", "Usage place", "Quantity", "Notes",
}

// WriteXLSX writes a workbook with a single Orders sheet.
func WriteXLSX(w io.Writer, orders []domain.Order) error {
	f := excelize.NewFile()
	f.SetSheetName("Sheet1", SheetName)

	for col, title := range xlsxHeader {
		f.SetCellValue(SheetName, cell(col, 1), title)
	}
	for i, r := range Rows(orders) {
		row := i + 2
		values := []interface{}{
			r.OrderNumber, r.OrderDate, r.Status, r.MemberName, r.MemberEmail,
			r.ProductID, r.ShortName, r.Name, r.Manufacturer, r.CatalogNumber,
			r.Capacity, r.UsagePlace, r.Quantity, r.Notes,
		}
		for col, v := range values {
			f.SetCellValue(SheetName, cell(col, row), v)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

// cell returns the A1 reference of a zero-based column and one-based row.
func cell(col, row int) string {
	return excelize.ToAlphaString(col) + strconv.Itoa(row)
}
