package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/wjones/cstore-insights-service/internal/domain"
)

// Table is a fully formatted tabular export: headers plus string cells.
type Table struct {
	Name    string
	Headers []string
	Rows    [][]string
}

// WriteCSV renders the table as CSV.
func WriteCSV(w io.Writer, table *Table) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(table.Headers); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, row := range table.Rows {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// Currency formats a dollar amount to two decimal places.
func Currency(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Count formats an integer with thousands grouping, e.g. 12345 -> "12,345".
func Count(n int) string {
	s := strconv.Itoa(n)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}

	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// Units formats a quantity: fractional quantities keep two decimals, whole
// quantities render as thousands-grouped integers.
func Units(v float64) string {
	if v == float64(int64(v)) {
		return Count(int(v))
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// TopProductsTable flattens a top-products report for download.
func TopProductsTable(report *domain.TopProductsReport) *Table {
	table := &Table{
		Name:    "top_products",
		Headers: []string{"rank", "product", "category", "total_sales", "total_units"},
	}
	for _, p := range report.Products {
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(p.Rank),
			p.Description,
			p.Category,
			Currency(p.TotalSales),
			Units(p.TotalUnits),
		})
	}
	return table
}

// BeverageBrandsTable flattens a beverage-brands report for download.
func BeverageBrandsTable(report *domain.BeverageBrandsReport) *Table {
	table := &Table{
		Name: "beverage_brands",
		Headers: []string{
			"brand", "total_sales", "total_units", "transaction_count",
			"avg_unit_price", "sales_per_transaction",
		},
	}
	for _, b := range report.Brands {
		table.Rows = append(table.Rows, []string{
			b.Brand,
			Currency(b.TotalSales),
			Units(b.TotalUnits),
			Count(b.TransactionCount),
			Currency(b.AvgUnitPrice),
			Currency(b.SalesPerTransaction),
		})
	}
	return table
}

// PaymentComparisonTable flattens the payment-group KPIs for download.
func PaymentComparisonTable(report *domain.PaymentComparisonReport) *Table {
	table := &Table{
		Name: "payment_comparison",
		Headers: []string{
			"payment_group", "transaction_count", "total_sales",
			"avg_transaction_value", "total_items", "avg_items_per_line",
		},
	}
	for _, g := range report.Groups {
		table.Rows = append(table.Rows, []string{
			g.PaymentGroup,
			Count(g.TransactionCount),
			Currency(g.TotalSales),
			Currency(g.AvgTransactionValue),
			Units(g.TotalItems),
			Currency(g.AvgItemsPerLine),
		})
	}
	return table
}
