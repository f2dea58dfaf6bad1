package domain

import (
	"fmt"
	"time"
)

// EnrichedRow is a transaction line after left-joining the product catalog,
// payment and store tables, plus derived date/week/sales fields. Nil pointer
// fields mean the corresponding join found no match.
type EnrichedRow struct {
	LineID        string
	TransactionID string
	ProductCode   string
	StoreID       string
	UnitPrice     float64
	Quantity      float64
	Timestamp     time.Time

	// Derived columns.
	Date       time.Time
	ISOYear    int
	ISOWeek    int
	TotalSales float64

	// Catalog join.
	Description     *string
	Category        *string
	Brand           *string
	NonScanCategory *string

	// Payment join.
	PaymentType *string

	// Store join.
	StoreName *string
	City      *string
	State     *string
}

// WeekLabel renders the ISO (year, week) pair as e.g. "2023-W05" for trend axes.
func (r *EnrichedRow) WeekLabel() string {
	return WeekLabel(r.ISOYear, r.ISOWeek)
}

// WeekLabel formats an ISO year/week pair with a zero-padded week number so
// labels sort lexicographically in chronological order.
func WeekLabel(year, week int) string {
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// ParseWeekLabel is the inverse of WeekLabel.
func ParseWeekLabel(label string) (int, int, error) {
	var year, week int
	if _, err := fmt.Sscanf(label, "%4d-W%2d", &year, &week); err != nil {
		return 0, 0, fmt.Errorf("invalid week label %q: %w", label, err)
	}
	return year, week, nil
}
