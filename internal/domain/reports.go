package domain

// ProductRank is one entry in a top-products ranking.
type ProductRank struct {
	Rank        int     `json:"rank"`
	Description string  `json:"description"`
	Category    string  `json:"category,omitempty"`
	TotalSales  float64 `json:"totalSales"`
	TotalUnits  float64 `json:"totalUnits"`
}

// WeeklyPoint is one point of a weekly trend series.
type WeeklyPoint struct {
	Year   int     `json:"year"`
	Week   int     `json:"week"`
	Label  string  `json:"label"`
	Series string  `json:"series"`
	Sales  float64 `json:"sales"`
	Units  float64 `json:"units,omitempty"`
}

// TopProductsReport answers "excluding fuels, which products lead weekly sales".
type TopProductsReport struct {
	Products     []ProductRank `json:"products"`
	WeeklyTrends []WeeklyPoint `json:"weeklyTrends"`
	Empty        bool          `json:"empty"`
}

// BrandPerformance summarizes one beverage brand.
type BrandPerformance struct {
	Brand               string  `json:"brand"`
	TotalSales          float64 `json:"totalSales"`
	TotalUnits          float64 `json:"totalUnits"`
	TransactionCount    int     `json:"transactionCount"`
	AvgUnitPrice        float64 `json:"avgUnitPrice"`
	SalesPerTransaction float64 `json:"salesPerTransaction"`
}

// BeverageBrandsReport ranks packaged-beverage brands and flags the ones under
// the caller's performance thresholds.
type BeverageBrandsReport struct {
	Brands          []BrandPerformance `json:"brands"`
	Underperforming []BrandPerformance `json:"underperforming"`
	TotalBrandSales float64            `json:"totalBrandSales"`
	AvgBrandSales   float64            `json:"avgBrandSales"`
	LostSales       float64            `json:"lostSales"`
	WeeklyTrends    []WeeklyPoint      `json:"weeklyTrends"`
	Empty           bool               `json:"empty"`
}

// PaymentGroupStats holds the per-group KPIs of the cash vs credit comparison.
type PaymentGroupStats struct {
	PaymentGroup        string  `json:"paymentGroup"`
	TransactionCount    int     `json:"transactionCount"`
	TotalSales          float64 `json:"totalSales"`
	AvgTransactionValue float64 `json:"avgTransactionValue"`
	TotalItems          float64 `json:"totalItems"`
	AvgItemsPerLine     float64 `json:"avgItemsPerLine"`
}

// ProductByPayment is one product ranked within a payment group.
type ProductByPayment struct {
	PaymentGroup  string  `json:"paymentGroup"`
	Description   string  `json:"description"`
	PurchaseCount int     `json:"purchaseCount"`
	TotalSales    float64 `json:"totalSales"`
}

// CategoryByPayment is the per-category sales breakdown within a payment group.
type CategoryByPayment struct {
	PaymentGroup     string  `json:"paymentGroup"`
	Category         string  `json:"category"`
	TotalSales       float64 `json:"totalSales"`
	TransactionCount int     `json:"transactionCount"`
}

// PaymentComparisonReport answers "how do cash and credit customers compare".
type PaymentComparisonReport struct {
	Groups            []PaymentGroupStats `json:"groups"`
	TopProducts       []ProductByPayment  `json:"topProducts"`
	CategoryBreakdown []CategoryByPayment `json:"categoryBreakdown"`
	WeeklyTrends      []WeeklyPoint       `json:"weeklyTrends"`
	Empty             bool                `json:"empty"`
}

// Demographics is a flat record of named county-level statistics.
type Demographics map[string]float64

// StoreDemographics pairs a store with its county demographics.
type StoreDemographics struct {
	StoreID    string       `json:"storeId"`
	StoreName  string       `json:"storeName"`
	City       string       `json:"city"`
	StateFIPS  string       `json:"stateFips"`
	CountyFIPS string       `json:"countyFips"`
	Statistics Demographics `json:"statistics"`
	Fallback   bool         `json:"fallback"`
	Notice     string       `json:"notice,omitempty"`
}

// DemographicsReport holds one store's demographics and an optional comparison.
type DemographicsReport struct {
	Primary *StoreDemographics `json:"primary"`
	Compare *StoreDemographics `json:"compare,omitempty"`
}
