package domain

import (
	"time"
)

// TransactionLine represents one scanned item on a receipt. Column names match
// the source parquet files exactly and must not be renamed.
type TransactionLine struct {
	LineID        string    `parquet:"TRANSACTION_ITEM_ID" json:"lineId"`
	TransactionID string    `parquet:"TRANSACTION_SET_ID" json:"transactionId"`
	ProductCode   string    `parquet:"GTIN" json:"productCode"`
	StoreID       string    `parquet:"STORE_ID" json:"storeId"`
	UnitPrice     float64   `parquet:"UNIT_PRICE" json:"unitPrice"`
	Quantity      float64   `parquet:"UNIT_QUANTITY" json:"quantity"`
	Timestamp     time.Time `parquet:"DATE_TIME,timestamp" json:"timestamp"`
}

// ProductCatalogEntry represents static product metadata from the master catalog.
// NonScanCategory flags items rung up without a barcode scan; "FUEL" marks fuel pumps.
type ProductCatalogEntry struct {
	ProductCode     string  `parquet:"GTIN" json:"productCode"`
	Description     string  `parquet:"POS_DESCRIPTION" json:"description"`
	Category        *string `parquet:"CATEGORY,optional" json:"category,omitempty"`
	Brand           *string `parquet:"BRAND,optional" json:"brand,omitempty"`
	NonScanCategory *string `parquet:"NONSCAN_CATEGORY,optional" json:"nonScanCategory,omitempty"`
}

// PaymentRecord represents one transaction's tender type.
type PaymentRecord struct {
	TransactionID string `parquet:"TRANSACTION_SET_ID" json:"transactionId"`
	PaymentType   string `parquet:"PAYMENT_TYPE" json:"paymentType"`
}

// StoreRecord represents static store metadata. STORE_ID is numeric in the store
// table but utf8 in the transaction lines; the repository normalizes it.
type StoreRecord struct {
	StoreID   int64  `parquet:"STORE_ID" json:"storeId"`
	StoreName string `parquet:"STORE_NAME" json:"storeName"`
	City      string `parquet:"CITY" json:"city"`
	State     string `parquet:"STATE" json:"state"`
}

// StoreInfo is the store list entry served to filter widgets.
type StoreInfo struct {
	StoreID   string `json:"storeId"`
	StoreName string `json:"storeName"`
	City      string `json:"city"`
	State     string `json:"state"`
}

// DateRange is the inclusive min/max date span of the transaction data.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
