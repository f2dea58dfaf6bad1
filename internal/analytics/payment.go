package analytics

// PaymentGroup is the coarse tender bucket derived from raw payment-type codes.
type PaymentGroup string

const (
	GroupCash   PaymentGroup = "CASH"
	GroupCredit PaymentGroup = "CREDIT"
	GroupOther  PaymentGroup = "OTHER"
)

// NormalizePayment buckets a raw payment type: CASH and CHANGE count as cash,
// CREDIT and DEBIT as credit, everything else (including a missing payment
// record) as OTHER. Comparison pipelines drop OTHER before aggregating.
func NormalizePayment(paymentType *string) PaymentGroup {
	if paymentType == nil {
		return GroupOther
	}
	switch *paymentType {
	case "CASH", "CHANGE":
		return GroupCash
	case "CREDIT", "DEBIT":
		return GroupCredit
	default:
		return GroupOther
	}
}
