package billing

import (
	"fmt"
	"net/url"
)

// UPILink builds the upi://pay deep link a payment QR code encodes.
func UPILink(vpa, payeeName string, amount float64, txnID string) string {
	return fmt.Sprintf("upi://pay?pa=%s&pn=%s&am=%.2f&tid=%s&cu=INR",
		url.QueryEscape(vpa), url.QueryEscape(payeeName), amount, url.QueryEscape(txnID))
}
