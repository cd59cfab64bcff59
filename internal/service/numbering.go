package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Document number prefixes
const (
	PrefixInvoice       = "INV"
	PrefixPurchaseOrder = "PO"
	PrefixBill          = "BILL"
)

// documentNumber returns PREFIX-<unix millis>-<4 random uppercase chars>
func documentNumber(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), randomSuffix(4))
}

// generateSKU returns SKU-<8 random uppercase chars>
func generateSKU() string {
	return "SKU-" + randomSuffix(8)
}

func randomSuffix(n int) string {
	s := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return s[:n]
}
