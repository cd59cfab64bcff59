package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDocumentNumber_Format(t *testing.T) {
	now := time.UnixMilli(1700000000123)

	for _, prefix := range []string{PrefixInvoice, PrefixPurchaseOrder, PrefixBill} {
		n := documentNumber(prefix, now)
		assert.Regexp(t, regexp.MustCompile(`^`+prefix+`-1700000000123-[0-9A-F]{4}$`), n)
	}
}

func TestGenerateSKU_Format(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		sku := generateSKU()
		assert.Regexp(t, `^SKU-[0-9A-F]{8}$`, sku)
		seen[sku] = true
	}
	assert.Greater(t, len(seen), 45)
}
