// Package validation wires custom rules into gin's validator engine.
package validation

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"

	"medshop/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Stock adjustment directions. add/subtract are accepted as aliases.
const (
	StockIncrease = "increase"
	StockDecrease = "decrease"
)

var stockDirections = map[string]string{
	"increase": StockIncrease,
	"add":      StockIncrease,
	"decrease": StockDecrease,
	"subtract": StockDecrease,
}

var customerTypes = []string{model.CustomerTypeRetail, model.CustomerTypeWholesale, model.CustomerTypeInsurance}
var recordStatuses = []string{model.StatusActive, model.StatusInactive}

var registerOnce sync.Once

// Register installs the custom type func and tags on gin's validator. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		registerOn(v)
	})
}

func registerOn(v *validator.Validate) {
	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Let numeric tags (gte, gt) run against decimal fields
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("invoice_status", oneOfFunc(model.InvoiceStatuses))
	_ = v.RegisterValidation("po_status", oneOfFunc(model.PurchaseOrderStatuses))
	_ = v.RegisterValidation("bill_status", oneOfFunc(model.BillStatuses))
	_ = v.RegisterValidation("customer_type", oneOfFunc(customerTypes))
	_ = v.RegisterValidation("record_status", oneOfFunc(recordStatuses))
	_ = v.RegisterValidation("stock_direction", func(fl validator.FieldLevel) bool {
		_, ok := NormalizeDirection(fl.Field().String())
		return ok
	})
}

func oneOfFunc(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return slices.Contains(allowed, fl.Field().String())
	}
}

// NormalizeDirection maps increase/add and decrease/subtract onto the canonical direction
func NormalizeDirection(s string) (string, bool) {
	d, ok := stockDirections[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

// IsInvoiceStatus reports whether s is a storable invoice status
func IsInvoiceStatus(s string) bool { return slices.Contains(model.InvoiceStatuses, s) }

func IsPurchaseOrderStatus(s string) bool { return slices.Contains(model.PurchaseOrderStatuses, s) }

func IsBillStatus(s string) bool { return slices.Contains(model.BillStatuses, s) }

func IsCustomerType(s string) bool { return slices.Contains(customerTypes, s) }

func IsRecordStatus(s string) bool { return slices.Contains(recordStatuses, s) }

// Describe turns binding errors into a short client-facing message
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request payload: " + err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return field + " must contain at least " + fe.Param() + " item(s)"
		}
		return field + " must be at least " + fe.Param()
	case "gt":
		return field + " must be greater than " + fe.Param()
	case "gte":
		return field + " must be greater than or equal to " + fe.Param()
	case "email":
		return field + " must be a valid email"
	case "invoice_status", "po_status", "bill_status", "customer_type", "record_status", "stock_direction", "oneof":
		return field + " has an invalid value"
	}
	return field + " is invalid"
}
