// Package sequence formats entity sequence numbers for display. The codes are
// purely presentational; ordering and identity always use the raw number.
package sequence

import "fmt"

const padWidth = 6

// Entity prefixes.
const (
	OrderPrefix           = "ORD"
	ProductionOrderPrefix = "PRO"
	DeliveryPrefix        = "DEL"
)

// Code renders a zero-padded display code, e.g. Code("ORD", 123) = "ORD-000123".
func Code(prefix string, seq int64) string {
	return fmt.Sprintf("%s-%0*d", prefix, padWidth, seq)
}
