package model

// Sequence counter names, one independent counter per displayed entity.
const (
	SeqOrder           = "order"
	SeqProductionOrder = "production_order"
	SeqDelivery        = "delivery"
)

// SequenceCounter backs the per-entity display sequences. The row is locked
// and incremented inside the transaction that creates the numbered record, so
// numbers are unique and gapless only up to rollbacks, and never reused.
type SequenceCounter struct {
	Name  string `gorm:"type:varchar(50);primaryKey" json:"name"`
	Value int64  `gorm:"type:bigint;not null;default:0" json:"value"`
}
