package models

// WatchOrderSequence names the sequence row used for watch-order claims.
const WatchOrderSequence = "watch_order"

// WatchSequence holds the highest value ever handed out for a named sequence.
// Claims lock this row, which serializes concurrent watched-toggles.
type WatchSequence struct {
	Name  string `gorm:"primaryKey;size:32"`
	Value int64  `gorm:"column:last_claimed;not null;default:0"`
}

func (WatchSequence) TableName() string {
	return "watch_sequences"
}
