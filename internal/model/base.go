package model

import "time"

type BaseModel struct {
	ID        string    `db:"id" json:"id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DayKeyLayout is the wire/storage format of a simulated day.
const DayKeyLayout = "2006-01-02"

// DayKeyOf normalizes a timestamp to its UTC-midnight day key.
func DayKeyOf(t time.Time) string {
	return t.UTC().Format(DayKeyLayout)
}

// MonthOfDayKey returns the calendar month of a day key, 0 when unparsable.
func MonthOfDayKey(dayKey string) int {
	t, err := time.Parse(DayKeyLayout, dayKey)
	if err != nil {
		return 0
	}
	return int(t.Month())
}
