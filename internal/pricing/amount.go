package pricing

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Amount is a money value that may be unresolved.
// The zero value is unresolved and encodes to JSON null.
type Amount struct {
	value decimal.Decimal
	known bool
}

// Known wraps a resolved value
func Known(v decimal.Decimal) Amount {
	return Amount{value: v, known: true}
}

// KnownInt wraps a resolved whole-unit value
func KnownInt(v int64) Amount {
	return Known(decimal.NewFromInt(v))
}

// Unknown returns an unresolved amount
func Unknown() Amount {
	return Amount{}
}

// Get returns the value and whether it is resolved
func (a Amount) Get() (decimal.Decimal, bool) {
	return a.value, a.known
}

func (a Amount) IsKnown() bool {
	return a.known
}

// Add sums two amounts; unresolved on either side gives unresolved
func (a Amount) Add(b Amount) Amount {
	if !a.known || !b.known {
		return Unknown()
	}
	return Known(a.value.Add(b.value))
}

// Round rounds half away from zero to whole currency units
func (a Amount) Round() Amount {
	if !a.known {
		return a
	}
	return Known(a.value.Round(0))
}

// IsPositive reports a resolved value greater than zero
func (a Amount) IsPositive() bool {
	return a.known && a.value.IsPositive()
}

// Equal compares resolution and value
func (a Amount) Equal(b Amount) bool {
	if a.known != b.known {
		return false
	}
	return !a.known || a.value.Equal(b.value)
}

// IntPart returns the whole-unit value; ok is false when unresolved
func (a Amount) IntPart() (int64, bool) {
	if !a.known {
		return 0, false
	}
	return a.value.IntPart(), true
}

func (a Amount) String() string {
	if !a.known {
		return "unresolved"
	}
	return a.value.String()
}

func (a Amount) MarshalJSON() ([]byte, error) {
	if !a.known {
		return []byte("null"), nil
	}
	return a.value.MarshalJSON()
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = Unknown()
		return nil
	}
	var v decimal.Decimal
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*a = Known(v)
	return nil
}
