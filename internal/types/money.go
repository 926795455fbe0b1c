// README: Common money value object used across modules.
package types

import (
	"fmt"
	"math"
)

// Money is an integer amount of cents. Settlement math stays in integers so
// a driver share plus a commission share always equals the fare exactly.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

const DefaultCurrency = "USD"

func Cents(amount int64) Money {
	return Money{Amount: amount, Currency: DefaultCurrency}
}

// FromDollars converts a dollar amount to Money, rounding to the nearest cent.
func FromDollars(d float64) Money {
	return Cents(int64(math.Round(d * 100)))
}

func (m Money) Dollars() float64 { return float64(m.Amount) / 100 }

func (m Money) Sub(o Money) Money {
	return Money{Amount: m.Amount - o.Amount, Currency: m.Currency}
}

func (m Money) Add(o Money) Money {
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}
}

func (m Money) IsZero() bool { return m.Amount == 0 }

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Dollars(), m.Currency)
}
