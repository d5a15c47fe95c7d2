package aggregator

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
)

// ErrAggregationFailed marks every error returned by Run.
var ErrAggregationFailed = errors.New("aggregation failed")

// Stage names the marketplace call a run failed in.
type Stage string

const (
	StageCategories Stage = "categories"
	StageSearch     Stage = "search"
	StageReport     Stage = "report"
)

// StageError wraps the cause of a failed run. It matches both
// ErrAggregationFailed and the underlying error.
type StageError struct {
	Stage    Stage
	Category string
	Err      error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("%s at %s: %v", ErrAggregationFailed, e.Stage, e.Err)
	}
	return fmt.Sprintf("%s at %s for category %q: %v", ErrAggregationFailed, e.Stage, e.Category, e.Err)
}

// Unwrap exposes the sentinel and the cause to errors.Is/As.
func (e *StageError) Unwrap() []error {
	return []error{ErrAggregationFailed, e.Err}
}

// CategoryAverage is the computed mean hourly price of one category.
type CategoryAverage struct {
	Category     string
	AveragePrice decimal.Decimal
	Teachers     int
}

// Float returns the average as a float64, the representation sent on the wire.
func (c CategoryAverage) Float() float64 {
	return c.AveragePrice.InexactFloat64()
}

// String renders the dashboard row, e.g. "Math: 15".
func (c CategoryAverage) String() string {
	return c.Category + ": " + strconv.FormatFloat(c.Float(), 'f', -1, 64)
}

// averagePrecision is the number of fractional digits kept by Average. It is
// well past float64 precision so Float rounds the exact mean to nearest.
const averagePrecision = 40

// Average returns total/count, or zero when count is zero.
func Average(total decimal.Decimal, count int) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return total.DivRound(decimal.NewFromInt(int64(count)), averagePrecision)
}
