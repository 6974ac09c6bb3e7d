package validation

import (
	"math"
	"sort"

	"github.com/Alias1177/RevenueIntel/models"
)

// Data-quality checks run at the ingestion boundary. The analytical engines
// assume clean input and never call into this package.

// RequiredColumns lists every column a sales dataset must carry.
var RequiredColumns = []string{
	"order_id",
	"order_date",
	"product_name",
	"category",
	"region",
	"quantity",
	"unit_price",
	"revenue",
}

// revenueTolerance allows small rounding drift between revenue and
// quantity × unit price.
const revenueTolerance = 1.0

// iqrFactor is the classic 1.5×IQR outlier fence.
const iqrFactor = 1.5

type Report struct {
	MissingColumns  []string
	InvalidQuantity []models.Order
	InvalidPrice    []models.Order
	RevenueMismatch []models.Order
	Outliers        []models.Order
}

// Clean reports whether no check flagged anything.
func (r Report) Clean() bool {
	return len(r.MissingColumns) == 0 &&
		len(r.InvalidQuantity) == 0 &&
		len(r.InvalidPrice) == 0 &&
		len(r.RevenueMismatch) == 0
}

// Run produces the full data-quality report for a dataset and the headers it
// was loaded with.
func Run(headers []string, orders []models.Order) Report {
	report := Report{MissingColumns: MissingColumns(headers)}
	report.InvalidQuantity, report.InvalidPrice, report.RevenueMismatch = BusinessRuleIssues(orders)
	report.Outliers = RevenueOutliers(orders)
	return report
}

// MissingColumns returns the required columns absent from headers, in schema
// order.
func MissingColumns(headers []string) []string {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// BusinessRuleIssues flags rows violating the order invariants: positive
// quantity, positive unit price, and revenue within tolerance of
// quantity × unit price.
func BusinessRuleIssues(orders []models.Order) (invalidQuantity, invalidPrice, revenueMismatch []models.Order) {
	for _, o := range orders {
		if o.Quantity <= 0 {
			invalidQuantity = append(invalidQuantity, o)
		}
		if o.UnitPrice <= 0 {
			invalidPrice = append(invalidPrice, o)
		}
		expected := float64(o.Quantity) * o.UnitPrice
		if math.Abs(o.Revenue-expected) > revenueTolerance {
			revenueMismatch = append(revenueMismatch, o)
		}
	}
	return invalidQuantity, invalidPrice, revenueMismatch
}

// RevenueOutliers returns rows whose revenue falls outside the 1.5×IQR fences
// of the dataset.
func RevenueOutliers(orders []models.Order) []models.Order {
	if len(orders) < 4 {
		return nil
	}

	revenues := make([]float64, len(orders))
	for i, o := range orders {
		revenues[i] = o.Revenue
	}
	sort.Float64s(revenues)

	q1 := quantile(revenues, 0.25)
	q3 := quantile(revenues, 0.75)
	iqr := q3 - q1
	lower := q1 - iqrFactor*iqr
	upper := q3 + iqrFactor*iqr

	var outliers []models.Order
	for _, o := range orders {
		if o.Revenue < lower || o.Revenue > upper {
			outliers = append(outliers, o)
		}
	}
	return outliers
}

// quantile interpolates linearly between the closest ranks of an ascending
// slice.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
