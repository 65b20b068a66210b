package analysis

import (
	"errors"
	"math"

	"github.com/KaramelBytes/wbclimate-cli/internal/climate"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// ErrUndefinedMoment is returned when a standardized moment divides by a
// (numerically) zero variance.
var ErrUndefinedMoment = errors.New("moment undefined: variance is zero or lost to cancellation")

// Variance returns the sample variance (n-1) of the non-missing values.
func Variance(xs []float64) float64 {
	vals := present(xs)
	if len(vals) < 2 {
		return math.NaN()
	}
	if allEqual(vals) {
		return 0
	}
	return stat.Variance(vals, nil)
}

// Skewness returns the bias-uncorrected sample skewness m3/m2^1.5.
func Skewness(xs []float64) (float64, error) {
	vals, m2, err := centralSecond(xs)
	if err != nil {
		return math.NaN(), err
	}
	return stat.Moment(3, vals, nil) / math.Pow(m2, 1.5), nil
}

// Kurtosis returns the bias-uncorrected Fisher kurtosis m4/m2^2 - 3.
func Kurtosis(xs []float64) (float64, error) {
	vals, m2, err := centralSecond(xs)
	if err != nil {
		return math.NaN(), err
	}
	return stat.Moment(4, vals, nil)/(m2*m2) - 3, nil
}

// centralSecond returns the present values and their second central moment.
// Near-constant series lose all precision in m2; those are reported as
// undefined instead of producing noise.
func centralSecond(xs []float64) ([]float64, float64, error) {
	vals := present(xs)
	if len(vals) == 0 {
		return nil, 0, ErrUndefinedMoment
	}
	mean := stat.Mean(vals, nil)
	m2 := stat.Moment(2, vals, nil)
	eps := math.Nextafter(1, 2) - 1
	if allEqual(vals) || m2 <= (eps*mean)*(eps*mean) {
		log.WithFields(log.Fields{"n": len(vals), "mean": mean}).Debug("precision loss in moment calculation")
		return nil, 0, ErrUndefinedMoment
	}
	return vals, m2, nil
}

// Moments computes variance, skewness and kurtosis for every column of f.
func Moments(f *climate.Frame) StatisticTable {
	t := StatisticTable{Title: f.Name, Columns: append([]string(nil), f.Columns...)}
	variance := StatRow{Kind: KindVariance, Values: make([]float64, len(f.Columns))}
	skew := StatRow{Kind: KindSkewness, Values: make([]float64, len(f.Columns))}
	kurt := StatRow{Kind: KindKurtosis, Values: make([]float64, len(f.Columns))}
	for c, col := range f.Values {
		variance.Values[c] = round2(Variance(col))
		s, _ := Skewness(col)
		k, _ := Kurtosis(col)
		skew.Values[c] = round2(s)
		kurt.Values[c] = round2(k)
	}
	t.Rows = []StatRow{variance, skew, kurt}
	return t
}
