// Model-vs-observation statistics.

package coops

import (
	"math"
	"sort"
	"time"
)

// Stats summarizes agreement between aligned model and observation
// samples. With fewer than two valid pairs every statistic is NaN.
type Stats struct {
	RMSE float64
	Bias float64 // mean(model - obs)
	Corr float64
	N    int
}

// DefaultAlignTolerance pairs 6-minute gauge data with hourly model
// output.
const DefaultAlignTolerance = 30 * time.Minute

// Align pairs each model sample with the nearest observation within tol.
// Model samples with no observation close enough become NaN pairs, which
// Compare then ignores.
func Align(obs []Sample, times []time.Time, values []float64, tol time.Duration) (o, m []float64) {
	sorted := append([]Sample{}, obs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	o = make([]float64, len(times))
	m = make([]float64, len(times))
	for i, t := range times {
		m[i] = values[i]
		o[i] = math.NaN()

		idx := sort.Search(len(sorted), func(j int) bool {
			return !sorted[j].Time.Before(t)
		})

		best := time.Duration(math.MaxInt64)
		for _, j := range []int{idx - 1, idx} {
			if j < 0 || j >= len(sorted) {
				continue
			}
			d := absDuration(sorted[j].Time.Sub(t))
			if d < best {
				best = d
				if d <= tol {
					o[i] = sorted[j].Value
				}
			}
		}
	}
	return o, m
}

// Compare computes statistics over the jointly valid samples of two
// aligned series.
func Compare(obs, model []float64) Stats {
	var (
		n            int
		sumO, sumM   float64
		pairO, pairM []float64
	)
	for i := range obs {
		if i >= len(model) {
			break
		}
		if math.IsNaN(obs[i]) || math.IsNaN(model[i]) {
			continue
		}
		n++
		sumO += obs[i]
		sumM += model[i]
		pairO = append(pairO, obs[i])
		pairM = append(pairM, model[i])
	}

	if n < 2 {
		nan := math.NaN()
		return Stats{RMSE: nan, Bias: nan, Corr: nan, N: n}
	}

	meanO := sumO / float64(n)
	meanM := sumM / float64(n)

	var sqErr, cov, varO, varM float64
	for i := range pairO {
		d := pairM[i] - pairO[i]
		sqErr += d * d

		dO := pairO[i] - meanO
		dM := pairM[i] - meanM
		cov += dO * dM
		varO += dO * dO
		varM += dM * dM
	}

	stats := Stats{
		RMSE: math.Sqrt(sqErr / float64(n)),
		Bias: (sumM - sumO) / float64(n),
		N:    n,
	}

	if varO > 0 && varM > 0 {
		stats.Corr = cov / math.Sqrt(varO*varM)
	} else {
		stats.Corr = math.NaN()
	}
	return stats
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
