package fitting

import (
	"math"
	"math/rand"

	dErrors "datareplicator/pkg/domain-errors"
)

// KDE is a Gaussian kernel density estimate over a numeric sample. Sampling
// from it draws a random source point and perturbs it with Gaussian noise
// scaled by the bandwidth.
type KDE struct {
	points    []float64
	bandwidth float64
}

// NewKDE fits a Gaussian KDE with Scott's-rule bandwidth. Fewer than two
// points or degenerate variance is a recoverable condition surfaced as an
// error so callers fall back to the parametric summary.
func NewKDE(points []float64) (*KDE, error) {
	if len(points) < 2 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "kde: need at least two points")
	}

	var sum float64
	for _, v := range points {
		sum += v
	}
	mean := sum / float64(len(points))

	var sq float64
	for _, v := range points {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(len(points)))
	if std == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "kde: degenerate variance")
	}

	owned := make([]float64, len(points))
	copy(owned, points)

	return &KDE{
		points:    owned,
		bandwidth: std * math.Pow(float64(len(points)), -0.2),
	}, nil
}

// Resample draws count values from the fitted density.
func (k *KDE) Resample(rng *rand.Rand, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		base := k.points[rng.Intn(len(k.points))]
		out[i] = base + rng.NormFloat64()*k.bandwidth
	}
	return out
}
