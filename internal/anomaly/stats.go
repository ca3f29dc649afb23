package anomaly

import (
	"fmt"
	"math"

	"github.com/wonny/happiness/internal/contracts"
)

// Mean returns Σv/n
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// PopulationStdDev returns sqrt(Σ(v-mean)²/n). The divisor is n, not n-1.
func PopulationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := Mean(values)
	var sumSq float64
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

// ComputeVolumeStats computes mean, population stddev and mean+sigma·stddev
func ComputeVolumeStats(volumes []float64, sigma float64) (contracts.VolumeStats, error) {
	if len(volumes) == 0 {
		return contracts.VolumeStats{}, fmt.Errorf("volume stats: %w", contracts.ErrEmptyWindow)
	}

	mean := Mean(volumes)
	stdDev := PopulationStdDev(volumes)

	return contracts.VolumeStats{
		Count:           len(volumes),
		Mean:            mean,
		StdDev:          stdDev,
		SigmaMultiplier: sigma,
		UpperThreshold:  mean + sigma*stdDev,
	}, nil
}

// Flags marks each point strictly above the upper threshold
func Flags(volumes []float64, stats contracts.VolumeStats) []bool {
	flags := make([]bool, len(volumes))
	for i, v := range volumes {
		flags[i] = v > stats.UpperThreshold
	}
	return flags
}

// VolumeView builds the chart view for a window: stats plus per-point flags
func VolumeView(window []contracts.SentimentSnapshot, sigma float64) (contracts.VolumeView, error) {
	volumes := contracts.Volumes(window)

	stats, err := ComputeVolumeStats(volumes, sigma)
	if err != nil {
		return contracts.VolumeView{}, err
	}

	flags := Flags(volumes, stats)
	points := make([]contracts.VolumePoint, len(window))
	for i, snap := range window {
		points[i] = contracts.VolumePoint{
			Timestamp: snap.Timestamp,
			Volume:    snap.TotalVolume,
			Anomalous: flags[i],
		}
	}

	return contracts.VolumeView{Stats: stats, Points: points}, nil
}
