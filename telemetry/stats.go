package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one time window.
type WindowStats struct {
	WindowStart float64 `csv:"-"`
	WindowEnd   float64 `csv:"window_end"`

	// Population counts at window end
	Creatures int `csv:"creatures"`
	Morsels   int `csv:"morsels"`

	// Lifecycle events during the window
	Births int `csv:"births"`
	Deaths int `csv:"deaths"`

	// Stimulus traffic
	Sounds       int `csv:"sounds"`
	Disturbances int `csv:"disturbances"`
	Feeds        int `csv:"feeds"`

	// Hunting outcomes
	Catches   int     `csv:"catches"`
	Misses    int     `csv:"misses"`
	Escapes   int     `csv:"escapes"`
	CatchRate float64 `csv:"catch_rate"`

	// Food turnover
	MorselsEaten     int `csv:"morsels_eaten"`
	MorselsDissolved int `csv:"morsels_dissolved"`

	// Energy distribution (sampled at window end)
	EnergyMean float64 `csv:"energy_mean"`
	EnergyStd  float64 `csv:"energy_std"`
	EnergyP10  float64 `csv:"energy_p10"`
	EnergyP50  float64 `csv:"energy_p50"`
	EnergyP90  float64 `csv:"energy_p90"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeEnergyStats calculates mean, standard deviation, and
// percentiles from energy values.
func ComputeEnergyStats(values []float64) (mean, std, p10, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	if n > 1 {
		std = stat.StdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p10 = Percentile(sorted, 0.10)
	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p10, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Float64("window_start", s.WindowStart),
		slog.Float64("window_end", s.WindowEnd),
		slog.Int("creatures", s.Creatures),
		slog.Int("morsels", s.Morsels),
		slog.Int("births", s.Births),
		slog.Int("deaths", s.Deaths),
		slog.Int("sounds", s.Sounds),
		slog.Int("disturbances", s.Disturbances),
		slog.Int("feeds", s.Feeds),
		slog.Int("catches", s.Catches),
		slog.Int("misses", s.Misses),
		slog.Int("escapes", s.Escapes),
		slog.Float64("catch_rate", s.CatchRate),
		slog.Int("morsels_eaten", s.MorselsEaten),
		slog.Int("morsels_dissolved", s.MorselsDissolved),
		slog.Float64("energy_mean", s.EnergyMean),
		slog.Float64("energy_std", s.EnergyStd),
		slog.Float64("energy_p10", s.EnergyP10),
		slog.Float64("energy_p50", s.EnergyP50),
		slog.Float64("energy_p90", s.EnergyP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEnd,
		"creatures", s.Creatures,
		"morsels", s.Morsels,
		"births", s.Births,
		"deaths", s.Deaths,
		"sounds", s.Sounds,
		"disturbances", s.Disturbances,
		"feeds", s.Feeds,
		"catches", s.Catches,
		"misses", s.Misses,
		"escapes", s.Escapes,
		"catch_rate", s.CatchRate,
		"morsels_eaten", s.MorselsEaten,
		"morsels_dissolved", s.MorselsDissolved,
		"energy_mean", s.EnergyMean,
		"energy_std", s.EnergyStd,
		"energy_p10", s.EnergyP10,
		"energy_p50", s.EnergyP50,
		"energy_p90", s.EnergyP90,
	)
}
