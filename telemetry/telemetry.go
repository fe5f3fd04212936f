// Package telemetry records per-substep scalar statistics (mean/stddev
// pressure, max velocity) and exports them as CSV, the same role the
// teacher's telemetry.OutputManager plays
// (_examples/pthm-soup/telemetry/output.go): open-once-append-many CSV
// files via gocarina/gocsv, header written on the first record only.
// Mean/stddev pressure is reduced across workers the way the teacher's
// simulation.CalculatePressureStats (simulation/density_pressure.go)
// reduces per-worker partial sums with atomic adds, except the teacher
// applies that pattern to per-particle forces and this package applies it
// to a flat per-substep scalar array.
package telemetry

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/stat"

	"mixfluid/vec3"
	"mixfluid/workers"
)

// Record is one substep's scalar summary, the CSV row shape.
type Record struct {
	Step         int     `csv:"step"`
	MeanPressure float64 `csv:"mean_pressure"`
	StdPressure  float64 `csv:"std_pressure"`
	MaxVel       float64 `csv:"max_vel"`
	MeanRhoBar   float64 `csv:"mean_rho_bar"`
}

// Summarize computes Record fields from the current pressure, velocity,
// and interpolated-density arrays, the telemetry inputs named in spec.md
// §8's testable properties (max ‖vel‖, mean density bands).
func Summarize(step int, pressure []float64, vel []vec3.V, rhoBar []float64) Record {
	mean, std := parallelMeanStdDev(pressure)
	maxVel := 0.0
	for _, v := range vel {
		if l := v.Length(); l > maxVel {
			maxVel = l
		}
	}
	meanRho := stat.Mean(rhoBar, nil)
	return Record{
		Step:         step,
		MeanPressure: mean,
		StdPressure:  std,
		MaxVel:       maxVel,
		MeanRhoBar:   meanRho,
	}
}

// parallelMeanStdDev reduces xs to a mean and sample standard deviation in
// two workers.For passes, each goroutine folding its slice of xs into a
// shared accumulator via workers.AddFloat64. Small arrays fall through to
// workers.For's own inline path, so this costs nothing extra below the
// parallel-batch threshold.
func parallelMeanStdDev(xs []float64) (mean, std float64) {
	n := len(xs)
	if n == 0 {
		return 0, 0
	}

	var sum float64
	workers.For(0, n, func(i int) {
		workers.AddFloat64(&sum, xs[i])
	})
	mean = sum / float64(n)
	if n < 2 {
		return mean, 0
	}

	var sumSq float64
	workers.For(0, n, func(i int) {
		d := xs[i] - mean
		workers.AddFloat64(&sumSq, d*d)
	})
	return mean, math.Sqrt(sumSq / float64(n-1))
}

// Writer appends Records to telemetry.csv under Dir, writing the CSV
// header only once, per the teacher's OutputManager.WriteTelemetry.
type Writer struct {
	dir            string
	file           *os.File
	headerWritten  bool
}

// NewWriter creates dir if needed and opens telemetry.csv for append-only
// writing. Returns a nil *Writer (and no error) if dir is empty, so
// callers can unconditionally call Write without a nil check at the
// call site, matching the teacher's "om == nil" no-op convention.
func NewWriter(dir string) (*Writer, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating telemetry directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}
	return &Writer{dir: dir, file: f}, nil
}

// Write appends one Record, header-on-first-call.
func (w *Writer) Write(r Record) error {
	if w == nil {
		return nil
	}
	records := []Record{r}
	if !w.headerWritten {
		if err := gocsv.Marshal(records, w.file); err != nil {
			return fmt.Errorf("writing telemetry record: %w", err)
		}
		w.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, w.file); err != nil {
		return fmt.Errorf("writing telemetry record: %w", err)
	}
	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	return w.file.Close()
}
