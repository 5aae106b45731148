// Package hazard loads per-building flood hazard tables and enforces the
// coverage contract: every return period must carry exactly one row per
// building in the inventory.
package hazard

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

// Hazard CSV column names. depth_std, velocity, and duration are optional.
const (
	colBuildingID   = "building_id"
	colReturnPeriod = "return_period"
	colDepthMean    = "depth_mean"
	colDepthStd     = "depth_std"
	colVelocity     = "velocity"
	colDuration     = "duration"
)

// Options tune hazard loading.
type Options struct {
	// DefaultDepthStd substitutes for a missing depth_std column or cell.
	// Negative means no default: a table without per-row uncertainty is
	// then unusable and loading fails.
	DefaultDepthStd float64
}

// Load reads a hazard CSV.
func Load(path string, opts Options, logger *slog.Logger) ([]domain.HazardRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hazard %s: %w", path, err)
	}
	defer f.Close()

	records, err := Read(f, opts, logger.With("file", path))
	if err != nil {
		return nil, fmt.Errorf("read hazard %s: %w", path, err)
	}
	return records, nil
}

// Read parses hazard rows from r. Unparseable depth cells become NaN so the
// hazard validation rules can report them; structural problems (missing
// columns, unresolvable uncertainty) are fatal.
func Read(r io.Reader, opts Options, logger *slog.Logger) ([]domain.HazardRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{colBuildingID, colReturnPeriod, colDepthMean} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}
	if _, ok := cols[colDepthStd]; !ok && opts.DefaultDepthStd < 0 {
		return nil, fmt.Errorf("no %s column and no default depth uncertainty configured", colDepthStd)
	}

	var out []domain.HazardRecord
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed hazard row", "line", line, "error", err)
			continue
		}

		rec, err := parseRecord(record, cols, opts)
		if err != nil {
			logger.Warn("skipping malformed hazard row", "line", line, "error", err)
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func parseRecord(record []string, cols map[string]int, opts Options) (domain.HazardRecord, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	id := get(colBuildingID)
	if id == "" {
		return domain.HazardRecord{}, fmt.Errorf("empty %s", colBuildingID)
	}
	rp, err := strconv.Atoi(get(colReturnPeriod))
	if err != nil {
		return domain.HazardRecord{}, fmt.Errorf("%s: %w", colReturnPeriod, err)
	}

	rec := domain.HazardRecord{
		BuildingID:   id,
		ReturnPeriod: rp,
		DepthMean:    floatOrNaN(get(colDepthMean)),
		Velocity:     floatOrZero(get(colVelocity)),
		Duration:     floatOrZero(get(colDuration)),
	}

	if raw := get(colDepthStd); raw != "" {
		rec.DepthStdDev = floatOrNaN(raw)
	} else {
		rec.DepthStdDev = opts.DefaultDepthStd
	}
	return rec, nil
}

// floatOrNaN keeps bad depth cells visible to validation instead of
// silently zeroing them.
func floatOrNaN(raw string) float64 {
	if raw == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

func floatOrZero(raw string) float64 {
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return v
}

// VerifyCoverage enforces the row-count contract: one hazard row per
// building per return period. Any mismatch aborts the run, because a
// silently shorter hazard table would understate aggregate losses.
func VerifyCoverage(records []domain.HazardRecord, buildings []domain.Building) error {
	perPeriod := make(map[int]map[string]int)
	for _, h := range records {
		if perPeriod[h.ReturnPeriod] == nil {
			perPeriod[h.ReturnPeriod] = make(map[string]int)
		}
		perPeriod[h.ReturnPeriod][h.BuildingID]++
	}
	if len(perPeriod) == 0 {
		return fmt.Errorf("hazard table is empty")
	}

	for _, rp := range ReturnPeriods(records) {
		rows := perPeriod[rp]
		if len(rows) != len(buildings) {
			return fmt.Errorf("return period %d has %d hazard rows for %d buildings", rp, len(rows), len(buildings))
		}
		for _, b := range buildings {
			n := rows[b.ID]
			if n == 0 {
				return fmt.Errorf("return period %d missing hazard row for building %s", rp, b.ID)
			}
			if n > 1 {
				return fmt.Errorf("return period %d has %d hazard rows for building %s", rp, n, b.ID)
			}
		}
	}
	return nil
}

// ReturnPeriods lists the distinct return periods in ascending order.
func ReturnPeriods(records []domain.HazardRecord) []int {
	seen := make(map[int]bool)
	var out []int
	for _, h := range records {
		if !seen[h.ReturnPeriod] {
			seen[h.ReturnPeriod] = true
			out = append(out, h.ReturnPeriod)
		}
	}
	sort.Ints(out)
	return out
}
