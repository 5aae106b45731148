package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

// Curve CSV column names. Breakpoint columns encode the depth in their name:
// depth_<ft> with "m" prefixing negative values and "_" as the decimal point,
// e.g. depth_m4_0 (−4 ft), depth_0_5 (0.5 ft), depth_10_0 (10 ft).
const (
	colCurveID = "ddf_id"
	colComment = "comment"

	depthColPrefix = "depth_"
)

// LoadCurves reads a depth-damage curve CSV keyed by curve ID.
func LoadCurves(path string, logger *slog.Logger) (map[int]domain.Curve, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open curves %s: %w", path, err)
	}
	defer f.Close()

	curves, err := readCurves(f, logger.With("file", path))
	if err != nil {
		return nil, fmt.Errorf("read curves %s: %w", path, err)
	}
	return curves, nil
}

func readCurves(r io.Reader, logger *slog.Logger) (map[int]domain.Curve, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols[colCurveID]; !ok {
		return nil, fmt.Errorf("missing required column %q", colCurveID)
	}

	depths, err := parseDepthColumns(header)
	if err != nil {
		return nil, err
	}
	if len(depths) == 0 {
		return nil, fmt.Errorf("no %s* breakpoint columns", depthColPrefix)
	}

	curves := make(map[int]domain.Curve)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed curve row", "line", line, "error", err)
			continue
		}

		curve, err := parseCurve(record, cols, depths)
		if err != nil {
			logger.Warn("skipping malformed curve row", "line", line, "error", err)
			continue
		}
		if _, dup := curves[curve.ID]; dup {
			logger.Warn("duplicate curve id, keeping the first", "line", line, "ddf_id", curve.ID)
			continue
		}
		curves[curve.ID] = curve
	}
	return curves, nil
}

type depthColumn struct {
	index int
	depth float64
}

func parseDepthColumns(header []string) ([]depthColumn, error) {
	var out []depthColumn
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		if !strings.HasPrefix(name, depthColPrefix) {
			continue
		}
		depth, err := parseDepthName(strings.TrimPrefix(name, depthColPrefix))
		if err != nil {
			return nil, fmt.Errorf("depth column %q: %w", name, err)
		}
		out = append(out, depthColumn{index: i, depth: depth})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].depth < out[j].depth })
	return out, nil
}

// parseDepthName decodes "m4_0" → −4.0, "0_5" → 0.5, "10_0" → 10.0.
func parseDepthName(s string) (float64, error) {
	negative := strings.HasPrefix(s, "m")
	s = strings.TrimPrefix(s, "m")
	s = strings.ReplaceAll(s, "_", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if negative {
		v = -v
	}
	return v, nil
}

func parseCurve(record []string, cols map[string]int, depths []depthColumn) (domain.Curve, error) {
	id, err := strconv.Atoi(cell(record, cols, colCurveID))
	if err != nil {
		return domain.Curve{}, fmt.Errorf("ddf_id: %w", err)
	}

	curve := domain.Curve{
		ID:      id,
		Comment: cell(record, cols, colComment),
		Points:  make([]domain.CurvePoint, 0, len(depths)),
	}
	for _, dc := range depths {
		if dc.index >= len(record) {
			continue
		}
		raw := strings.TrimSpace(record[dc.index])
		if raw == "" {
			continue // breakpoint not defined for this curve
		}
		damage, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return domain.Curve{}, fmt.Errorf("breakpoint at %g ft: %w", dc.depth, err)
		}
		curve.Points = append(curve.Points, domain.CurvePoint{Depth: dc.depth, Damage: damage})
	}
	return curve, nil
}
