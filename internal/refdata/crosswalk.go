// Package refdata loads the reference tables the analysis depends on:
// damage-function crosswalks, depth-damage curves, and typical-area factors.
// Reference data is read once per run; a missing file is fatal, a malformed
// row is skipped with a warning.
package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
	"github.com/fema-ffrd/inland-consequences/internal/matching"
)

// Crosswalk CSV column names. Tables may omit columns (the inventory
// crosswalk carries only occupancy, foundation, peril, and function ID);
// absent columns behave as wildcards.
const (
	colConstruction = "construction_type"
	colOccupancy    = "occupancy_type"
	colStoryMin     = "story_min"
	colStoryMax     = "story_max"
	colSqftMin      = "sqft_min"
	colSqftMax      = "sqft_max"
	colFoundation   = "foundation_type"
	colPeril        = "flood_peril_type"
	colFunctionID   = "damage_function_id"
)

// LoadCrosswalk reads a crosswalk CSV into an indexed rule table.
func LoadCrosswalk(path string, cat domain.CostCategory, logger *slog.Logger) (*matching.Crosswalk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open crosswalk %s: %w", path, err)
	}
	defer f.Close()

	rules, err := readCrosswalk(f, logger.With("file", path))
	if err != nil {
		return nil, fmt.Errorf("read crosswalk %s: %w", path, err)
	}
	return matching.NewCrosswalk(cat, rules), nil
}

func readCrosswalk(r io.Reader, logger *slog.Logger) ([]matching.Rule, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := indexColumns(header)
	if _, ok := cols[colFunctionID]; !ok {
		return nil, fmt.Errorf("missing required column %q", colFunctionID)
	}
	if _, ok := cols[colOccupancy]; !ok {
		return nil, fmt.Errorf("missing required column %q", colOccupancy)
	}

	var rules []matching.Rule
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed crosswalk row", "line", line, "error", err)
			continue
		}

		rule, err := parseRule(record, cols)
		if err != nil {
			logger.Warn("skipping malformed crosswalk row", "line", line, "error", err)
			continue
		}
		rules = append(rules, rule)
	}
	return rules, nil
}

func parseRule(record []string, cols map[string]int) (matching.Rule, error) {
	id, err := strconv.Atoi(cell(record, cols, colFunctionID))
	if err != nil {
		return matching.Rule{}, fmt.Errorf("damage_function_id: %w", err)
	}

	stories, err := parseRange(cell(record, cols, colStoryMin), cell(record, cols, colStoryMax))
	if err != nil {
		return matching.Rule{}, fmt.Errorf("story range: %w", err)
	}
	area, err := parseRange(cell(record, cols, colSqftMin), cell(record, cols, colSqftMax))
	if err != nil {
		return matching.Rule{}, fmt.Errorf("sqft range: %w", err)
	}

	return matching.Rule{
		DamageFunctionID: id,
		OccupancyType:    matching.Exact(cell(record, cols, colOccupancy)),
		ConstructionType: matching.Exact(cell(record, cols, colConstruction)),
		FoundationType:   matching.Exact(cell(record, cols, colFoundation)),
		FloodPerilType:   matching.Exact(cell(record, cols, colPeril)),
		Stories:          stories,
		Area:             area,
	}, nil
}

// parseRange builds an inclusive range from optional min/max cells.
func parseRange(minCell, maxCell string) (matching.Range, error) {
	var r matching.Range
	if minCell != "" {
		v, err := strconv.ParseFloat(minCell, 64)
		if err != nil {
			return r, err
		}
		r.Min = &v
	}
	if maxCell != "" {
		v, err := strconv.ParseFloat(maxCell, 64)
		if err != nil {
			return r, err
		}
		r.Max = &v
	}
	return r, nil
}

// indexColumns maps normalized header names to positions.
func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return cols
}

// cell returns the trimmed value of a named column, or "" when the column is
// absent from this table.
func cell(record []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
