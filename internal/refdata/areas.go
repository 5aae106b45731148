package refdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
)

// DefaultTypicalArea gives the expected square footage per occupancy code,
// used by the unusual-area validation rule. Values follow Hazus occupancy
// class conventions; a deployment can override them with typical_areas.csv.
func DefaultTypicalArea() map[string]float64 {
	return map[string]float64{
		"RES1":  1800,
		"RES2":  1100,
		"RES3A": 3000,
		"RES3B": 5000,
		"RES3C": 8000,
		"RES3D": 12000,
		"RES3E": 40000,
		"RES3F": 60000,
		"COM1":  110000,
		"COM2":  30000,
		"COM3":  10000,
		"COM4":  80000,
		"COM6":  55000,
		"COM8":  5000,
		"IND1":  30000,
		"IND2":  30000,
		"AGR1":  30000,
	}
}

// LoadTypicalArea reads an occupancy_type,typical_sqft CSV. Malformed rows
// are skipped with a warning.
func LoadTypicalArea(path string, logger *slog.Logger) (map[string]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open typical areas %s: %w", path, err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read typical areas %s: %w", path, err)
	}
	cols := indexColumns(header)

	out := make(map[string]float64)
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed typical-area row", "file", path, "line", line, "error", err)
			continue
		}
		occ := cell(record, cols, colOccupancy)
		sqft, perr := strconv.ParseFloat(cell(record, cols, "typical_sqft"), 64)
		if occ == "" || perr != nil || sqft <= 0 {
			logger.Warn("skipping malformed typical-area row", "file", path, "line", line)
			continue
		}
		out[occ] = sqft
	}
	return out, nil
}
