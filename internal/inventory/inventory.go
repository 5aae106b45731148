// Package inventory loads building inventories into the normalized domain
// form. Each supported provider contributes an alias layer translating its
// column names; cell-level problems degrade to unknown attributes with a
// warning, while a missing required column is fatal.
package inventory

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

// Provider identifies the inventory source whose column vocabulary the
// loader should translate.
type Provider string

const (
	// ProviderGeneric expects the canonical column names unchanged.
	ProviderGeneric Provider = "generic"
	// ProviderNSI translates USACE National Structure Inventory exports.
	ProviderNSI Provider = "nsi"
	// ProviderMilliman translates the Milliman exposure export vocabulary.
	ProviderMilliman Provider = "milliman"
)

// ParseProvider validates a provider name from configuration.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(strings.TrimSpace(s))) {
	case ProviderGeneric, "":
		return ProviderGeneric, nil
	case ProviderNSI:
		return ProviderNSI, nil
	case ProviderMilliman:
		return ProviderMilliman, nil
	}
	return "", fmt.Errorf("unknown inventory provider %q", s)
}

// Canonical column names.
const (
	colID           = "id"
	colOccupancy    = "occupancy_type"
	colConstruction = "construction_type"
	colFoundation   = "foundation_type"
	colStories      = "num_stories"
	colArea         = "area_sqft"
	colStructure    = "structure_cost"
	colContents     = "content_cost"
	colInventory    = "inventory_cost"
	colFFH          = "first_floor_height"
	colFFHStd       = "ffh_std"
	colPeril        = "flood_peril_type"
)

// aliasSet maps canonical names to source column names in priority order.
// The canonical name itself is always accepted.
type aliasSet map[string][]string

var providerAliases = map[Provider]aliasSet{
	ProviderGeneric: {},
	ProviderNSI: {
		colID:           {"fd_id", "target_fid"},
		colOccupancy:    {"occtype"},
		colConstruction: {"bldgtype"},
		colFoundation:   {"found_type", "fndtype"},
		colStories:      {"num_story"},
		colArea:         {"sqft"},
		colStructure:    {"val_struct"},
		colContents:     {"val_cont"},
		colFFH:          {"found_ht"},
	},
	ProviderMilliman: {
		colID:           {"location"},
		colOccupancy:    {"occ"},
		colConstruction: {"constr_code"},
		colFoundation:   {"foundation_code"},
		colStories:      {"num_stories"},
		colArea:         {"floor_area"},
		colStructure:    {"bldg_value"},
		colContents:     {"cnt_value"},
		colInventory:    {"inv_value"},
		colFFH:          {"first_floor_elev"},
	},
}

// millimanConstruction decodes the Milliman numeric construction class.
var millimanConstruction = map[int]string{
	1: "W",  // wood frame
	2: "M",  // masonry
	3: "S",  // steel
	4: "C",  // concrete
	5: "MH", // manufactured housing
}

// Options tune inventory normalization.
type Options struct {
	Provider Provider
	// DefaultPeril is assigned when the source has no peril column or an
	// empty cell. Empty leaves the attribute unknown.
	DefaultPeril string
	// DefaultFFHStd is the first-floor-height uncertainty applied when the
	// source does not carry one.
	DefaultFFHStd float64
}

// Load reads and normalizes a building inventory CSV.
func Load(path string, opts Options, logger *slog.Logger) ([]domain.Building, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open inventory %s: %w", path, err)
	}
	defer f.Close()

	buildings, err := Read(f, opts, logger.With("file", path))
	if err != nil {
		return nil, fmt.Errorf("read inventory %s: %w", path, err)
	}
	return buildings, nil
}

// Read normalizes inventory rows from r. Required columns after aliasing are
// id, occupancy_type, and structure_cost.
func Read(r io.Reader, opts Options, logger *slog.Logger) ([]domain.Building, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := resolveColumns(header, opts.Provider)
	if err != nil {
		return nil, err
	}

	var out []domain.Building
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Warn("skipping malformed inventory row", "line", line, "error", err)
			continue
		}

		b := parseBuilding(record, cols, opts, logger, line)
		if b.ID == "" {
			logger.Warn("skipping inventory row without an id", "line", line)
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// resolveColumns maps canonical names to positions using the provider's
// aliases. Missing required columns are fatal; optional columns resolve to
// -1 and read as unknown.
func resolveColumns(header []string, provider Provider) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.ToLower(strings.TrimSpace(name))] = i
	}

	aliases := providerAliases[provider]
	if aliases == nil {
		aliases = aliasSet{}
	}

	resolve := func(canonical string) int {
		if i, ok := positions[canonical]; ok {
			return i
		}
		for _, alias := range aliases[canonical] {
			if i, ok := positions[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := make(map[string]int)
	for _, name := range []string{
		colID, colOccupancy, colConstruction, colFoundation, colStories,
		colArea, colStructure, colContents, colInventory, colFFH, colFFHStd, colPeril,
	} {
		cols[name] = resolve(name)
	}

	for _, required := range []string{colID, colOccupancy, colStructure} {
		if cols[required] < 0 {
			return nil, fmt.Errorf("required inventory column %q not found for provider %q", required, provider)
		}
	}
	return cols, nil
}

func parseBuilding(record []string, cols map[string]int, opts Options, logger *slog.Logger, line int) domain.Building {
	get := func(name string) string {
		i := cols[name]
		if i < 0 || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}
	getFloat := func(name string) float64 {
		raw := get(name)
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			logger.Warn("unparseable numeric cell, treating as unknown", "line", line, "column", name, "value", raw)
			return 0
		}
		return v
	}

	b := domain.Building{
		ID:               get(colID),
		OccupancyType:    trimOccupancy(get(colOccupancy)),
		ConstructionType: normalizeConstruction(get(colConstruction), opts.Provider),
		FoundationType:   parseFoundation(get(colFoundation)),
		NumStories:       int(getFloat(colStories)),
		Area:             getFloat(colArea),
		StructureCost:    getFloat(colStructure),
		ContentCost:      getFloat(colContents),
		InventoryCost:    getFloat(colInventory),
		FirstFloorHeight: getFloat(colFFH),
		FFHStdDev:        getFloat(colFFHStd),
		FloodPerilType:   get(colPeril),
	}

	if b.FloodPerilType == "" {
		b.FloodPerilType = opts.DefaultPeril
	}
	if cols[colFFHStd] < 0 || get(colFFHStd) == "" {
		b.FFHStdDev = opts.DefaultFFHStd
	}
	return b
}

// trimOccupancy strips NSI occupancy suffixes: "RES1-1SNB" → "RES1".
func trimOccupancy(occ string) string {
	occ = strings.ToUpper(strings.TrimSpace(occ))
	if i := strings.IndexByte(occ, '-'); i >= 0 {
		return occ[:i]
	}
	return occ
}

// parseFoundation accepts both the single-letter and the numeric NSI
// foundation encodings. Anything else is unknown.
func parseFoundation(raw string) domain.Foundation {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if raw == "" {
		return ""
	}
	if code, err := strconv.Atoi(raw); err == nil {
		f, ok := domain.FoundationFromNSICode(code)
		if !ok {
			return ""
		}
		return f
	}
	f := domain.Foundation(raw[:1])
	if f.CrosswalkCode() == "" {
		return ""
	}
	return f
}

// normalizeConstruction decodes provider-specific construction vocabularies
// to the letter codes the crosswalks use.
func normalizeConstruction(raw string, provider Provider) string {
	raw = strings.ToUpper(strings.TrimSpace(raw))
	if provider != ProviderMilliman || raw == "" {
		return raw
	}
	if code, err := strconv.Atoi(raw); err == nil {
		return millimanConstruction[code]
	}
	return raw
}
