package refdata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
	"github.com/fema-ffrd/inland-consequences/internal/matching"
)

// Reference file names within the reference-data directory.
const (
	fileCrosswalkStructure = "df_lookup_structures.csv"
	fileCrosswalkContents  = "df_lookup_contents.csv"
	fileCrosswalkInventory = "df_lookup_inventory.csv"
	fileCurvesStructure    = "ddf_structure.csv"
	fileCurvesContents     = "ddf_contents.csv"
	fileCurvesInventory    = "ddf_inventory.csv"
	fileTypicalAreas       = "typical_areas.csv"
)

// CategoryTables pairs one cost category's crosswalk with its curve set.
type CategoryTables struct {
	Crosswalk *matching.Crosswalk
	Curves    map[int]domain.Curve
}

// Store holds all reference tables for a run. The structure category is
// mandatory; contents and inventory are loaded when both their files exist.
type Store struct {
	categories  map[domain.CostCategory]CategoryTables
	TypicalArea map[string]float64
}

// Open loads reference tables from dir. A missing structure table is fatal;
// missing optional category files only disable that category.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	s := &Store{categories: make(map[domain.CostCategory]CategoryTables)}

	specs := []struct {
		cat       domain.CostCategory
		crosswalk string
		curves    string
		required  bool
	}{
		{domain.CategoryStructure, fileCrosswalkStructure, fileCurvesStructure, true},
		{domain.CategoryContents, fileCrosswalkContents, fileCurvesContents, false},
		{domain.CategoryInventory, fileCrosswalkInventory, fileCurvesInventory, false},
	}

	for _, spec := range specs {
		cwPath := filepath.Join(dir, spec.crosswalk)
		curvePath := filepath.Join(dir, spec.curves)

		if !spec.required && (missing(cwPath) || missing(curvePath)) {
			logger.Info("category reference tables not present, skipping", "category", string(spec.cat))
			continue
		}

		cw, err := LoadCrosswalk(cwPath, spec.cat, logger)
		if err != nil {
			return nil, err
		}
		curves, err := LoadCurves(curvePath, logger)
		if err != nil {
			return nil, err
		}
		if err := checkCurveCoverage(cw, curves); err != nil {
			return nil, fmt.Errorf("category %s: %w", spec.cat, err)
		}
		s.categories[spec.cat] = CategoryTables{Crosswalk: cw, Curves: curves}

		logger.Info("reference tables loaded",
			"category", string(spec.cat), "rules", cw.Len(), "curves", len(curves))
	}

	areaPath := filepath.Join(dir, fileTypicalAreas)
	if missing(areaPath) {
		s.TypicalArea = DefaultTypicalArea()
	} else {
		areas, err := LoadTypicalArea(areaPath, logger)
		if err != nil {
			return nil, err
		}
		s.TypicalArea = areas
	}

	return s, nil
}

// Category returns the tables for one cost category.
func (s *Store) Category(cat domain.CostCategory) (CategoryTables, bool) {
	t, ok := s.categories[cat]
	return t, ok
}

// Categories lists the loaded cost categories in a fixed order.
func (s *Store) Categories() []domain.CostCategory {
	all := []domain.CostCategory{domain.CategoryStructure, domain.CategoryContents, domain.CategoryInventory}
	out := make([]domain.CostCategory, 0, len(s.categories))
	for _, cat := range all {
		if _, ok := s.categories[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}

// checkCurveCoverage verifies every damage function the crosswalk references
// has a curve. A dangling reference would silently zero losses, so it is
// fatal at load time.
func checkCurveCoverage(cw *matching.Crosswalk, curves map[int]domain.Curve) error {
	for _, id := range cw.FunctionIDs() {
		if _, ok := curves[id]; !ok {
			return fmt.Errorf("crosswalk references damage function %d with no curve", id)
		}
	}
	return nil
}

func missing(path string) bool {
	_, err := os.Stat(path)
	return errors.Is(err, fs.ErrNotExist)
}
