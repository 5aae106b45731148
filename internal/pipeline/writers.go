package pipeline

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

// Output file names within the output directory.
const (
	fileBuildings       = "buildings.csv"
	fileDamageFunctions = "damage_functions.csv"
	fileDamageStats     = "damage_statistics.csv"
	fileLosses          = "losses.csv"
	fileAAL             = "aal_losses.csv"
	fileValidationLog   = "validation_log.csv"
)

// WriteResults writes all output tables to dir, creating it if needed.
// aal_losses.csv is only written when the AAL stage ran.
func WriteResults(dir string, res *Result, aalEnabled bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	writers := []struct {
		file    string
		write   func(*csv.Writer) error
		enabled bool
	}{
		{fileBuildings, res.writeBuildings, true},
		{fileDamageFunctions, res.writeAssignments, true},
		{fileDamageStats, res.writeStatistics, true},
		{fileLosses, res.writeLosses, true},
		{fileAAL, res.writeAAL, aalEnabled},
		{fileValidationLog, res.writeValidationLog, true},
	}

	for _, w := range writers {
		if !w.enabled {
			continue
		}
		if err := writeTable(filepath.Join(dir, w.file), w.write); err != nil {
			return err
		}
	}
	return nil
}

func writeTable(path string, write func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return f.Close()
}

func (r *Result) writeBuildings(w *csv.Writer) error {
	if err := w.Write([]string{
		"id", "occupancy_type", "construction_type", "foundation_type",
		"num_stories", "area_sqft", "structure_cost", "content_cost",
		"inventory_cost", "first_floor_height", "ffh_std", "flood_peril_type",
	}); err != nil {
		return err
	}
	for _, b := range r.Buildings {
		if err := w.Write([]string{
			b.ID, b.OccupancyType, b.ConstructionType, string(b.FoundationType),
			strconv.Itoa(b.NumStories), num(b.Area), num(b.StructureCost), num(b.ContentCost),
			num(b.InventoryCost), num(b.FirstFloorHeight), num(b.FFHStdDev), b.FloodPerilType,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (r *Result) writeAssignments(w *csv.Writer) error {
	if err := w.Write([]string{
		"category", "building_id", "damage_function_id", "first_floor_height", "ffh_std", "weight",
	}); err != nil {
		return err
	}
	for _, cat := range categoryOrder(r.Assignments) {
		for _, a := range r.Assignments[cat] {
			if err := w.Write([]string{
				string(cat), a.BuildingID, strconv.Itoa(a.DamageFunctionID),
				num(a.FirstFloorHeight), num(a.FFHStdDev), num(a.Weight),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Result) writeStatistics(w *csv.Writer) error {
	if err := w.Write([]string{
		"category", "building_id", "return_period", "damage_percent",
		"d_min", "d_max", "d_mode", "damage_percent_mean",
		"damage_percent_std", "triangular_std_dev", "range_std_dev",
	}); err != nil {
		return err
	}
	for _, cat := range categoryOrder(r.Statistics) {
		for _, s := range r.Statistics[cat] {
			if err := w.Write([]string{
				string(cat), s.BuildingID, strconv.Itoa(s.ReturnPeriod), num(s.DamagePercent),
				num(s.DMin), num(s.DMax), num(s.DMode), num(s.DamagePercentMean),
				num(s.DamagePercentStd), num(s.TriangularStdDev), num(s.RangeStdDev),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Result) writeLosses(w *csv.Writer) error {
	if err := w.Write([]string{
		"category", "building_id", "return_period", "loss_mean", "loss_std", "loss_min", "loss_max",
	}); err != nil {
		return err
	}
	for _, cat := range categoryOrder(r.Losses) {
		for _, l := range r.Losses[cat] {
			if err := w.Write([]string{
				string(cat), l.BuildingID, strconv.Itoa(l.ReturnPeriod),
				num(l.LossMean), num(l.LossStd), num(l.LossMin), num(l.LossMax),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Result) writeAAL(w *csv.Writer) error {
	if err := w.Write([]string{
		"category", "building_id", "aal_mean", "aal_std", "aal_min", "aal_max",
	}); err != nil {
		return err
	}
	for _, cat := range categoryOrder(r.AAL) {
		for _, a := range r.AAL[cat] {
			if err := w.Write([]string{
				string(cat), a.BuildingID, num(a.AALMean), num(a.AALStd), num(a.AALMin), num(a.AALMax),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Result) writeValidationLog(w *csv.Writer) error {
	if err := w.Write([]string{
		"id", "building_id", "table_name", "source", "rule", "message", "severity", "created_at",
	}); err != nil {
		return err
	}
	for _, e := range r.Log.Entries() {
		if err := w.Write([]string{
			strconv.FormatInt(e.ID, 10), e.BuildingID, e.TableName, e.Source,
			e.Rule, e.Message, e.Severity, e.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	}
	return nil
}

// categoryOrder returns the fixed structure/contents/inventory ordering
// restricted to categories present in the map.
func categoryOrder[V any](m map[domain.CostCategory]V) []domain.CostCategory {
	var out []domain.CostCategory
	for _, cat := range []domain.CostCategory{domain.CategoryStructure, domain.CategoryContents, domain.CategoryInventory} {
		if _, ok := m[cat]; ok {
			out = append(out, cat)
		}
	}
	return out
}

// num formats a float for the output tables. Undefined statistics (NaN)
// become empty cells.
func num(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
