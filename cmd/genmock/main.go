// Command genmock generates a self-consistent mock dataset for local runs
// and test fixtures: a building inventory CSV, a hazard depth CSV covering
// every building at each return period, and a reference-data directory with
// damage-function crosswalks and depth-damage curves the inventory will
// match against.
//
// Usage:
//
//	go run ./cmd/genmock -out testdata/mock -buildings 50 -seed 1
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
)

var returnPeriods = []int{2, 10, 25, 50, 100, 500}

// occupancyDef ties an occupancy class to plausible inventory ranges.
type occupancyDef struct {
	occ        string
	maxStories int
	minSqft    int
	maxSqft    int
	minCost    int
	maxCost    int
	contents   float64 // contents value as a fraction of structure value
}

var occupancies = []occupancyDef{
	{occ: "RES1", maxStories: 3, minSqft: 900, maxSqft: 3500, minCost: 120_000, maxCost: 600_000, contents: 0.5},
	{occ: "RES3A", maxStories: 4, minSqft: 2000, maxSqft: 9000, minCost: 300_000, maxCost: 1_500_000, contents: 0.4},
	{occ: "COM1", maxStories: 2, minSqft: 5000, maxSqft: 60_000, minCost: 500_000, maxCost: 8_000_000, contents: 1.0},
	{occ: "IND2", maxStories: 1, minSqft: 8000, maxSqft: 100_000, minCost: 800_000, maxCost: 12_000_000, contents: 1.5},
}

var foundations = []string{"S", "B", "C", "P"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	outDir := flag.String("out", "", "output directory for the mock dataset")
	count := flag.Int("buildings", 50, "number of buildings to generate")
	seed := flag.Int64("seed", 1, "random seed, fixed for reproducible fixtures")
	flag.Parse()

	if *outDir == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	rng := rand.New(rand.NewSource(*seed))

	refDir := filepath.Join(*outDir, "refdata")
	if err := os.MkdirAll(refDir, 0o755); err != nil {
		return err
	}

	if err := writeRefData(refDir); err != nil {
		return fmt.Errorf("writing reference data: %w", err)
	}
	log.Printf("wrote reference data: %s", refDir)

	ids, err := writeBuildings(filepath.Join(*outDir, "buildings.csv"), rng, *count)
	if err != nil {
		return fmt.Errorf("writing buildings: %w", err)
	}
	log.Printf("wrote %d buildings", len(ids))

	rows, err := writeHazard(filepath.Join(*outDir, "hazard.csv"), rng, ids)
	if err != nil {
		return fmt.Errorf("writing hazard: %w", err)
	}
	log.Printf("wrote %d hazard rows (%d return periods)", rows, len(returnPeriods))

	return nil
}

func writeBuildings(path string, rng *rand.Rand, count int) ([]string, error) {
	ids := make([]string, 0, count)
	err := writeCSV(path, func(w *csv.Writer) error {
		header := []string{
			"id", "occupancy_type", "construction_type", "foundation_type",
			"num_stories", "area_sqft", "structure_cost", "content_cost",
			"first_floor_height", "ffh_std",
		}
		if err := w.Write(header); err != nil {
			return err
		}
		for i := 0; i < count; i++ {
			def := occupancies[rng.Intn(len(occupancies))]
			id := fmt.Sprintf("B%04d", i+1)
			ids = append(ids, id)

			cost := def.minCost + rng.Intn(def.maxCost-def.minCost)
			row := []string{
				id,
				def.occ,
				"",
				foundations[rng.Intn(len(foundations))],
				strconv.Itoa(1 + rng.Intn(def.maxStories)),
				strconv.Itoa(def.minSqft + rng.Intn(def.maxSqft-def.minSqft)),
				strconv.Itoa(cost),
				strconv.Itoa(int(float64(cost) * def.contents)),
				fmt.Sprintf("%.1f", 0.5+rng.Float64()*3.0),
				"0.5",
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	})
	return ids, err
}

func writeHazard(path string, rng *rand.Rand, ids []string) (int, error) {
	rows := 0
	err := writeCSV(path, func(w *csv.Writer) error {
		if err := w.Write([]string{"building_id", "return_period", "depth_mean", "depth_std"}); err != nil {
			return err
		}
		for _, id := range ids {
			// Depths increase with return period so the monotonicity
			// check stays quiet for generated data.
			depth := rng.Float64() * 2.0
			for _, rp := range returnPeriods {
				depth += rng.Float64() * 1.5
				row := []string{
					id,
					strconv.Itoa(rp),
					fmt.Sprintf("%.2f", depth),
					fmt.Sprintf("%.2f", 0.2+rng.Float64()*0.6),
				}
				if err := w.Write(row); err != nil {
					return err
				}
				rows++
			}
		}
		return nil
	})
	return rows, err
}

// writeRefData emits a minimal crosswalk and curve set covering every
// occupancy class the generator uses. Curve IDs 101-106 are damped variants
// of the same shape so weighted blends stay between the extremes.
func writeRefData(dir string) error {
	crosswalk := [][]string{
		{"occupancy_type", "construction_type", "foundation_type", "flood_peril_type", "story_min", "story_max", "sqft_min", "sqft_max", "damage_function_id"},
		{"RES1", "", "SLAB", "", "1", "1", "", "", "101"},
		{"RES1", "", "SLAB", "", "2", "", "", "", "102"},
		{"RES1", "", "BASE", "", "", "", "", "", "103"},
		{"RES1", "", "SHAL", "", "", "", "", "", "103"},
		{"RES1", "", "PILE", "", "", "", "", "", "104"},
		{"RES3A", "", "", "", "", "", "", "", "105"},
		{"COM1", "", "", "", "", "", "", "", "106"},
		{"IND2", "", "", "", "", "", "", "", "106"},
	}
	if err := writeRows(filepath.Join(dir, "df_lookup_structures.csv"), crosswalk); err != nil {
		return err
	}

	// Depth breakpoints at -4, 0, 2, 6, and 10 ft relative to the first
	// floor. min and max columns bracket the mean curve.
	curves := [][]string{
		{"ddf_id", "depth_m4_0", "depth_0_0", "depth_2_0", "depth_6_0", "depth_10_0", "comment"},
		{"101", "0", "5", "25", "60", "85", "one story slab"},
		{"102", "0", "3", "18", "45", "70", "multi story slab"},
		{"103", "2", "10", "30", "65", "90", "basement"},
		{"104", "0", "0", "12", "40", "65", "elevated pile"},
		{"105", "0", "4", "20", "50", "75", "multi family"},
		{"106", "0", "6", "22", "55", "80", "commercial"},
	}
	if err := writeRows(filepath.Join(dir, "ddf_structure.csv"), curves); err != nil {
		return err
	}

	areas := [][]string{
		{"occupancy_type", "typical_sqft"},
		{"RES1", "1800"},
		{"RES3A", "4000"},
		{"COM1", "20000"},
		{"IND2", "30000"},
	}
	return writeRows(filepath.Join(dir, "typical_areas.csv"), areas)
}

func writeRows(path string, rows [][]string) error {
	return writeCSV(path, func(w *csv.Writer) error {
		return w.WriteAll(rows)
	})
}

func writeCSV(path string, write func(*csv.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := write(w); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
