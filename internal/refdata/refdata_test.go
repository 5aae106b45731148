package refdata

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const structureCrosswalkCSV = `construction_type,occupancy_type,story_min,story_max,sqft_min,sqft_max,flsbt_range,foundation_type,flood_peril_type,damage_function_id
W,RES1,1,1,,,,SLAB,,101
W,RES1,2,3,,,,SLAB,,102
,RES1,,,,,,BASE,,103
,COM1,,,5000,,,,FLUV,201
,COM1,,,,,,,,
`

const structureCurvesCSV = `ddf_id,comment,depth_m1_0,depth_0_0,depth_0_5,depth_10_0
101,one story slab,0,5,10,95
102,two story slab,0,3,6,80
103,basement,10,20,25,100
201,light commercial,0,2,4,60
`

func TestLoadCrosswalk(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, fileCrosswalkStructure, structureCrosswalkCSV)

	cw, err := LoadCrosswalk(path, domain.CategoryStructure, discardLogger())
	require.NoError(t, err)

	// The row with an empty damage_function_id is skipped, not fatal.
	assert.Equal(t, 4, cw.Len())
	assert.Equal(t, []int{101, 102, 103, 201}, cw.FunctionIDs())
	assert.Equal(t, domain.CategoryStructure, cw.Category)
}

func TestLoadCrosswalkErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file is fatal", func(t *testing.T) {
		_, err := LoadCrosswalk(filepath.Join(dir, "nope.csv"), domain.CategoryStructure, discardLogger())
		assert.Error(t, err)
	})

	t.Run("missing required column is fatal", func(t *testing.T) {
		path := writeFile(t, dir, "bad.csv", "occupancy_type,foundation_type\nRES1,SLAB\n")
		_, err := LoadCrosswalk(path, domain.CategoryStructure, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "damage_function_id")
	})
}

func TestLoadCurves(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, fileCurvesStructure, structureCurvesCSV)

	curves, err := LoadCurves(path, discardLogger())
	require.NoError(t, err)
	require.Len(t, curves, 4)

	c := curves[101]
	assert.Equal(t, "one story slab", c.Comment)

	want := []domain.CurvePoint{
		{Depth: -1, Damage: 0},
		{Depth: 0, Damage: 5},
		{Depth: 0.5, Damage: 10},
		{Depth: 10, Damage: 95},
	}
	if diff := cmp.Diff(want, c.Points); diff != "" {
		t.Errorf("curve points mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadCurvesDepthNames(t *testing.T) {
	t.Run("negative and fractional depths decode", func(t *testing.T) {
		for name, want := range map[string]float64{
			"m4_0": -4.0,
			"0_5":  0.5,
			"10_0": 10.0,
			"m0_5": -0.5,
		} {
			got, err := parseDepthName(name)
			require.NoError(t, err, name)
			assert.Equal(t, want, got, name)
		}
	})

	t.Run("empty breakpoint cells are skipped", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "sparse.csv", "ddf_id,comment,depth_0_0,depth_5_0,depth_10_0\n7,sparse,0,,50\n")

		curves, err := LoadCurves(path, discardLogger())
		require.NoError(t, err)
		require.Len(t, curves[7].Points, 2)
		assert.Equal(t, 10.0, curves[7].Points[1].Depth)
	})

	t.Run("malformed damage value skips the row", func(t *testing.T) {
		dir := t.TempDir()
		path := writeFile(t, dir, "bad.csv", "ddf_id,comment,depth_0_0\n7,ok,5\n8,bad,notanumber\n")

		curves, err := LoadCurves(path, discardLogger())
		require.NoError(t, err)
		assert.Len(t, curves, 1)
		assert.Contains(t, curves, 7)
	})
}

func TestOpen(t *testing.T) {
	t.Run("structure only", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, fileCrosswalkStructure, structureCrosswalkCSV)
		writeFile(t, dir, fileCurvesStructure, structureCurvesCSV)

		store, err := Open(dir, discardLogger())
		require.NoError(t, err)

		assert.Equal(t, []domain.CostCategory{domain.CategoryStructure}, store.Categories())
		_, ok := store.Category(domain.CategoryContents)
		assert.False(t, ok)
		assert.Equal(t, 1800.0, store.TypicalArea["RES1"])
	})

	t.Run("contents loaded when both files exist", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, fileCrosswalkStructure, structureCrosswalkCSV)
		writeFile(t, dir, fileCurvesStructure, structureCurvesCSV)
		writeFile(t, dir, fileCrosswalkContents, "occupancy_type,foundation_type,flood_peril_type,damage_function_id\nRES1,,,301\n")
		writeFile(t, dir, fileCurvesContents, "ddf_id,comment,depth_0_0,depth_8_0\n301,contents,0,70\n")

		store, err := Open(dir, discardLogger())
		require.NoError(t, err)

		cats := store.Categories()
		assert.Contains(t, cats, domain.CategoryContents)

		tables, ok := store.Category(domain.CategoryContents)
		require.True(t, ok)
		assert.Equal(t, 1, tables.Crosswalk.Len())
	})

	t.Run("missing structure tables are fatal", func(t *testing.T) {
		_, err := Open(t.TempDir(), discardLogger())
		assert.Error(t, err)
	})

	t.Run("dangling curve reference is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, fileCrosswalkStructure, "occupancy_type,damage_function_id\nRES1,999\n")
		writeFile(t, dir, fileCurvesStructure, structureCurvesCSV)

		_, err := Open(dir, discardLogger())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "999")
	})

	t.Run("typical areas override", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, fileCrosswalkStructure, structureCrosswalkCSV)
		writeFile(t, dir, fileCurvesStructure, structureCurvesCSV)
		writeFile(t, dir, fileTypicalAreas, "occupancy_type,typical_sqft\nRES1,2400\n")

		store, err := Open(dir, discardLogger())
		require.NoError(t, err)
		assert.Equal(t, 2400.0, store.TypicalArea["RES1"])
	})
}
