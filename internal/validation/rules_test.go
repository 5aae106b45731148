package validation

import (
	"errors"
	"log/slog"
	"math"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// rulesHit collects the rule IDs appended to the log.
func rulesHit(log *Log) []string {
	var out []string
	for _, e := range log.Entries() {
		out = append(out, e.Rule)
	}
	return out
}

func TestLogAppend(t *testing.T) {
	frozen := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	SetClock(clockwork.NewFakeClockAt(frozen))
	defer SetClock(nil)

	log := NewLog()
	log.Append(SourceBuilding, "MISSING_BUILDING_COST", TableBuildings, "b-1", "cost missing")
	log.Append(SourceHazard, "DEPTH_INVALID", TableHazard, "b-2", "bad depth")

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, int64(1), entries[0].ID)
	assert.Equal(t, int64(2), entries[1].ID)
	assert.Equal(t, SeverityWarning, entries[0].Severity)
	assert.Equal(t, frozen, entries[0].CreatedAt)
	assert.Equal(t, "b-1", entries[0].BuildingID)
	assert.Equal(t, TableHazard, entries[1].TableName)
}

func TestRunSwallowsCheckErrors(t *testing.T) {
	log := NewLog()
	checks := []Check{
		{
			Rule:   "BROKEN_CHECK",
			Source: SourceBuilding,
			Run: func(*Dataset) ([]Finding, error) {
				return nil, errors.New("boom")
			},
		},
		{
			Rule:   "WORKING_CHECK",
			Source: SourceBuilding,
			Run: func(*Dataset) ([]Finding, error) {
				return []Finding{{BuildingID: "b-1", Table: TableBuildings, Message: "hit"}}, nil
			},
		},
	}

	Run(&Dataset{}, checks, log, discardLogger())

	assert.Equal(t, []string{"WORKING_CHECK"}, rulesHit(log))
}

func TestBuildingChecks(t *testing.T) {
	t.Run("missing and negative cost", func(t *testing.T) {
		ds := &Dataset{Buildings: []domain.Building{
			{ID: "b-1", OccupancyType: "RES1"},
			{ID: "b-2", OccupancyType: "RES1", StructureCost: -5},
			{ID: "b-3", OccupancyType: "RES1", StructureCost: 150000},
		}}
		log := NewLog()
		Run(ds, BuildingChecks(), log, discardLogger())

		assert.Contains(t, rulesHit(log), "MISSING_BUILDING_COST")
		assert.Contains(t, rulesHit(log), "NON_POSITIVE_BUILDING_COST")
		for _, e := range log.Entries() {
			assert.NotEqual(t, "b-3", e.BuildingID)
		}
	})

	t.Run("missing occupancy", func(t *testing.T) {
		ds := &Dataset{Buildings: []domain.Building{{ID: "b-1", StructureCost: 1000}}}
		log := NewLog()
		Run(ds, BuildingChecks(), log, discardLogger())
		assert.Contains(t, rulesHit(log), "MISSING_OCCUPANCY_TYPE")
	})

	t.Run("unusually large area", func(t *testing.T) {
		ds := &Dataset{
			Buildings: []domain.Building{
				{ID: "b-1", OccupancyType: "COM1", StructureCost: 1, Area: 2000000},
				{ID: "b-2", OccupancyType: "COM1", StructureCost: 1, Area: 90000},
			},
			TypicalArea: map[string]float64{"COM1": 110000},
		}
		log := NewLog()
		Run(ds, BuildingChecks(), log, discardLogger())

		var flagged []string
		for _, e := range log.Entries() {
			if e.Rule == "UNUSUAL_AREA_OR_VALUATION" {
				flagged = append(flagged, e.BuildingID)
			}
		}
		assert.Equal(t, []string{"b-1"}, flagged)
	})

	t.Run("story counts", func(t *testing.T) {
		ds := &Dataset{Buildings: []domain.Building{
			{ID: "b-1", OccupancyType: "RES1", StructureCost: 1, NumStories: 5},
			{ID: "b-2", OccupancyType: "RES1", StructureCost: 1, NumStories: 2},
			{ID: "b-3", OccupancyType: "RES3F", StructureCost: 1, NumStories: 2},
			{ID: "b-4", OccupancyType: "RES3F", StructureCost: 1, NumStories: 6},
		}}
		log := NewLog()
		Run(ds, BuildingChecks(), log, discardLogger())

		rules := map[string]string{}
		for _, e := range log.Entries() {
			rules[e.BuildingID] = e.Rule
		}
		assert.Equal(t, "UNUSUAL_STORY_COUNT_RES1", rules["b-1"])
		assert.Equal(t, "UNUSUAL_STORY_COUNT_MID_RISE", rules["b-3"])
		assert.NotContains(t, rules, "b-2")
		assert.NotContains(t, rules, "b-4")
	})
}

func TestHazardChecks(t *testing.T) {
	t.Run("invalid depths", func(t *testing.T) {
		ds := &Dataset{Hazard: []domain.HazardRecord{
			{BuildingID: "b-1", ReturnPeriod: 100, DepthMean: math.NaN()},
			{BuildingID: "b-2", ReturnPeriod: 100, DepthMean: -0.5},
			{BuildingID: "b-3", ReturnPeriod: 100, DepthMean: 2, DepthStdDev: -1},
			{BuildingID: "b-4", ReturnPeriod: 100, DepthMean: 2, DepthStdDev: 0.5},
		}}
		log := NewLog()
		Run(ds, HazardChecks(), log, discardLogger())

		var flagged []string
		for _, e := range log.Entries() {
			if e.Rule == "DEPTH_INVALID" {
				flagged = append(flagged, e.BuildingID)
			}
		}
		assert.Equal(t, []string{"b-1", "b-2", "b-3"}, flagged)
	})

	t.Run("implausible depth for a frequent event", func(t *testing.T) {
		ds := &Dataset{Hazard: []domain.HazardRecord{
			{BuildingID: "b-1", ReturnPeriod: 25, DepthMean: 12},
			{BuildingID: "b-2", ReturnPeriod: 500, DepthMean: 12},
		}}
		log := NewLog()
		Run(ds, HazardChecks(), log, discardLogger())

		var flagged []string
		for _, e := range log.Entries() {
			if e.Rule == "DEPTH_IMPLAUSIBLE" {
				flagged = append(flagged, e.BuildingID)
			}
		}
		assert.Equal(t, []string{"b-1"}, flagged)
	})

	t.Run("negative velocity", func(t *testing.T) {
		ds := &Dataset{Hazard: []domain.HazardRecord{
			{BuildingID: "b-1", ReturnPeriod: 100, DepthMean: 1, Velocity: -3},
		}}
		log := NewLog()
		Run(ds, HazardChecks(), log, discardLogger())
		assert.Contains(t, rulesHit(log), "VELOCITY_INVALID")
	})

	t.Run("depth decreasing with return period", func(t *testing.T) {
		ds := &Dataset{
			Buildings: []domain.Building{{ID: "b-1"}, {ID: "b-2"}},
			Hazard: []domain.HazardRecord{
				{BuildingID: "b-1", ReturnPeriod: 100, DepthMean: 4},
				{BuildingID: "b-1", ReturnPeriod: 500, DepthMean: 3},
				{BuildingID: "b-2", ReturnPeriod: 100, DepthMean: 3},
				{BuildingID: "b-2", ReturnPeriod: 500, DepthMean: 4},
			},
		}
		log := NewLog()
		Run(ds, HazardChecks(), log, discardLogger())

		var flagged []string
		for _, e := range log.Entries() {
			if e.Rule == "DEPTH_DECREASES_WITH_RETURN_PERIOD" {
				flagged = append(flagged, e.BuildingID)
			}
		}
		assert.Equal(t, []string{"b-1"}, flagged)
	})
}

func TestMatchingChecks(t *testing.T) {
	ds := &Dataset{
		Buildings: []domain.Building{{ID: "b-9", OccupancyType: "AGR1", FoundationType: "S"}},
		Unmatched: []string{"b-9"},
	}
	log := NewLog()
	Run(ds, MatchingChecks(), log, discardLogger())

	entries := log.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "NO_DAMAGE_FUNCTION_MATCH", entries[0].Rule)
	assert.Equal(t, SourceMatching, entries[0].Source)
	assert.Contains(t, entries[0].Message, "AGR1")
}

func TestResultChecks(t *testing.T) {
	buildings := []domain.Building{
		{ID: "b-1", StructureCost: 100000},
		{ID: "b-2", StructureCost: 100000},
	}

	t.Run("loss exceeding replacement cost", func(t *testing.T) {
		ds := &Dataset{
			Buildings: buildings,
			Losses: []domain.Loss{
				{BuildingID: "b-1", Category: domain.CategoryStructure, ReturnPeriod: 500, LossMax: 120000},
				{BuildingID: "b-2", Category: domain.CategoryStructure, ReturnPeriod: 500, LossMax: 90000},
			},
		}
		log := NewLog()
		Run(ds, ResultChecks(), log, discardLogger())
		assert.Contains(t, rulesHit(log), "LOSS_RATIO_EXCEEDS_100")
	})

	t.Run("high frequent-event loss", func(t *testing.T) {
		ds := &Dataset{
			Buildings: buildings,
			Losses: []domain.Loss{
				{BuildingID: "b-1", Category: domain.CategoryStructure, ReturnPeriod: 10, LossMean: 60000},
			},
		}
		log := NewLog()
		Run(ds, ResultChecks(), log, discardLogger())
		assert.Contains(t, rulesHit(log), "HIGH_10YR_LOSS")
	})

	t.Run("high AAL ratio", func(t *testing.T) {
		ds := &Dataset{
			Buildings: buildings,
			Losses:    []domain.Loss{{BuildingID: "b-1"}, {BuildingID: "b-2"}},
			AAL: []domain.AALResult{
				{BuildingID: "b-1", Category: domain.CategoryStructure, AALMean: 15000},
				{BuildingID: "b-2", Category: domain.CategoryStructure, AALMean: 500},
			},
		}
		log := NewLog()
		Run(ds, ResultChecks(), log, discardLogger())

		var flagged []string
		for _, e := range log.Entries() {
			if e.Rule == "HIGH_AAL_LOSS_RATIO" {
				flagged = append(flagged, e.BuildingID)
			}
		}
		assert.Equal(t, []string{"b-1"}, flagged)
	})

	t.Run("matched building with no loss row", func(t *testing.T) {
		ds := &Dataset{
			Buildings: []domain.Building{
				{ID: "b-1"}, // matched, no cost, no loss row
				{ID: "b-2"},
			},
			Unmatched: []string{"b-2"},
		}
		log := NewLog()
		Run(ds, ResultChecks(), log, discardLogger())

		var flagged []string
		for _, e := range log.Entries() {
			if e.Rule == "MISSING_LOSS_ROW" {
				flagged = append(flagged, e.BuildingID)
			}
		}
		assert.Equal(t, []string{"b-1"}, flagged)
	})
}
