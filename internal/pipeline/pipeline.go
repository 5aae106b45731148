// Package pipeline orchestrates one analysis run: hazard contract checks,
// damage-function matching, curve evaluation, monetization, AAL integration,
// and the validation passes between stages.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync/atomic"
	"time"

	"github.com/fema-ffrd/inland-consequences/internal/domain"
	"github.com/fema-ffrd/inland-consequences/internal/hazard"
	"github.com/fema-ffrd/inland-consequences/internal/matching"
	"github.com/fema-ffrd/inland-consequences/internal/observability"
	"github.com/fema-ffrd/inland-consequences/internal/refdata"
	"github.com/fema-ffrd/inland-consequences/internal/validation"
)

// Pipeline runs flood-loss analyses against one reference-data store.
type Pipeline struct {
	store        *refdata.Store
	ignore       matching.Attr
	calculateAAL bool
	logger       *slog.Logger
	metrics      *observability.Metrics
	ready        atomic.Bool
}

// New creates a Pipeline. ignore names building attributes matching treats
// as wildcards; calculateAAL enables the integration stage.
func New(store *refdata.Store, ignore matching.Attr, calculateAAL bool, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		store:        store,
		ignore:       ignore,
		calculateAAL: calculateAAL,
		logger:       logger,
		metrics:      metrics,
	}
}

// Result holds the output tables of one run, keyed by cost category where
// the category changes the numbers.
type Result struct {
	Buildings   []domain.Building
	Hazard      []domain.HazardRecord
	Assignments map[domain.CostCategory][]matching.Assignment
	Statistics  map[domain.CostCategory][]domain.DamageStatistic
	Losses      map[domain.CostCategory][]domain.Loss
	AAL         map[domain.CostCategory][]domain.AALResult
	Log         *validation.Log
}

// CheckReadiness returns nil once the pipeline has completed a run, or an
// error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no analysis run has completed yet")
	}
	return nil
}

// Run executes the staged analysis. Data-quality findings accumulate in the
// result's validation log; only contract violations (hazard coverage) and
// context cancellation abort the run.
func (p *Pipeline) Run(ctx context.Context, buildings []domain.Building, hzd []domain.HazardRecord) (*Result, error) {
	start := time.Now()
	p.metrics.RunActive.Set(1)
	defer p.metrics.RunActive.Set(0)

	p.metrics.BuildingsLoaded.Add(float64(len(buildings)))
	p.metrics.HazardRowsLoaded.Add(float64(len(hzd)))
	p.logger.Info("analysis run started",
		"buildings", len(buildings),
		"hazard_rows", len(hzd),
		"categories", len(p.store.Categories()),
	)

	res := &Result{
		Buildings:   buildings,
		Hazard:      hzd,
		Assignments: make(map[domain.CostCategory][]matching.Assignment),
		Statistics:  make(map[domain.CostCategory][]domain.DamageStatistic),
		Losses:      make(map[domain.CostCategory][]domain.Loss),
		AAL:         make(map[domain.CostCategory][]domain.AALResult),
		Log:         validation.NewLog(),
	}
	ds := &validation.Dataset{
		Buildings:   buildings,
		Hazard:      hzd,
		TypicalArea: p.store.TypicalArea,
	}

	if err := p.stage(ctx, "hazard_contract", func() error {
		return hazard.VerifyCoverage(hzd, buildings)
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, "input_validation", func() error {
		p.validate(ds, res.Log, validation.BuildingChecks())
		p.validate(ds, res.Log, validation.HazardChecks())
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, "matching", func() error {
		p.matchCategories(res, ds)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, "interpolation", func() error {
		p.evaluateCategories(res)
		return nil
	}); err != nil {
		return nil, err
	}

	if err := p.stage(ctx, "losses", func() error {
		p.monetize(res, ds)
		return nil
	}); err != nil {
		return nil, err
	}

	if p.calculateAAL {
		if err := p.stage(ctx, "aal", func() error {
			p.integrate(res, ds)
			return nil
		}); err != nil {
			return nil, err
		}
	}

	if err := p.stage(ctx, "results_validation", func() error {
		p.validate(ds, res.Log, validation.ResultChecks())
		return nil
	}); err != nil {
		return nil, err
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.ready.Store(true)
	p.logger.Info("analysis run complete",
		"duration", time.Since(start),
		"validation_findings", res.Log.Len(),
	)
	return res, nil
}

// stage runs one pipeline step with cancellation and timing.
func (p *Pipeline) stage(ctx context.Context, name string, fn func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn()
	p.metrics.StageDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	if err != nil {
		p.logger.Error("pipeline stage failed", "stage", name, "error", err)
		return err
	}
	p.logger.Debug("pipeline stage complete", "stage", name, "duration", time.Since(start))
	return nil
}

func (p *Pipeline) validate(ds *validation.Dataset, log *validation.Log, checks []validation.Check) {
	before := log.Len()
	validation.Run(ds, checks, log, p.logger)
	for _, e := range log.Entries()[before:] {
		p.metrics.ValidationFindings.WithLabelValues(e.Source).Inc()
	}
}

// matchCategories assigns damage functions per loaded cost category. The
// structure category is authoritative for the unmatched-building report:
// a building absent from the contents or inventory crosswalk is ordinary,
// not a data-quality finding.
func (p *Pipeline) matchCategories(res *Result, ds *validation.Dataset) {
	for _, cat := range p.store.Categories() {
		tables, _ := p.store.Category(cat)
		matcher := matching.NewMatcher(tables.Crosswalk, p.ignore)

		assignments, unmatched := matcher.MatchAll(res.Buildings)
		res.Assignments[cat] = assignments
		p.metrics.CurveAssignments.WithLabelValues(string(cat)).Add(float64(len(assignments)))

		if cat == domain.CategoryStructure {
			ds.Unmatched = unmatched
			p.metrics.UnmatchedBuildings.Add(float64(len(unmatched)))
			p.validate(ds, res.Log, validation.MatchingChecks())
		}
	}
}

// evaluateCategories turns assignments into damage statistics: every curve a
// building matched is sampled at the structure-relative depth, the samples
// are blended by weight, and triangular statistics are derived per return
// period. Hazard rows with invalid depths are skipped; the hazard validation
// rules already reported them.
func (p *Pipeline) evaluateCategories(res *Result) {
	hazardByBuilding := make(map[string][]domain.HazardRecord, len(res.Buildings))
	for _, h := range res.Hazard {
		hazardByBuilding[h.BuildingID] = append(hazardByBuilding[h.BuildingID], h)
	}

	for _, cat := range p.store.Categories() {
		tables, _ := p.store.Category(cat)

		byBuilding := make(map[string][]matching.Assignment)
		for _, a := range res.Assignments[cat] {
			byBuilding[a.BuildingID] = append(byBuilding[a.BuildingID], a)
		}

		var stats []domain.DamageStatistic
		for _, b := range res.Buildings {
			assignments := byBuilding[b.ID]
			if len(assignments) == 0 {
				continue
			}
			for _, h := range hazardByBuilding[b.ID] {
				if math.IsNaN(h.DepthMean) || math.IsNaN(h.DepthStdDev) {
					p.logger.Debug("skipping hazard row with invalid depth",
						"building_id", b.ID, "return_period", h.ReturnPeriod)
					continue
				}

				samples := make([]domain.WeightedSample, 0, len(assignments))
				for _, a := range assignments {
					curve := tables.Curves[a.DamageFunctionID]
					depthStd := math.Sqrt(h.DepthStdDev*h.DepthStdDev + a.FFHStdDev*a.FFHStdDev)
					samples = append(samples, domain.WeightedSample{
						Weight: a.Weight,
						Sample: curve.Sample(h.DepthMean-a.FirstFloorHeight, depthStd),
					})
				}
				stats = append(stats, domain.NewDamageStatistic(b.ID, h.ReturnPeriod, domain.BlendSamples(samples)))
			}
		}
		res.Statistics[cat] = stats
	}
}

// monetize converts damage statistics to dollar losses. Buildings without a
// replacement cost for a category produce no loss row; the MISSING_LOSS_ROW
// rule reports them.
func (p *Pipeline) monetize(res *Result, ds *validation.Dataset) {
	costs := make(map[string]domain.Building, len(res.Buildings))
	for _, b := range res.Buildings {
		costs[b.ID] = b
	}

	for _, cat := range p.store.Categories() {
		var losses []domain.Loss
		for _, s := range res.Statistics[cat] {
			cost := costs[s.BuildingID].Cost(cat)
			if cost <= 0 {
				continue
			}
			losses = append(losses, domain.MonetizeLoss(cat, cost, s))
		}
		res.Losses[cat] = losses
		p.metrics.LossRows.WithLabelValues(string(cat)).Add(float64(len(losses)))
		ds.Losses = append(ds.Losses, losses...)
	}
}

func (p *Pipeline) integrate(res *Result, ds *validation.Dataset) {
	for _, cat := range p.store.Categories() {
		byBuilding := make(map[string][]domain.Loss)
		for _, l := range res.Losses[cat] {
			byBuilding[l.BuildingID] = append(byBuilding[l.BuildingID], l)
		}

		var results []domain.AALResult
		for _, b := range res.Buildings {
			losses, ok := byBuilding[b.ID]
			if !ok {
				continue
			}
			results = append(results, domain.IntegrateAAL(b.ID, cat, losses))
		}
		res.AAL[cat] = results
		ds.AAL = append(ds.AAL, results...)
	}
}
