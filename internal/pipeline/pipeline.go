package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ChrisGrossi/sportsbet/internal/alert"
	"github.com/ChrisGrossi/sportsbet/internal/config"
	"github.com/ChrisGrossi/sportsbet/internal/fetch"
	"github.com/ChrisGrossi/sportsbet/internal/htmltable"
	"github.com/ChrisGrossi/sportsbet/internal/reconcile"
	"github.com/ChrisGrossi/sportsbet/internal/sink"
	"github.com/ChrisGrossi/sportsbet/internal/sources"
	"github.com/ChrisGrossi/sportsbet/internal/sources/dratings"
	"github.com/ChrisGrossi/sportsbet/internal/sources/ffwin"
	"github.com/ChrisGrossi/sportsbet/internal/sources/sbri"
	"github.com/ChrisGrossi/sportsbet/internal/sources/tpt"
	"github.com/ChrisGrossi/sportsbet/pkg/models"
)

// ErrRunInProgress is returned when a run is triggered while another
// run is still executing
var ErrRunInProgress = errors.New("a collection run is already in progress")

// Pipeline executes one collection cycle per configured sport: scrape
// every source, reconcile odds with predictions, publish tables to the
// sinks, and alert on value bets. Sources and sinks fail independently;
// one broken leg never aborts the cycle.
type Pipeline struct {
	cfg      *config.Config
	client   *fetch.Client
	loc      *time.Location
	writers  []sink.TabularWriter
	filter   *alert.Filter
	notifier *alert.SlackNotifier
	engine   *reconcile.Engine
	log      *logrus.Entry

	mu sync.Mutex
}

// New assembles a pipeline from configuration and the sinks built at
// process entry. The notifier may be nil when alerting is not
// configured.
func New(cfg *config.Config, writers []sink.TabularWriter, notifier *alert.SlackNotifier, log *logrus.Entry) (*Pipeline, error) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return nil, fmt.Errorf("loading eastern timezone: %w", err)
	}

	return &Pipeline{
		cfg:      cfg,
		client:   fetch.NewClient(),
		loc:      loc,
		writers:  writers,
		filter:   alert.NewFilter(cfg.Alerts.MinEdge),
		notifier: notifier,
		engine:   reconcile.NewEngine(loc, log),
		log:      log.WithField("component", "pipeline"),
	}, nil
}

// Run executes one full cycle across all configured sports. Overlapping
// invocations are rejected rather than queued.
func (p *Pipeline) Run(ctx context.Context) error {
	if !p.mu.TryLock() {
		return ErrRunInProgress
	}
	defer p.mu.Unlock()

	runLog := p.log.WithField("run_id", uuid.New().String())
	started := time.Now()
	runLog.Info("starting collection run")

	for _, sport := range sortedSports(p.cfg.Sports) {
		if err := ctx.Err(); err != nil {
			return err
		}
		p.runSport(ctx, runLog, sport, p.cfg.Sports[sport])
	}

	runLog.WithField("duration", time.Since(started).Round(time.Millisecond)).
		Info("collection run finished")

	return nil
}

// RunHistoric executes one completed-games collection cycle. The
// result feeds the configured sinks as raw tables; completed games
// carry no start times and never reconcile.
func (p *Pipeline) RunHistoric(ctx context.Context) error {
	if !p.mu.TryLock() {
		return ErrRunInProgress
	}
	defer p.mu.Unlock()

	runLog := p.log.WithFields(logrus.Fields{
		"run_id": uuid.New().String(),
		"mode":   "historic",
	})
	runLog.Info("starting historic collection run")

	for _, sport := range sortedSports(p.cfg.Sports) {
		if err := ctx.Err(); err != nil {
			return err
		}

		sc := p.cfg.Sports[sport]
		if sc.DRatingsURL == "" {
			continue
		}
		log := runLog.WithField("sport", sport)

		collector := dratings.NewCompletedCollector(p.client, sc.DRatingsURL,
			sc.DRatingsPages, completedSignatureColumnFor(sport), p.loc, log)

		collected, err := collector.Collect(ctx)
		if err != nil {
			log.Errorf("completed-games source failed: %v", err)
			continue
		}

		p.publish(ctx, log, "DRateHist_"+sc.WorksheetSuffix, collected.Table)
	}

	runLog.Info("historic collection run finished")
	return nil
}

func sortedSports(sports map[string]config.SportConfig) []string {
	keys := make([]string, 0, len(sports))
	for k := range sports {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// runSport executes the per-sport leg sequence. Each source failure is
// logged and leaves that dataset empty; reconciliation still runs with
// whatever survived.
func (p *Pipeline) runSport(ctx context.Context, runLog *logrus.Entry, sport string, sc config.SportConfig) {
	log := runLog.WithField("sport", sport)
	log.Info("collecting sport")

	odds := p.collectOdds(ctx, log, sport, sc)
	predictions := p.collectPredictions(ctx, log, sport, sc)

	if sc.TPTURL != "" {
		p.collectAuxiliary(ctx, log, "TPT_"+sc.WorksheetSuffix,
			tpt.NewParser(p.client, sc.TPTURL, log))
	}
	if sc.FFWinURL != "" {
		p.collectAuxiliary(ctx, log, "FFWin_"+sc.WorksheetSuffix,
			ffwin.NewScraper(p.client, sc.FFWinURL, log))
	}

	rows := p.engine.Reconcile(odds, predictions)
	p.publish(ctx, log, "Calc_"+sc.WorksheetSuffix, reconcile.ToTable(rows))

	p.sendAlerts(ctx, log, sport, rows)
}

func (p *Pipeline) collectOdds(ctx context.Context, log *logrus.Entry, sport string, sc config.SportConfig) []models.GameOddsRecord {
	if sc.SBRIURL == "" {
		return nil
	}

	scraper := sbri.NewScraper(p.client, sc.SBRIURL, sport, p.loc, log)
	records, err := scraper.Scrape(ctx)
	if err != nil {
		log.Errorf("odds feed failed: %v", err)
		return nil
	}

	p.publish(ctx, log, "SBRI_"+sc.WorksheetSuffix, sbri.ToTable(records))
	return records
}

func (p *Pipeline) collectPredictions(ctx context.Context, log *logrus.Entry, sport string, sc config.SportConfig) []models.GamePredictionRecord {
	if sc.DRatingsURL == "" {
		return nil
	}

	collector := dratings.NewCollector(p.client, sc.DRatingsURL, sc.DRatingsPages,
		signatureColumnFor(sport), p.loc, log)

	collected, err := collector.Collect(ctx)
	if err != nil {
		if errors.Is(err, sources.ErrNoData) {
			log.Warnf("prediction source returned no data: %v", err)
		} else {
			log.Errorf("prediction source failed: %v", err)
		}
		return nil
	}
	if collected.PagesSkipped > 0 {
		log.WithField("pages_skipped", collected.PagesSkipped).
			Warn("prediction source returned a partial dataset")
	}

	p.publish(ctx, log, "DRate_"+sc.WorksheetSuffix, collected.Table)
	return dratings.Predictions(collected)
}

// signatureColumnFor names the column that identifies a game table for
// the sport, as opposed to the site's navigation and standings tables
func signatureColumnFor(sport string) string {
	if sport == "mlb" {
		return "Pitchers"
	}
	return "Quarterbacks"
}

// completedSignatureColumnFor is the qualifying column of the
// completed-games tables, which show results instead of starters
func completedSignatureColumnFor(sport string) string {
	if sport == "mlb" {
		return "Final Runs"
	}
	return "Final Points"
}

// auxiliaryScraper is any secondary source published as a raw table
// without joining into the reconciliation
type auxiliaryScraper interface {
	Scrape(ctx context.Context) (*htmltable.Table, error)
}

func (p *Pipeline) collectAuxiliary(ctx context.Context, log *logrus.Entry, worksheet string, scraper auxiliaryScraper) {
	table, err := scraper.Scrape(ctx)
	if err != nil {
		if errors.Is(err, sources.ErrNoData) {
			log.Warnf("%s returned no data: %v", worksheet, err)
		} else {
			log.Errorf("%s failed: %v", worksheet, err)
		}
		return
	}
	p.publish(ctx, log, worksheet, table)
}

// publish writes one table to every sink, isolating sink failures from
// each other
func (p *Pipeline) publish(ctx context.Context, log *logrus.Entry, worksheet string, table *htmltable.Table) {
	for _, w := range p.writers {
		if err := w.Write(ctx, worksheet, table); err != nil {
			log.Errorf("failed to publish %s: %v", worksheet, err)
		}
	}
}

func (p *Pipeline) sendAlerts(ctx context.Context, log *logrus.Entry, sport string, rows []models.ReconciledGameRow) {
	if p.notifier == nil {
		return
	}

	selected := p.filter.Select(rows)
	if err := p.notifier.Notify(ctx, sport, selected); err != nil {
		log.Errorf("failed to send alerts: %v", err)
	}
}
