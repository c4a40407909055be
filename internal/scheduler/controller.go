package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"activity-reports/internal/config"
	"activity-reports/internal/logger"
	"activity-reports/internal/report"
)

// Synthesizer is the report pipeline the controller drives.
// *report.Synthesizer satisfies it.
type Synthesizer interface {
	Synthesize(ctx context.Context, key report.PeriodKey, forceRefresh bool) *report.Report
}

// ReportIndex answers existence checks for the dependency pass.
// *report.Cache satisfies it.
type ReportIndex interface {
	Has(key report.PeriodKey) (bool, error)
}

// Controller owns the five periodic report triggers. It is constructed once
// at process start and holds its own cron job table; there is no package
// state.
type Controller struct {
	cron  *cron.Cron
	synth Synthesizer
	index ReportIndex
	specs config.ScheduleConfig
}

func New(synth Synthesizer, index ReportIndex, specs config.ScheduleConfig) *Controller {
	return &Controller{
		cron:  cron.New(cron.WithSeconds()),
		synth: synth,
		index: index,
		specs: specs,
	}
}

// Start registers the five triggers and starts the cron loop. Each trigger
// fires shortly after its period closes and reports on the period just
// ended.
func (c *Controller) Start() error {
	jobs := []struct {
		kind report.PeriodKind
		spec string
	}{
		{report.Daily, c.specs.DailyCron},
		{report.Weekly, c.specs.WeeklyCron},
		{report.Monthly, c.specs.MonthlyCron},
		{report.Quarterly, c.specs.QuarterlyCron},
		{report.Annual, c.specs.AnnualCron},
	}

	for _, job := range jobs {
		kind := job.kind
		if _, err := c.cron.AddFunc(job.spec, func() {
			c.Run(context.Background(), kind, time.Now(), false)
		}); err != nil {
			return fmt.Errorf("invalid cron spec for %s trigger: %w", kind, err)
		}
		logger.GetLogger().Infof("Registered %s report trigger (%s)", kind, job.spec)
	}

	c.cron.Start()
	return nil
}

func (c *Controller) Stop() error {
	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	return nil
}

// Run executes one trigger: the dependency pass, then synthesis of the
// period's own report. Manual (forced) triggers bypass only the final cache
// check, never the dependency pass. The target period is the most recent
// complete one of the given kind before now.
func (c *Controller) Run(ctx context.Context, kind report.PeriodKind, now time.Time, force bool) *report.Report {
	key := report.Previous(kind, now)
	return c.RunKey(ctx, key, force)
}

// RunKey executes one trigger for an explicit period key.
func (c *Controller) RunKey(ctx context.Context, key report.PeriodKey, force bool) *report.Report {
	log := logger.GetLogger()
	log.Infof("Running %s report job for %s", key.Kind, key.Start.Format("2006-01-02"))

	if key.Kind != report.Daily {
		c.ensureDailies(ctx, key)
	}

	rep := c.synth.Synthesize(ctx, key, force)
	log.Infof("Finished %s report for %s (%d minutes total)", key.Kind, key.Start.Format("2006-01-02"), rep.Summary.TotalMinutes)
	return rep
}

// ensureDailies synthesizes a daily report for every day of the period that
// lacks one. Coarser reports are never built over a gap in the dailies.
func (c *Controller) ensureDailies(ctx context.Context, key report.PeriodKey) {
	log := logger.GetLogger()

	filled := 0
	for _, day := range key.Days() {
		daily := report.PeriodKey{Kind: report.Daily, Start: day}
		has, err := c.index.Has(daily)
		if err != nil {
			log.Warnf("Failed to check daily report %s: %v", daily, err)
		}
		if has {
			continue
		}
		log.Infof("Daily report for %s missing, generating before %s report", report.DateKey(day), key.Kind)
		c.synth.Synthesize(ctx, daily, false)
		filled++
	}

	if filled > 0 {
		log.Infof("Dependency pass for %s filled %d missing daily reports", key, filled)
	}
}
