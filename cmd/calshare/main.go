package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"calshare/internal/agenda"
	"calshare/internal/config"
	"calshare/internal/filter"
	appLog "calshare/internal/log"
	"calshare/internal/model"
	"calshare/internal/recur"
	"calshare/internal/share"
	"calshare/internal/source"
	"calshare/internal/visibility"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath string
	cacheDir   string
	logLevel   string

	query    string
	category string
	location string
	from     string
	to       string
	free     bool

	watch bool
}

func main() {
	flags := parseFlags()
	appLog.SetLevel(appLog.ParseLevel(flags.logLevel))
	appLog.Info("calshare starting", "version", "0.1.0")

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	appLog.Info("effective config",
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.Refresh,
		"horizon_days", conf.HorizonDays,
		"backfill_days", conf.BackfillDays,
		"source_count", len(conf.Sources),
		"connection_count", len(conf.Connections),
		"watch", flags.watch,
	)

	// Root context cancelled on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	run := func() {
		if err := runPipeline(ctx, conf, flags); err != nil {
			appLog.Error("pipeline run failed", err)
		}
	}

	if !flags.watch {
		run()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(conf.Refresh, run); err != nil {
		appLog.Error("invalid refresh schedule", err, "refresh", conf.Refresh)
		os.Exit(1)
	}
	run()
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	appLog.Info("calshare exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "calshare.yaml", "Path to config file")
	flag.StringVar(&cfg.cacheDir, "cache-dir", "./var/ics-cache", "Directory for the source fetch cache")
	flag.StringVar(&cfg.logLevel, "log-level", "info", "Log level (debug|info|warn|error)")

	flag.StringVar(&cfg.query, "query", "", "Free-text filter over title, description and location")
	flag.StringVar(&cfg.category, "category", "", "Category id or name to filter on")
	flag.StringVar(&cfg.location, "location", "", "Exact venue or city to filter on")
	flag.StringVar(&cfg.from, "from", "", "Inclusive start date (YYYY-MM-DD)")
	flag.StringVar(&cfg.to, "to", "", "Inclusive end date (YYYY-MM-DD)")
	flag.BoolVar(&cfg.free, "free", false, "Show only free-day marker events")

	flag.BoolVar(&cfg.watch, "watch", false, "Keep running and refresh on the config cron schedule")

	flag.Parse()
	return cfg
}

// runPipeline performs one full fetch -> parse -> expand -> filter -> print
// cycle.
func runPipeline(ctx context.Context, conf *config.Config, flags flagConfig) error {
	loc := conf.Location()
	now := time.Now().In(loc)

	categories := conf.ModelCategories()
	table := source.NewCategoryTable(categories)

	events, err := loadEvents(ctx, conf, flags.cacheDir, table)
	if err != nil {
		return err
	}

	rangeStart := agenda.DayStart(now, loc).AddDate(0, 0, -conf.BackfillDays)
	rangeEnd := agenda.DayStart(now, loc).AddDate(0, 0, conf.HorizonDays+1).Add(-time.Second)

	expanded, err := recur.Expand(events, recur.ExpandConfig{
		Location:   loc,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	})
	if err != nil {
		return err
	}
	if len(expanded.TruncatedIDs) > 0 {
		appLog.Warn("recurrence expansion truncated", "ids", strings.Join(expanded.TruncatedIDs, ","))
	}

	visible := visibility.FilterUserEvents(expanded.Events, conf.Viewer.ID, conf.ModelConnections())
	appLog.Info("events loaded",
		"raw", len(events),
		"expanded", len(expanded.Events),
		"visible", len(visible),
	)

	session := filter.NewSession(visible, filter.Options{
		Location:   loc,
		WeekStart:  weekStartDay(conf.WeekStart),
		Categories: categories,
	})
	applyFlagCriteria(session, flags, categories, loc)

	printView(session, conf, now, loc)
	return nil
}

func loadEvents(ctx context.Context, conf *config.Config, cacheDir string, table source.CategoryTable) ([]model.Event, error) {
	sources := make([]source.Source, 0, len(conf.Sources))
	for _, sc := range conf.Sources {
		if sc.URL == "" {
			continue
		}
		id := sc.ID
		if id == "" {
			id = sc.Name
		}
		owner := model.UserRef{ID: sc.Owner.ID, Name: sc.Owner.Name}
		if owner.ID == "" {
			owner = model.UserRef{ID: conf.Viewer.ID, Name: conf.Viewer.Name}
		}
		sources = append(sources, source.Source{ID: id, Name: sc.Name, URL: sc.URL, Owner: owner})
	}

	if len(sources) == 0 {
		appLog.Warn("no sources configured")
		return []model.Event{}, nil
	}

	fetcher := source.NewFetcher(cacheDir)
	results, fetchErrs := fetcher.FetchAll(ctx, sources)
	for _, err := range fetchErrs {
		appLog.Error("source unavailable", err)
	}

	events := make([]model.Event, 0)
	for _, res := range results {
		parsed, err := source.ParseICS(res.Source, res.Body, table)
		if err != nil {
			appLog.Error("source parse failed", err, "id", res.Source.ID)
			continue
		}
		events = append(events, parsed...)
	}
	return events, nil
}

func applyFlagCriteria(session *filter.Session, flags flagConfig, categories []model.Category, loc *time.Location) {
	if flags.query != "" {
		session.SetQuery(flags.query)
	}
	if t, ok := parseDateFlag(flags.from, loc); ok {
		session.SetStartDate(t)
	}
	if t, ok := parseDateFlag(flags.to, loc); ok {
		session.SetEndDate(t)
	}
	if flags.category != "" {
		session.SetCategory(resolveCategoryID(flags.category, categories))
	}
	if flags.location != "" {
		session.SetLocation(flags.location)
	}
	if flags.free {
		session.SetShowEventsFree(true)
	}
}

func parseDateFlag(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", s, loc)
	if err != nil {
		appLog.Warn("ignoring unparseable date flag", "value", s)
		return time.Time{}, false
	}
	return t, true
}

func resolveCategoryID(raw string, categories []model.Category) string {
	for _, c := range categories {
		if strings.EqualFold(c.ID, raw) || strings.EqualFold(c.Name, raw) {
			return c.ID
		}
	}
	// Unknown value passes through and simply matches nothing.
	return raw
}

func weekStartDay(s string) time.Weekday {
	if s == "sunday" {
		return time.Sunday
	}
	return time.Monday
}

// printView writes the month overview, the applied-filter summary and the
// share text to stdout.
func printView(session *filter.Session, conf *config.Config, now time.Time, loc *time.Location) {
	filtered := session.FilteredEvents()
	buckets := agenda.EventsByDay(filtered, loc)

	r, ok := agenda.EventRange(filtered, loc)
	if !ok {
		// No data: fall back to the current month only.
		r = agenda.CurrentMonthRange(now, loc)
	}

	for _, col := range agenda.MonthColumns(r.First, r.Last) {
		fmt.Println(col.Label)
		for _, day := range col.Days() {
			key := agenda.KeyFor(day, loc)
			dayEvents := buckets[key]
			marker := " "
			if agenda.IsDayFree(dayEvents) {
				marker = "·"
			}
			fmt.Printf("  %s %s %2d event(s)\n", key, marker, len(dayEvents))
		}
		fmt.Println()
	}

	if applied := session.AppliedFilters(); len(applied) > 0 {
		labels := make([]string, 0, len(applied))
		for _, a := range applied {
			labels = append(labels, a.Label)
		}
		fmt.Println("Filters: " + strings.Join(labels, " | "))
		fmt.Println()
	}

	text := share.Compose(filtered, loc, share.Format{
		HeadingFormat: conf.Share.HeadingFormat,
		TimeFormat:    conf.Share.TimeFormat,
	})
	if text == "" {
		fmt.Println("No events")
		return
	}
	fmt.Print(text)
}
