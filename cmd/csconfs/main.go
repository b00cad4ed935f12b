package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"csconfs/internal/catalog"
	"csconfs/internal/config"
	"csconfs/internal/deadline"
	appLog "csconfs/internal/log"
	"csconfs/internal/render"
	"csconfs/internal/source"
	"csconfs/internal/web"
)

// flagConfig holds CLI flag values; they override the config file.
type flagConfig struct {
	configPath string
	listen     string
	once       bool
	sort       string
	year       int
	watch      string
	debug      bool
}

func main() {
	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	if flags.listen != "" {
		conf.Listen = flags.listen
	}
	if flags.sort != "" {
		conf.DefaultSort = flags.sort
	}

	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"week_start", conf.WeekStart,
		"refresh", conf.RefreshCron,
		"default_sort", conf.DefaultSort,
		"conferences", conf.Data.Conferences,
		"once", flags.once,
		"watch", flags.watch,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cat := catalog.New(catalog.Options{
		ConferencesPath: conf.Data.Conferences,
		AreaPaths: map[string]string{
			"csrankings": conf.Data.CSRankings,
			"core":       conf.Data.Core,
		},
		AcceptanceURL: conf.Data.AcceptanceURL,
		Fetcher:       source.NewFetcher(conf.CacheDir),
	})
	if err := cat.Reload(ctx, time.Now()); err != nil {
		appLog.Error("initial data load failed", err)
		os.Exit(1)
	}

	switch {
	case flags.watch != "":
		err = runWatch(ctx, cat, flags.watch)
	case flags.once:
		err = runOnce(cat, conf.DefaultSort, flags.year)
	default:
		err = runServe(ctx, conf, cat)
	}
	if err != nil {
		appLog.Error("csconfs failed", err)
		os.Exit(1)
	}
	appLog.Info("csconfs exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./config.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Print the sorted conference list and exit")
	flag.StringVar(&cfg.sort, "sort", "", "Sort key: "+sortKeyNames())
	flag.IntVar(&cfg.year, "year", 0, "Only list conferences of this year (0 = all)")
	flag.StringVar(&cfg.watch, "watch", "", "Show a live countdown for the named conference")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()

	return cfg
}

func sortKeyNames() string {
	keys := deadline.SortKeys()
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, k.String())
	}
	return strings.Join(names, ", ")
}

// runOnce prints the sorted list to stdout.
func runOnce(cat *catalog.Catalog, sortName string, year int) error {
	key, err := deadline.ParseSortKey(sortName)
	if err != nil {
		return err
	}
	now := time.Now()
	records := cat.Snapshot().Select(catalog.Filter{Year: year})
	sorted, err := deadline.SortBy(records, key, now)
	if err != nil {
		return err
	}
	return render.List(os.Stdout, sorted, now)
}

// runWatch prints a countdown every second until interrupted. The first
// upcoming cycle wins when several records share the name.
func runWatch(ctx context.Context, cat *catalog.Catalog, name string) error {
	sorted, err := deadline.SortBy(cat.Snapshot().Conferences, deadline.SortSubmissionDeadline, time.Now())
	if err != nil {
		return err
	}
	for _, c := range sorted {
		if strings.EqualFold(c.Name, name) {
			return render.Watch(ctx, os.Stdout, c, time.Now, time.Second)
		}
	}
	return errors.New("conference not found: " + name)
}

// runServe starts the HTTP API and reloads the catalog on the configured
// cron schedule until ctx is cancelled.
func runServe(ctx context.Context, conf *config.Config, cat *catalog.Catalog) error {
	loc := time.Local
	if l, err := time.LoadLocation(conf.Timezone); err == nil {
		loc = l
	} else {
		appLog.Error("failed to load timezone; scheduling in local time", err, "name", conf.Timezone)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(parser),
		cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
	)
	if _, err := scheduler.AddFunc(conf.RefreshCron, func() {
		if err := cat.Reload(ctx, time.Now()); err != nil {
			appLog.Warn("scheduled reload failed; keeping previous data", "refresh", conf.RefreshCron)
		}
	}); err != nil {
		return err
	}
	scheduler.Start()
	defer func() {
		<-scheduler.Stop().Done()
	}()

	return web.NewServer(conf, cat).Serve(ctx)
}
