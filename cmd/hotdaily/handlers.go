package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voidmaw/hotdaily/internal/config"
	"github.com/voidmaw/hotdaily/internal/logging"
	"github.com/voidmaw/hotdaily/internal/scheduler"
	"github.com/voidmaw/hotdaily/internal/store"
	"github.com/voidmaw/hotdaily/internal/subs"
	"github.com/voidmaw/hotdaily/pkg/cover"
	"github.com/voidmaw/hotdaily/pkg/deliver"
	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/render"
	"github.com/voidmaw/hotdaily/pkg/report"
	"github.com/voidmaw/hotdaily/pkg/server"
	"github.com/voidmaw/hotdaily/pkg/source"
)

const cacheTTL = 600 * time.Second

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		path = os.Getenv("HOTDAILY_CONFIG")
	}
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.LogLevel, "hotdaily")
	return cfg, nil
}

// app bundles the wired services behind every command.
type app struct {
	cfg      *config.Config
	client   *source.Client
	registry *source.Registry
	ranker   *rank.Service
	covers   *cover.Service
	renderer *render.Renderer
	subs     *subs.Store
	sections []string
}

func buildApp(cfg *config.Config) *app {
	client := source.NewClient(cfg.Proxy)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	registry := source.NewRegistry(cfg.SourceEnabled, source.DefaultAdapters(client, rng)...)

	var sections []string
	for _, s := range source.AllSections() {
		sections = append(sections, s.Key)
	}

	return &app{
		cfg:      cfg,
		client:   client,
		registry: registry,
		ranker:   rank.NewService(registry, rank.NewCache(cacheTTL, nil), 0),
		covers:   cover.NewService(client, filepath.Join(cfg.CacheDir, "covers"), cfg.MosaicLevel),
		renderer: buildRenderer(cfg, client),
		subs:     subs.NewStore(filepath.Join(cfg.CacheDir, "subscriptions.json")),
		sections: sections,
	}
}

// buildRenderer returns nil in plain mode so the worker takes the text path.
func buildRenderer(cfg *config.Config, client *source.Client) *render.Renderer {
	if cfg.DeliveryMode != "html_image" {
		return nil
	}
	opts := render.Options{
		Endpoint:       cfg.Render.Endpoint,
		TemplatePath:   cfg.Render.Template,
		SendMode:       cfg.Render.SendMode,
		ImageType:      cfg.Render.ImageType,
		Quality:        cfg.Render.Quality,
		FullPage:       cfg.Render.FullPage,
		OmitBackground: cfg.Render.OmitBackground,
		TimeoutMS:      cfg.Render.TimeoutMS,
	}
	return render.New(client, opts, filepath.Join(cfg.CacheDir, "reports"))
}

func buildManager(cfg *config.Config) *deliver.Manager {
	var deliverers []deliver.Deliverer
	if cfg.Delivery.WebhookURL != "" {
		deliverers = append(deliverers, deliver.NewWebhook(cfg.Delivery.WebhookURL, cfg.Delivery.WebhookSecret))
	}
	if cfg.Delivery.OutboxDir != "" {
		deliverers = append(deliverers, deliver.NewOutbox(cfg.Delivery.OutboxDir))
	}
	return deliver.NewManager(deliverers)
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	a := buildApp(cfg)
	worker := report.NewWorker(a.ranker, a.covers, a.renderer, buildManager(cfg), a.subs, db, a.sections)
	sched := scheduler.New(worker, cfg.TriggerTime, nil)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		if err := worker.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("report worker stopped")
		}
	}()
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("scheduler stopped")
		}
	}()

	srv := server.New(db, a.registry, a.subs, worker, port)
	err = srv.ListenAndServe(ctx)
	if ctx.Err() != nil {
		log.Info().Msg("shut down")
		return nil
	}
	return err
}

func runReport(session string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	a := buildApp(cfg)
	worker := report.NewWorker(a.ranker, a.covers, a.renderer, buildManager(cfg), a.subs, db, a.sections)

	req := report.Request{Reason: "manual"}
	if session != "" {
		req.Targets = []string{session}
	}
	return worker.Process(context.Background(), req)
}

func runFetch(sourceID, section string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a := buildApp(cfg)
	adapter := a.registry.Get(sourceID)
	if adapter == nil {
		return fmt.Errorf("unknown source %q (see: hotdaily sources)", sourceID)
	}

	if section == "" {
		section = adapter.Sections()[0]
	} else {
		section = source.NormalizeSection(section)
		if section == "" {
			return fmt.Errorf("unknown section (see: hotdaily sections)")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	items, err := adapter.FetchHot(ctx, section, limit)
	if err != nil {
		if errors.Is(err, source.ErrBlocked) {
			return fmt.Errorf("%s refused automated access: %w", sourceID, err)
		}
		return fmt.Errorf("fetch %s: %w", sourceID, err)
	}
	if len(items) == 0 {
		fmt.Printf("%s returned no items for section %s\n", sourceID, section)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tVIEWS\tSTARS\tTITLE")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", it.Score(), fmtCount(it.Views), fmtCount(it.Stars), it.Title)
	}
	return w.Flush()
}

func runSources() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a := buildApp(cfg)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSECTIONS\tENABLED\tMANUAL")
	for _, info := range a.registry.List() {
		fmt.Fprintf(w, "%s\t%s\t%v\t%v\t%v\n",
			info.ID, info.DisplayName, info.Sections, info.Enabled, info.ManualOnly)
	}
	return w.Flush()
}

func runPicks(jsonOutput bool, section string, limit int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	opts := store.ListOpts{Limit: limit}
	if section != "" {
		opts.Section = source.NormalizeSection(section)
	}
	picks, err := db.ListPicks(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("list picks: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(picks)
	}

	if len(picks) == 0 {
		fmt.Println("no picks recorded yet (try: hotdaily report)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PICKED AT\tSECTION\tSOURCE\tSCORE\tTITLE")
	for _, p := range picks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			p.PickedAt.Format(time.RFC3339), p.Section, p.Source, p.Score, p.Title)
	}
	return w.Flush()
}

func runSub(action, session string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a := buildApp(cfg)

	switch action {
	case "on", "off":
		if session == "" {
			return fmt.Errorf("--session is required for sub %s", action)
		}
		if err := a.subs.SetEnabled(session, action == "on"); err != nil {
			return fmt.Errorf("update subscription: %w", err)
		}
		fmt.Printf("subscription for %s: %s\n", session, action)
		return nil
	case "list":
		sessions := a.subs.ListEnabled()
		if len(sessions) == 0 {
			fmt.Println("no subscribed sessions")
			return nil
		}
		for _, s := range sessions {
			fmt.Println(s)
		}
		return nil
	default:
		return fmt.Errorf("unknown action %q (want on, off, or list)", action)
	}
}

func runSections() error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tDISPLAY")
	for _, s := range source.AllSections() {
		fmt.Fprintf(w, "%s\t%s\n", s.Key, s.Display)
	}
	return w.Flush()
}

func fmtCount(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}
