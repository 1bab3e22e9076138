// Package report builds the daily picks report and delivers it to subscribed
// sessions, one request at a time.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/voidmaw/hotdaily/internal/store"
	"github.com/voidmaw/hotdaily/internal/subs"
	"github.com/voidmaw/hotdaily/pkg/cover"
	"github.com/voidmaw/hotdaily/pkg/deliver"
	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/render"
	"github.com/voidmaw/hotdaily/pkg/source"
)

// Request asks the worker for one report cycle. Empty Targets means every
// subscribed session.
type Request struct {
	Reason  string
	Targets []string
}

// Worker consumes report requests from a channel and processes them
// sequentially, so a manual trigger never races the scheduled one.
type Worker struct {
	ranker   *rank.Service
	covers   *cover.Service
	renderer *render.Renderer
	manager  *deliver.Manager
	subs     *subs.Store
	history  store.Store // nil disables pick history
	sections []string
	requests chan Request
}

// NewWorker wires a report worker. sections is the ordered list to report on;
// a nil renderer switches delivery to the plain text report.
func NewWorker(ranker *rank.Service, covers *cover.Service, renderer *render.Renderer,
	manager *deliver.Manager, subStore *subs.Store, history store.Store, sections []string) *Worker {
	return &Worker{
		ranker:   ranker,
		covers:   covers,
		renderer: renderer,
		manager:  manager,
		subs:     subStore,
		history:  history,
		sections: sections,
		requests: make(chan Request, 8),
	}
}

// Enqueue submits a request without blocking; a full queue drops the request
// since another cycle is already pending.
func (w *Worker) Enqueue(req Request) bool {
	select {
	case w.requests <- req:
		return true
	default:
		log.Warn().Str("reason", req.Reason).Msg("report queue full, dropping request")
		return false
	}
}

// Run consumes requests until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-w.requests:
			if err := w.Process(ctx, req); err != nil {
				log.Error().Str("reason", req.Reason).Err(err).Msg("report cycle failed")
			}
		}
	}
}

// Process runs one full report cycle: rank, cover, render, deliver, record.
func (w *Worker) Process(ctx context.Context, req Request) error {
	targets := req.Targets
	if len(targets) == 0 {
		targets = w.subs.ListEnabled()
	}
	if len(targets) == 0 {
		log.Info().Str("reason", req.Reason).Msg("no report targets, skipping cycle")
		return nil
	}

	picks, err := w.ranker.DailyPicks(ctx, w.sections)
	if err != nil {
		return fmt.Errorf("compute picks: %w", err)
	}
	if len(picks) == 0 {
		log.Warn().Str("reason", req.Reason).Msg("every section came up empty")
		return nil
	}

	covers := make(map[string]string)
	for _, p := range picks {
		if p.Item.CoverURL == "" {
			continue
		}
		if path, ok := w.covers.CoverPath(ctx, p.Item.CoverURL); ok {
			covers[p.Item.CoverURL] = path
		}
	}

	// A nil renderer means plain delivery; text plus the cached covers.
	msg := &deliver.Message{Reason: req.Reason}
	if w.renderer != nil {
		imagePath, err := w.renderer.Report(ctx, reportTitle(), picks, covers)
		if err != nil {
			log.Warn().Err(err).Msg("render failed, falling back to text")
		} else {
			msg.ImagePath = imagePath
		}
	}
	if msg.ImagePath == "" {
		msg.Text = textReport(picks)
		for _, p := range picks {
			if path, ok := covers[p.Item.CoverURL]; ok {
				msg.CoverPaths = append(msg.CoverPaths, path)
			}
		}
	}

	if w.history != nil {
		rows := make([]store.Pick, 0, len(picks))
		for _, p := range picks {
			rows = append(rows, store.PickFromItem(p.Section, req.Reason, p.Item))
		}
		if err := w.history.RecordPicks(ctx, req.Reason, rows); err != nil {
			log.Warn().Err(err).Msg("record picks failed")
		}
	}

	for _, target := range targets {
		if err := w.manager.Send(ctx, target, msg); err != nil {
			log.Warn().Str("session", target).Err(err).Msg("delivery failed")
		}
	}
	return nil
}

func reportTitle() string {
	return "今日热门 " + time.Now().Format("01-02")
}

// textReport is the plain fallback when no image could be produced.
func textReport(picks []rank.Pick) string {
	var b strings.Builder
	b.WriteString(reportTitle())
	for _, p := range picks {
		fmt.Fprintf(&b, "\n\n【%s】%s\n%s · %s\n%s",
			source.SectionDisplay(p.Section), p.Item.Title,
			p.Item.Source, render.StatsLine(p.Item), p.Item.URL)
	}
	return b.String()
}
