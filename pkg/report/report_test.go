package report

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidmaw/hotdaily/internal/subs"
	"github.com/voidmaw/hotdaily/pkg/cover"
	"github.com/voidmaw/hotdaily/pkg/deliver"
	"github.com/voidmaw/hotdaily/pkg/rank"
	"github.com/voidmaw/hotdaily/pkg/render"
	"github.com/voidmaw/hotdaily/pkg/source"
)

type stubAdapter struct {
	id      string
	section string
	items   []source.HotItem
}

func (s *stubAdapter) ID() string          { return s.id }
func (s *stubAdapter) DisplayName() string { return s.id }
func (s *stubAdapter) Sections() []string  { return []string{s.section} }
func (s *stubAdapter) FetchHot(_ context.Context, section string, _ int) ([]source.HotItem, error) {
	if section != s.section {
		return nil, nil
	}
	return s.items, nil
}

func testItems(coverURL string) []source.HotItem {
	return []source.HotItem{{
		Source:   "stub",
		Section:  source.Section3D,
		Title:    "Top clip",
		URL:      "https://example.com/clip",
		CoverURL: coverURL,
		Views:    source.IntPtr(9000),
	}}
}

// pngDataURI returns a tiny PNG as a data URI so the cover service can cache
// it without network access.
func pngDataURI(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestWorker(t *testing.T, outboxDir string, renderer *render.Renderer, items []source.HotItem) *Worker {
	t.Helper()

	client := source.NewClient("")
	adapter := &stubAdapter{id: "stub", section: source.Section3D, items: items}
	registry := source.NewRegistry(func(string) bool { return true }, adapter)

	dir := t.TempDir()
	subStore := subs.NewStore(filepath.Join(dir, "subs.json"))
	require.NoError(t, subStore.SetEnabled("room-1", true))

	return NewWorker(
		rank.NewService(registry, nil, 0),
		cover.NewService(client, filepath.Join(dir, "covers"), 0),
		renderer,
		deliver.NewManager([]deliver.Deliverer{deliver.NewOutbox(outboxDir)}),
		subStore,
		nil,
		[]string{source.Section3D, source.SectionReal},
	)
}

func localRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	return render.New(source.NewClient(""), render.Options{}, t.TempDir())
}

type outboxJSON struct {
	Session    string   `json:"session"`
	Reason     string   `json:"reason"`
	Text       string   `json:"text"`
	ImageFile  string   `json:"image_file"`
	CoverFiles []string `json:"cover_files"`
}

func readOutboxRecords(t *testing.T, dir string) []outboxJSON {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var records []outboxJSON
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		var rec outboxJSON
		require.NoError(t, json.Unmarshal(raw, &rec))
		records = append(records, rec)
	}
	return records
}

func TestProcessDeliversToSubscribers(t *testing.T) {
	outbox := t.TempDir()
	w := newTestWorker(t, outbox, localRenderer(t), testItems(""))

	require.NoError(t, w.Process(context.Background(), Request{Reason: "manual"}))

	records := readOutboxRecords(t, outbox)
	require.Len(t, records, 1)
	assert.Equal(t, "room-1", records[0].Session)
	assert.Equal(t, "manual", records[0].Reason)
	if records[0].ImageFile != "" {
		assert.FileExists(t, filepath.Join(outbox, records[0].ImageFile))
	} else {
		assert.Contains(t, records[0].Text, "Top clip")
	}
}

func TestProcessPlainModeDeliversText(t *testing.T) {
	outbox := t.TempDir()
	w := newTestWorker(t, outbox, nil, testItems(pngDataURI(t)))

	require.NoError(t, w.Process(context.Background(), Request{Reason: "schedule"}))

	records := readOutboxRecords(t, outbox)
	require.Len(t, records, 1)
	rec := records[0]
	assert.Empty(t, rec.ImageFile, "plain delivery must not render an image")
	assert.Contains(t, rec.Text, "Top clip")
	assert.Contains(t, rec.Text, "https://example.com/clip")
	require.Len(t, rec.CoverFiles, 1, "cached cover rides along with the text report")
	assert.FileExists(t, filepath.Join(outbox, rec.CoverFiles[0]))
}

func TestProcessExplicitTargets(t *testing.T) {
	outbox := t.TempDir()
	w := newTestWorker(t, outbox, localRenderer(t), testItems(""))

	require.NoError(t, w.Process(context.Background(), Request{Reason: "manual", Targets: []string{"other-room"}}))

	records := readOutboxRecords(t, outbox)
	require.NotEmpty(t, records)
	for _, rec := range records {
		assert.Equal(t, "other-room", rec.Session, "explicit targets bypass subscriptions")
	}
}

func TestProcessNoTargetsIsNoop(t *testing.T) {
	outbox := t.TempDir()
	w := newTestWorker(t, outbox, localRenderer(t), testItems(""))
	w.subs = subs.NewStore(filepath.Join(t.TempDir(), "empty.json"))

	require.NoError(t, w.Process(context.Background(), Request{Reason: "schedule"}))

	entries, err := os.ReadDir(outbox)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEnqueueDropsWhenFull(t *testing.T) {
	w := newTestWorker(t, t.TempDir(), nil, testItems(""))
	for i := 0; i < cap(w.requests); i++ {
		assert.True(t, w.Enqueue(Request{Reason: "manual"}))
	}
	assert.False(t, w.Enqueue(Request{Reason: "manual"}))
}
