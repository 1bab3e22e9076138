package deliver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestWebhookSendsCoversAndSignature(t *testing.T) {
	coverA := []byte("cover-a-bytes")
	coverB := []byte("cover-b-bytes")
	msg := &Message{
		Reason: "schedule",
		Text:   "daily report",
		CoverPaths: []string{
			writeTempFile(t, "a.png", coverA),
			writeTempFile(t, "b.png", coverB),
		},
	}

	var gotBody []byte
	var gotSig string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		gotSig = r.Header.Get("X-Signature-256")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, "s3cret")
	require.NoError(t, wh.Send(context.Background(), "room-1", msg))

	var p struct {
		Session      string   `json:"session"`
		Text         string   `json:"text"`
		CoversBase64 []string `json:"covers_base64"`
	}
	require.NoError(t, json.Unmarshal(gotBody, &p))
	assert.Equal(t, "room-1", p.Session)
	assert.Equal(t, "daily report", p.Text)
	require.Len(t, p.CoversBase64, 2)
	decoded, err := base64.StdEncoding.DecodeString(p.CoversBase64[0])
	require.NoError(t, err)
	assert.Equal(t, coverA, decoded)
	decoded, err = base64.StdEncoding.DecodeString(p.CoversBase64[1])
	require.NoError(t, err)
	assert.Equal(t, coverB, decoded)

	mac := hmac.New(sha256.New, []byte("s3cret"))
	mac.Write(gotBody)
	assert.Equal(t, "sha256="+hex.EncodeToString(mac.Sum(nil)), gotSig)
}

func TestWebhookNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	wh := NewWebhook(srv.URL, "")
	err := wh.Send(context.Background(), "room-1", &Message{Reason: "manual", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestOutboxCopiesCovers(t *testing.T) {
	dir := t.TempDir()
	coverData := []byte("mosaicked-cover")
	msg := &Message{
		Reason:     "schedule",
		Text:       "daily report",
		CoverPaths: []string{writeTempFile(t, "c.png", coverData)},
	}

	ob := NewOutbox(dir)
	require.NoError(t, ob.Send(context.Background(), "room-1", msg))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var rec struct {
		Session    string   `json:"session"`
		Text       string   `json:"text"`
		CoverFiles []string `json:"cover_files"`
	}
	found := false
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".json" {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, e.Name()))
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &rec))
		found = true
	}
	require.True(t, found)
	assert.Equal(t, "room-1", rec.Session)
	require.Len(t, rec.CoverFiles, 1)
	copied, err := os.ReadFile(filepath.Join(dir, rec.CoverFiles[0]))
	require.NoError(t, err)
	assert.Equal(t, coverData, copied)
}

func TestManagerJoinsFailures(t *testing.T) {
	good := NewOutbox(t.TempDir())
	bad := NewWebhook("http://127.0.0.1:0/unreachable", "")

	m := NewManager([]Deliverer{bad, good})
	err := m.Send(context.Background(), "room-1", &Message{Reason: "manual", Text: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook")

	entries, readErr := os.ReadDir(good.dir)
	require.NoError(t, readErr)
	assert.NotEmpty(t, entries, "one failing destination must not block the rest")
}
