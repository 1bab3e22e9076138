package deliver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Outbox writes deliveries to a local directory, one JSON file per message
// plus a copy of the report image. Useful for local runs and for bridges that
// poll a shared directory instead of exposing an endpoint.
type Outbox struct {
	dir string
}

// NewOutbox creates an outbox deliverer rooted at dir.
func NewOutbox(dir string) *Outbox {
	return &Outbox{dir: dir}
}

func (o *Outbox) Name() string { return "outbox" }

type outboxRecord struct {
	Session    string    `json:"session"`
	Reason     string    `json:"reason"`
	Text       string    `json:"text,omitempty"`
	ImageFile  string    `json:"image_file,omitempty"`
	CoverFiles []string  `json:"cover_files,omitempty"`
	SentAt     time.Time `json:"sent_at"`
}

func (o *Outbox) Send(_ context.Context, session string, msg *Message) error {
	if err := os.MkdirAll(o.dir, 0o755); err != nil {
		return fmt.Errorf("create outbox dir: %w", err)
	}

	stamp := time.Now().UnixNano()
	rec := outboxRecord{
		Session: session,
		Reason:  msg.Reason,
		Text:    msg.Text,
		SentAt:  time.Now().UTC(),
	}

	if msg.ImagePath != "" {
		imgName := fmt.Sprintf("%d%s", stamp, filepath.Ext(msg.ImagePath))
		if err := copyFile(msg.ImagePath, filepath.Join(o.dir, imgName)); err != nil {
			return fmt.Errorf("copy report image: %w", err)
		}
		rec.ImageFile = imgName
	}

	for i, path := range msg.CoverPaths {
		name := fmt.Sprintf("%d-cover-%d%s", stamp, i, filepath.Ext(path))
		if err := copyFile(path, filepath.Join(o.dir, name)); err != nil {
			return fmt.Errorf("copy cover image: %w", err)
		}
		rec.CoverFiles = append(rec.CoverFiles, name)
	}

	raw, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal outbox record: %w", err)
	}
	name := filepath.Join(o.dir, fmt.Sprintf("%d.json", stamp))
	if err := os.WriteFile(name, raw, 0o644); err != nil {
		return fmt.Errorf("write outbox record: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
