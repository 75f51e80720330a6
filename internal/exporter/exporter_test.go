package exporter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"appdash/internal/config"
	"appdash/internal/logging"
	"appdash/pkg/models"
)

func TestToCSV(t *testing.T) {
	view := []models.Application{
		{ID: 3, Title: `Dev "Lead"`, Company: "Acme, Inc", Location: "Toronto, ON", Status: "Applied", DateApplied: "2025-09-15"},
		{ID: 12, Title: "QA", DateApplied: ""},
	}

	got, err := ToCSV(view)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	want := "ID,Title,Company,Location,Status,Date Applied\n" +
		`3,"Dev ""Lead""","Acme, Inc","Toronto, ON","Applied",2025-09-15` + "\n" +
		`12,"QA","","","",`
	if got != want {
		t.Errorf("ToCSV =\n%s\nwant\n%s", got, want)
	}
}

func TestToCSVEmpty(t *testing.T) {
	if _, err := ToCSV(nil); !errors.Is(err, ErrEmptyExport) {
		t.Errorf("err = %v, want ErrEmptyExport", err)
	}
}

func TestToCSVLineCountMatchesView(t *testing.T) {
	view := make([]models.Application, 23)
	for i := range view {
		view[i] = models.Application{ID: i + 1, Title: "line\nbreak"}
	}
	got, _ := ToCSV(view)
	// quoted embedded newlines add one physical line per record
	if n := strings.Count(got, "\n"); n != 23*2 {
		t.Errorf("newline count = %d", n)
	}
}

type fakeUploader struct {
	key  string
	data string
	err  error
}

func (f *fakeUploader) UploadCSVExport(ctx context.Context, objectKey string, data []byte) (string, error) {
	f.key, f.data = objectKey, string(data)
	if f.err != nil {
		return "", f.err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "https://cdn.example.com/" + objectKey, nil
}

func TestPublish(t *testing.T) {
	cfg := config.Default()
	up := &fakeUploader{}
	p := NewPublisherWithUploader(cfg, up, logging.Nop())
	p.now = func() time.Time { return time.Date(2025, 12, 6, 0, 0, 0, 0, time.UTC) }

	url, err := p.Publish(context.Background(), []models.Application{{ID: 1, Title: "Dev"}})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.HasPrefix(up.key, "exports/applications/2025-12-06/") || !strings.HasSuffix(up.key, "-"+FileName) {
		t.Errorf("object key = %q", up.key)
	}
	if url != "https://cdn.example.com/"+up.key {
		t.Errorf("url = %q", url)
	}
	if !strings.HasPrefix(up.data, "ID,Title") {
		t.Errorf("uploaded data = %q", up.data)
	}
}

func TestPublishErrors(t *testing.T) {
	cfg := config.Default()

	p := NewPublisherWithUploader(cfg, &fakeUploader{}, logging.Nop())
	if _, err := p.Publish(context.Background(), nil); !errors.Is(err, ErrEmptyExport) {
		t.Errorf("empty view err = %v", err)
	}

	p = NewPublisherWithUploader(cfg, &fakeUploader{err: errors.New("denied")}, logging.Nop())
	if _, err := p.Publish(context.Background(), []models.Application{{ID: 1}}); !errors.Is(err, ErrUpload) {
		t.Errorf("upload err = %v, want ErrUpload", err)
	}

	unconfigured := NewPublisher(cfg)
	if _, err := unconfigured.Publish(context.Background(), []models.Application{{ID: 1}}); !errors.Is(err, ErrStorageConfig) {
		t.Errorf("unconfigured err = %v, want ErrStorageConfig", err)
	}
}

func TestPublishPassesContextToUploader(t *testing.T) {
	p := NewPublisherWithUploader(config.Default(), &fakeUploader{}, logging.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Publish(ctx, []models.Application{{ID: 1}})
	if !errors.Is(err, context.Canceled) || !errors.Is(err, ErrUpload) {
		t.Errorf("err = %v, want ErrUpload wrapping context.Canceled", err)
	}
}
