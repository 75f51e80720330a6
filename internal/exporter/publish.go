package exporter

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"appdash/internal/config"
	"appdash/internal/logging"
	"appdash/internal/logging/types"
	"appdash/pkg/models"
	"appdash/pkg/utils"
)

// Uploader stores a CSV object and returns its public URL
type Uploader interface {
	UploadCSVExport(ctx context.Context, objectKey string, data []byte) (string, error)
}

// Publisher uploads CSV exports to object storage
type Publisher struct {
	mu       sync.Mutex
	cfg      *config.Config
	uploader Uploader
	logger   types.Logger
	now      func() time.Time
}

// NewPublisher creates a publisher backed by DigitalOcean Spaces. The storage
// client is created on first use so an unconfigured bucket only fails publishes.
func NewPublisher(cfg *config.Config) *Publisher {
	return &Publisher{
		cfg:    cfg,
		logger: logging.GetGlobalLogger(),
		now:    time.Now,
	}
}

// NewPublisherWithUploader creates a publisher with an explicit storage backend
func NewPublisherWithUploader(cfg *config.Config, uploader Uploader, logger types.Logger) *Publisher {
	return &Publisher{cfg: cfg, uploader: uploader, logger: logger, now: time.Now}
}

// Publish renders the view and uploads it, returning the object URL
func (p *Publisher) Publish(ctx context.Context, view []models.Application) (string, error) {
	csv, err := ToCSV(view)
	if err != nil {
		return "", err
	}

	uploader, err := p.storage()
	if err != nil {
		return "", err
	}

	key := p.objectKey()
	url, err := uploader.UploadCSVExport(ctx, key, []byte(csv))
	if err != nil {
		p.logger.Error("Failed to upload CSV export", map[string]interface{}{
			"object_key": key,
			"rows":       len(view),
			"error":      err.Error(),
		})
		return "", fmt.Errorf("%w: %w", ErrUpload, err)
	}

	p.logger.Info("CSV export published", map[string]interface{}{
		"object_key": key,
		"rows":       len(view),
		"url":        url,
	})
	return url, nil
}

func (p *Publisher) storage() (Uploader, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.uploader == nil {
		spaces, err := utils.NewSpacesClient(p.cfg)
		if err != nil {
			p.logger.Error("Storage not configured for export", map[string]interface{}{
				"error": err.Error(),
			})
			return nil, fmt.Errorf("%w: %v", ErrStorageConfig, err)
		}
		p.uploader = spaces
	}
	return p.uploader, nil
}

// objectKey is <prefix>/<date>/<uuid>-<file name>
func (p *Publisher) objectKey() string {
	prefix := strings.Trim(p.cfg.Export.PublishPrefix, "/")
	name := utils.GetStringOrDefault(p.cfg.Export.FileName, FileName)
	return path.Join(prefix, p.now().UTC().Format("2006-01-02"), uuid.New().String()+"-"+name)
}
