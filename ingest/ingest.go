// Package ingest converts uploaded files into memory records.
//
// Each upload is handled independently: a failure drops that upload, removes any media
// side-file already written for it, and never affects the rest of the batch.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/becomeliminal/memory-vault/core"
	"github.com/becomeliminal/memory-vault/log"
)

// DefaultWorkers is the number of uploads processed concurrently.
const DefaultWorkers = 4

// Outcome is the result of ingesting one upload. Exactly one of Record and Err is meaningful.
type Outcome struct {
	Upload core.Upload
	Record core.Record
	Err    error
}

// OK reports whether the upload produced a record.
func (o Outcome) OK() bool {
	return o.Err == nil
}

// Ingestor drives the Normalizer across batches of uploads.
type Ingestor struct {
	normalizer  *Normalizer
	media       *MediaDir
	scratchDir  string
	workers     int
	extractYear bool
	now         func() time.Time
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithWorkers bounds concurrent uploads. Values below one are ignored.
func WithWorkers(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithScratchDir sets where temporary copies are written. Defaults to os.TempDir.
func WithScratchDir(dir string) Option {
	return func(i *Ingestor) {
		i.scratchDir = dir
	}
}

// WithYearExtraction tags records with the first year found in their content.
func WithYearExtraction() Option {
	return func(i *Ingestor) {
		i.extractYear = true
	}
}

// WithClock overrides the upload time source.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) {
		i.now = now
	}
}

// NewIngestor creates an Ingestor.
func NewIngestor(normalizer *Normalizer, media *MediaDir, opts ...Option) *Ingestor {
	i := &Ingestor{
		normalizer: normalizer,
		media:      media,
		workers:    DefaultWorkers,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest returns the records of every upload that succeeded, in input order.
func (i *Ingestor) Ingest(ctx context.Context, uploads []core.Upload) []core.Record {
	outcomes := i.Process(ctx, uploads)
	records := make([]core.Record, 0, len(outcomes))
	for _, o := range outcomes {
		if o.OK() {
			records = append(records, o.Record)
		}
	}
	return records
}

// Process ingests every upload and reports the outcome of each, in input order.
func (i *Ingestor) Process(ctx context.Context, uploads []core.Upload) []Outcome {
	logger := log.Component(ctx, "ingest")
	outcomes := make([]Outcome, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for idx, upload := range uploads {
		g.Go(func() error {
			rec, err := i.ingestOne(gctx, upload)
			outcomes[idx] = Outcome{Upload: upload, Record: rec, Err: err}
			if err != nil {
				logger.Warn().Err(err).Str("filename", upload.Filename).Str("source_type", upload.SourceType.String()).Msg("dropping upload")
			}
			// Per-upload failures never cancel siblings.
			return nil
		})
	}
	_ = g.Wait()

	ok := 0
	for _, o := range outcomes {
		if o.OK() {
			ok++
		}
	}
	logger.Info().Int("uploads", len(uploads)).Int("ingested", ok).Msg("batch processed")

	return outcomes
}

func (i *Ingestor) ingestOne(ctx context.Context, upload core.Upload) (rec core.Record, err error) {
	if !upload.SourceType.Valid() {
		return core.Record{}, fmt.Errorf("%w: %q", core.ErrUnknownSourceType, upload.SourceType)
	}

	var mediaPath string
	if upload.SourceType.IsMedia() {
		mediaPath, err = i.media.Save(upload.Filename, upload.Data)
		if err != nil {
			return core.Record{}, err
		}
		defer func() {
			if err == nil {
				return
			}
			if rmErr := i.media.Remove(mediaPath); rmErr != nil {
				log.Component(ctx, "ingest").Warn().Err(rmErr).Str("file_path", mediaPath).Msg("media cleanup failed")
			}
		}()
	}

	scratch, err := i.writeScratch(upload)
	if err != nil {
		return core.Record{}, err
	}
	defer os.Remove(scratch)

	content, err := i.normalizer.Normalize(ctx, upload.SourceType, scratch, upload.Description)
	if err != nil {
		return core.Record{}, fmt.Errorf("normalize %s: %w", upload.Filename, err)
	}

	rec = core.Record{
		Content:    content,
		Filename:   upload.Filename,
		SourceType: upload.SourceType,
		UploadTime: i.now(),
		FilePath:   mediaPath,
	}
	if i.extractYear {
		rec.Year = core.ExtractYear(content)
	}
	return rec, nil
}

// writeScratch copies the upload to a temporary file that keeps the original extension,
// so decoders that sniff by name still work.
func (i *Ingestor) writeScratch(upload core.Upload) (string, error) {
	f, err := os.CreateTemp(i.scratchDir, "vault-*"+filepath.Ext(baseName(upload.Filename)))
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	name := f.Name()

	if _, err := f.Write(upload.Data); err != nil {
		f.Close()
		os.Remove(name)
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", fmt.Errorf("close scratch file: %w", err)
	}
	return name, nil
}
