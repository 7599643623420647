package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gopherwall/gopherwall/pkg/models"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ManifestFile lists every report produced by a batch run
const ManifestFile = "manifest.json"

// ErrReportWrite wraps failure of a single report in a batch
type ErrReportWrite struct {
	Kind Kind
	Path string
	Err  error
}

func (e ErrReportWrite) Error() string {
	return fmt.Sprintf("report %s (%s): %s", e.Kind, e.Path, e.Err)
}

func (e ErrReportWrite) Unwrap() error { return e.Err }

// BatchConfig is used for passing params to RunBatch
type BatchConfig struct {
	OutDir  string
	Kinds   []Kind
	Workers int
	Options Options
}

/*
Validate implements a standard interface for checking config struct validity and setting
sane default values.
*/
func (c *BatchConfig) Validate() error {
	if c.OutDir == "" {
		return errors.New("missing output dir")
	}
	if len(c.Kinds) == 0 {
		c.Kinds = Kinds
	}
	if c.Workers < 1 {
		c.Workers = len(c.Kinds)
	}
	return nil
}

// Generated describes outcome of one report in a batch
type Generated struct {
	Kind    Kind          `json:"type"`
	Path    string        `json:"file"`
	Size    int64         `json:"size"`
	Entries int           `json:"entries"`
	Took    time.Duration `json:"took"`
	Error   string        `json:"error,omitempty"`

	err error
}

// Manifest is the joined result of a batch run
type Manifest struct {
	Generated time.Time   `json:"generated"`
	Events    int         `json:"events"`
	Reports   []Generated `json:"reports"`
}

// Errors returns failures of individual reports
func (m Manifest) Errors() []error {
	tx := make([]error, 0)
	for _, r := range m.Reports {
		if r.err != nil {
			tx = append(tx, r.err)
		}
	}
	return tx
}

// TotalSize sums sizes of successfully written reports
func (m Manifest) TotalSize() (size int64) {
	for _, r := range m.Reports {
		size += r.Size
	}
	return size
}

/*
RunBatch builds and writes every requested report concurrently. A failing report never stops
its siblings, failures are recorded in the returned manifest which is written to OutDir once
all workers are done.
*/
func RunBatch(ctx context.Context, events []models.Event, c BatchConfig) (*Manifest, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	stat, err := os.Stat(c.OutDir)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(c.OutDir, 0750); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	} else if !stat.IsDir() {
		return nil, fmt.Errorf("output path %s exists and is not a directory", c.OutDir)
	}

	m := &Manifest{
		Generated: time.Now().UTC(),
		Events:    len(events),
		Reports:   make([]Generated, len(c.Kinds)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.Workers)
	for i, kind := range c.Kinds {
		i, kind := i, kind
		g.Go(func() error {
			m.Reports[i] = generate(gctx, events, kind, filepath.Join(c.OutDir, kind.FileName()), c.Options)
			return nil
		})
	}
	g.Wait()

	if _, err := Write(filepath.Join(c.OutDir, ManifestFile), m); err != nil {
		return m, fmt.Errorf("manifest: %w", err)
	}
	return m, nil
}

func generate(ctx context.Context, events []models.Event, kind Kind, path string, o Options) Generated {
	lctx := logrus.WithField("report", kind)
	start := time.Now()
	res := Generated{Kind: kind, Path: path}
	fail := func(err error) Generated {
		res.err = ErrReportWrite{Kind: kind, Path: path, Err: err}
		res.Error = err.Error()
		res.Took = time.Since(start)
		lctx.Error(res.err)
		return res
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	lctx.Debug("building report")
	doc, err := Build(kind, events, o)
	if err != nil {
		return fail(err)
	}
	size, err := Write(path, doc)
	if err != nil {
		return fail(err)
	}
	res.Size = size
	res.Entries = Len(doc)
	res.Took = time.Since(start)
	lctx.
		WithField("path", path).
		WithField("size", size).
		WithField("took", res.Took).
		Info("report written")
	return res
}
