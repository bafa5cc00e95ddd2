package runner

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourceplane/campaignctl/internal/campaign"
	"github.com/sourceplane/campaignctl/internal/schema"
	"golang.org/x/sync/errgroup"
)

// Loader is the part of loader.Loader the runner needs
type Loader interface {
	Load(path string) (*campaign.Model, error)
}

// Result is the outcome of validating one campaign file
type Result struct {
	Path     string               `json:"path" yaml:"path"`
	Valid    bool                 `json:"valid" yaml:"valid"`
	Campaign string               `json:"campaign,omitempty" yaml:"campaign,omitempty"`
	Errors   []*schema.FieldError `json:"errors,omitempty" yaml:"errors,omitempty"`
	Fatal    string               `json:"fatal,omitempty" yaml:"fatal,omitempty"` // unreadable or unparseable file
	Duration time.Duration        `json:"-" yaml:"-"`
	Model    *campaign.Model      `json:"-" yaml:"-"`
}

// Runner validates many campaign files concurrently
type Runner struct {
	loader      Loader
	concurrency int
	log         zerolog.Logger
}

// NewRunner creates a runner with at most concurrency files in flight
func NewRunner(loader Loader, concurrency int, log zerolog.Logger) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{loader: loader, concurrency: concurrency, log: log}
}

// Run validates every path. Results are returned in input order. The only
// error returned is ctx's; per-file failures are reported in the results.
func (r *Runner) Run(ctx context.Context, paths []string) ([]Result, error) {
	results := make([]Result, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = r.validate(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) validate(path string) Result {
	start := time.Now()
	m, err := r.loader.Load(path)
	res := Result{Path: path, Duration: time.Since(start)}

	var verr *schema.ValidationError
	switch {
	case err == nil:
		res.Valid = true
		res.Model = m
		res.Campaign = m.Metadata().Name
		r.log.Debug().Str("path", path).Dur("took", res.Duration).Msg("campaign valid")
	case errors.As(err, &verr):
		res.Errors = verr.Errors
		r.log.Debug().Str("path", path).Int("errors", len(verr.Errors)).Msg("campaign invalid")
	default:
		res.Fatal = err.Error()
		r.log.Warn().Err(err).Str("path", path).Msg("campaign could not be loaded")
	}
	return res
}

// Failed reports whether any result is invalid
func Failed(results []Result) bool {
	for _, res := range results {
		if !res.Valid {
			return true
		}
	}
	return false
}
