package assetbuild

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/assetforge/internal/logger"
	"github.com/Faultbox/assetforge/internal/script"
)

// PathMapper decides where a job's artifact is written.
type PathMapper interface {
	Target(job Job) string
}

// IdentityMapper keeps the target named in the asset list.
type IdentityMapper struct{}

func (IdentityMapper) Target(job Job) string {
	return job.Target
}

// Result is the outcome of one job.
type Result struct {
	Job Job
	Err error
}

// Report collects the results of a run in asset list order.
type Report struct {
	Results []Result
}

// Failed returns the results that have an error.
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins every job failure, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}

// Runner builds jobs concurrently. Each worker owns one script session.
type Runner struct {
	Registry *Registry
	Mapper   PathMapper
	Workers  int
}

// Run builds every job. A failing job does not stop the others; failures are
// reported in the Report. The returned error is non-nil only if ctx ended the run.
func (r *Runner) Run(ctx context.Context, jobs []Job) (*Report, error) {
	report := &Report{Results: make([]Result, len(jobs))}
	for i, job := range jobs {
		report.Results[i].Job = job
	}

	mapper := r.Mapper
	if mapper == nil {
		mapper = IdentityMapper{}
	}
	workers := min(max(r.Workers, 1), max(len(jobs), 1))

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan int)

	g.Go(func() error {
		defer close(queue)
		for i := range jobs {
			select {
			case queue <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for id := range workers {
		g.Go(func() error {
			w := &Worker{ID: id, Session: script.Open()}
			defer w.Session.Close()

			for i := range queue {
				if err := ctx.Err(); err != nil {
					return err
				}
				job := jobs[i]
				job.Target = mapper.Target(job)
				report.Results[i].Job = job
				report.Results[i].Err = r.build(w, job)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}

	if failed := len(report.Failed()); failed > 0 {
		logger.Error("asset build finished with errors",
			zap.Int("assets", len(jobs)), zap.Int("failed", failed))
	} else {
		logger.Info("asset build finished", zap.Int("assets", len(jobs)))
	}
	return report, nil
}

func (r *Runner) build(w *Worker, job Job) error {
	b, err := r.Registry.Lookup(job.Type)
	if err != nil {
		return fmt.Errorf("%s: %w", job.Source, err)
	}
	logger.Debug("building asset",
		zap.Int("worker", w.ID),
		zap.String("type", job.Type),
		zap.String("source", job.Source),
		zap.String("target", job.Target),
	)
	return b.Build(w, job)
}

// ErrorLine formats a failure as "<path>: error: <message>", dropping a
// leading path already present in the message.
func ErrorLine(path string, err error) string {
	msg := strings.TrimPrefix(err.Error(), path+": ")
	return fmt.Sprintf("%s: error: %s", path, msg)
}

// MissingArgumentsMessage describes a builder invoked with fewer than the two
// required positional arguments.
func MissingArgumentsMessage(given int) string {
	provided := "none were provided"
	if given == 1 {
		provided = "only 1 was provided"
	}
	return "An asset builder must be called with at least 2 command line arguments " +
		"(the source path and the target path), but " + provided
}
