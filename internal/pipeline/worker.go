package pipeline

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/docpart/internal/partition"
)

// Worker processes queued partitioning jobs one at a time.
type Worker struct {
	log   *slog.Logger
	stats *PartitionStats
}

func NewWorker(log *slog.Logger, stats *PartitionStats) *Worker {
	return &Worker{log: log, stats: stats}
}

// Process runs the partitioner named by the job strategy over the
// job's file bytes and records the result on the job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename, "strategy", job.Strategy)

	if err := ctx.Err(); err != nil {
		job.AddError(err.Error())
		job.SetStatus(StatusFailed)
		return
	}

	job.SetStatus(StatusPartitioning)

	p, err := partition.ForStrategy(job.Strategy)
	if err != nil {
		log.Error("unknown strategy", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed)
		return
	}

	opts := job.Options()
	if opts.MetadataFilename == "" {
		opts.MetadataFilename = job.Filename
	}

	start := time.Now()
	elems, err := p(partition.Source{File: bytes.NewReader(job.FileData())}, opts)
	if err != nil {
		log.Error("partition failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed)
		return
	}

	job.SetElements(elems)
	job.SetStatus(StatusCompleted)
	if w.stats != nil {
		w.stats.Record(time.Since(start).Milliseconds(), len(elems))
	}
	log.Info("partition complete", "elements", len(elems), "duration_ms", time.Since(start).Milliseconds())
}
