package jobs

import (
	"context"
	"log/slog"

	"github.com/cutekitek/rankode-jplag/internal/mappers"
	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/repository/models"
	"github.com/cutekitek/rankode-jplag/internal/runner"
	"github.com/pkg/errors"
)

// ResultSink stores the rows of a contest, replacing whatever was stored before.
type ResultSink interface {
	ReplaceContest(ctx context.Context, contest string, rows []models.ContestResult) error
}

// ProgressFunc is called after every processed unit.
type ProgressFunc func(done, total int)

type Processor struct {
	runner runner.Runner
	sink   ResultSink
	logger *slog.Logger
}

func NewProcessor(r runner.Runner, sink ResultSink, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{runner: r, sink: sink, logger: logger}
}

// Process runs every unit of a contest. A failing unit is reported and skipped;
// the remaining units still run and their rows are stored.
func (p *Processor) Process(ctx context.Context, contest string, units []*dto.RunRequest, progress ProgressFunc) (*models.JobReport, error) {
	report := &models.JobReport{
		Contest: contest,
		Results: make([]models.ContestResult, 0, len(units)),
	}

	for i, unit := range units {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "contest processing interrupted")
		}

		if len(unit.Submissions) == 0 {
			report.Results = append(report.Results, mappers.RunResultToContestResult(unit, nil))
		} else {
			result, err := p.runner.Run(ctx, unit)
			if err != nil {
				p.logger.Error("jplag unit failed", "contest", contest, "problem", unit.UnitKey, "language", unit.Language, "error", err)
				report.Failures = append(report.Failures, models.UnitFailure{
					Problem:  unit.UnitKey,
					Language: unit.Language,
					Error:    err.Error(),
				})
			} else {
				report.Results = append(report.Results, mappers.RunResultToContestResult(unit, result))
			}
		}

		if progress != nil {
			progress(i+1, len(units))
		}
	}

	if p.sink != nil {
		if err := p.sink.ReplaceContest(ctx, contest, report.Results); err != nil {
			return nil, errors.Wrap(err, "failed to store contest results")
		}
	}
	return report, nil
}
