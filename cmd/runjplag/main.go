// Command runjplag runs the similarity analysis for one contest job file and
// prints a report link per problem and language.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/cutekitek/rankode-jplag/internal/config"
	"github.com/cutekitek/rankode-jplag/internal/files"
	"github.com/cutekitek/rankode-jplag/internal/jobs"
	"github.com/cutekitek/rankode-jplag/internal/mappers"
	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/repository/models"
	"github.com/cutekitek/rankode-jplag/internal/repository/results"
	"github.com/cutekitek/rankode-jplag/internal/similarity"
	"github.com/cutekitek/rankode-jplag/pkg/shell"
	"github.com/pkg/errors"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to the config file")
	jobPath := flag.String("job", "-", "contest job file, - for stdin")
	store := flag.Bool("store", false, "replace the stored rows of the contest")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath, *jobPath, *store, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, jobPath string, store bool, out io.Writer) error {
	cfg, err := config.NewConfig(configPath)
	if err != nil {
		return errors.Wrap(err, "failed to read config")
	}

	job, err := readJob(jobPath)
	if err != nil {
		return err
	}

	var fetcher mappers.SourceFetcher
	if needsStorage(job) {
		storage, err := files.NewFileStorage(files.Config{
			Url:      cfg.MinIOHost,
			Login:    cfg.MinIOLogin,
			Password: cfg.MinIOPassword,
			Bucket:   cfg.MinIOBucket,
		})
		if err != nil {
			return err
		}
		fetcher = storage
	}
	units, err := mappers.JobMessageToRequests(ctx, job, fetcher)
	if err != nil {
		return err
	}

	var sink jobs.ResultSink
	if store {
		s, err := results.NewPostgres(cfg.PostgresString, 0)
		if err != nil {
			return errors.Wrap(err, "failed to connect to postgres")
		}
		defer s.Close()
		if err := s.EnsureSchema(ctx); err != nil {
			return err
		}
		sink = s
	}

	engine := similarity.NewEngine(cfg.RunConfig(), similarity.NewInvoker(shell.LocalExecutor{}, slog.Default()), nil)
	report, err := jobs.NewProcessor(engine, sink, slog.Default()).Process(ctx, job.Contest, units, nil)
	if err != nil {
		return err
	}
	printReport(out, units, report)
	return nil
}

func readJob(path string) (*models.JobMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read job")
	}
	job := &models.JobMessage{}
	if err := json.Unmarshal(data, job); err != nil {
		return nil, errors.Wrap(err, "invalid job")
	}
	return job, nil
}

func needsStorage(job *models.JobMessage) bool {
	for _, unit := range job.Units {
		for _, sub := range unit.Submissions {
			if sub.Source == "" && sub.SourceFile != "" {
				return true
			}
		}
	}
	return false
}

type unitKey struct {
	problem  string
	language string
}

func printReport(out io.Writer, units []*dto.RunRequest, report *models.JobReport) {
	rows := make(map[unitKey]models.ContestResult, len(report.Results))
	for _, row := range report.Results {
		rows[unitKey{row.Problem, row.Language}] = row
	}
	failures := make(map[unitKey]string, len(report.Failures))
	for _, f := range report.Failures {
		failures[unitKey{f.Problem, f.Language}] = f.Error
	}

	// Problems ordered by code; languages keep job order within a problem.
	units = slices.Clone(units)
	slices.SortStableFunc(units, func(a, b *dto.RunRequest) int {
		return strings.Compare(a.UnitKey, b.UnitKey)
	})

	problem := ""
	for i, unit := range units {
		if i == 0 || unit.UnitKey != problem {
			problem = unit.UnitKey
			fmt.Fprintf(out, "========== %s / %s ==========\n", report.Contest, problem)
		}
		key := unitKey{unit.UnitKey, unit.Language}
		if msg, ok := failures[key]; ok {
			fmt.Fprintf(out, "%s: <failed: %s>\n", unit.Language, msg)
			continue
		}
		row := rows[key]
		switch {
		case row.SubmissionCount == 0:
			fmt.Fprintf(out, "%s: <no submissions>\n", unit.Language)
		case row.URL == nil:
			fmt.Fprintf(out, "%s: (%d): <no report>\n", unit.Language, row.SubmissionCount)
		default:
			fmt.Fprintf(out, "%s: (%d): %s\n", unit.Language, row.SubmissionCount, *row.URL)
		}
	}
}
