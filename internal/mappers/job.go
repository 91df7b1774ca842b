package mappers

import (
	"context"
	"io"

	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/repository/models"
	"github.com/pkg/errors"
)

type SourceFetcher interface {
	GetFile(ctx context.Context, filename string) (io.ReadCloser, error)
}

// JobMessageToRequests builds one run request per unit. Sources referenced by
// object key are downloaded with fetcher, which may be nil when all sources are inline.
func JobMessageToRequests(ctx context.Context, msg *models.JobMessage, fetcher SourceFetcher) ([]*dto.RunRequest, error) {
	requests := make([]*dto.RunRequest, 0, len(msg.Units))
	for _, unit := range msg.Units {
		req := &dto.RunRequest{
			RunKey:      msg.Contest,
			UnitKey:     unit.Problem,
			Language:    unit.Language,
			Submissions: make([]dto.Submission, 0, len(unit.Submissions)),
		}
		for _, sub := range unit.Submissions {
			source, err := submissionSource(ctx, sub, fetcher)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to load source of %s for %s/%s", sub.Author, unit.Problem, unit.Language)
			}
			req.Submissions = append(req.Submissions, dto.Submission{Author: sub.Author, Source: source})
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func submissionSource(ctx context.Context, sub models.SubmissionMessage, fetcher SourceFetcher) ([]byte, error) {
	if sub.SourceFile == "" || sub.Source != "" {
		return []byte(sub.Source), nil
	}
	if fetcher == nil {
		return nil, errors.New("no file storage configured")
	}
	file, err := fetcher.GetFile(ctx, sub.SourceFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
