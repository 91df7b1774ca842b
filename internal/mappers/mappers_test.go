package mappers

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/repository/models"
)

type mapFetcher map[string]string

func (m mapFetcher) GetFile(_ context.Context, filename string) (io.ReadCloser, error) {
	data, ok := m[filename]
	if !ok {
		return nil, errors.New("no such object")
	}
	return io.NopCloser(strings.NewReader(data)), nil
}

func TestRunResultToContestResult(t *testing.T) {
	req := &dto.RunRequest{RunKey: "c1", UnitKey: "p1", Language: "C++"}

	row := RunResultToContestResult(req, &dto.RunResult{ReportURL: "/r/index.html", HasReport: true, SubmissionCount: 3})
	if row.URL == nil || *row.URL != "/r/index.html" || row.SubmissionCount != 3 {
		t.Fatalf("Unexpected row: %+v", row)
	}

	row = RunResultToContestResult(req, &dto.RunResult{SubmissionCount: 1})
	if row.URL != nil || row.SubmissionCount != 1 {
		t.Fatalf("Expected null url, got %+v", row)
	}
	if row.Contest != "c1" || row.Problem != "p1" || row.Language != "C++" {
		t.Fatalf("Unexpected key: %+v", row)
	}
}

func TestJobMessageToRequests(t *testing.T) {
	msg := &models.JobMessage{
		Contest: "c1",
		Units: []models.UnitMessage{
			{
				Problem:  "p1",
				Language: "Python",
				Submissions: []models.SubmissionMessage{
					{Author: "alice", Source: "print(1)"},
					{Author: "bob", SourceFile: "subs/42.py"},
				},
			},
			{Problem: "p2", Language: "C"},
		},
	}

	reqs, err := JobMessageToRequests(context.Background(), msg, mapFetcher{"subs/42.py": "print(2)"})
	if err != nil {
		t.Fatalf("JobMessageToRequests failed: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("Expected 2 requests, got %d", len(reqs))
	}
	subs := reqs[0].Submissions
	if string(subs[0].Source) != "print(1)" || string(subs[1].Source) != "print(2)" {
		t.Fatalf("Unexpected sources: %q %q", subs[0].Source, subs[1].Source)
	}
	if reqs[1].RunKey != "c1" || reqs[1].UnitKey != "p2" || len(reqs[1].Submissions) != 0 {
		t.Fatalf("Unexpected second request: %+v", reqs[1])
	}
}

func TestJobMessageToRequests_MissingStorage(t *testing.T) {
	msg := &models.JobMessage{
		Contest: "c1",
		Units: []models.UnitMessage{{
			Problem: "p1", Language: "C",
			Submissions: []models.SubmissionMessage{{Author: "a", SourceFile: "k"}},
		}},
	}
	if _, err := JobMessageToRequests(context.Background(), msg, nil); err == nil {
		t.Fatalf("Expected error without file storage")
	}
}
