package main

import (
	"bytes"
	"testing"

	"github.com/cutekitek/rankode-jplag/internal/repository/dto"
	"github.com/cutekitek/rankode-jplag/internal/repository/models"
)

func TestPrintReport(t *testing.T) {
	url := "/static/jplag_reports/spring/p1/C%2B%2B/results.jplag"
	units := []*dto.RunRequest{
		{UnitKey: "p1", Language: "C++"},
		{UnitKey: "p1", Language: "Java"},
		{UnitKey: "p2", Language: "C"},
		{UnitKey: "p2", Language: "Python"},
	}
	report := &models.JobReport{
		Contest: "spring",
		Results: []models.ContestResult{
			{Problem: "p1", Language: "C++", URL: &url, SubmissionCount: 3},
			{Problem: "p1", Language: "Java"},
			{Problem: "p2", Language: "C", SubmissionCount: 1},
		},
		Failures: []models.UnitFailure{{Problem: "p2", Language: "Python", Error: "bad input"}},
	}

	var out bytes.Buffer
	printReport(&out, units, report)

	expected := "========== spring / p1 ==========\n" +
		"C++: (3): " + url + "\n" +
		"Java: <no submissions>\n" +
		"========== spring / p2 ==========\n" +
		"C: (1): <no report>\n" +
		"Python: <failed: bad input>\n"
	if out.String() != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", out.String(), expected)
	}
}

func TestPrintReport_GroupsProblems(t *testing.T) {
	units := []*dto.RunRequest{
		{UnitKey: "p2", Language: "C"},
		{UnitKey: "p1", Language: "C++"},
		{UnitKey: "p2", Language: "Java"},
		{UnitKey: "p1", Language: "C"},
	}
	report := &models.JobReport{
		Contest: "spring",
		Results: []models.ContestResult{
			{Problem: "p2", Language: "C"},
			{Problem: "p1", Language: "C++"},
			{Problem: "p2", Language: "Java"},
			{Problem: "p1", Language: "C"},
		},
	}

	var out bytes.Buffer
	printReport(&out, units, report)

	expected := "========== spring / p1 ==========\n" +
		"C++: <no submissions>\n" +
		"C: <no submissions>\n" +
		"========== spring / p2 ==========\n" +
		"C: <no submissions>\n" +
		"Java: <no submissions>\n"
	if out.String() != expected {
		t.Fatalf("unexpected output:\n%s\nexpected:\n%s", out.String(), expected)
	}
	if units[0].UnitKey != "p2" {
		t.Fatalf("printReport must not reorder the caller's units")
	}
}

func TestNeedsStorage(t *testing.T) {
	inline := &models.JobMessage{Units: []models.UnitMessage{{
		Submissions: []models.SubmissionMessage{{Author: "a", Source: "x", SourceFile: "k"}},
	}}}
	if needsStorage(inline) {
		t.Fatalf("inline sources do not need storage")
	}
	remote := &models.JobMessage{Units: []models.UnitMessage{{
		Submissions: []models.SubmissionMessage{{Author: "a", SourceFile: "k"}},
	}}}
	if !needsStorage(remote) {
		t.Fatalf("object key sources need storage")
	}
}
