package dto

type Submission struct {
	Author string
	Source []byte
}

func TextSubmission(author, source string) Submission {
	return Submission{Author: author, Source: []byte(source)}
}

// RunRequest describes one (contest, problem, language) unit. Submissions are
// ordered by preference: the first entry of every author is the one analyzed.
type RunRequest struct {
	RunKey      string
	UnitKey     string
	Language    string
	Submissions []Submission
}

type RunResult struct {
	ReportURL string
	// HasReport is false when fewer than two authors submitted.
	HasReport       bool
	SubmissionCount int
}
