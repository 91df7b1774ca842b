package models

// ContestResult is the stored outcome of one (contest, problem, language) unit.
type ContestResult struct {
	Contest         string  `db:"contest" json:"contest"`
	Problem         string  `db:"problem" json:"problem"`
	Language        string  `db:"language" json:"language"`
	URL             *string `db:"url" json:"url"`
	SubmissionCount int     `db:"submission_count" json:"submission_count"`
}

type UnitFailure struct {
	Problem  string `json:"problem"`
	Language string `json:"language"`
	Error    string `json:"error"`
}

type JobReport struct {
	Id       string          `json:"id"`
	Contest  string          `json:"contest"`
	Results  []ContestResult `json:"results"`
	Failures []UnitFailure   `json:"failures,omitempty"`
	Error    string          `json:"error,omitempty"`
}
