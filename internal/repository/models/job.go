package models

type SubmissionMessage struct {
	Author string `json:"author"`
	Source string `json:"source,omitempty"`
	// Object key of the source in the submissions bucket, used when Source is empty.
	SourceFile string `json:"source_file,omitempty"`
}

type UnitMessage struct {
	Problem     string              `json:"problem"`
	Language    string              `json:"language"`
	Submissions []SubmissionMessage `json:"submissions"`
}

// JobMessage requests similarity reports for every unit of a contest.
type JobMessage struct {
	Id      string        `json:"id"`
	Contest string        `json:"contest"`
	Units   []UnitMessage `json:"units"`
}
