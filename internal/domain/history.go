package domain

// ScanEntry is one recorded check run.
type ScanEntry struct {
	Timestamp   string  `json:"timestamp"`
	CommitHash  string  `json:"commit_hash,omitempty"`
	Library     string  `json:"library"`
	FromVersion string  `json:"from_version"`
	ToVersion   string  `json:"to_version"`
	Files       int     `json:"files"`
	Summary     Summary `json:"summary"`
}
