package types

// StagedImage is one accepted image awaiting a format decision. Path points
// at the temporary copy on disk; the session owns that file until the
// pipeline takes the batch, after which the pipeline must release it on
// every exit path.
type StagedImage struct {
	Path           string
	OriginalName   string
	DetectedFormat string // decoder-reported source format, empty if unreadable
	Size           int64
}
