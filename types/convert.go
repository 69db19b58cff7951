package types

import "time"

// ConversionResult is produced exactly once per successfully converted
// staged image. OutputPath is a temporary file owned by the caller of the
// pipeline until the archive has been delivered.
type ConversionResult struct {
	OutputPath    string
	ArchiveName   string
	OriginalSize  int64
	ConvertedSize int64
}

// BatchOutcome summarizes one pipeline run over a batch.
type BatchOutcome struct {
	Results             []ConversionResult
	Processed           int // successfully converted
	Failed              int // decode/encode failures
	Skipped             int // missing or empty staged files
	TotalOriginalBytes  int64
	TotalConvertedBytes int64
	Elapsed             time.Duration
}

// ReductionPercent returns the size saving of the batch in percent, 0 when
// nothing was converted.
func (o *BatchOutcome) ReductionPercent() float64 {
	if o.TotalOriginalBytes <= 0 {
		return 0
	}
	return float64(o.TotalOriginalBytes-o.TotalConvertedBytes) / float64(o.TotalOriginalBytes) * 100
}
