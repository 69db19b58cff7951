package types

// PeriodStats holds the per-day or per-month counter triple.
type PeriodStats struct {
	Images        int64 `json:"images"`
	SizeOriginal  int64 `json:"size_original"`
	SizeConverted int64 `json:"size_converted"`
}

// StatisticsRecord is the full persisted counters structure. The file on
// disk holds exactly this layout and is rewritten in full on every update.
// Invariant: TotalImages == sum over ConversionsByFormat == sum over
// DailyStats images.
type StatisticsRecord struct {
	TotalImages         int64                  `json:"total_images"`
	TotalSizeOriginal   int64                  `json:"total_size_original"`
	TotalSizeConverted  int64                  `json:"total_size_converted"`
	ConversionsByFormat map[string]int64       `json:"conversions_by_format"`
	DailyStats          map[string]PeriodStats `json:"daily_stats"`
	MonthlyStats        map[string]PeriodStats `json:"monthly_stats"`
}

// NewStatisticsRecord returns a zeroed record with allocated maps.
func NewStatisticsRecord() StatisticsRecord {
	return StatisticsRecord{
		ConversionsByFormat: make(map[string]int64),
		DailyStats:          make(map[string]PeriodStats),
		MonthlyStats:        make(map[string]PeriodStats),
	}
}
