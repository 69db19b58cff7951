// Package stats keeps the durable usage counters shared by all sessions.
package stats

import (
	"os"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

// Aggregator owns the counters structure and its file on disk. Every Record
// is one read-modify-write under the mutex followed by a full-file rewrite,
// so concurrent sessions never lose updates. Persistence failures are
// logged and swallowed: statistics are best-effort telemetry and must never
// fail the conversion path.
type Aggregator struct {
	mu   sync.Mutex
	path string
	rec  types.StatisticsRecord
	now  func() time.Time // swapped in tests
}

// New loads the counters file at path, starting from a zeroed structure
// when the file is missing or unreadable.
func New(path string) *Aggregator {
	a := &Aggregator{
		path: path,
		rec:  types.NewStatisticsRecord(),
		now:  time.Now,
	}
	a.load()
	return a
}

func (a *Aggregator) load() {
	data, err := os.ReadFile(a.path)
	if err != nil {
		if !os.IsNotExist(err) {
			tool.DefaultLogger.Errorf("[Stats] Error loading statistics: %v", err)
		}
		return
	}
	rec := types.NewStatisticsRecord()
	if err := sonic.Unmarshal(data, &rec); err != nil {
		tool.DefaultLogger.Errorf("[Stats] Error parsing statistics file, starting fresh: %v", err)
		return
	}
	if rec.ConversionsByFormat == nil {
		rec.ConversionsByFormat = make(map[string]int64)
	}
	if rec.DailyStats == nil {
		rec.DailyStats = make(map[string]types.PeriodStats)
	}
	if rec.MonthlyStats == nil {
		rec.MonthlyStats = make(map[string]types.PeriodStats)
	}
	a.rec = rec
}

// save rewrites the whole counters file. Caller holds the mutex.
func (a *Aggregator) save() {
	data, err := sonic.Marshal(&a.rec)
	if err != nil {
		tool.DefaultLogger.Errorf("[Stats] Error encoding statistics: %v", err)
		return
	}
	if err := os.WriteFile(a.path, data, 0o644); err != nil {
		tool.DefaultLogger.Errorf("[Stats] Error saving statistics: %v", err)
	}
}

// Record counts one converted image for today and this month, then persists
// the full structure.
func (a *Aggregator) Record(originalSize, convertedSize int64, format types.Format) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.now()
	today := now.Format(dayLayout)
	month := now.Format(monthLayout)

	a.rec.TotalImages++
	a.rec.TotalSizeOriginal += originalSize
	a.rec.TotalSizeConverted += convertedSize
	a.rec.ConversionsByFormat[format.String()]++

	day := a.rec.DailyStats[today]
	day.Images++
	day.SizeOriginal += originalSize
	day.SizeConverted += convertedSize
	a.rec.DailyStats[today] = day

	mon := a.rec.MonthlyStats[month]
	mon.Images++
	mon.SizeOriginal += originalSize
	mon.SizeConverted += convertedSize
	a.rec.MonthlyStats[month] = mon

	a.save()
}

// Today returns the counters recorded today, zeroed when none exist.
func (a *Aggregator) Today() types.PeriodStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rec.DailyStats[a.now().Format(dayLayout)]
}

// Month returns the counters recorded this month, zeroed when none exist.
func (a *Aggregator) Month() types.PeriodStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.rec.MonthlyStats[a.now().Format(monthLayout)]
}

// Totals returns a deep copy of the full counters structure.
func (a *Aggregator) Totals() types.StatisticsRecord {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.rec
	out.ConversionsByFormat = make(map[string]int64, len(a.rec.ConversionsByFormat))
	for k, v := range a.rec.ConversionsByFormat {
		out.ConversionsByFormat[k] = v
	}
	out.DailyStats = make(map[string]types.PeriodStats, len(a.rec.DailyStats))
	for k, v := range a.rec.DailyStats {
		out.DailyStats[k] = v
	}
	out.MonthlyStats = make(map[string]types.PeriodStats, len(a.rec.MonthlyStats))
	for k, v := range a.rec.MonthlyStats {
		out.MonthlyStats[k] = v
	}
	return out
}
