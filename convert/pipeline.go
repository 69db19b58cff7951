// Package convert drives the per-batch conversion loop: decode, color-mode
// normalization, encode, and result accumulation with per-item failure
// isolation.
package convert

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hazuki-dev/picshift/imaging"
	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

// progressEvery is how many successes pass between progress reports.
const progressEvery = 5

// Recorder receives one call per successfully converted item, immediately
// after the item finishes, so a crash mid-batch keeps earlier items counted.
type Recorder interface {
	Record(originalSize, convertedSize int64, format types.Format)
}

// Reporter receives user-facing progress during a run. Implementations must
// tolerate being called from the pipeline goroutine.
type Reporter interface {
	// Progress reports counts and running byte totals after every fifth
	// success and after the final item.
	Progress(converted, total int, originalBytes, convertedBytes int64)
	// ItemFailed reports a per-item decode/encode failure; the batch continues.
	ItemFailed(originalName string, err error)
}

// Pipeline converts staged batches with a codec and records each success.
type Pipeline struct {
	codec imaging.Codec
	rec   Recorder
}

// NewPipeline wires a pipeline from its collaborators.
func NewPipeline(codec imaging.Codec, rec Recorder) *Pipeline {
	return &Pipeline{codec: codec, rec: rec}
}

// Run converts every staged image to the target format, in input order. The
// pipeline owns each staged input file from the moment its item starts and
// deletes it when the item finishes, success or failure. Items fail
// independently; only context cancellation stops the loop early.
func (p *Pipeline) Run(ctx context.Context, batch []types.StagedImage, target types.Format, rep Reporter) types.BatchOutcome {
	start := time.Now()
	var outcome types.BatchOutcome

	for i, staged := range batch {
		if ctx.Err() != nil {
			tool.DefaultLogger.Warnf("[Pipeline] Interrupted after %d/%d items", i, len(batch))
			// The remaining staged inputs are still ours to release.
			for _, rest := range batch[i:] {
				tool.RemoveQuiet(rest.Path)
			}
			break
		}

		last := i == len(batch)-1
		p.convertOne(staged, target, rep, &outcome)

		if outcome.Processed > 0 && (outcome.Processed%progressEvery == 0 || last) {
			rep.Progress(outcome.Processed, len(batch), outcome.TotalOriginalBytes, outcome.TotalConvertedBytes)
		}
	}

	outcome.Elapsed = time.Since(start)
	return outcome
}

// convertOne handles a single staged image and always releases its input
// file before returning.
func (p *Pipeline) convertOne(staged types.StagedImage, target types.Format, rep Reporter, outcome *types.BatchOutcome) {
	defer tool.RemoveQuiet(staged.Path)

	info, err := os.Stat(staged.Path)
	if err != nil {
		tool.DefaultLogger.Warnf("[Pipeline] Staged file %s missing, skipping %s", staged.Path, staged.OriginalName)
		outcome.Skipped++
		return
	}
	if info.Size() == 0 {
		tool.DefaultLogger.Warnf("[Pipeline] Staged file %s is empty, skipping %s", staged.Path, staged.OriginalName)
		outcome.Skipped++
		return
	}

	data, err := os.ReadFile(staged.Path)
	if err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Failed to read %s: %v", staged.Path, err)
		outcome.Skipped++
		return
	}

	img, srcFormat, err := p.codec.Decode(data)
	if err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Error converting %s: %v", staged.OriginalName, err)
		outcome.Failed++
		rep.ItemFailed(staged.OriginalName, err)
		return
	}
	tool.DefaultLogger.Infof("[Pipeline] Converting %s (%s, %s) to %s",
		staged.OriginalName, srcFormat, tool.FormatSize(info.Size()), target)

	outPath := tool.TempFilePath(target.Ext())
	out, err := os.Create(outPath)
	if err != nil {
		tool.DefaultLogger.Errorf("[Pipeline] Failed to create output for %s: %v", staged.OriginalName, err)
		outcome.Failed++
		rep.ItemFailed(staged.OriginalName, err)
		return
	}
	encErr := p.codec.Encode(out, img, target)
	closeErr := out.Close()
	if encErr == nil {
		encErr = closeErr
	}
	if encErr == nil {
		if outInfo, statErr := os.Stat(outPath); statErr != nil || outInfo.Size() == 0 {
			encErr = fmt.Errorf("encoder produced empty output")
		}
	}
	if encErr != nil {
		tool.RemoveQuiet(outPath)
		tool.DefaultLogger.Errorf("[Pipeline] Error converting %s: %v", staged.OriginalName, encErr)
		outcome.Failed++
		rep.ItemFailed(staged.OriginalName, encErr)
		return
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		tool.RemoveQuiet(outPath)
		outcome.Failed++
		rep.ItemFailed(staged.OriginalName, err)
		return
	}

	result := types.ConversionResult{
		OutputPath:    outPath,
		ArchiveName:   types.OutputName(staged.OriginalName, target),
		OriginalSize:  info.Size(),
		ConvertedSize: outInfo.Size(),
	}
	outcome.Results = append(outcome.Results, result)
	outcome.Processed++
	outcome.TotalOriginalBytes += result.OriginalSize
	outcome.TotalConvertedBytes += result.ConvertedSize

	// Recorded per item, not per batch, so a crash mid-batch keeps what
	// already converted.
	p.rec.Record(result.OriginalSize, result.ConvertedSize, target)
}

// ReleaseResults deletes the output files of a finished batch. Call after
// the archive has been delivered, or on any abort after Run returned.
func ReleaseResults(results []types.ConversionResult) {
	for _, r := range results {
		tool.RemoveQuiet(r.OutputPath)
	}
}
