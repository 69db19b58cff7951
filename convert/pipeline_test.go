package convert

import (
	"bytes"
	"context"
	"image"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/hazuki-dev/picshift/imaging"
	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

// fakeCodec decodes anything except payloads containing "BAD" and encodes a
// fixed-size output buffer.
type fakeCodec struct {
	encodeSize int
	encodeErr  error
}

func (c *fakeCodec) Decode(data []byte) (image.Image, string, error) {
	if bytes.Contains(data, []byte("BAD")) {
		return nil, "", &imaging.DecodeError{Err: io.ErrUnexpectedEOF}
	}
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), "png", nil
}

func (c *fakeCodec) Encode(w io.Writer, img image.Image, target types.Format) error {
	if c.encodeErr != nil {
		return c.encodeErr
	}
	_, err := w.Write(bytes.Repeat([]byte{0xAB}, c.encodeSize))
	return err
}

type fakeRecorder struct {
	calls   int
	formats []types.Format
}

func (r *fakeRecorder) Record(orig, conv int64, f types.Format) {
	r.calls++
	r.formats = append(r.formats, f)
}

type fakeReporter struct {
	progress []int
	failures []string
}

func (r *fakeReporter) Progress(converted, total int, origBytes, convBytes int64) {
	r.progress = append(r.progress, converted)
}

func (r *fakeReporter) ItemFailed(name string, err error) {
	r.failures = append(r.failures, name)
}

func stage(t *testing.T, name string, payload []byte) types.StagedImage {
	t.Helper()
	path := filepath.Join(tool.TempRoot, "staged_"+name)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatal(err)
	}
	return types.StagedImage{Path: path, OriginalName: name, Size: int64(len(payload))}
}

func TestRunConvertsBatchWithIsolatedFailure(t *testing.T) {
	tool.TempRoot = t.TempDir()
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	p := NewPipeline(&fakeCodec{encodeSize: 100}, rec)

	batch := []types.StagedImage{
		stage(t, "a.png", bytes.Repeat([]byte{1}, 500)),
		stage(t, "b.png", []byte("BAD payload")),
		stage(t, "c.png", bytes.Repeat([]byte{2}, 300)),
	}

	outcome := p.Run(context.Background(), batch, types.FormatWEBP, rep)

	if outcome.Processed != 2 || outcome.Failed != 1 || outcome.Skipped != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if len(outcome.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(outcome.Results))
	}
	// Input order preserved in results.
	if outcome.Results[0].ArchiveName != "a.webp" || outcome.Results[1].ArchiveName != "c.webp" {
		t.Errorf("result names = %s, %s", outcome.Results[0].ArchiveName, outcome.Results[1].ArchiveName)
	}
	if outcome.TotalOriginalBytes != 800 || outcome.TotalConvertedBytes != 200 {
		t.Errorf("byte totals = %d/%d, want 800/200", outcome.TotalOriginalBytes, outcome.TotalConvertedBytes)
	}
	if rec.calls != 2 {
		t.Errorf("recorder calls = %d, want 2 (one per success)", rec.calls)
	}
	if len(rep.failures) != 1 || rep.failures[0] != "b.png" {
		t.Errorf("failure reports = %v", rep.failures)
	}

	// Every staged input is released regardless of its outcome.
	for _, img := range batch {
		if _, err := os.Stat(img.Path); !os.IsNotExist(err) {
			t.Errorf("staged input %s not released", img.OriginalName)
		}
	}
	// Output files exist until the caller releases them.
	for _, r := range outcome.Results {
		if _, err := os.Stat(r.OutputPath); err != nil {
			t.Errorf("output %s missing before release: %v", r.ArchiveName, err)
		}
	}
	ReleaseResults(outcome.Results)
	for _, r := range outcome.Results {
		if _, err := os.Stat(r.OutputPath); !os.IsNotExist(err) {
			t.Errorf("output %s not removed by ReleaseResults", r.ArchiveName)
		}
	}
}

func TestRunAllDecodeFailuresYieldsNoResults(t *testing.T) {
	tool.TempRoot = t.TempDir()
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	p := NewPipeline(&fakeCodec{encodeSize: 10}, rec)

	batch := []types.StagedImage{
		stage(t, "x.png", []byte("BAD 1")),
		stage(t, "y.png", []byte("BAD 2")),
	}

	outcome := p.Run(context.Background(), batch, types.FormatJPEG, rep)

	if len(outcome.Results) != 0 {
		t.Fatalf("results = %d, want 0", len(outcome.Results))
	}
	if outcome.Failed != 2 || outcome.Processed != 0 {
		t.Errorf("outcome = %+v", outcome)
	}
	if rec.calls != 0 {
		t.Errorf("recorder called %d times on all-failure batch", rec.calls)
	}
	if outcome.ReductionPercent() != 0 {
		t.Errorf("ReductionPercent = %v, want 0", outcome.ReductionPercent())
	}
}

func TestRunSkipsMissingAndEmptyFiles(t *testing.T) {
	tool.TempRoot = t.TempDir()
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	p := NewPipeline(&fakeCodec{encodeSize: 10}, rec)

	batch := []types.StagedImage{
		{Path: filepath.Join(tool.TempRoot, "gone.png"), OriginalName: "gone.png"},
		stage(t, "empty.png", nil),
		stage(t, "ok.png", []byte("pixels")),
	}

	outcome := p.Run(context.Background(), batch, types.FormatPNG, rep)

	if outcome.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", outcome.Skipped)
	}
	if outcome.Processed != 1 || len(outcome.Results) != 1 {
		t.Errorf("outcome = %+v", outcome)
	}
	// Skips are not failures and produce no user-facing warning.
	if len(rep.failures) != 0 {
		t.Errorf("failure reports for skips: %v", rep.failures)
	}
	ReleaseResults(outcome.Results)
}

func TestRunEncodeFailureIsIsolated(t *testing.T) {
	tool.TempRoot = t.TempDir()
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	p := NewPipeline(&fakeCodec{encodeErr: io.ErrClosedPipe}, rec)

	batch := []types.StagedImage{stage(t, "a.png", []byte("pixels"))}
	outcome := p.Run(context.Background(), batch, types.FormatBMP, rep)

	if outcome.Failed != 1 || len(outcome.Results) != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}
	// No partial output files survive a failed encode.
	entries, err := os.ReadDir(tool.TempRoot)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("leftover files after encode failure: %v", entries)
	}
}

func TestRunProgressEveryFiveAndFinal(t *testing.T) {
	tool.TempRoot = t.TempDir()
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	p := NewPipeline(&fakeCodec{encodeSize: 10}, rec)

	var batch []types.StagedImage
	for i := 0; i < 7; i++ {
		batch = append(batch, stage(t, string(rune('a'+i))+".png", []byte("pixels")))
	}

	outcome := p.Run(context.Background(), batch, types.FormatGIF, rep)
	ReleaseResults(outcome.Results)

	// Reports after the fifth success and after the final item.
	want := []int{5, 7}
	if len(rep.progress) != len(want) {
		t.Fatalf("progress reports = %v, want %v", rep.progress, want)
	}
	for i := range want {
		if rep.progress[i] != want[i] {
			t.Errorf("progress[%d] = %d, want %d", i, rep.progress[i], want[i])
		}
	}
}

func TestRunEmptyOutputIsFailure(t *testing.T) {
	tool.TempRoot = t.TempDir()
	rec := &fakeRecorder{}
	rep := &fakeReporter{}
	p := NewPipeline(&fakeCodec{encodeSize: 0}, rec)

	batch := []types.StagedImage{stage(t, "a.png", []byte("pixels"))}
	outcome := p.Run(context.Background(), batch, types.FormatTIFF, rep)

	if outcome.Failed != 1 || outcome.Processed != 0 {
		t.Errorf("empty encoder output should fail the item: %+v", outcome)
	}
	if rec.calls != 0 {
		t.Errorf("recorder called for empty output")
	}
}
