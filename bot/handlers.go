package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hazuki-dev/picshift/api/eventhub"
	"github.com/hazuki-dev/picshift/archive"
	"github.com/hazuki-dev/picshift/convert"
	"github.com/hazuki-dev/picshift/imaging"
	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

const callbackPrefix = "convert_"

// downloadFile fetches a transport file to a fresh temp file, enforcing the
// configured size cap.
func (b *Bot) downloadFile(fileID, ext string) (string, int64, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", 0, fmt.Errorf("failed to resolve file: %v", err)
	}
	resp, err := tool.DownloadClient.Get(url)
	if err != nil {
		return "", 0, fmt.Errorf("download failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return "", 0, fmt.Errorf("download failed: status %d", resp.StatusCode)
	}

	limit := b.cfg.MaxFileSizeBytes()
	path, n, err := tool.SaveTemp(io.LimitReader(resp.Body, limit+1), ext)
	if err != nil {
		return "", 0, err
	}
	if n > limit {
		tool.RemoveQuiet(path)
		return "", 0, fmt.Errorf("file exceeds the %d MB limit", b.cfg.MaxFileSizeMB)
	}
	return path, n, nil
}

// handlePhoto stages a directly sent image and re-renders the status message.
func (b *Bot) handlePhoto(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	if b.store.Count(chatID) >= b.cfg.MaxBatchSize {
		b.sendText(chatID, fmt.Sprintf("Batch limit reached (%d images). Pick a format to convert them first.", b.cfg.MaxBatchSize))
		return
	}

	// Telegram sends several resolutions; the last is the largest.
	photo := msg.Photo[len(msg.Photo)-1]
	originalName := fmt.Sprintf("image_%s.jpg", photo.FileUniqueID)

	path, size, err := b.downloadFile(photo.FileID, ".jpg")
	if err != nil {
		tool.DefaultLogger.Errorf("[Bot] Error handling image for chat %d: %v", chatID, err)
		b.sendText(chatID, "Sorry, there was an error processing your image. Please try again.")
		return
	}
	tool.DefaultLogger.Infof("[Bot] Downloaded direct image to %s (original: %s)", path, originalName)

	b.store.Add(chatID, types.StagedImage{
		Path:           path,
		OriginalName:   originalName,
		DetectedFormat: detectFileFormat(path),
		Size:           size,
	})
	b.presenter.RenderStatus(chatID)
}

// handleDocument stages the images of a ZIP archive. Other MIME types get a
// user-visible rejection notice.
func (b *Bot) handleDocument(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	doc := msg.Document

	if doc.MimeType != "application/zip" {
		b.sendText(chatID, "Please send a ZIP file containing images or send images directly.")
		return
	}
	if int64(doc.FileSize) > b.cfg.MaxFileSizeBytes() {
		b.sendText(chatID, fmt.Sprintf("This file is larger than the %d MB limit.", b.cfg.MaxFileSizeMB))
		return
	}

	zipPath, _, err := b.downloadFile(doc.FileID, ".zip")
	if err != nil {
		tool.DefaultLogger.Errorf("[Bot] Error handling document for chat %d: %v", chatID, err)
		b.sendText(chatID, "Sorry, there was an error processing your file. Please try again.")
		return
	}
	defer tool.RemoveQuiet(zipPath)

	entries, err := archive.Extract(zipPath)
	if err != nil {
		tool.DefaultLogger.Errorf("[Bot] Error extracting archive for chat %d: %v", chatID, err)
		if errors.Is(err, archive.ErrMalformed) {
			b.sendText(chatID, "Could not read the archive. Please check the file and try again.")
		} else {
			b.sendText(chatID, "Sorry, there was an error processing your file. Please try again.")
		}
		return
	}

	staged := 0
	for _, entry := range entries {
		if b.store.Count(chatID) >= b.cfg.MaxBatchSize {
			b.sendText(chatID, fmt.Sprintf("Batch limit reached (%d images); the remaining archive entries were ignored.", b.cfg.MaxBatchSize))
			break
		}
		path, err := tool.WriteTemp(entry.Data, strings.ToLower(filepath.Ext(entry.Name)))
		if err != nil {
			tool.DefaultLogger.Errorf("[Bot] Failed to stage %s: %v", entry.Name, err)
			continue
		}
		b.store.Add(chatID, types.StagedImage{
			Path:           path,
			OriginalName:   entry.Name,
			DetectedFormat: imaging.DetectFormat(entry.Data),
			Size:           int64(len(entry.Data)),
		})
		staged++
		tool.DefaultLogger.Infof("[Bot] Stored %s from ZIP to %s", entry.Name, path)
	}

	if staged == 0 {
		b.sendText(chatID, "The ZIP file did not contain any supported image files.")
		return
	}
	b.presenter.RenderStatus(chatID)
}

// handleCallback runs the batch conversion once the user picks a format.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	chatID := query.Message.Chat.ID

	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		tool.DefaultLogger.Warnf("[Bot] Failed to answer callback: %v", err)
	}

	token := strings.TrimPrefix(query.Data, callbackPrefix)
	target, ok := types.ParseFormat(token)
	if !ok {
		tool.DefaultLogger.Warnf("[Bot] Unknown format token in callback: %s", query.Data)
		return
	}

	batch := b.store.TakeBatch(chatID)
	if len(batch) == 0 {
		b.sendText(chatID, "No images found to convert. Please send images first.")
		return
	}

	statusID := b.presenter.SendStatus(chatID, fmt.Sprintf("Preparing to convert %d images to %s...", len(batch), target))
	rep := &batchReporter{bot: b, chatID: chatID, statusID: statusID, total: len(batch)}

	outcome := b.pipeline.Run(ctx, batch, target, rep)

	if len(outcome.Results) > 0 {
		b.deliverArchive(chatID, target, &outcome)
	} else {
		b.sendText(chatID, "No images were successfully converted.")
	}

	b.presenter.EditStatus(chatID, statusID, finalSummaryText(&outcome, len(batch)))
	b.store.Clear(chatID)

	if b.hub != nil {
		b.hub.Broadcast(eventhub.Event{
			Kind:           "batch_completed",
			TargetFormat:   target.String(),
			Converted:      outcome.Processed,
			Failed:         outcome.Failed,
			OriginalBytes:  outcome.TotalOriginalBytes,
			ConvertedBytes: outcome.TotalConvertedBytes,
			At:             time.Now(),
		})
	}
}

// deliverArchive packs the batch results and sends the ZIP, releasing every
// output file afterwards.
func (b *Bot) deliverArchive(chatID int64, target types.Format, outcome *types.BatchOutcome) {
	defer convert.ReleaseResults(outcome.Results)

	members := make([]archive.Member, 0, len(outcome.Results))
	for _, r := range outcome.Results {
		members = append(members, archive.Member{Name: r.ArchiveName, SourcePath: r.OutputPath})
	}

	zipName := fmt.Sprintf("converted_images_%s.zip", time.Now().Format("20060102_150405"))
	zipPath := filepath.Join(tool.TempRoot, zipName)
	if err := archive.Pack(zipPath, members); err != nil {
		tool.DefaultLogger.Errorf("[Bot] Failed to build archive for chat %d: %v", chatID, err)
		b.sendText(chatID, "Sorry, there was an error packing your images. Please try again.")
		return
	}
	defer tool.RemoveQuiet(zipPath)

	docMsg := tgbotapi.NewDocument(chatID, tgbotapi.FilePath(zipPath))
	docMsg.Caption = fmt.Sprintf("Converted %d images to %s.", outcome.Processed, target)
	if _, err := b.api.Send(docMsg); err != nil {
		tool.DefaultLogger.Errorf("[Bot] Failed to send archive to chat %d: %v", chatID, err)
		b.sendText(chatID, "Sorry, the converted archive could not be delivered. Please try again.")
		return
	}
	tool.DefaultLogger.Infof("[Bot] Sent archive %s (%d files) to chat %d", zipName, len(members), chatID)
}

func detectFileFormat(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return imaging.DetectFormat(data)
}
