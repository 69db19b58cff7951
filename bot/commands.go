package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

const welcomeText = "👋 Welcome to the Image Format Changer Bot!\n\n" +
	"You can:\n" +
	"1. Send me any image or multiple images\n" +
	"2. Send a ZIP file containing images\n" +
	"I'll detect the format and provide conversion options.\n\n" +
	"Try sending an image now! 📸"

func (b *Bot) helpText() string {
	return fmt.Sprintf("🔍 Here's how to use this bot:\n\n"+
		"1. Send any image or multiple images\n"+
		"2. Or send a ZIP file containing images\n"+
		"3. I'll detect the format automatically\n"+
		"4. Choose the desired format from the inline buttons\n"+
		"5. I'll convert and send back your image(s) in a ZIP file.\n\n"+
		"Supported formats: JPEG, PNG, WEBP, GIF, TIFF, BMP, AVIF\n\n"+
		"Maximum file size: %d MB\n"+
		"Maximum batch size: %d images", b.cfg.MaxFileSizeMB, b.cfg.MaxBatchSize)
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.sendText(chatID, welcomeText)
	case "help":
		b.sendText(chatID, b.helpText())
	case "stats":
		b.handleStatsCommand(msg)
	}
}

// handleStatsCommand answers /stats [today|month], admin only.
func (b *Bot) handleStatsCommand(msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	if b.cfg.AdminID == 0 || msg.From == nil || msg.From.ID != b.cfg.AdminID {
		b.sendText(chatID, "You don't have permission to view statistics.")
		return
	}

	period := strings.TrimSpace(msg.CommandArguments())
	switch period {
	case "today":
		b.sendText(chatID, periodStatsText("Today's", b.agg.Today()))
	case "month":
		b.sendText(chatID, periodStatsText("This Month's", b.agg.Month()))
	default:
		b.sendText(chatID, totalStatsText(b.agg.Totals()))
	}
}

func periodStatsText(label string, st types.PeriodStats) string {
	return fmt.Sprintf("📊 %s Statistics:\n"+
		"Images processed: %d\n"+
		"Original size: %s\n"+
		"Converted size: %s\n"+
		"Space saved: %s",
		label, st.Images,
		tool.FormatSize(st.SizeOriginal),
		tool.FormatSize(st.SizeConverted),
		tool.FormatSize(st.SizeOriginal-st.SizeConverted))
}

func totalStatsText(rec types.StatisticsRecord) string {
	var formatLines []string
	for _, f := range types.AllFormats() {
		if count, ok := rec.ConversionsByFormat[f.String()]; ok {
			formatLines = append(formatLines, fmt.Sprintf("- %s: %d images", f, count))
		}
	}
	byFormat := "- none yet"
	if len(formatLines) > 0 {
		byFormat = strings.Join(formatLines, "\n")
	}

	return fmt.Sprintf("📊 Overall Statistics:\n"+
		"Total images processed: %d\n"+
		"Total original size: %s\n"+
		"Total converted size: %s\n"+
		"Total space saved: %s\n\n"+
		"Conversions by format:\n%s",
		rec.TotalImages,
		tool.FormatSize(rec.TotalSizeOriginal),
		tool.FormatSize(rec.TotalSizeConverted),
		tool.FormatSize(rec.TotalSizeOriginal-rec.TotalSizeConverted),
		byFormat)
}
