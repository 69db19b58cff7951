package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/hazuki-dev/picshift/session"
	"github.com/hazuki-dev/picshift/tool"
	"github.com/hazuki-dev/picshift/types"
)

// Presenter renders status texts and the format keyboard, editing the last
// status message in place where possible. Telegram throttles message edits
// per chat, so progress edits go through a per-chat limiter and are dropped
// when they come too fast.
type Presenter struct {
	api   *tgbotapi.BotAPI
	store *session.Store

	limMu    sync.Mutex
	limiters map[int64]*rate.Limiter
}

// NewPresenter builds a presenter over the shared session store.
func NewPresenter(api *tgbotapi.BotAPI, store *session.Store) *Presenter {
	return &Presenter{
		api:      api,
		store:    store,
		limiters: make(map[int64]*rate.Limiter),
	}
}

func (p *Presenter) limiter(chatID int64) *rate.Limiter {
	p.limMu.Lock()
	defer p.limMu.Unlock()
	lim, ok := p.limiters[chatID]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Second), 1)
		p.limiters[chatID] = lim
	}
	return lim
}

// FormatKeyboard lays the target formats out two buttons per row.
func FormatKeyboard() tgbotapi.InlineKeyboardMarkup {
	formats := types.AllFormats()
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, f := range formats {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(f.String(), callbackPrefix+strings.ToLower(f.String())))
		if len(row) == 2 || i == len(formats)-1 {
			rows = append(rows, row)
			row = nil
		}
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// StagedSummary describes the pending batch: count, total size, and a line
// per detected source format.
func StagedSummary(pending []types.StagedImage) string {
	var totalSize int64
	formats := make(map[string]int)
	order := make([]string, 0, 4)
	for _, img := range pending {
		totalSize += img.Size
		name := img.DetectedFormat
		if name == "" {
			name = "Unknown"
		}
		if _, seen := formats[name]; !seen {
			order = append(order, name)
		}
		formats[name]++
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📸 Total images: %d (%s)", len(pending), tool.FormatSize(totalSize))
	for _, name := range order {
		plural := ""
		if formats[name] > 1 {
			plural = "s"
		}
		fmt.Fprintf(&sb, "\n- %s: %d image%s", name, formats[name], plural)
	}
	return sb.String()
}

// RenderStatus edits the chat's status message with the current staging
// summary and format keyboard, sending a fresh message when there is none
// yet or the edit fails.
func (p *Presenter) RenderStatus(chatID int64) {
	pending := p.store.Snapshot(chatID)
	if len(pending) == 0 {
		return
	}
	text := StagedSummary(pending) + "\n\nSelect the format to convert all images:"
	markup := FormatKeyboard()

	if msgID := p.store.StatusMessage(chatID); msgID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, msgID, text, markup)
		if _, err := p.api.Send(edit); err == nil {
			return
		}
		// If editing fails, fall through and send a new message.
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = markup
	sent, err := p.api.Send(msg)
	if err != nil {
		tool.DefaultLogger.Errorf("[Presenter] Failed to send status to chat %d: %v", chatID, err)
		return
	}
	p.store.SetStatusMessage(chatID, sent.MessageID)
}

// SendStatus sends a plain status message and returns its id, 0 on failure.
func (p *Presenter) SendStatus(chatID int64, text string) int {
	sent, err := p.api.Send(tgbotapi.NewMessage(chatID, text))
	if err != nil {
		tool.DefaultLogger.Warnf("[Presenter] Failed to send status to chat %d: %v", chatID, err)
		return 0
	}
	return sent.MessageID
}

// EditStatus rewrites a status message, sending a new one when the edit
// fails or no message exists.
func (p *Presenter) EditStatus(chatID int64, msgID int, text string) {
	if msgID != 0 {
		if _, err := p.api.Send(tgbotapi.NewEditMessageText(chatID, msgID, text)); err == nil {
			return
		}
	}
	if _, err := p.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		tool.DefaultLogger.Warnf("[Presenter] Failed to update status for chat %d: %v", chatID, err)
	}
}

// editThrottled applies the per-chat limiter; throttled edits are skipped.
func (p *Presenter) editThrottled(chatID int64, msgID int, text string) {
	if !p.limiter(chatID).Allow() {
		return
	}
	p.EditStatus(chatID, msgID, text)
}

// batchReporter feeds pipeline progress back to the chat.
type batchReporter struct {
	bot      *Bot
	chatID   int64
	statusID int
	total    int
}

func (r *batchReporter) Progress(converted, total int, originalBytes, convertedBytes int64) {
	text := fmt.Sprintf("Converting... %d/%d images processed.\nTotal size so far: %s → %s",
		converted, r.total, tool.FormatSize(originalBytes), tool.FormatSize(convertedBytes))
	r.bot.presenter.editThrottled(r.chatID, r.statusID, text)
}

func (r *batchReporter) ItemFailed(originalName string, err error) {
	r.bot.sendText(r.chatID, fmt.Sprintf("⚠️ Error converting %s. Skipping it.", originalName))
}

// finalSummaryText renders the batch completion report.
func finalSummaryText(outcome *types.BatchOutcome, total int) string {
	return fmt.Sprintf(
		"✅ Batch conversion completed!\n"+
			"- Processed: %d/%d images\n"+
			"- Original total size: %s\n"+
			"- Converted total size: %s\n"+
			"- Space saved: %s (%.1f%%)\n"+
			"- Time taken: %.1f seconds",
		outcome.Processed, total,
		tool.FormatSize(outcome.TotalOriginalBytes),
		tool.FormatSize(outcome.TotalConvertedBytes),
		tool.FormatSize(outcome.TotalOriginalBytes-outcome.TotalConvertedBytes),
		outcome.ReductionPercent(),
		outcome.Elapsed.Seconds(),
	)
}
