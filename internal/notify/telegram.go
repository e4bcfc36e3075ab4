// Package notify — уведомления об изменениях расписания (отмена/восстановление
// урока) в телеграм-чат. Канал необязательный: без токена используется Noop.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Spok95/school-planner/internal/models"
	"github.com/Spok95/school-planner/internal/observability"
)

type Notifier interface {
	LessonStatusChanged(ctx context.Context, slot *models.TimetableSlot, date time.Time, status string)
	LessonRestored(ctx context.Context, slot *models.TimetableSlot, date time.Time)
}

type Noop struct{}

func (Noop) LessonStatusChanged(context.Context, *models.TimetableSlot, time.Time, string) {}
func (Noop) LessonRestored(context.Context, *models.TimetableSlot, time.Time)              {}

// Telegram шлёт сообщения в один чат. Ошибки отправки не ломают операцию,
// системные (5xx, 429, timeout) уходят в Sentry.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zap.SugaredLogger
}

func NewTelegram(token string, chatID int64, log *zap.SugaredLogger) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram init: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, log: log}, nil
}

func (t *Telegram) LessonStatusChanged(_ context.Context, slot *models.TimetableSlot, date time.Time, status string) {
	verb := "изменён"
	if status == models.LessonCancelled {
		verb = "отменён"
	} else if status == models.LessonMoved {
		verb = "перенесён"
	}
	t.send(fmt.Sprintf("Урок %d %s %s: %s", slot.Period, date.Format("02.01.2006"), verb, slotLabel(slot)))
}

func (t *Telegram) LessonRestored(_ context.Context, slot *models.TimetableSlot, date time.Time) {
	t.send(fmt.Sprintf("Урок %d %s восстановлен: %s", slot.Period, date.Format("02.01.2006"), slotLabel(slot)))
}

func (t *Telegram) send(text string) {
	_, err := t.bot.Send(tgbotapi.NewMessage(t.chatID, text))
	if err != nil {
		if isSystemErr(err) {
			observability.CaptureErr(err)
		}
		t.log.Warnw("notify send failed", "err", err)
	}
}

func slotLabel(slot *models.TimetableSlot) string {
	var parts []string
	if slot.Room != nil && *slot.Room != "" {
		parts = append(parts, "каб. "+*slot.Room)
	}
	if len(parts) == 0 {
		return fmt.Sprintf("строка #%d", slot.ID)
	}
	return strings.Join(parts, ", ")
}

// Считаем системными: 5xx, 429, timeout. 400-ки и типичные телеграм-валидации в Sentry не шлём.
func isSystemErr(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	if strings.Contains(s, "429") || strings.Contains(s, "502") || strings.Contains(s, "503") || strings.Contains(s, "timeout") {
		return true
	}
	return false
}
