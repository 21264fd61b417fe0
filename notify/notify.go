// Package notify delivers operator alerts (new registrations awaiting
// activation, withdrawal requests) to an admin chat.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
	log "github.com/sirupsen/logrus"
)

type Notifier interface {
	// Notify is fire-and-forget; delivery failures are logged, never returned.
	Notify(ctx context.Context, message string)
}

type Noop struct{}

func (Noop) Notify(context.Context, string) {}

type Telegram struct {
	bot     *telego.Bot
	chatID  int64
	timeout time.Duration
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("telegram admin chat id is required")
	}
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &Telegram{bot: bot, chatID: chatID, timeout: 10 * time.Second}, nil
}

func (t *Telegram) Notify(ctx context.Context, message string) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(ctx, t.timeout)
		defer cancel()

		if _, err := t.bot.SendMessage(ctx, tu.Message(tu.ID(t.chatID), message)); err != nil {
			log.WithError(err).WithField("chat_id", t.chatID).Warn("Failed to send admin notification")
		}
	}()
}
