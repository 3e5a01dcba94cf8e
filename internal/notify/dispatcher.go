// Package notify delivers monitor alerts. Delivery is fire-and-forget: a
// failed Telegram send or archive insert is logged and swallowed so the
// caller's dedup/target state still advances.
package notify

import (
	"context"
	"log"

	"crypto-watchtower/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// Sender is the outbound Telegram surface, satisfied by *tele.Bot.
type Sender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Archiver records emitted alerts, satisfied by *repository.AlertRepository.
type Archiver interface {
	Insert(ctx context.Context, alert domain.Alert) error
}

// Dispatcher broadcasts alerts to the configured chat and archives them when
// a database is available. Either side may be absent.
type Dispatcher struct {
	sender  Sender
	chat    *tele.Chat
	archive Archiver
}

func NewDispatcher(sender Sender, chatID int64, archive Archiver) *Dispatcher {
	d := &Dispatcher{sender: sender, archive: archive}
	if chatID != 0 {
		d.chat = &tele.Chat{ID: chatID}
	}
	return d
}

// Notify sends one alert. It never returns an error: delivery is best-effort
// and failures must not stall the monitor loop.
func (d *Dispatcher) Notify(ctx context.Context, alert domain.Alert) {
	if d == nil {
		return
	}

	if d.sender != nil && d.chat != nil {
		if _, err := d.sender.Send(d.chat, alert.Text, tele.ModeHTML); err != nil {
			log.Printf("telegram send failed (%s alert): %v", alert.Kind, err)
		}
	} else if d.chat == nil {
		log.Printf("no broadcast chat configured, dropping %s alert", alert.Kind)
	}

	if d.archive != nil {
		if err := d.archive.Insert(ctx, alert); err != nil {
			log.Printf("alert archive insert failed: %v", err)
		}
	}
}
