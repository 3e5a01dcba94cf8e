package notify

import (
	"context"
	"errors"
	"testing"

	"crypto-watchtower/internal/domain"

	tele "gopkg.in/telebot.v3"
)

type stubSender struct {
	sent []string
	err  error
}

func (s *stubSender) Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error) {
	if text, ok := what.(string); ok {
		s.sent = append(s.sent, text)
	}
	return nil, s.err
}

type stubArchiver struct {
	alerts []domain.Alert
	err    error
}

func (s *stubArchiver) Insert(ctx context.Context, alert domain.Alert) error {
	if s.err != nil {
		return s.err
	}
	s.alerts = append(s.alerts, alert)
	return nil
}

func TestDispatcherSendsAndArchives(t *testing.T) {
	sender := &stubSender{}
	archive := &stubArchiver{}
	d := NewDispatcher(sender, 1234, archive)

	d.Notify(context.Background(), domain.Alert{Kind: domain.AlertKindLevel, Asset: "BTC", Text: "alert body"})

	if len(sender.sent) != 1 || sender.sent[0] != "alert body" {
		t.Fatalf("expected one send, got %+v", sender.sent)
	}
	if len(archive.alerts) != 1 || archive.alerts[0].Kind != domain.AlertKindLevel {
		t.Fatalf("expected one archived alert, got %+v", archive.alerts)
	}
}

func TestDispatcherSendFailureStillArchives(t *testing.T) {
	sender := &stubSender{err: errors.New("telegram down")}
	archive := &stubArchiver{}
	d := NewDispatcher(sender, 1234, archive)

	d.Notify(context.Background(), domain.Alert{Kind: domain.AlertKindNews, Text: "x"})

	if len(archive.alerts) != 1 {
		t.Fatalf("send failure must not block archiving")
	}
}

func TestDispatcherNoChatConfigured(t *testing.T) {
	sender := &stubSender{}
	d := NewDispatcher(sender, 0, nil)

	d.Notify(context.Background(), domain.Alert{Kind: domain.AlertKindNews, Text: "x"})

	if len(sender.sent) != 0 {
		t.Fatalf("no chat configured, nothing should be sent")
	}
}

func TestDispatcherNilSafe(t *testing.T) {
	var d *Dispatcher
	d.Notify(context.Background(), domain.Alert{Text: "x"})
}
