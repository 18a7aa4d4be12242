package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/octabyte/alumni-portal/enums"
	"github.com/octabyte/alumni-portal/utils"
)

type published struct {
	key  string
	body []byte
}

type fakePublisher struct {
	sent []published
	err  error
}

func (p *fakePublisher) Publish(_ context.Context, key string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.sent = append(p.sent, published{key, body})
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func TestAMQPNotifierPublishesJSON(t *testing.T) {
	pub := &fakePublisher{}
	at := time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

	NewAMQPNotifier(pub).Notify(context.Background(), Event{
		Type:     enums.SessionEventLogin,
		Username: "ana",
		Role:     enums.RoleGraduate,
		At:       at,
	})

	require.Len(t, pub.sent, 1)
	assert.Equal(t, "session.login", pub.sent[0].key)
	assert.JSONEq(t, `{"type":"session.login","username":"ana","role":"ALUMNI","at":"2026-10-14T09:30:00Z"}`, string(pub.sent[0].body))
}

func TestAMQPNotifierStampsTime(t *testing.T) {
	pub := &fakePublisher{}
	NewAMQPNotifier(pub).Notify(context.Background(), Event{Type: enums.SessionEventLogout})

	require.Len(t, pub.sent, 1)
	ev, err := utils.BytesToStruct[Event](pub.sent[0].body)
	require.NoError(t, err)
	assert.False(t, ev.At.IsZero())
	assert.Empty(t, ev.Username)
}

func TestAMQPNotifierLogsPublishFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()

	pub := &fakePublisher{err: errors.New("channel closed")}
	NewAMQPNotifier(pub).Notify(context.Background(), Event{Type: enums.SessionEventExpired, Username: "bo"})

	entries := logs.FilterMessage("publish session event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "bo", entries[0].ContextMap()["username"])
}

func TestNopNotifier(t *testing.T) {
	assert.NotPanics(t, func() { NopNotifier{}.Notify(context.Background(), Event{}) })
}
