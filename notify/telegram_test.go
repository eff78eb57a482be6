package notify

import (
	"bytes"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []tgbotapi.Chattable
	err  error
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if f.err != nil {
		return tgbotapi.Message{}, f.err
	}
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func TestSummary(t *testing.T) {
	out := Summary(Report{
		Title:    "Survey",
		Session:  "abc",
		Built:    []string{"overview"},
		Failed:   []string{"sales"},
		Duration: 1500 * time.Millisecond,
	})
	assert.Contains(t, out, "Survey (abc)")
	assert.Contains(t, out, "overview")
	assert.Contains(t, out, "sales")
	assert.Contains(t, out, "1.5s")
}

func TestNotify(t *testing.T) {
	sender := &fakeSender{}
	tg := NewTelegramWithSender(sender, 42)

	err := tg.Notify(Report{
		Title: "Survey",
		Built: []string{"overview"},
		Images: []Attachment{
			{Name: "small.png", Bytes: []byte("png")},
			{Name: "big.png", Bytes: bytes.Repeat([]byte{1}, maxSizePhoto+1)},
		},
	})
	require.NoError(t, err)
	require.Len(t, sender.sent, 3)

	msg, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, msg.ParseMode)
	assert.Contains(t, msg.Text, "<pre>")

	_, ok = sender.sent[1].(tgbotapi.PhotoConfig)
	assert.True(t, ok)
	_, ok = sender.sent[2].(tgbotapi.DocumentConfig)
	assert.True(t, ok)
}

func TestNotifyError(t *testing.T) {
	tg := NewTelegramWithSender(&fakeSender{err: errors.New("network")}, 1)
	err := tg.Notify(Report{Title: "x"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "network")
}
