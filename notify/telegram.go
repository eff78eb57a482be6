package notify

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
)

// фото больше этого размера телеграм пережимает, такие шлём документом
const maxSizePhoto = 150000

// Sender часть tgbotapi.BotAPI, которая нужна для отправки
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Attachment картинка графика для отправки в чат
type Attachment struct {
	Name    string
	Caption string
	Bytes   []byte
}

// Report итог одной сборки
type Report struct {
	Title    string
	Session  string
	Built    []string
	Skipped  []string
	Failed   []string
	Duration time.Duration
	Images   []Attachment
}

// Telegram отправляет итог сборки в один чат
type Telegram struct {
	api    Sender
	chatID int64
}

func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, errors.Wrap(err, "tg error")
	}
	return NewTelegramWithSender(bot, chatID), nil
}

func NewTelegramWithSender(api Sender, chatID int64) *Telegram {
	return &Telegram{api: api, chatID: chatID}
}

// Notify сводка текстом, затем картинки графиков
func (t *Telegram) Notify(r Report) error {
	msg := tgbotapi.NewMessage(t.chatID, "<pre>\n"+Summary(r)+"\n</pre>")
	msg.ParseMode = tgbotapi.ModeHTML
	if _, err := t.api.Send(msg); err != nil {
		return errors.Wrap(err, "send summary")
	}

	for _, img := range r.Images {
		file := tgbotapi.FileBytes{Name: img.Name, Bytes: img.Bytes}
		var c tgbotapi.Chattable
		if len(img.Bytes) < maxSizePhoto {
			photo := tgbotapi.NewPhotoUpload(t.chatID, file)
			photo.Caption = img.Caption
			c = photo
		} else {
			doc := tgbotapi.NewDocumentUpload(t.chatID, file)
			doc.Caption = img.Caption
			c = doc
		}
		if _, err := t.api.Send(c); err != nil {
			return errors.Wrapf(err, "send %s", img.Name)
		}
	}
	return nil
}

// Summary таблица страниц сборки
func Summary(r Report) string {
	tw := table.NewWriter()
	title := r.Title
	if r.Session != "" {
		title = fmt.Sprintf("%s (%s)", title, r.Session)
	}
	tw.SetTitle(title)
	tw.AppendHeader(table.Row{"Status", "Pages"})
	tw.AppendRow(table.Row{"built", pageList(r.Built)})
	tw.AppendRow(table.Row{"unchanged", pageList(r.Skipped)})
	if len(r.Failed) > 0 {
		tw.AppendRow(table.Row{"failed", pageList(r.Failed)})
	}
	tw.AppendFooter(table.Row{"took", r.Duration.Round(time.Millisecond).String()})
	tw.SetStyle(table.StyleDefault)
	return tw.Render()
}

func pageList(pages []string) string {
	if len(pages) == 0 {
		return "-"
	}
	return strings.Join(pages, "\n")
}
