package dashboard

import (
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/pivolan/dashboardr/config"
	"github.com/pivolan/dashboardr/notify"
)

// Main параметры команды build, флаги генерирует commandeer
type Main struct {
	Definition string `help:"Dashboard definition file (YAML)."`
	Output     string `help:"Output directory, overrides the definition."`
	Backend    string `help:"Default chart backend, overrides the definition."`
	Force      bool   `help:"Rebuild every page even if it is unchanged."`
	DbDsn      string `help:"MySQL DSN for query data sources, defaults to DB_DSN."`
	Notify     bool   `help:"Send a build summary to Telegram (TG_TOKEN, TG_CHAT_ID)."`

	Logger *log.Logger `flag:"-"`
}

func NewMain() *Main {
	return &Main{
		Definition: "dashboard.yaml",
		Logger:     log.New(os.Stderr, "dashboardr: ", log.LstdFlags),
	}
}

// Run загружает описание и запускает сборку
func (m *Main) Run() (*Result, error) {
	def, err := Load(m.Definition)
	if err != nil {
		return nil, err
	}
	if m.Output != "" {
		def.Output = m.Output
	}
	if m.Backend != "" {
		def.Backend = m.Backend
	}

	b := NewBuilder(def)
	if m.Logger != nil {
		b.Logger = m.Logger
	}
	b.Force = m.Force
	b.DSN = m.DbDsn

	cfg := config.GetConfig()
	if b.DSN == "" {
		b.DSN = cfg.DbDsn
	}
	if m.Notify {
		if !cfg.TelegramEnabled() {
			return nil, errors.New("telegram notifications need TG_TOKEN and TG_CHAT_ID")
		}
		tg, err := notify.NewTelegram(cfg.TgToken, cfg.TgChatID)
		if err != nil {
			return nil, err
		}
		b.Notifier = tg
	}
	return b.Build()
}
