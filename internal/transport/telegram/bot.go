// Package telegram is a thin transport over the chat orchestrator: one
// Telegram chat maps to one session, personas switch via /persona.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tele "gopkg.in/telebot.v3"

	"github.com/sandevgo/pitchside/internal/config"
	"github.com/sandevgo/pitchside/internal/core"
	"github.com/sandevgo/pitchside/internal/service/chat"
	"github.com/sandevgo/pitchside/internal/service/persona"
	"github.com/sandevgo/pitchside/pkg/log"
)

const baseContextKey = "base_context"

type Bot struct {
	bot            *tele.Bot
	orch           *chat.Orchestrator
	personas       *persona.Registry
	defaultPersona string

	mu     sync.Mutex
	chosen map[int64]string // chat id -> persona id
}

func NewBot(
	ctx context.Context,
	cfg *config.TelegramConfig,
	orch *chat.Orchestrator,
	personas *persona.Registry,
	defaultPersona string,
) (*Bot, error) {
	pref := tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	bot := &Bot{
		bot:            b,
		orch:           orch,
		personas:       personas,
		defaultPersona: defaultPersona,
		chosen:         make(map[int64]string),
	}

	// Carry the signal context with its logger into handlers.
	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			c.Set(baseContextKey, ctx)
			return next(c)
		}
	})

	b.Handle("/start", bot.handleStart)
	b.Handle("/persona", bot.handlePersona)
	b.Handle(tele.OnText, bot.handleMessage)

	return bot, nil
}

func (b *Bot) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Msg("starting telegram bot")
	b.bot.Start()
	return nil
}

func (b *Bot) Shutdown(ctx context.Context) error {
	b.bot.Stop()
	return nil
}

func (b *Bot) handleStart(c tele.Context) error {
	var sb strings.Builder
	sb.WriteString("Pick a voice with /persona <id>:\n")
	for _, p := range b.personas.List() {
		fmt.Fprintf(&sb, "  %s - %s\n", p.ID, p.Name)
	}
	return c.Send(sb.String())
}

func (b *Bot) handlePersona(c tele.Context) error {
	id := strings.TrimSpace(c.Message().Payload)
	if id == "" {
		return c.Send(fmt.Sprintf("Current persona: %s", b.personaFor(c.Chat().ID)))
	}
	if _, err := b.personas.Get(id); err != nil {
		return c.Send(fmt.Sprintf("Unknown persona %q, see /start for the list.", id))
	}

	b.mu.Lock()
	b.chosen[c.Chat().ID] = id
	b.mu.Unlock()

	return c.Send(fmt.Sprintf("Persona switched to %s.", id))
}

func (b *Bot) handleMessage(c tele.Context) error {
	ctx := c.Get(baseContextKey).(context.Context)
	logger := log.FromCtx(ctx)
	sessionID := fmt.Sprintf("telegram-%d", c.Chat().ID)

	_ = c.Notify(tele.Typing)

	res, err := b.orch.Turn(ctx, sessionID, b.personaFor(c.Chat().ID), c.Text())
	if err != nil {
		var verr *core.ValidationError
		if errors.As(err, &verr) {
			return c.Send(fmt.Sprintf("Can't take that one: %s", verr.Reason))
		}
		logger.Error().Err(err).Str("session", sessionID).Msg("turn failed")
		return c.Send("Something went wrong on our side, try again in a moment.")
	}

	return c.Send(res.Response)
}

func (b *Bot) personaFor(chatID int64) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id, ok := b.chosen[chatID]; ok {
		return id
	}
	return b.defaultPersona
}
