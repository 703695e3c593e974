// Package telegram adapts the conversation engine to the Telegram Bot API.
// All chat semantics live in the flow package; this layer only moves
// updates in and rendered replies out.
package telegram

import (
	"context"
	"strings"
	"time"

	"github.com/amirhosein2004/sale-tele-bot/internal/flow"
	"github.com/amirhosein2004/sale-tele-bot/internal/keyboard"

	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"
)

const handleTimeout = 15 * time.Second

const textInternalError = "⚠️ Something went wrong on our side. Please try again."

// Bot wires the long poller to the engine. An empty allowed set means the
// bot answers anyone; otherwise unknown chats are rejected.
type Bot struct {
	bot     *tele.Bot
	engine  *flow.Engine
	allowed map[int64]struct{}
}

func New(token string, engine *flow.Engine, allowedIDs []int64) (*Bot, error) {
	tb, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, err
	}

	b := &Bot{bot: tb, engine: engine, allowed: make(map[int64]struct{}, len(allowedIDs))}
	for _, id := range allowedIDs {
		b.allowed[id] = struct{}{}
	}

	tb.Handle("/start", b.onStart)
	tb.Handle(tele.OnText, b.onText)
	tb.Handle(tele.OnCallback, b.onCallback)
	return b, nil
}

// Start blocks on the long poller until Stop is called.
func (b *Bot) Start() { b.bot.Start() }

func (b *Bot) Stop() { b.bot.Stop() }

func (b *Bot) onStart(c tele.Context) error {
	if !b.permitted(c) {
		return c.Send("⛔ This bot is private.")
	}
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	reply, err := b.engine.Start(ctx, c.Sender().ID)
	return b.deliver(c, reply, err)
}

func (b *Bot) onText(c tele.Context) error {
	if !b.permitted(c) {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	reply, err := b.engine.HandleText(ctx, c.Sender().ID, c.Text())
	return b.deliver(c, reply, err)
}

func (b *Bot) onCallback(c tele.Context) error {
	if !b.permitted(c) {
		return c.Respond()
	}
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	data := strings.TrimPrefix(c.Callback().Data, "\f")
	reply, err := b.engine.HandleAction(ctx, c.Sender().ID, data)
	return b.deliver(c, reply, err)
}

func (b *Bot) permitted(c tele.Context) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[c.Sender().ID]
	if !ok {
		log.Warn().Int64("user_id", c.Sender().ID).Msg("rejected unknown chat")
	}
	return ok
}

// deliver renders one Reply. Callback updates are always answered so the
// client stops its spinner, even when nothing else is sent.
func (b *Bot) deliver(c tele.Context, reply flow.Reply, err error) error {
	if err != nil {
		log.Error().Err(err).Int64("user_id", c.Sender().ID).Msg("handle update")
		if c.Callback() != nil {
			_ = c.Respond()
		}
		return c.Send(textInternalError)
	}

	if c.Callback() != nil {
		resp := &tele.CallbackResponse{}
		if reply.Notice != "" {
			resp.Text = reply.Notice
		}
		if err := c.Respond(resp); err != nil {
			log.Warn().Err(err).Msg("answer callback")
		}
	} else if reply.Notice != "" {
		// no callback to answer, so the notice must travel as a message
		return c.Send(reply.Notice)
	}
	if reply.Text == "" {
		return nil
	}

	opts := []interface{}{tele.ModeMarkdown}
	if markup := render(reply.Markup); markup != nil {
		opts = append(opts, markup)
	}
	if reply.Edit && c.Callback() != nil {
		if err := c.Edit(reply.Text, opts...); err == nil {
			return nil
		}
		// the message may be too old to edit, fall through to a fresh send
	}
	return c.Send(reply.Text, opts...)
}

func render(m *keyboard.Markup) *tele.ReplyMarkup {
	if m == nil {
		return nil
	}
	rows := make([][]tele.InlineButton, 0, len(m.Rows))
	for _, row := range m.Rows {
		btns := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tele.InlineButton{Text: b.Label, Data: b.Data, URL: b.URL})
		}
		rows = append(rows, btns)
	}
	return &tele.ReplyMarkup{InlineKeyboard: rows}
}
