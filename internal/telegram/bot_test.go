package telegram

import (
	"errors"
	"fmt"
	"testing"

	"github.com/amirhosein2004/sale-tele-bot/internal/flow"
	"github.com/amirhosein2004/sale-tele-bot/internal/keyboard"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

// recordingContext captures what deliver emits without a live bot.
type recordingContext struct {
	tele.Context
	callback  *tele.Callback
	sent      []string
	edited    []string
	responses []*tele.CallbackResponse
	editErr   error
}

func (c *recordingContext) Callback() *tele.Callback { return c.callback }
func (c *recordingContext) Sender() *tele.User       { return &tele.User{ID: 7} }

func (c *recordingContext) Send(what interface{}, _ ...interface{}) error {
	c.sent = append(c.sent, fmt.Sprint(what))
	return nil
}

func (c *recordingContext) Edit(what interface{}, _ ...interface{}) error {
	if c.editErr != nil {
		return c.editErr
	}
	c.edited = append(c.edited, fmt.Sprint(what))
	return nil
}

func (c *recordingContext) Respond(resp ...*tele.CallbackResponse) error {
	c.responses = append(c.responses, resp...)
	return nil
}

// A notice produced by a text update has no callback to answer; it must
// still reach the user as a plain message.
func TestDeliverNoticeWithoutCallbackSendsMessage(t *testing.T) {
	b := &Bot{}
	c := &recordingContext{}

	err := b.deliver(c, flow.Reply{Notice: "⏳ hold on"}, nil)
	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "⏳ hold on", c.sent[0])
	assert.Empty(t, c.responses)
}

func TestDeliverNoticeWithCallbackAnswersInline(t *testing.T) {
	b := &Bot{}
	c := &recordingContext{callback: &tele.Callback{}}

	err := b.deliver(c, flow.Reply{Notice: "⏳ hold on"}, nil)
	require.NoError(t, err)
	require.Len(t, c.responses, 1)
	assert.Equal(t, "⏳ hold on", c.responses[0].Text)
	assert.Empty(t, c.sent)
}

func TestDeliverEditFallsBackToSend(t *testing.T) {
	b := &Bot{}
	c := &recordingContext{callback: &tele.Callback{}, editErr: errors.New("message too old")}

	err := b.deliver(c, flow.Reply{Text: "menu", Markup: keyboard.MainMenu(), Edit: true}, nil)
	require.NoError(t, err)
	assert.Empty(t, c.edited)
	require.Len(t, c.sent, 1)
	assert.Equal(t, "menu", c.sent[0])
}

func TestDeliverEngineErrorSendsGenericMessage(t *testing.T) {
	b := &Bot{}
	c := &recordingContext{}

	err := b.deliver(c, flow.Reply{}, errors.New("boom"))
	require.NoError(t, err)
	require.Len(t, c.sent, 1)
	assert.Equal(t, textInternalError, c.sent[0])
}

func TestRenderKeepsRowLayout(t *testing.T) {
	m := keyboard.MainMenu()
	rendered := render(m)
	require.NotNil(t, rendered)
	require.Len(t, rendered.InlineKeyboard, len(m.Rows))
	for i, row := range m.Rows {
		require.Len(t, rendered.InlineKeyboard[i], len(row))
		for j, btn := range row {
			assert.Equal(t, btn.Label, rendered.InlineKeyboard[i][j].Text)
			assert.Equal(t, btn.Data, rendered.InlineKeyboard[i][j].Data)
		}
	}
	assert.Nil(t, render(nil))
}
