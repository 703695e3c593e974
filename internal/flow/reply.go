package flow

import "github.com/amirhosein2004/sale-tele-bot/internal/keyboard"

// Reply is the transport-neutral outcome of one conversation event. The
// adapter renders it: Text+Markup become a message, Edit asks for an in-place
// edit of the triggering message, Notice is a transient callback answer with
// no message at all.
type Reply struct {
	Text   string
	Markup *keyboard.Markup
	Edit   bool
	Notice string
}

func message(text string, markup *keyboard.Markup) Reply {
	return Reply{Text: text, Markup: markup}
}

func edited(text string, markup *keyboard.Markup) Reply {
	return Reply{Text: text, Markup: markup, Edit: true}
}

func notice(text string) Reply {
	return Reply{Notice: text}
}
