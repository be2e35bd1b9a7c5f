package dialog

// Reply is an outbound message produced by the engine, delivered by the
// transport adapter.
type Reply struct {
	Text     string
	Keyboard *Keyboard
}

// Keyboard is a structured inline menu attached to a reply.
type Keyboard struct {
	Rows [][]Button
}

// Button is a single keyboard cell; Data is its callback payload.
type Button struct {
	Label string
	Data  string
}

func textReply(text string) Reply {
	return Reply{Text: text}
}

func keyboardReply(text string, keyboard Keyboard) Reply {
	return Reply{Text: text, Keyboard: &keyboard}
}
