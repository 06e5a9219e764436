package widget

// Sender identifies who authored a message in the widget log.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Message is one entry of the append-only conversation log.
// IDs start at 1 with the welcome message and grow by one per entry.
type Message struct {
	ID     int    `json:"id"`
	Text   string `json:"text"`
	Sender Sender `json:"sender"`
}

// IsBot reports whether the message was produced by the widget.
func (m Message) IsBot() bool {
	return m.Sender == SenderBot
}
