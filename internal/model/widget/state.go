package widget

// State holds the ephemeral UI flags of one widget.
type State struct {
	IsOpen        bool   `json:"isOpen"`
	Hovering      bool   `json:"hovering"`
	Blinking      bool   `json:"blinking"`
	ShowQuestions bool   `json:"showQuestions"`
	Input         string `json:"input"`
}

// InitialState is the state a freshly rendered widget starts in.
func InitialState() State {
	return State{
		Blinking:      true,
		ShowQuestions: true,
	}
}

// Opacity of the flicker bubbles: 1 while Blinking, otherwise 0.
func (s State) Opacity() int {
	if s.Blinking {
		return 1
	}
	return 0
}

// Snapshot is what gets rendered or pushed to a client.
type Snapshot struct {
	SessionID string `json:"sessionId,omitempty"`
	// Seq grows with every transition so clients can drop stale pushes.
	Seq       uint64    `json:"seq"`
	State     State     `json:"state"`
	Opacity   int       `json:"opacity"`
	Messages  []Message `json:"messages"`
	Questions []string  `json:"questions"`
	Prompts   []string  `json:"prompts,omitempty"`
}
