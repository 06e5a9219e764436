package widget

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
)

const (
	DefaultHoverDelay    = 1500 * time.Millisecond
	DefaultBlinkInterval = 800 * time.Millisecond

	subscriberBuffer = 8
)

// Options configures a Widget. Zero values fall back to the defaults.
type Options struct {
	Catalog       model.Catalog
	Clock         Clock
	HoverDelay    time.Duration
	BlinkInterval time.Duration
	Logger        zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Catalog.FAQ == nil {
		o.Catalog = model.DefaultCatalog()
	}
	if o.Clock == nil {
		o.Clock = RealClock{}
	}
	if o.HoverDelay <= 0 {
		o.HoverDelay = DefaultHoverDelay
	}
	if o.BlinkInterval <= 0 {
		o.BlinkInterval = DefaultBlinkInterval
	}
	return o
}

// Widget owns the UI state, message log and timers of one chat widget.
//
// The hover sub-machine has two states. idle (possibly with a pending delay)
// moves to flickering when the delay fires uncancelled; flickering returns
// to idle on HoverEnd. Each timer carries a generation number so a fire that
// races with its cancellation is discarded.
type Widget struct {
	id   string
	opts Options
	log  zerolog.Logger

	mu       sync.Mutex
	state    model.State
	messages []model.Message
	seq      uint64
	closed   bool

	hoverTimer Timer
	hoverGen   uint64
	blinkTimer Timer
	blinkGen   uint64

	subs    map[int]chan model.Snapshot
	nextSub int
}

// New builds a widget seeded with the welcome message.
func New(id string, opts Options) *Widget {
	opts = opts.withDefaults()
	return &Widget{
		id:       id,
		opts:     opts,
		log:      opts.Logger.With().Str("widget", id).Logger(),
		state:    model.InitialState(),
		messages: []model.Message{{ID: 1, Text: opts.Catalog.Welcome, Sender: model.SenderBot}},
		subs:     make(map[int]chan model.Snapshot),
	}
}

// ID returns the session identifier the widget was created with.
func (w *Widget) ID() string {
	return w.id
}

// ToggleOpen flips popup visibility.
func (w *Widget) ToggleOpen() model.Snapshot {
	return w.update(func() {
		w.state.IsOpen = !w.state.IsOpen
	})
}

// Close hides the popup, as the header close control does.
func (w *Widget) Close() model.Snapshot {
	return w.update(func() {
		w.state.IsOpen = false
	})
}

// SetInput records the text input value.
func (w *Widget) SetInput(text string) model.Snapshot {
	return w.update(func() {
		w.state.Input = text
	})
}

// HoverStart arms the hover delay, replacing any delay still pending.
func (w *Widget) HoverStart() model.Snapshot {
	return w.update(func() {
		w.stopHoverTimerLocked()
		w.hoverGen++
		gen := w.hoverGen
		w.hoverTimer = w.opts.Clock.AfterFunc(w.opts.HoverDelay, func() {
			w.onHoverDelay(gen)
		})
	})
}

// HoverEnd cancels the pending delay and leaves flicker mode.
func (w *Widget) HoverEnd() model.Snapshot {
	return w.update(func() {
		w.stopHoverTimerLocked()
		w.stopBlinkTimerLocked()
		w.state.Hovering = false
		w.state.Blinking = true
	})
}

// SubmitMessage appends the user entry and the bot reply, in that order.
// The text is matched verbatim; empty input still gets the fallback reply.
func (w *Widget) SubmitMessage(text string) ([]model.Message, model.Snapshot) {
	var added []model.Message
	snap := w.update(func() {
		added = w.appendExchangeLocked(text)
	})
	return added, snap
}

// SubmitInput submits the current input value. The input is left as is.
func (w *Widget) SubmitInput() ([]model.Message, model.Snapshot) {
	var added []model.Message
	snap := w.update(func() {
		added = w.appendExchangeLocked(w.state.Input)
	})
	return added, snap
}

// SubmitFromQuickButton is used by FAQ buttons and flicker bubbles alike.
func (w *Widget) SubmitFromQuickButton(question string) ([]model.Message, model.Snapshot) {
	return w.SubmitMessage(question)
}

// Snapshot returns the current view without changing state.
func (w *Widget) Snapshot() model.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

// Messages returns a copy of the log.
func (w *Widget) Messages() []model.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]model.Message(nil), w.messages...)
}

// Flickering reports whether the hover bubbles are currently shown.
func (w *Widget) Flickering() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state.Hovering
}

// Subscribe streams a snapshot after every transition. Slow readers lose
// intermediate snapshots, never the latest one. The channel is closed on
// cancel or Shutdown.
func (w *Widget) Subscribe() (<-chan model.Snapshot, func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	ch := make(chan model.Snapshot, subscriberBuffer)
	if w.closed {
		close(ch)
		return ch, func() {}
	}

	id := w.nextSub
	w.nextSub++
	w.subs[id] = ch

	return ch, func() {
		w.mu.Lock()
		defer w.mu.Unlock()
		if sub, ok := w.subs[id]; ok {
			delete(w.subs, id)
			close(sub)
		}
	}
}

// Subscribers reports how many live subscriptions are attached.
func (w *Widget) Subscribers() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.subs)
}

// Shutdown releases both timers and all subscribers. It is idempotent.
func (w *Widget) Shutdown() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.stopHoverTimerLocked()
	w.stopBlinkTimerLocked()
	for id, ch := range w.subs {
		delete(w.subs, id)
		close(ch)
	}
	w.log.Debug().Msg("widget shut down")
}

func (w *Widget) update(mutate func()) model.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return w.snapshotLocked()
	}
	mutate()
	w.seq++
	snap := w.snapshotLocked()
	w.publishLocked(snap)
	return snap
}

func (w *Widget) appendExchangeLocked(text string) []model.Message {
	answer := w.opts.Catalog.FAQ.Answer(text)
	next := len(w.messages) + 1
	added := []model.Message{
		{ID: next, Text: text, Sender: model.SenderUser},
		{ID: next + 1, Text: answer, Sender: model.SenderBot},
	}
	w.messages = append(w.messages, added...)
	w.state.ShowQuestions = true

	_, matched := w.opts.Catalog.FAQ.Lookup(text)
	w.log.Debug().Bool("matched", matched).Int("messages", len(w.messages)).Msg("message submitted")
	return added
}

func (w *Widget) onHoverDelay(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.hoverGen || w.hoverTimer == nil {
		return
	}
	w.hoverTimer = nil
	w.state.Hovering = true
	if w.blinkTimer == nil {
		w.blinkGen++
		blinkGen := w.blinkGen
		w.blinkTimer = w.opts.Clock.Every(w.opts.BlinkInterval, func() {
			w.onBlink(blinkGen)
		})
	}
	w.seq++
	w.publishLocked(w.snapshotLocked())
	w.log.Debug().Msg("flicker started")
}

func (w *Widget) onBlink(gen uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || gen != w.blinkGen || w.blinkTimer == nil {
		return
	}
	w.state.Blinking = !w.state.Blinking
	w.seq++
	w.publishLocked(w.snapshotLocked())
}

func (w *Widget) stopHoverTimerLocked() {
	if w.hoverTimer != nil {
		w.hoverTimer.Stop()
		w.hoverTimer = nil
	}
	w.hoverGen++
}

func (w *Widget) stopBlinkTimerLocked() {
	if w.blinkTimer != nil {
		w.blinkTimer.Stop()
		w.blinkTimer = nil
	}
	w.blinkGen++
}

// publishLocked never blocks: a full buffer drops its oldest entry.
func (w *Widget) publishLocked(snap model.Snapshot) {
	for _, ch := range w.subs {
		select {
		case ch <- snap:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

func (w *Widget) snapshotLocked() model.Snapshot {
	snap := model.Snapshot{
		SessionID: w.id,
		Seq:       w.seq,
		State:     w.state,
		Opacity:   w.state.Opacity(),
		Messages:  append([]model.Message(nil), w.messages...),
		Questions: w.opts.Catalog.FAQ.Questions(),
	}
	if w.state.Hovering {
		snap.Prompts = append([]string(nil), w.opts.Catalog.Prompts...)
	}
	return snap
}
