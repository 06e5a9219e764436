package widget_test

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/einfratech/chatwidget/backend/internal/model/widget"
	widget "github.com/einfratech/chatwidget/backend/internal/service/widget"
)

func newTestWidget(t *testing.T) (*widget.Widget, *widget.ManualClock) {
	t.Helper()
	clock := widget.NewManualClock()
	w := widget.New("test", widget.Options{Clock: clock, Logger: zerolog.Nop()})
	t.Cleanup(w.Shutdown)
	return w, clock
}

func TestNewWidgetStartsWithWelcome(t *testing.T) {
	w, _ := newTestWidget(t)

	msgs := w.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.Message{ID: 1, Text: model.WelcomeMessage, Sender: model.SenderBot}, msgs[0])

	snap := w.Snapshot()
	assert.Equal(t, model.InitialState(), snap.State)
	assert.Equal(t, 1, snap.Opacity)
	assert.Empty(t, snap.Prompts)
	assert.Len(t, snap.Questions, 7)
}

func TestSubmitKnownQuestions(t *testing.T) {
	w, _ := newTestWidget(t)
	faq := model.DefaultFAQ()

	for _, entry := range faq.Entries() {
		before := len(w.Messages())
		added, _ := w.SubmitMessage(entry.Question)

		require.Len(t, added, 2)
		assert.Equal(t, model.SenderUser, added[0].Sender)
		assert.Equal(t, entry.Question, added[0].Text)
		assert.Equal(t, model.SenderBot, added[1].Sender)
		assert.Equal(t, entry.Answer, added[1].Text)
		assert.Len(t, w.Messages(), before+2)
	}
}

func TestSubmitUnknownUsesFallback(t *testing.T) {
	w, _ := newTestWidget(t)

	for _, text := range []string{"what services do you offer?", "", "   ", "Hi Einfra"} {
		added, _ := w.SubmitMessage(text)
		require.Len(t, added, 2)
		assert.Equal(t, text, added[0].Text)
		assert.Equal(t, model.FallbackAnswer, added[1].Text)
	}
}

func TestMessageIDsIncreaseByOne(t *testing.T) {
	w, _ := newTestWidget(t)

	w.SubmitMessage("What services do you offer?")
	w.SubmitFromQuickButton("nope")
	w.SetInput("How can I request a demo?")
	w.SubmitInput()

	for i, msg := range w.Messages() {
		assert.Equal(t, i+1, msg.ID)
	}
	assert.Len(t, w.Messages(), 7)
}

func TestSubmitInputKeepsInput(t *testing.T) {
	w, _ := newTestWidget(t)

	w.SetInput("Do you offer cloud services?")
	added, snap := w.SubmitInput()

	require.Len(t, added, 2)
	assert.Equal(t, "Yes, we provide cloud computing and hosting solutions.", added[1].Text)
	assert.Equal(t, "Do you offer cloud services?", snap.State.Input)
	assert.True(t, snap.State.ShowQuestions)
}

func TestToggleDoesNotTouchMessages(t *testing.T) {
	w, _ := newTestWidget(t)

	snap := w.ToggleOpen()
	assert.True(t, snap.State.IsOpen)
	w.SubmitMessage("How can I contact support?")

	snap = w.ToggleOpen()
	assert.False(t, snap.State.IsOpen)
	snap = w.ToggleOpen()
	assert.True(t, snap.State.IsOpen)
	assert.Len(t, snap.Messages, 3)

	snap = w.Close()
	assert.False(t, snap.State.IsOpen)
	assert.Len(t, snap.Messages, 3)
}

func TestHoverEndBeforeDelayNeverFlickers(t *testing.T) {
	w, clock := newTestWidget(t)

	w.HoverStart()
	clock.Advance(1499 * time.Millisecond)
	w.HoverEnd()
	clock.Advance(5 * time.Second)

	assert.False(t, w.Flickering())
	assert.Equal(t, 0, clock.Pending())
}

func TestHoverDelayStartsFlicker(t *testing.T) {
	w, clock := newTestWidget(t)

	w.HoverStart()
	clock.Advance(1500 * time.Millisecond)

	snap := w.Snapshot()
	require.True(t, snap.State.Hovering)
	assert.Equal(t, model.BlinkingPrompts(), snap.Prompts)
	assert.Equal(t, 1, snap.Opacity)

	clock.Advance(800 * time.Millisecond)
	assert.Equal(t, 0, w.Snapshot().Opacity)
	clock.Advance(800 * time.Millisecond)
	assert.Equal(t, 1, w.Snapshot().Opacity)
	clock.Advance(800 * time.Millisecond)
	assert.Equal(t, 0, w.Snapshot().Opacity)

	clock.Advance(time.Minute)
	assert.True(t, w.Flickering())

	snap = w.HoverEnd()
	assert.False(t, snap.State.Hovering)
	assert.True(t, snap.State.Blinking)
	assert.Empty(t, snap.Prompts)
	assert.Equal(t, 0, clock.Pending())
}

func TestRepeatedHoverStartKeepsSingleDelay(t *testing.T) {
	w, clock := newTestWidget(t)

	w.HoverStart()
	clock.Advance(time.Second)
	w.HoverStart()
	assert.Equal(t, 1, clock.Pending())

	clock.Advance(time.Second)
	assert.False(t, w.Flickering())
	clock.Advance(500 * time.Millisecond)
	assert.True(t, w.Flickering())
}

func TestFlickerBubbleSubmitsLikeMessage(t *testing.T) {
	w, clock := newTestWidget(t)

	w.HoverStart()
	clock.Advance(2 * time.Second)
	snap := w.Snapshot()
	require.NotEmpty(t, snap.Prompts)

	added, _ := w.SubmitFromQuickButton(snap.Prompts[1])
	require.Len(t, added, 2)
	assert.Equal(t, "How can I help you?", added[0].Text)
	assert.Equal(t, model.FallbackAnswer, added[1].Text)
	assert.True(t, w.Flickering())
}

func TestSubscribeReceivesTimerSnapshots(t *testing.T) {
	w, clock := newTestWidget(t)
	updates, cancel := w.Subscribe()
	defer cancel()

	w.HoverStart()
	<-updates

	clock.Advance(1500 * time.Millisecond)
	snap := <-updates
	assert.True(t, snap.State.Hovering)

	clock.Advance(800 * time.Millisecond)
	next := <-updates
	assert.False(t, next.State.Blinking)
	assert.Greater(t, next.Seq, snap.Seq)
}

func TestSlowSubscriberKeepsLatest(t *testing.T) {
	w, _ := newTestWidget(t)
	updates, cancel := w.Subscribe()
	defer cancel()

	var last model.Snapshot
	for i := 0; i < 50; i++ {
		last = w.ToggleOpen()
	}

	var got model.Snapshot
	for len(updates) > 0 {
		got = <-updates
	}
	assert.Equal(t, last.Seq, got.Seq)
}

func TestShutdownStopsTimersAndSubscribers(t *testing.T) {
	w, clock := newTestWidget(t)
	updates, _ := w.Subscribe()

	w.HoverStart()
	clock.Advance(2 * time.Second)
	require.True(t, w.Flickering())

	w.Shutdown()
	assert.Equal(t, 0, clock.Pending())

	before := w.Snapshot()
	clock.Advance(10 * time.Second)
	assert.Equal(t, before.Seq, w.Snapshot().Seq)

	for range updates {
	}

	snap := w.ToggleOpen()
	assert.Equal(t, before.Seq, snap.Seq)

	late, _ := w.Subscribe()
	_, open := <-late
	assert.False(t, open)
}

func TestRealClockFlicker(t *testing.T) {
	w := widget.New("real", widget.Options{
		HoverDelay:    10 * time.Millisecond,
		BlinkInterval: 5 * time.Millisecond,
		Logger:        zerolog.Nop(),
	})
	defer w.Shutdown()

	w.HoverStart()
	require.Eventually(t, w.Flickering, time.Second, time.Millisecond)

	w.HoverEnd()
	assert.False(t, w.Flickering())
	assert.True(t, w.Snapshot().State.Blinking)
}
