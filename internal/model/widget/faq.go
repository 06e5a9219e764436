package widget

import (
	"errors"
	"fmt"
)

// FallbackAnswer is the bot reply for any question missing from the table.
const FallbackAnswer = "Sorry, I don't have an answer for that."

// WelcomeMessage opens every conversation.
const WelcomeMessage = "Welcome to Einfratech Systems India! How can I assist you?"

var (
	ErrEmptyQuestion     = errors.New("faq question is empty")
	ErrDuplicateQuestion = errors.New("faq question is duplicated")
)

// BlinkingPrompts are the bubbles shown while the toggle button is hovered.
// Neither is an FAQ key, so clicking them yields the fallback answer.
func BlinkingPrompts() []string {
	return []string{"Hi Einfra", "How can I help you?"}
}

// Entry is a single question/answer pair.
type Entry struct {
	Question string `json:"question" toml:"question"`
	Answer   string `json:"answer" toml:"answer"`
}

// FAQ is an immutable, ordered question → answer table.
type FAQ struct {
	entries []Entry
	index   map[string]string
}

// NewFAQ validates entries and freezes them into a table.
func NewFAQ(entries []Entry) (*FAQ, error) {
	index := make(map[string]string, len(entries))
	for i, entry := range entries {
		if entry.Question == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrEmptyQuestion)
		}
		if _, exists := index[entry.Question]; exists {
			return nil, fmt.Errorf("entry %d %q: %w", i, entry.Question, ErrDuplicateQuestion)
		}
		index[entry.Question] = entry.Answer
	}

	return &FAQ{
		entries: append([]Entry(nil), entries...),
		index:   index,
	}, nil
}

// DefaultFAQ returns the built-in Einfratech table.
func DefaultFAQ() *FAQ {
	faq, err := NewFAQ(Seed())
	if err != nil {
		panic(err)
	}
	return faq
}

// Seed provides the question set the widget ships with.
func Seed() []Entry {
	return []Entry{
		{Question: "What services do you offer?", Answer: "We specialize in IT solutions, software development, and cloud services."},
		{Question: "Where is your company located?", Answer: "We are based in India with offices in multiple cities."},
		{Question: "How can I contact support?", Answer: "You can reach us at support@einfratech.com."},
		{Question: "What industries do you serve?", Answer: "We serve industries like finance, healthcare, and manufacturing."},
		{Question: "Do you provide custom software development?", Answer: "Yes, we offer tailored software solutions for businesses."},
		{Question: "Do you offer cloud services?", Answer: "Yes, we provide cloud computing and hosting solutions."},
		{Question: "How can I request a demo?", Answer: "You can request a demo by contacting us via email or phone."},
	}
}

// Lookup matches the question exactly; no trimming or case folding.
func (f *FAQ) Lookup(question string) (string, bool) {
	answer, ok := f.index[question]
	return answer, ok
}

// Answer returns the mapped answer or FallbackAnswer.
func (f *FAQ) Answer(question string) string {
	if answer, ok := f.Lookup(question); ok {
		return answer
	}
	return FallbackAnswer
}

// Questions lists the keys in declaration order.
func (f *FAQ) Questions() []string {
	questions := make([]string, len(f.entries))
	for i, entry := range f.entries {
		questions[i] = entry.Question
	}
	return questions
}

// Entries returns a copy of the table.
func (f *FAQ) Entries() []Entry {
	return append([]Entry(nil), f.entries...)
}

// Len is the number of entries.
func (f *FAQ) Len() int {
	return len(f.entries)
}
