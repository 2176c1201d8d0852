package ui

import "strings"

// historyCap bounds the search history.
const historyCap = 10

// History is a bounded, most-recent-first list of searched topics. Repeating
// a topic moves it to the front instead of duplicating it; comparison is
// case-insensitive but the first-seen spelling is kept.
type History struct {
	topics []string
}

// Add records a topic at the front of the history.
func (h *History) Add(topic string) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return
	}
	for i, t := range h.topics {
		if strings.EqualFold(t, topic) {
			h.topics = append(h.topics[:i], h.topics[i+1:]...)
			h.topics = append([]string{t}, h.topics...)
			return
		}
	}
	h.topics = append([]string{topic}, h.topics...)
	if len(h.topics) > historyCap {
		h.topics = h.topics[:historyCap]
	}
}

// Topics returns the history, most recent first. The returned slice is a
// copy.
func (h *History) Topics() []string {
	out := make([]string, len(h.topics))
	copy(out, h.topics)
	return out
}

// Len returns the number of remembered topics.
func (h *History) Len() int { return len(h.topics) }

// At returns the topic at position i, most recent first, or "".
func (h *History) At(i int) string {
	if i < 0 || i >= len(h.topics) {
		return ""
	}
	return h.topics[i]
}
