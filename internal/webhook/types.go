package webhook

import "time"

// Envelope is the delivery body posted by the platform. One delivery can
// batch entries for several pages, each with several messaging events.
type Envelope struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging"`
}

// MessagingEvent is one sender-to-page event. Timestamp is epoch
// milliseconds.
type MessagingEvent struct {
	Sender    Participant `json:"sender"`
	Recipient Participant `json:"recipient"`
	Timestamp int64       `json:"timestamp"`
	Message   *Message    `json:"message,omitempty"`
}

type Participant struct {
	ID string `json:"id"`
}

type Message struct {
	MID    string `json:"mid,omitempty"`
	Text   string `json:"text,omitempty"`
	IsEcho bool   `json:"is_echo,omitempty"`
}

// EventTime converts the millisecond timestamp to a time.Time.
func (e MessagingEvent) EventTime() time.Time {
	if e.Timestamp == 0 {
		return time.Time{}
	}
	return time.UnixMilli(e.Timestamp).UTC()
}

// Platform maps the envelope object to the platform a conversation is
// recorded under. Messenger deliveries arrive with object "page".
func (e Envelope) Platform() (string, bool) {
	switch e.Object {
	case "instagram":
		return "instagram", true
	case "page":
		return "facebook", true
	default:
		return "", false
	}
}
