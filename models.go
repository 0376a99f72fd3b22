package main

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Message roles as stored in chat_history.message_type.
const (
	RoleCustomer = "USR"
	RoleAgent    = "AIR"
)

type Message struct {
	Timestamp time.Time
	Role      string // "USR" (customer) or "AIR" (agent)
	Text      string
}

// ConversationWindow is the bounded most-recent slice of a customer's
// message history, as fetched from storage (newest first).
type ConversationWindow struct {
	Messages []Message
}

func (w ConversationWindow) IsEmpty() bool {
	return len(w.Messages) == 0
}

// Chronological returns the messages oldest first without mutating the
// fetched order.
func (w ConversationWindow) Chronological() []Message {
	out := make([]Message, len(w.Messages))
	copy(out, w.Messages)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// emptyTranscript is returned for windows with no messages so callers
// can tell "no input" apart from a blank transcript.
const emptyTranscript = "Nenhuma mensagem encontrada."

// FormatConversation renders the window as one transcript line per
// message, oldest first: "[2006-01-02 15:04:05] USR: text".
func FormatConversation(w ConversationWindow) string {
	if w.IsEmpty() {
		return emptyTranscript
	}
	var b strings.Builder
	for i, msg := range w.Chronological() {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s", msg.Timestamp.Format("2006-01-02 15:04:05"), msg.Role, msg.Text))
	}
	return b.String()
}

// ClassificationResult is the one record persisted per customer.
type ClassificationResult struct {
	Tag              string
	Confidence       float64
	Justification    string
	SpecificDetail   string
	ImprovementNote  string
	TokensUsed       int
	ProcessingTimeMS int
}

// ProcessingOutcome is the per-customer terminal status for one run.
type ProcessingOutcome string

const (
	OutcomeCompleted         ProcessingOutcome = "completed"
	OutcomeAlreadyClassified ProcessingOutcome = "already_classified"
	OutcomeNoMessages        ProcessingOutcome = "no_messages"
	OutcomeFailed            ProcessingOutcome = "failed"
)

// RunStats aggregates per-outcome counters for one controller run.
type RunStats struct {
	Completed         int
	AlreadyClassified int
	NoMessages        int
	Failed            int
}

func (s RunStats) Total() int {
	return s.Completed + s.AlreadyClassified + s.NoMessages + s.Failed
}

func (s *RunStats) Record(outcome ProcessingOutcome) {
	switch outcome {
	case OutcomeCompleted:
		s.Completed++
	case OutcomeAlreadyClassified:
		s.AlreadyClassified++
	case OutcomeNoMessages:
		s.NoMessages++
	case OutcomeFailed:
		s.Failed++
	}
}

func (s RunStats) Summary() string {
	return fmt.Sprintf("%d classified, %d already classified, %d without messages, %d failed",
		s.Completed, s.AlreadyClassified, s.NoMessages, s.Failed)
}
