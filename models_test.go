package main

import (
	"strings"
	"testing"
	"time"
)

func TestFormatConversationChronological(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	// Newest first, as fetched from storage.
	window := ConversationWindow{Messages: []Message{
		{Timestamp: base.Add(2 * time.Minute), Role: RoleAgent, Text: "Posso ajudar?"},
		{Timestamp: base.Add(1 * time.Minute), Role: RoleCustomer, Text: "Oi"},
		{Timestamp: base, Role: RoleCustomer, Text: "Olá"},
	}}

	got := FormatConversation(window)
	lines := strings.Split(got, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 transcript lines, got %d: %q", len(lines), got)
	}
	if lines[0] != "[2025-03-10 14:00:00] USR: Olá" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[2] != "[2025-03-10 14:02:00] AIR: Posso ajudar?" {
		t.Fatalf("unexpected last line: %q", lines[2])
	}
}

func TestFormatConversationEmptyWindowSentinel(t *testing.T) {
	got := FormatConversation(ConversationWindow{})
	if got != emptyTranscript {
		t.Fatalf("expected sentinel for empty window, got %q", got)
	}
	if got == "" {
		t.Fatal("sentinel must not be the empty string")
	}
}

func TestRunStatsRecordAndSummary(t *testing.T) {
	var stats RunStats
	stats.Record(OutcomeCompleted)
	stats.Record(OutcomeCompleted)
	stats.Record(OutcomeAlreadyClassified)
	stats.Record(OutcomeNoMessages)
	stats.Record(OutcomeFailed)

	if stats.Completed != 2 || stats.AlreadyClassified != 1 || stats.NoMessages != 1 || stats.Failed != 1 {
		t.Fatalf("unexpected counters: %+v", stats)
	}
	if stats.Total() != 5 {
		t.Fatalf("expected total=5, got %d", stats.Total())
	}
	summary := stats.Summary()
	if !strings.Contains(summary, "2 classified") || !strings.Contains(summary, "1 failed") {
		t.Fatalf("unexpected summary: %q", summary)
	}
}
