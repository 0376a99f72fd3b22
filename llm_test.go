package main

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeCompleter scripts completion responses for tests. Responses are
// consumed in order; the last one repeats.
type fakeCompleter struct {
	responses  []string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, LLMUsage, error) {
	f.calls++
	f.lastSystem = systemPrompt
	f.lastUser = userPrompt
	if f.err != nil {
		return "", LLMUsage{}, f.err
	}
	i := f.calls - 1
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	return f.responses[i], LLMUsage{InputTokens: 50, OutputTokens: 20}, nil
}

func testLLMConfig() Config {
	return Config{
		UseLLM:            true,
		LLMMaxTokens:      150,
		LLMTemperature:    0.3,
		LLMTimeoutSeconds: 5,
		WindowSize:        25,
	}
}

func TestParseTagResponseThreeFields(t *testing.T) {
	catalog := defaultCatalog(t)

	d := parseTagResponse("DÚVIDAS SOBRE BOLETO|cliente pediu segunda via|não recebeu", catalog)
	if d.Tag != "Dúvidas sobre boleto" {
		t.Fatalf("expected canonical casing, got %q", d.Tag)
	}
	if d.Confidence != llmSuccessConfidence {
		t.Fatalf("expected success confidence, got %f", d.Confidence)
	}
	if d.Justification != "cliente pediu segunda via" {
		t.Fatalf("unexpected justification: %q", d.Justification)
	}
	if d.SpecificDetail != "não recebeu" {
		t.Fatalf("unexpected specific detail: %q", d.SpecificDetail)
	}
}

func TestParseTagResponseTwoFields(t *testing.T) {
	catalog := defaultCatalog(t)

	d := parseTagResponse("Dúvidas sobre PIX|pix não confirmado", catalog)
	if d.Tag != "Dúvidas sobre PIX" {
		t.Fatalf("unexpected tag: %q", d.Tag)
	}
	if d.Justification != "pix não confirmado" || d.SpecificDetail != "pix não confirmado" {
		t.Fatalf("expected justification reused as detail, got %q / %q", d.Justification, d.SpecificDetail)
	}
}

func TestParseTagResponseLeadingBulletStripped(t *testing.T) {
	catalog := defaultCatalog(t)

	d := parseTagResponse("- Outros|conversa genérica|apenas conversou", catalog)
	if d.Tag != FallbackTag {
		t.Fatalf("expected bullet stripped and tag resolved, got %q", d.Tag)
	}
	if d.Confidence != llmSuccessConfidence {
		t.Fatalf("expected success confidence, got %f", d.Confidence)
	}
}

func TestParseTagResponseNoDelimiterWithTagSubstring(t *testing.T) {
	catalog := defaultCatalog(t)

	d := parseTagResponse("A conversa trata de Dúvidas sobre PIX claramente.", catalog)
	if d.Tag != "Dúvidas sobre PIX" {
		t.Fatalf("expected tag extracted from prose, got %q", d.Tag)
	}
	if d.Confidence != llmSuccessConfidence {
		t.Fatalf("expected success confidence, got %f", d.Confidence)
	}
	if !strings.Contains(d.Justification, "Tag encontrada na resposta") {
		t.Fatalf("unexpected justification: %q", d.Justification)
	}
}

func TestParseTagResponseFuzzyMappingNoted(t *testing.T) {
	catalog := defaultCatalog(t)

	d := parseTagResponse("sobre boleto|segunda via|não recebeu", catalog)
	if d.Tag != "Dúvidas sobre boleto" {
		t.Fatalf("expected fuzzy resolution, got %q", d.Tag)
	}
	if !strings.Contains(d.Justification, "mapeada para") {
		t.Fatalf("expected fuzzy mapping recorded in justification, got %q", d.Justification)
	}
}

func TestParseTagResponseUnrecognizedTag(t *testing.T) {
	catalog := defaultCatalog(t)

	d := parseTagResponse("categoria inexistente xyz", catalog)
	if d.Tag != FallbackTag {
		t.Fatalf("expected fallback for unrecognized tag, got %q", d.Tag)
	}
	if d.Confidence == llmSuccessConfidence {
		t.Fatal("unrecognized tag must not carry the success confidence")
	}
	if d.Confidence != llmUnrecognizedConfidence {
		t.Fatalf("expected unrecognized confidence, got %f", d.Confidence)
	}
	if !strings.Contains(d.Justification, "não reconhecida") {
		t.Fatalf("unexpected justification: %q", d.Justification)
	}
}

func TestLLMClassifyEmptyWindowSkipsRemoteCall(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"should not be called"}}
	l := NewLLMClassifier(fake, defaultCatalog(t), testLLMConfig())

	d, err := l.Classify(context.Background(), ConversationWindow{})
	if err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if fake.calls != 0 {
		t.Fatalf("expected no remote call for empty window, got %d", fake.calls)
	}
	if d.Tag != FallbackTag || d.Confidence != 0.0 {
		t.Fatalf("unexpected empty-window decision: %+v", d)
	}
}

func TestLLMClassifyPromptEmbedsCatalogAndTranscript(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"Outros|ok|ok"}}
	l := NewLLMClassifier(fake, defaultCatalog(t), testLLMConfig())

	window := customerWindow("minha mensagem de teste")
	if _, err := l.Classify(context.Background(), window); err != nil {
		t.Fatalf("Classify returned error: %v", err)
	}
	if !strings.Contains(fake.lastUser, "- Dúvidas sobre boleto") {
		t.Fatal("expected catalog tags listed in the prompt")
	}
	if !strings.Contains(fake.lastUser, "minha mensagem de teste") {
		t.Fatal("expected transcript embedded in the prompt")
	}
	if fake.lastSystem != classifySystemPrompt {
		t.Fatalf("unexpected system prompt: %q", fake.lastSystem)
	}
}

func TestLLMClassifyRemoteErrorSurfaces(t *testing.T) {
	fake := &fakeCompleter{err: errors.New("connection refused")}
	l := NewLLMClassifier(fake, defaultCatalog(t), testLLMConfig())

	if _, err := l.Classify(context.Background(), customerWindow("oi")); err == nil {
		t.Fatal("expected remote error to surface, not an Outros result")
	}
}

func TestLLMClassifyEmptyResponseIsError(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"   "}}
	l := NewLLMClassifier(fake, defaultCatalog(t), testLLMConfig())

	if _, err := l.Classify(context.Background(), customerWindow("oi")); err == nil {
		t.Fatal("expected blank completion to be treated as a failure")
	}
}

func TestImprovementNoteEmptyWindow(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"unused"}}
	l := NewLLMClassifier(fake, defaultCatalog(t), testLLMConfig())

	note, err := l.ImprovementNote(context.Background(), ConversationWindow{}, FallbackTag)
	if err != nil {
		t.Fatalf("ImprovementNote returned error: %v", err)
	}
	if note != "Nenhuma mensagem para análise" {
		t.Fatalf("unexpected note: %q", note)
	}
	if fake.calls != 0 {
		t.Fatal("expected no remote call for empty window")
	}
}

func TestImprovementNotePromptIncludesClassification(t *testing.T) {
	fake := &fakeCompleter{responses: []string{"• Responder mais rápido"}}
	l := NewLLMClassifier(fake, defaultCatalog(t), testLLMConfig())

	note, err := l.ImprovementNote(context.Background(), customerWindow("boleto não chegou"), "Dúvidas sobre boleto")
	if err != nil {
		t.Fatalf("ImprovementNote returned error: %v", err)
	}
	if note != "• Responder mais rápido" {
		t.Fatalf("unexpected note: %q", note)
	}
	if !strings.Contains(fake.lastUser, "Dúvidas sobre boleto") {
		t.Fatal("expected classification embedded in the improvement prompt")
	}
	if fake.lastSystem != improveSystemPrompt {
		t.Fatalf("unexpected system prompt: %q", fake.lastSystem)
	}
}
