package main

import (
	"context"
	"log"
	"time"
)

// Classifier decides between the LLM and keyword paths and always
// produces a complete ClassificationResult; failures never escape this
// boundary.
type Classifier struct {
	useLLM  bool
	llm     *LLMClassifier
	keyword *KeywordClassifier
}

func NewClassifier(cfg Config, catalog *TagCatalog, client Completer) *Classifier {
	c := &Classifier{
		keyword: NewKeywordClassifier(catalog),
	}
	if cfg.UseLLM && client != nil {
		c.useLLM = true
		c.llm = NewLLMClassifier(client, catalog, cfg)
	}
	return c
}

// ClassifyConversation resolves a tag for the window. The LLM path is
// tried first when enabled; on any LLM error the keyword path takes
// over with tokens_used = 0. Retry policy lives in the batch runner,
// not here.
func (c *Classifier) ClassifyConversation(ctx context.Context, window ConversationWindow) ClassificationResult {
	start := time.Now()

	var result ClassificationResult
	if c.useLLM {
		decision, err := c.llm.Classify(ctx, window)
		if err != nil {
			log.Printf("llm classify failed, falling back to keywords: %v", err)
			tag, confidence, explanation := c.keyword.Classify(window)
			result = ClassificationResult{
				Tag:            tag,
				Confidence:     confidence,
				Justification:  explanation,
				SpecificDetail: explanation,
				TokensUsed:     0,
			}
		} else {
			result = ClassificationResult{
				Tag:            decision.Tag,
				Confidence:     decision.Confidence,
				Justification:  decision.Justification,
				SpecificDetail: decision.SpecificDetail,
				TokensUsed:     llmTokenEstimate,
			}
		}
	} else {
		tag, confidence, explanation := c.keyword.Classify(window)
		result = ClassificationResult{
			Tag:            tag,
			Confidence:     confidence,
			Justification:  explanation,
			SpecificDetail: explanation,
			TokensUsed:     0,
		}
	}

	result.ProcessingTimeMS = int(time.Since(start).Milliseconds())
	result.ImprovementNote = c.improvementNote(ctx, window, result.Tag)
	return result
}

// improvementNote is advisory output; its failure degrades to a
// placeholder instead of failing the classification.
func (c *Classifier) improvementNote(ctx context.Context, window ConversationWindow, classification string) string {
	if window.IsEmpty() {
		return "Nenhuma mensagem para análise"
	}
	if !c.useLLM {
		return "Sugestões indisponíveis sem IA"
	}
	note, err := c.llm.ImprovementNote(ctx, window, classification)
	if err != nil {
		log.Printf("llm improvement note failed: %v", err)
		return "Erro ao gerar sugestões de melhoria"
	}
	return note
}
