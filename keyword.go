package main

import (
	"fmt"
	"strings"
)

// KeywordClassifier scores the tag catalog's trigger phrases against a
// conversation. It has no external dependency, so it doubles as the
// safety net when the LLM path fails.
type KeywordClassifier struct {
	catalog *TagCatalog
}

func NewKeywordClassifier(catalog *TagCatalog) *KeywordClassifier {
	return &KeywordClassifier{catalog: catalog}
}

// Classify lower-cases all message texts into one haystack and counts,
// per tag, how many trigger phrases are present (each phrase counts at
// most once). Strictly highest count wins; ties go to the tag declared
// first. Confidence is min(count/3, 0.9).
func (k *KeywordClassifier) Classify(window ConversationWindow) (tag string, confidence float64, explanation string) {
	if window.IsEmpty() {
		return FallbackTag, 0.0, "Nenhuma mensagem encontrada"
	}

	var parts []string
	for _, msg := range window.Messages {
		parts = append(parts, strings.ToLower(msg.Text))
	}
	haystack := strings.Join(parts, " ")

	bestTag := ""
	bestScore := 0
	for _, entry := range k.catalog.Entries() {
		score := 0
		for _, phrase := range entry.Keywords {
			if strings.Contains(haystack, strings.ToLower(phrase)) {
				score++
			}
		}
		if score > bestScore {
			bestTag = entry.Name
			bestScore = score
		}
	}

	if bestScore == 0 {
		return FallbackTag, 0.5, "Nenhuma palavra-chave específica encontrada"
	}

	confidence = float64(bestScore) / 3.0
	if confidence > 0.9 {
		confidence = 0.9
	}
	explanation = fmt.Sprintf("Encontradas %d palavras-chave relacionadas a '%s'", bestScore, bestTag)
	return bestTag, confidence, explanation
}
