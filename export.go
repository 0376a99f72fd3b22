package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
)

// ExportClassifications dumps all persisted classifications to a CSV
// file and logs a per-tag distribution summary.
func ExportClassifications(ctx context.Context, store Store, path string) (int, error) {
	results, err := store.ListResults(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing classifications: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"user_id", "wa_id", "classificacao", "confianca", "contexto",
		"classificacao_especifica", "sugestao_melhoria",
		"tokens_utilizados", "tempo_processamento_ms", "data_classificacao",
	}
	if err := w.Write(header); err != nil {
		return 0, err
	}

	for _, r := range results {
		record := []string{
			r.CustomerID,
			r.WAID,
			r.Tag,
			strconv.FormatFloat(r.Confidence, 'f', 2, 64),
			r.Justification,
			r.SpecificDetail,
			r.ImprovementNote,
			strconv.Itoa(r.TokensUsed),
			strconv.Itoa(r.ProcessingTimeMS),
			r.ClassifiedAt.Format("2006-01-02 15:04:05"),
		}
		if err := w.Write(record); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}

	logTagDistribution(results)
	log.Printf("exported %d classifications to %s", len(results), path)
	return len(results), nil
}

func logTagDistribution(results []StoredClassification) {
	if len(results) == 0 {
		return
	}
	counts := make(map[string]int)
	for _, r := range results {
		counts[r.Tag]++
	}
	tags := make([]string, 0, len(counts))
	for tag := range counts {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	log.Printf("classification distribution (%d total):", len(results))
	for _, tag := range tags {
		log.Printf("  %s: %d", tag, counts[tag])
	}
}
