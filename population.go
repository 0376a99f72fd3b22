package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ReadCustomerPopulation reads the candidate customer IDs from a CSV
// file with a customer_id column (header row required). Order in the
// file defines processing order.
func ReadCustomerPopulation(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open customer csv: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse customer csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("customer csv %s is empty", path)
	}

	idCol := -1
	for i, name := range records[0] {
		if strings.EqualFold(strings.TrimSpace(name), "customer_id") {
			idCol = i
			break
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("customer csv %s has no customer_id column", path)
	}

	var ids []string
	seen := make(map[string]bool)
	for _, record := range records[1:] {
		if idCol >= len(record) {
			continue
		}
		id := strings.TrimSpace(record[idCol])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
