package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "customers.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing csv fixture: %v", err)
	}
	return path
}

func TestReadCustomerPopulation(t *testing.T) {
	path := writeTempCSV(t, "name,customer_id\nAna,101\nBeto,102\nCarla,103\n")

	ids, err := ReadCustomerPopulation(path)
	if err != nil {
		t.Fatalf("ReadCustomerPopulation failed: %v", err)
	}
	want := []string{"101", "102", "103"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("unexpected ids: got %v, want %v", ids, want)
	}
}

func TestReadCustomerPopulationDedupesAndSkipsBlanks(t *testing.T) {
	path := writeTempCSV(t, "customer_id\n101\n101\n\n  102  \n101\n")

	ids, err := ReadCustomerPopulation(path)
	if err != nil {
		t.Fatalf("ReadCustomerPopulation failed: %v", err)
	}
	want := []string{"101", "102"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("unexpected ids: got %v, want %v", ids, want)
	}
}

func TestReadCustomerPopulationHeaderCaseInsensitive(t *testing.T) {
	path := writeTempCSV(t, "Customer_ID\n9\n")

	ids, err := ReadCustomerPopulation(path)
	if err != nil {
		t.Fatalf("ReadCustomerPopulation failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != "9" {
		t.Fatalf("unexpected ids: %v", ids)
	}
}

func TestReadCustomerPopulationMissingColumn(t *testing.T) {
	path := writeTempCSV(t, "name,phone\nAna,123\n")

	if _, err := ReadCustomerPopulation(path); err == nil {
		t.Fatal("expected error for csv without customer_id column")
	}
}

func TestReadCustomerPopulationMissingFile(t *testing.T) {
	if _, err := ReadCustomerPopulation(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
