package main

import (
	"testing"

	"golang.org/x/tools/go/analysis"
)

func TestFilterAnalyzers(t *testing.T) {
	tests := []struct {
		name     string
		input    []*analysis.Analyzer
		expected []string
	}{
		{
			name: "drops duplicates, keeps order",
			input: []*analysis.Analyzer{
				{Name: "assign"},
				{Name: "atomic"},
				{Name: "assign"},
			},
			expected: []string{"assign", "atomic"},
		},
		{
			name: "drops nil entries",
			input: []*analysis.Analyzer{
				nil,
				{Name: "printf"},
				nil,
			},
			expected: []string{"printf"},
		},
		{
			name:     "empty input",
			input:    []*analysis.Analyzer{},
			expected: nil,
		},
		{
			name: "all unique",
			input: []*analysis.Analyzer{
				{Name: "nilerr"},
				{Name: "osexitmain"},
			},
			expected: []string{"nilerr", "osexitmain"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filtered := filterAnalyzers(tt.input)

			if len(filtered) != len(tt.expected) {
				t.Fatalf("expected %d analyzers, got %d", len(tt.expected), len(filtered))
			}
			for i, a := range filtered {
				if a.Name != tt.expected[i] {
					t.Errorf("analyzer %d: expected %s, got %s", i, tt.expected[i], a.Name)
				}
			}
		})
	}
}
