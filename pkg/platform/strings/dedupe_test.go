package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeAndTrim(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{"nil slice", nil, nil},
		{"empty slice", []string{}, []string{}},
		{"trims whitespace", []string{"  a:9092  ", "b:9092  "}, []string{"a:9092", "b:9092"}},
		{"removes duplicates preserving order", []string{"b", "a", "b"}, []string{"b", "a"}},
		{"removes empty strings", []string{"a", "", "  ", "b"}, []string{"a", "b"}},
		{"case sensitive", []string{"A", "a"}, []string{"A", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeAndTrim(tt.input))
		})
	}
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList("   "))
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"},
		SplitList(" kafka-1:9092, kafka-2:9092,,kafka-1:9092"))
}

func TestSplitAddressList(t *testing.T) {
	assert.Equal(t, []string{"admin@farma.cz", "jana@farma.cz"},
		SplitAddressList("Admin@Farma.cz, jana@farma.cz, admin@farma.cz"))
}
