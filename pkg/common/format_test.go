package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHumanSize(t *testing.T) {
	tests := []struct {
		name      string
		sizeBytes uint64
		expected  string
	}{
		{name: "zero", sizeBytes: 0, expected: "0 B"},
		{name: "bytes", sizeBytes: 512, expected: "512.0 B"},
		{name: "exact kilobyte", sizeBytes: 1024, expected: "1.0 KB"},
		{name: "fractional kilobyte", sizeBytes: 1536, expected: "1.5 KB"},
		{name: "megabytes", sizeBytes: 5 * 1024 * 1024, expected: "5.0 MB"},
		{name: "gigabytes", sizeBytes: 3 * 1024 * 1024 * 1024, expected: "3.0 GB"},
		{name: "terabytes", sizeBytes: 2 * 1024 * 1024 * 1024 * 1024, expected: "2.0 TB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HumanSize(tt.sizeBytes))
		})
	}
}
