package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractMigrationID(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"20260801120000_create_provisioned_numbers.sql", "20260801120000_create_provisioned_numbers"},
		{"noext", "noext"},
		{".sql", ".sql"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractMigrationID(tt.filename))
	}
}
