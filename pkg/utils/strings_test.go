package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAndTrim(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "http://es:9200", []string{"http://es:9200"}},
		{"spaces and blanks", " http://a:9200 , ,http://b:9200,", []string{"http://a:9200", "http://b:9200"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitAndTrim(tt.in, ","))
		})
	}
}
