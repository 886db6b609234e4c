package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "150.00", want: 150},
		{in: " $49.99 ", want: 49.99},
		{in: "1,500", want: 1500},
		{in: "$1,234,567.89", want: 1234567.89},
		{in: "-1,000.5", want: -1000.5},
		{in: "1,50", wantErr: true},
		{in: "12,34,567", wantErr: true},
		{in: ",100", wantErr: true},
		{in: "1,000,", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDecimal(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseID(t *testing.T) {
	assert.Equal(t, 42, ParseID(" 42 "))
	assert.Equal(t, 0, ParseID("-3"))
	assert.Equal(t, 0, ParseID("x"))
}
