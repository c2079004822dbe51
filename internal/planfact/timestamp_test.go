package planfact

import (
	"testing"
	"time"

	"github.com/akulov/finbook/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		want    time.Time
		name    string
		value   string
		wantErr bool
	}{
		{
			name:  "fractional seconds",
			value: "2024-03-15T09:30:00.1234567",
			want:  time.Date(2024, 3, 15, 9, 30, 0, 123456700, time.UTC),
		},
		{
			name:  "whole seconds",
			value: "2024-03-15T09:30:00",
			want:  time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			value: "2024-03-15",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "single fractional digit",
			value: "2024-12-31T23:59:59.5",
			want:  time.Date(2024, 12, 31, 23, 59, 59, 500000000, time.UTC),
		},
		{
			name:    "empty string",
			value:   "",
			wantErr: true,
		},
		{
			name:    "unix epoch seconds",
			value:   "1710495000",
			wantErr: true,
		},
		{
			name:    "slash separated date",
			value:   "15/03/2024",
			wantErr: true,
		},
		{
			name:    "timezone offset not in contract",
			value:   "2024-03-15T09:30:00+03:00",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, common.ErrMalformedTimestamp)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}
