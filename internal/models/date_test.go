package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "calendar date", input: "2026-03-10", want: "2026-03-10"},
		{name: "timestamp keeps its date", input: "2026-03-10T23:59:59+02:00", want: "2026-03-10"},
		{name: "garbage", input: "tomorrow", wantErr: true},
		{name: "impossible day", input: "2026-02-30", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := ParseDate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDate_Scan(t *testing.T) {
	tests := []struct {
		name    string
		src     any
		want    string
		wantErr bool
	}{
		{name: "time", src: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), want: "2026-03-10"},
		{name: "text", src: "2026-03-10", want: "2026-03-10"},
		{name: "text with time", src: "2026-03-10 00:00:00+00:00", want: "2026-03-10"},
		{name: "bytes", src: []byte("2026-03-10"), want: "2026-03-10"},
		{name: "short text", src: "2026", wantErr: true},
		{name: "unsupported", src: 42, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Date
			err := d.Scan(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.String())
		})
	}
}

func TestDate_JSON(t *testing.T) {
	var payload struct {
		Due *Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"due":"2026-03-10"}`), &payload))
	require.NotNil(t, payload.Due)
	assert.True(t, payload.Due.Equal(NewDate(2026, 3, 10)))

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"due":"2026-03-10"}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"due":"soon"}`), &payload))
}

func TestOptional_UnmarshalJSON(t *testing.T) {
	var patch struct {
		Description Optional[string] `json:"description"`
		DueDate     Optional[Date]   `json:"due_date"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"description":null}`), &patch))
	assert.True(t, patch.Description.Set)
	assert.Nil(t, patch.Description.Value)
	assert.False(t, patch.DueDate.Set)

	require.NoError(t, json.Unmarshal([]byte(`{"due_date":"2026-03-10"}`), &patch))
	assert.True(t, patch.DueDate.Set)
	require.NotNil(t, patch.DueDate.Value)
	assert.Equal(t, "2026-03-10", patch.DueDate.Value.String())
}
