package normalize

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimestamp(t *testing.T) {
	want := time.UnixMilli(1700000000000).UTC().Format("2006-01-02T15:04:05.000Z")

	tests := []struct {
		name   string
		in     any
		want   string
		wantOK bool
	}{
		{
			name:   "wrapped 64-bit seconds",
			in:     map[string]any{"seconds": map[string]any{"low": json.Number("1700000000"), "high": json.Number("0"), "unsigned": true}, "nanos": json.Number("0")},
			want:   want,
			wantOK: true,
		},
		{
			name:   "plain numeric seconds",
			in:     map[string]any{"seconds": json.Number("1700000000")},
			want:   want,
			wantOK: true,
		},
		{
			name:   "string seconds",
			in:     map[string]any{"seconds": "1700000000", "nanos": 500},
			want:   want,
			wantOK: true,
		},
		{name: "iso string passes through", in: "2024-01-02T03:04:05.000Z", want: "2024-01-02T03:04:05.000Z", wantOK: true},
		{name: "zero seconds", in: map[string]any{"seconds": json.Number("0")}},
		{name: "negative seconds", in: map[string]any{"seconds": json.Number("-5")}},
		{name: "missing seconds", in: map[string]any{"nanos": json.Number("12")}},
		{name: "absent", in: nil},
		{name: "empty string", in: "  "},
		{name: "garbage seconds", in: map[string]any{"seconds": "soon"}},
		{name: "bare number", in: json.Number("1700000000")},
		{name: "seconds beyond any date", in: map[string]any{"seconds": 1e300}},
		{name: "string seconds beyond any date", in: map[string]any{"seconds": "9999999999999999"}},
		{name: "wrapped low beyond any date", in: map[string]any{"seconds": map[string]any{"low": json.Number("8640000000001")}}},
		{
			name:   "last representable date",
			in:     map[string]any{"seconds": json.Number("8640000000000")},
			want:   "+275760-09-13T00:00:00.000Z",
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Timestamp(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimestamp_MatchesJavaScriptISOString(t *testing.T) {
	got, ok := Timestamp(map[string]any{"seconds": map[string]any{"low": 1700000000.0, "high": 0.0, "unsigned": true}, "nanos": 0.0})
	assert.True(t, ok)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", got)
}

func TestRecordTimestamp_FromDecodedJSON(t *testing.T) {
	r, ok := DecodeRecord([]byte(`{"created_at":{"seconds":{"low":1700000000,"high":0,"unsigned":false},"nanos":0}}`))
	assert.True(t, ok)
	assert.Equal(t, "2023-11-14T22:13:20.000Z", r.Timestamp([]string{"createdAt", "created_at"}))
}
