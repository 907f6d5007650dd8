package timewindow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	plusTwo := time.FixedZone("+02:00", 2*3600)

	tests := []struct {
		name      string
		line      string
		wantOK    bool
		wantTime  time.Time
		wantKnown bool
	}{
		{
			name:     "junos bsd syslog",
			line:     "Oct  7 10:00:00  router chassisd[1234]: BGP_IO_ERROR seen",
			wantOK:   true,
			wantTime: date(2026, time.October, 7, 10, 0, 0),
		},
		{
			name:     "bsd single space day",
			line:     "Oct 17 01:02:03 router rpd[99]: hello",
			wantOK:   true,
			wantTime: date(2026, time.October, 17, 1, 2, 3),
		},
		{
			name:     "bsd with milliseconds",
			line:     "Oct  7 10:00:00.250 router mgd: commit",
			wantOK:   true,
			wantTime: time.Date(2026, time.October, 7, 10, 0, 0, 250_000_000, time.UTC),
		},
		{
			name:     "bsd at end of line",
			line:     "Oct  7 10:00:00",
			wantOK:   true,
			wantTime: date(2026, time.October, 7, 10, 0, 0),
		},
		{
			name:      "bsd with year",
			line:      "Oct  7 2024 10:00:00 router kernel: boot",
			wantOK:    true,
			wantTime:  date(2024, time.October, 7, 10, 0, 0),
			wantKnown: true,
		},
		{
			name:      "iso8601 utc",
			line:      "2025-10-07T10:00:00Z router rpd: up",
			wantOK:    true,
			wantTime:  date(2025, time.October, 7, 10, 0, 0),
			wantKnown: true,
		},
		{
			name:      "iso8601 with offset and fraction",
			line:      "2025-10-07T12:00:00.123+02:00 router rpd: up",
			wantOK:    true,
			wantTime:  time.Date(2025, time.October, 7, 12, 0, 0, 123_000_000, plusTwo),
			wantKnown: true,
		},
		{
			name:      "iso8601 space separator without zone",
			line:      "2025-10-07 10:00:00 something",
			wantOK:    true,
			wantTime:  date(2025, time.October, 7, 10, 0, 0),
			wantKnown: true,
		},
		{
			name:      "rfc5424 structured syslog",
			line:      "<165>1 2025-10-07T10:00:00.000Z router.example.net mgd 4567 UI_COMMIT - commit complete",
			wantOK:    true,
			wantTime:  date(2025, time.October, 7, 10, 0, 0),
			wantKnown: true,
		},
		{name: "no timestamp", line: "BGP_IO_ERROR seen", wantOK: false},
		{name: "empty line", line: "", wantOK: false},
		{name: "timestamp not at start", line: "seen at Oct  7 10:00:00", wantOK: false},
		{name: "date only", line: "Oct  7 router", wantOK: false},
		{name: "impossible date", line: "2025-02-30T10:00:00Z oops", wantOK: false},
		{name: "bsd glued to text", line: "Oct  7 10:00:00router", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stamp, ok := Extract(tt.line, 2026)
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				return
			}
			assert.True(t, tt.wantTime.Equal(stamp.Time), "got %v, want %v", stamp.Time, tt.wantTime)
			assert.Equal(t, tt.wantKnown, stamp.YearKnown)
		})
	}
}

func TestExtractor_ExtraGrammar(t *testing.T) {
	g, err := NewGrammar("slash-date", `^(?P<year>\d{4})/(?P<month>\d{2})/(?P<day>\d{2}) (?P<hour>\d{2}):(?P<min>\d{2})`)
	require.NoError(t, err)

	e := NewExtractor(g)
	assert.Equal(t, []string{"rfc5424", "iso8601", "bsd-year", "bsd", "slash-date"}, e.Names())

	stamp, ok := e.Extract("2025/10/07 10:30 custom device", 2026)
	require.True(t, ok)
	assert.Equal(t, date(2025, time.October, 7, 10, 30, 0), stamp.Time)

	_, ok = Extract("2025/10/07 10:30 custom device", 2026)
	assert.False(t, ok)
}

func TestNewGrammar_Invalid(t *testing.T) {
	_, err := NewGrammar("broken", `(?P<day>\d+`)
	assert.Error(t, err)

	_, err = NewGrammar("no-month", `^(?P<day>\d{2})`)
	assert.Error(t, err)
}
