package flightlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"uav-logchat/flightdesk/internal/dataflash"
	"uav-logchat/flightdesk/internal/models/dtos"
)

// writeFlight encodes a short flight: two mode changes, a GPS dropout, a
// critical error and a sagging battery.
func writeFlight(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := dataflash.NewWriter(&buf)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("Failed to write flight: %v", err)
		}
	}

	must(w.Define("MODE", "QMB", "TimeUS", "Mode", "ModeNum"))
	must(w.Define("GPS", "QBBf", "TimeUS", "Status", "NSats", "Alt"))
	must(w.Define("BAT", "Qf", "TimeUS", "Volt"))
	must(w.Define("ERR", "QBB", "TimeUS", "Subsys", "Severity"))

	must(w.Write("MODE", uint64(1_000_000), 0, 0))
	must(w.Write("GPS", uint64(1_500_000), 3, 10, 50.0))
	must(w.Write("BAT", uint64(1_600_000), 12.5))
	must(w.Write("GPS", uint64(2_000_000), 1, 4, 120.0))
	must(w.Write("ERR", uint64(2_100_000), 11, 2))
	must(w.Write("BAT", uint64(2_200_000), 11.25))
	must(w.Write("ERR", uint64(2_300_000), 12, 1))
	must(w.Write("MODE", uint64(4_500_000), 6, 6))

	return buf.Bytes()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flight.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}
	return path
}

func TestBuildSummary_Empty(t *testing.T) {
	s := BuildSummary(NewMessageStore())

	if s.IsMinimal() {
		t.Fatalf("Expected full summary, got error %q", s.Error)
	}
	if s.FlightTime != 0 || s.MaxAltitude != 0 || s.MinBattery != 0 {
		t.Errorf("Expected zero metrics, got %+v", s)
	}

	body, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Expected summary to serialize, got %v", err)
	}
	want := `{"flight_time":0,"max_altitude":0,"min_battery":0,"gps_issues":[],"critical_errors":[],"mode_changes":[],"message_types":[]}`
	if string(body) != want {
		t.Errorf("Expected %s, got %s", want, body)
	}
}

func TestBuildSummary_DegradedAggregatorKeepsOthers(t *testing.T) {
	store := storeOf(
		rec("GPS", map[string]any{"Alt": "high", "Status": 3}),
		rec("BAT", map[string]any{"Volt": 11.1}),
	)

	s := BuildSummary(store)

	if s.IsMinimal() {
		t.Fatalf("Expected full summary, got error %q", s.Error)
	}
	if s.MaxAltitude != 0 {
		t.Errorf("Expected degraded max altitude 0, got %v", s.MaxAltitude)
	}
	if s.MinBattery != 11.1 {
		t.Errorf("Expected min battery 11.1, got %v", s.MinBattery)
	}
	if len(s.Degradations) != 1 || s.Degradations[0].Aggregator != AggMaxAltitude {
		t.Errorf("Expected one max_altitude degradation, got %+v", s.Degradations)
	}
}

func TestBuildSummary_NaNInEventDataFallsBackToMinimal(t *testing.T) {
	store := storeOf(
		rec("MODE", map[string]any{"TimeUS": uint64(1), "Rsn": math.NaN()}),
		rec("GPS", map[string]any{"Alt": 10.0}),
	)

	s := BuildSummary(store)

	if !s.IsMinimal() {
		t.Fatalf("Expected minimal summary, got %+v", s)
	}
	if len(s.MessageTypes) != 2 || s.MessageTypes[0] != "MODE" || s.MessageTypes[1] != "GPS" {
		t.Errorf("Expected message types [MODE GPS], got %v", s.MessageTypes)
	}

	body, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("Expected minimal summary to serialize, got %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Errorf("Expected only error and message_types keys, got %v", decoded)
	}
	if !strings.Contains(decoded["error"].(string), "assemble flight summary") {
		t.Errorf("Expected assembly error text, got %v", decoded["error"])
	}
}

func TestBuildSummary_NonFiniteValueDegradesOnlyItsAggregator(t *testing.T) {
	cases := []struct {
		name    string
		records []dataflash.Record
		agg     string
		check   func(t *testing.T, s *dtos.FlightSummary)
	}{
		{
			name: "NaN altitude first",
			records: []dataflash.Record{
				rec("GPS", map[string]any{"Alt": math.NaN(), "Status": 3}),
				rec("GPS", map[string]any{"Alt": 100.0, "Status": 3}),
				rec("BAT", map[string]any{"Volt": 11.5}),
			},
			agg: AggMaxAltitude,
			check: func(t *testing.T, s *dtos.FlightSummary) {
				if s.MaxAltitude != 0 || s.MinBattery != 11.5 {
					t.Errorf("Expected max altitude 0 and min battery 11.5, got %v and %v", s.MaxAltitude, s.MinBattery)
				}
			},
		},
		{
			name: "NaN altitude last",
			records: []dataflash.Record{
				rec("GPS", map[string]any{"Alt": 100.0, "Status": 3}),
				rec("GPS", map[string]any{"Alt": math.NaN(), "Status": 3}),
				rec("BAT", map[string]any{"Volt": 11.5}),
			},
			agg: AggMaxAltitude,
			check: func(t *testing.T, s *dtos.FlightSummary) {
				if s.MaxAltitude != 0 || s.MinBattery != 11.5 {
					t.Errorf("Expected max altitude 0 and min battery 11.5, got %v and %v", s.MaxAltitude, s.MinBattery)
				}
			},
		},
		{
			name: "negative infinite voltage",
			records: []dataflash.Record{
				rec("MODE", map[string]any{"TimeUS": uint64(1_000_000)}),
				rec("BAT", map[string]any{"Volt": math.Inf(-1)}),
				rec("MODE", map[string]any{"TimeUS": uint64(3_000_000)}),
			},
			agg: AggMinBattery,
			check: func(t *testing.T, s *dtos.FlightSummary) {
				if s.FlightTime != 2.0 || s.MinBattery != 0 {
					t.Errorf("Expected flight time 2 and min battery 0, got %v and %v", s.FlightTime, s.MinBattery)
				}
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := BuildSummary(storeOf(tc.records...))

			if s.IsMinimal() {
				t.Fatalf("Expected full summary, got error %q", s.Error)
			}
			if len(s.Degradations) != 1 || s.Degradations[0].Aggregator != tc.agg {
				t.Errorf("Expected one %s degradation, got %+v", tc.agg, s.Degradations)
			}
			if _, err := json.Marshal(s); err != nil {
				t.Errorf("Expected summary to serialize, got %v", err)
			}
			tc.check(t, s)
		})
	}
}

func TestCollect_RecoversPanic(t *testing.T) {
	s := &dtos.FlightSummary{}

	got := collect(s, AggMinBattery, -1.0, func() Result[float64] {
		var m map[string]float64
		m["boom"] = 1
		return Ok(2.0)
	})

	if got != -1.0 {
		t.Errorf("Expected default -1.0, got %v", got)
	}
	if len(s.Degradations) != 1 || !strings.Contains(s.Degradations[0].Reason, "panic") {
		t.Errorf("Expected a panic degradation, got %+v", s.Degradations)
	}
}

func TestParse(t *testing.T) {
	path := writeFile(t, writeFlight(t))

	report, err := Parse(context.Background(), path, Limits{})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if report.StreamErr != nil {
		t.Errorf("Expected clean stream, got %v", report.StreamErr)
	}

	// FMT(FMT) + 4 definitions + 8 messages
	if report.Records != 13 {
		t.Errorf("Expected 13 records, got %d", report.Records)
	}

	s := report.Summary
	if s.FlightTime != 3.5 {
		t.Errorf("Expected flight time 3.5, got %v", s.FlightTime)
	}
	if s.MaxAltitude != 120.0 {
		t.Errorf("Expected max altitude 120, got %v", s.MaxAltitude)
	}
	if s.MinBattery != 11.25 {
		t.Errorf("Expected min battery 11.25, got %v", s.MinBattery)
	}
	if len(s.GPSIssues) != 1 || s.GPSIssues[0] != (dtos.GPSIssue{Time: 2_000_000, Status: 1, Satellites: 4}) {
		t.Errorf("Unexpected GPS issues: %+v", s.GPSIssues)
	}
	if len(s.CriticalErrors) != 1 || s.CriticalErrors[0].Time != 2_100_000 {
		t.Errorf("Expected one critical error at 2.1s, got %+v", s.CriticalErrors)
	}
	if len(s.ModeChanges) != 2 {
		t.Errorf("Expected 2 mode changes, got %d", len(s.ModeChanges))
	}

	wantTypes := []string{"FMT", "MODE", "GPS", "BAT", "ERR"}
	if len(s.MessageTypes) != len(wantTypes) {
		t.Fatalf("Expected types %v, got %v", wantTypes, s.MessageTypes)
	}
	for i := range wantTypes {
		if s.MessageTypes[i] != wantTypes[i] {
			t.Errorf("Expected type %d to be %s, got %s", i, wantTypes[i], s.MessageTypes[i])
		}
	}
}

func TestParse_NonexistentPath(t *testing.T) {
	report, err := Parse(context.Background(), filepath.Join(t.TempDir(), "missing.bin"), Limits{})

	var openErr *dataflash.StreamOpenError
	if !errors.As(err, &openErr) {
		t.Fatalf("Expected StreamOpenError, got %v", err)
	}
	if report != nil {
		t.Error("Expected no report")
	}
}

func TestParse_TruncatedFileKeepsPartialSummary(t *testing.T) {
	data := writeFlight(t)
	path := writeFile(t, data[:len(data)-3])

	report, err := Parse(context.Background(), path, Limits{})
	if err != nil {
		t.Fatalf("Expected truncation to be absorbed, got %v", err)
	}

	var decodeErr *dataflash.RecordDecodeError
	if !errors.As(report.StreamErr, &decodeErr) {
		t.Fatalf("Expected RecordDecodeError, got %v", report.StreamErr)
	}
	if len(report.Summary.ModeChanges) != 1 {
		t.Errorf("Expected only the first mode change, got %d", len(report.Summary.ModeChanges))
	}
	if report.Summary.FlightTime != 0 {
		t.Errorf("Expected flight time 0 with one MODE record, got %v", report.Summary.FlightTime)
	}
}

func TestParseReader_RecordLimit(t *testing.T) {
	_, err := ParseReader(context.Background(), bytes.NewReader(writeFlight(t)), Limits{MaxRecords: 5})

	var timeoutErr *ParseTimeoutError
	if !errors.As(err, &timeoutErr) {
		t.Fatalf("Expected ParseTimeoutError, got %v", err)
	}
}

func TestParseReader_BadMagic(t *testing.T) {
	_, err := ParseReader(context.Background(), strings.NewReader("not a flight log"), Limits{})

	if !errors.Is(err, dataflash.ErrBadMagic) {
		t.Fatalf("Expected ErrBadMagic, got %v", err)
	}
}
