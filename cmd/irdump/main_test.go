package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/irdump/internal/export"
	"github.com/banshee-data/irdump/internal/fsutil"
	"github.com/banshee-data/irdump/internal/irdecode"
	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/monitoring"
	"github.com/banshee-data/irdump/internal/testutil"
	"github.com/banshee-data/irdump/internal/timeutil"
	"github.com/banshee-data/irdump/internal/version"
)

var importTime = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func newTestApp(t *testing.T, dump string) (*app, *fsutil.MemoryFileSystem) {
	t.Helper()
	mem := fsutil.NewMemoryFileSystem()
	require.NoError(t, mem.WriteFile("dump.ir", []byte(dump), 0o644))
	return &app{fs: mem, clock: timeutil.NewMockClock(importTime)}, mem
}

func run(a *app, args ...string) (string, error) {
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// captureLogs routes monitoring output into a buffer for the rest of the test.
func captureLogs(t *testing.T) *lockedBuffer {
	t.Helper()
	buf := &lockedBuffer{}
	monitoring.SetLogger(func(format string, v ...interface{}) {
		buf.printf(format, v...)
	})
	t.Cleanup(func() { monitoring.SetLogger(log.Printf) })
	return buf
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) printf(format string, v ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf.WriteString(strings.TrimSuffix(fmt.Sprintf(format, v...), "\n") + "\n")
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func goodRecord(name string) testutil.Record {
	return testutil.Record{Name: name, Frequency: 38000, Data: testutil.OnePacketTrace()}
}

func badRecord(name string) testutil.Record {
	return testutil.Record{Name: name, Frequency: 38000, Data: []uint32{550, 550}}
}

func readFile(t *testing.T, mem *fsutil.MemoryFileSystem, name string) string {
	t.Helper()
	data, err := mem.ReadFile(name)
	require.NoError(t, err)
	return string(data)
}

func TestCSV(t *testing.T) {
	a, mem := newTestApp(t, testutil.Dump(
		goodRecord("test"),
		testutil.Record{Name: "two", Frequency: 38000, Data: testutil.TwoPacketTrace()},
	))

	out, err := run(a, "csv", "-f", "dump.ir", "-o", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, "wrote 2 signals to out.csv\n", out)
	assert.Equal(t, "test,10\ntwo,10,01\n", readFile(t, mem, "out.csv"))
}

func TestCSV_ParallelWorkersKeepOrder(t *testing.T) {
	records := make([]testutil.Record, 0, 12)
	var want strings.Builder
	for i := 0; i < 12; i++ {
		name := "sig" + string(rune('a'+i))
		records = append(records, goodRecord(name))
		want.WriteString(name + ",10\n")
	}
	a, mem := newTestApp(t, testutil.Dump(records...))

	_, err := run(a, "--workers", "4", "csv", "-f", "dump.ir", "-o", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, want.String(), readFile(t, mem, "out.csv"))
}

func TestCSV_UndecodableSignalFails(t *testing.T) {
	a, mem := newTestApp(t, testutil.Dump(goodRecord("ok"), badRecord("broken")))

	_, err := run(a, "csv", "-f", "dump.ir", "-o", "out.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, irdecode.ErrUndecodable))
	assert.Contains(t, err.Error(), `"broken"`)
	assert.False(t, mem.Exists("out.csv"))
}

func TestCSV_SkipInvalid(t *testing.T) {
	logs := captureLogs(t)
	a, mem := newTestApp(t, testutil.Dump(goodRecord("ok"), badRecord("broken"), goodRecord("also ok")))

	_, err := run(a, "--skip-invalid", "csv", "-f", "dump.ir", "-o", "out.csv")
	require.NoError(t, err)
	assert.Equal(t, "ok,10\nalso ok,10\n", readFile(t, mem, "out.csv"))
	assert.Contains(t, logs.String(), `skipping signal 1 "broken"`)
}

func TestCSV_MalformedDumpAlwaysFails(t *testing.T) {
	a, mem := newTestApp(t, testutil.DumpHeader+"garbage\n")

	_, err := run(a, "--skip-invalid", "csv", "-f", "dump.ir", "-o", "out.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, irdump.ErrMalformedDump))
	assert.False(t, mem.Exists("out.csv"))
}

func TestCSV_MissingInput(t *testing.T) {
	a, _ := newTestApp(t, testutil.Dump())

	_, err := run(a, "csv", "-f", "nope.ir", "-o", "out.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestCSV_RequiresFlags(t *testing.T) {
	a, _ := newTestApp(t, testutil.Dump())

	_, err := run(a, "csv", "-f", "dump.ir")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"output"`)
}

func TestPlot_HTML(t *testing.T) {
	a, mem := newTestApp(t, testutil.Dump(goodRecord("test"), goodRecord("other")))

	out, err := run(a, "plot", "-f", "dump.ir", "-o", "plots", "--format", "html")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, []string{filepath.Join("plots", "signals.html")}, mem.Files("plots"))

	page := readFile(t, mem, filepath.Join("plots", "signals.html"))
	assert.Contains(t, page, "<html>")
	assert.Contains(t, page, "IR signals")
}

func TestPlot_PNGPerSignal(t *testing.T) {
	a, mem := newTestApp(t, testutil.Dump(goodRecord("tv/power")))

	_, err := run(a, "plot", "-f", "dump.ir", "-o", "plots")
	require.NoError(t, err)

	name := filepath.Join("plots", "tv_power.png")
	assert.Equal(t, []string{name}, mem.Files("plots"))
	assert.True(t, strings.HasPrefix(readFile(t, mem, name), "\x89PNG\r\n\x1a\n"))
}

func TestPlot_DecodePrintsPackets(t *testing.T) {
	a, _ := newTestApp(t, testutil.Dump(
		goodRecord("test"),
		testutil.Record{Name: "two", Frequency: 38000, Data: testutil.TwoPacketTrace()},
	))

	out, err := run(a, "plot", "-f", "dump.ir", "-o", "plots", "--format", "html", "--decode")
	require.NoError(t, err)
	assert.Equal(t, "test: 10\ntwo: 10 01\n", out)
}

// Rendering works from durations alone, so undecodable signals still plot.
func TestPlot_UndecodableSignalStillRenders(t *testing.T) {
	a, mem := newTestApp(t, testutil.Dump(badRecord("broken")))

	_, err := run(a, "plot", "-f", "dump.ir", "-o", "plots", "--format", "html")
	require.NoError(t, err)
	assert.True(t, mem.Exists(filepath.Join("plots", "signals.html")))

	_, err = run(a, "plot", "-f", "dump.ir", "-o", "plots", "--format", "html", "--decode")
	assert.True(t, errors.Is(err, irdecode.ErrUndecodable))
}

func TestPlot_UnknownFormat(t *testing.T) {
	a, _ := newTestApp(t, testutil.Dump())

	_, err := run(a, "plot", "-f", "dump.ir", "-o", "plots", "--format", "svg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown format "svg"`)
}

func TestStats_Stdout(t *testing.T) {
	a, _ := newTestApp(t, testutil.Dump(goodRecord("test"), badRecord("broken")))

	out, err := run(a, "stats", "-f", "dump.ir")
	require.NoError(t, err)

	var summary export.Summary
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, uint32(550), summary.UnitMicros)
	require.Len(t, summary.Signals, 2)
	assert.Equal(t, 1, summary.Signals[0].Packets)
	assert.Nil(t, summary.Signals[0].DecodeError)
	assert.NotNil(t, summary.Signals[1].DecodeError)
}

func TestStats_FileWithCalibration(t *testing.T) {
	a, mem := newTestApp(t, testutil.Dump(goodRecord("test")))
	require.NoError(t, mem.WriteFile("cal.yaml", []byte("unit_micros: 560\n"), 0o644))

	out, err := run(a, "--config", "cal.yaml", "stats", "-f", "dump.ir", "-o", "summary.json")
	require.NoError(t, err)
	assert.Empty(t, out)

	var summary export.Summary
	require.NoError(t, json.Unmarshal([]byte(readFile(t, mem, "summary.json")), &summary))
	assert.Equal(t, uint32(560), summary.UnitMicros)
}

func TestInvalidCalibrationFails(t *testing.T) {
	a, mem := newTestApp(t, testutil.Dump(goodRecord("test")))
	require.NoError(t, mem.WriteFile("cal.json", []byte(`{"unit_micros": 0}`), 0o644))

	_, err := run(a, "--config", "cal.json", "csv", "-f", "dump.ir", "-o", "out.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestImportAndList(t *testing.T) {
	db := filepath.Join(t.TempDir(), "irdump.db")
	a, _ := newTestApp(t, testutil.Dump(goodRecord("test"), badRecord("broken")))
	captureLogs(t)

	_, err := run(a, "import", "-f", "dump.ir", "--db", db)
	require.Error(t, err, "undecodable signal without --skip-invalid")

	out, err := run(a, "--skip-invalid", "import", "-f", "dump.ir", "--db", db)
	require.NoError(t, err)
	id := strings.TrimSpace(out)
	require.NotEmpty(t, id)

	out, err = run(a, "list", "--db", db)
	require.NoError(t, err)
	assert.Equal(t, id+"\tdump.ir\tv1\t2 signals\t2024-01-02T03:04:05Z\n", out)

	out, err = run(a, "list", "--db", db, "--id", id)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0\ttest\t10", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1\tbroken\terror: "), lines[1])
}

func TestDebugLogsParsedSignals(t *testing.T) {
	logs := captureLogs(t)
	t.Cleanup(func() { monitoring.SetDebug(false) })
	a, _ := newTestApp(t, testutil.Dump(goodRecord("power"), goodRecord("vol_up")))

	_, err := run(a, "--debug", "csv", "-f", "dump.ir", "-o", "out.csv")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), `[debug] parsed dump.ir: version 1, signals ["power" "vol_up"]`)
}

func TestVersionFlag(t *testing.T) {
	a, _ := newTestApp(t, testutil.Dump())

	out, err := run(a, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, version.String())
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "power", want: filepath.Join("out", "power.png")},
		{name: "a/b", want: filepath.Join("out", "a_b.png")},
		{name: `a\b`, want: filepath.Join("out", "a_b.png")},
		{name: "", wantErr: true},
		{name: ".", wantErr: true},
		{name: "..", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := outputPath("out", tt.name, ".png")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
