package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/irdump/internal/irdecode"
	"github.com/banshee-data/irdump/internal/irdump"
	"github.com/banshee-data/irdump/internal/monitoring"
	"github.com/banshee-data/irdump/internal/testutil"
	"github.com/banshee-data/irdump/internal/timeutil"
)

var importTime = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func openTestStore(t *testing.T) (*Store, *timeutil.MockClock) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.SetLogger(prev) })

	clock := timeutil.NewMockClock(importTime)
	s, err := Open(filepath.Join(t.TempDir(), "irdump.db"), WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func testDump() irdump.DumpFile {
	return irdump.DumpFile{
		Version: 1,
		Signals: []irdump.RawSignal{
			{Name: "power", Kind: irdump.KindRaw, Frequency: 38000, DutyCycle: 0.33, Data: testutil.OnePacketTrace()},
			{Name: "noise", Kind: irdump.KindRaw, Frequency: 38000, DutyCycle: 0.5, Data: []uint32{550, 550}},
			{Name: "volume", Kind: irdump.KindRaw, Frequency: 36000, DutyCycle: 0.25, Data: testutil.TwoPacketTrace()},
		},
	}
}

func TestOpen_MigratesToLatest(t *testing.T) {
	s, _ := openTestStore(t)

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)
	assert.False(t, dirty)

	// Re-running is a no-op.
	require.NoError(t, s.MigrateUp())
}

func TestMigrateDown(t *testing.T) {
	s, _ := openTestStore(t)

	require.NoError(t, s.MigrateDown())
	version, _, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)

	var n int
	err = s.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='packets'`).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestSaveDump_WithResults(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	dump := testDump()

	results, err := irdecode.DecodeAll(ctx, irdecode.DefaultProtocol(), dump.Signals, 2)
	require.NoError(t, err)

	id, err := s.SaveDump(ctx, "remote.ir", dump, results)
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	dumps, err := s.Dumps(ctx)
	require.NoError(t, err)
	want := []DumpRecord{{ID: id, Source: "remote.ir", Version: 1, SignalCount: 3, ImportedAt: importTime}}
	if diff := cmp.Diff(want, dumps); diff != "" {
		t.Errorf("Dumps mismatch (-want +got):\n%s", diff)
	}

	signals, err := s.Signals(ctx, id)
	require.NoError(t, err)
	require.Len(t, signals, 3)

	assert.Equal(t, "power", signals[0].Name)
	assert.Equal(t, "raw", signals[0].Kind)
	assert.Equal(t, uint32(38000), signals[0].Frequency)
	assert.InDelta(t, 0.33, signals[0].DutyCycle, 1e-6)
	assert.Equal(t, testutil.OnePacketTrace(), signals[0].Data)
	assert.Equal(t, []string{"10"}, signals[0].Packets)
	assert.True(t, signals[0].Decoded())

	assert.False(t, signals[1].Decoded())
	assert.Contains(t, signals[1].DecodeError, "dump start")
	assert.Nil(t, signals[1].Packets)

	assert.Equal(t, 2, signals[2].Index)
	assert.Equal(t, []string{"10", "01"}, signals[2].Packets)
}

func TestSaveDump_WithoutResults(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveDump(ctx, "raw.ir", testDump(), nil)
	require.NoError(t, err)

	signals, err := s.Signals(ctx, id)
	require.NoError(t, err)
	for _, sig := range signals {
		assert.True(t, sig.Decoded())
		assert.Empty(t, sig.Packets)
	}
}

func TestSaveDump_EmptyDump(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()

	id, err := s.SaveDump(ctx, "empty.ir", irdump.DumpFile{Version: 1, Signals: []irdump.RawSignal{}}, nil)
	require.NoError(t, err)

	signals, err := s.Signals(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestSaveDump_ResultCountMismatch(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.SaveDump(context.Background(), "x.ir", testDump(), []irdecode.Result{{}})
	require.Error(t, err)

	dumps, err := s.Dumps(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dumps)
}

func TestDumps_OrderedByImportTime(t *testing.T) {
	s, clock := openTestStore(t)
	ctx := context.Background()

	first, err := s.SaveDump(ctx, "a.ir", testDump(), nil)
	require.NoError(t, err)
	clock.Advance(time.Minute)
	second, err := s.SaveDump(ctx, "b.ir", testDump(), nil)
	require.NoError(t, err)

	dumps, err := s.Dumps(ctx)
	require.NoError(t, err)
	require.Len(t, dumps, 2)
	assert.Equal(t, first, dumps[0].ID)
	assert.Equal(t, second, dumps[1].ID)
	assert.Equal(t, importTime.Add(time.Minute), dumps[1].ImportedAt)
}

func TestSignals_NotFound(t *testing.T) {
	s, _ := openTestStore(t)

	_, err := s.Signals(context.Background(), uuid.NewString())
	assert.True(t, errors.Is(err, ErrDumpNotFound))
}

func TestDeleteDump_Cascades(t *testing.T) {
	s, _ := openTestStore(t)
	ctx := context.Background()
	dump := testDump()

	results, err := irdecode.DecodeAll(ctx, irdecode.DefaultProtocol(), dump.Signals, 1)
	require.NoError(t, err)
	id, err := s.SaveDump(ctx, "remote.ir", dump, results)
	require.NoError(t, err)

	require.NoError(t, s.DeleteDump(ctx, id))

	for _, table := range []string{"signals", "packets"} {
		var n int
		require.NoError(t, s.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
		assert.Equal(t, 0, n, table)
	}
	assert.True(t, errors.Is(s.DeleteDump(ctx, id), ErrDumpNotFound))
}
