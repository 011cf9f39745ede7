package param

import (
	"testing"

	"github.com/flightpath-dev/groundstation-core/internal/field"
)

func TestWriteCacheThenReadCacheRoundTrip(t *testing.T) {
	dir := t.TempDir()
	entries := []cacheEntry{
		{name: "PARAM_A", value: field.FromInt32(42)},
		{name: "PARAM_B", value: field.FromFloat32(1.5)},
		{name: "PARAM_C", value: field.FromUint8(9)},
	}

	if err := writeCache(dir, 1, 1, entries); err != nil {
		t.Fatalf("writeCache() error: %v", err)
	}

	got, found, err := readCache(dir, 1, 1)
	if err != nil {
		t.Fatalf("readCache() error: %v", err)
	}
	if !found {
		t.Fatal("readCache() found = false, want true")
	}
	if len(got) != len(entries) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(entries))
	}
	for i, e := range entries {
		if got[i].name != e.name || !got[i].value.Equal(e.value) {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], e)
		}
	}
}

func TestReadCacheMissingFileIsNotFoundNotError(t *testing.T) {
	dir := t.TempDir()
	entries, found, err := readCache(dir, 9, 9)
	if err != nil {
		t.Fatalf("readCache() on a missing file returned an error: %v", err)
	}
	if found {
		t.Fatal("found = true for a cache file that was never written")
	}
	if entries != nil {
		t.Fatalf("entries = %v, want nil", entries)
	}
}

func TestComputeCRCIsOrderSensitive(t *testing.T) {
	a := []cacheEntry{{name: "A", value: field.FromInt32(1)}, {name: "B", value: field.FromInt32(2)}}
	b := []cacheEntry{{name: "B", value: field.FromInt32(2)}, {name: "A", value: field.FromInt32(1)}}
	if computeCRC(a) == computeCRC(b) {
		t.Fatal("expected different entry order to produce a different CRC")
	}
}

func TestComputeCRCIsDeterministic(t *testing.T) {
	entries := []cacheEntry{{name: "A", value: field.FromInt32(1)}, {name: "B", value: field.FromFloat32(2.5)}}
	if computeCRC(entries) != computeCRC(entries) {
		t.Fatal("expected computeCRC to be deterministic for identical input")
	}
}

func TestComputeCRCDiffersOnValueChange(t *testing.T) {
	a := []cacheEntry{{name: "A", value: field.FromInt32(1)}}
	b := []cacheEntry{{name: "A", value: field.FromInt32(2)}}
	if computeCRC(a) == computeCRC(b) {
		t.Fatal("expected differing values to produce different CRCs")
	}
}
