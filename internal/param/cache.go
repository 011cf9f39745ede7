package param

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/flightpath-dev/groundstation-core/internal/field"
)

// cacheEntry is one (name, typed value) pair as stored on disk.
type cacheEntry struct {
	name  string
	value field.TypedValue
}

// cachePath returns the path for a (vehicle, component) cache file:
// ParamCache/<vid>_<cid>.cache.
func cachePath(dir string, vehicleID, componentID uint8) string {
	return filepath.Join(dir, fmt.Sprintf("%d_%d.cache", vehicleID, componentID))
}

// crcFold computes the spec's deterministic, order-sensitive 32-bit rolling
// hash: fold each byte of the name as crc = crc*31+byte, then XOR in the
// value's machine representation. i32/f32 XOR their raw bits directly; f64
// XORs its low and high 32-bit halves. Other integer widths widen to their
// natural bit pattern so the same formula applies uniformly across every
// kind the cache can hold.
func crcFold(crc uint32, name string, v field.TypedValue) uint32 {
	for i := 0; i < len(name); i++ {
		crc = crc*31 + uint32(name[i])
	}
	crc ^= valueBits(v)
	return crc
}

func valueBits(v field.TypedValue) uint32 {
	switch v.Kind {
	case field.KindUint8:
		return uint32(v.Uint8())
	case field.KindInt8:
		return uint32(uint8(v.Int8()))
	case field.KindUint16:
		return uint32(v.Uint16())
	case field.KindInt16:
		return uint32(uint16(v.Int16()))
	case field.KindUint32:
		return v.Uint32()
	case field.KindInt32:
		return uint32(v.Int32())
	case field.KindUint64:
		b := v.Uint64()
		return uint32(b) ^ uint32(b>>32)
	case field.KindInt64:
		b := uint64(v.Int64())
		return uint32(b) ^ uint32(b>>32)
	case field.KindFloat32:
		return math.Float32bits(v.Float32())
	case field.KindFloat64:
		b := math.Float64bits(v.Float64())
		return uint32(b) ^ uint32(b>>32)
	case field.KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// computeCRC folds entries in the order given; callers iterating a Go map
// get Go's randomized iteration order, so the caller is responsible for
// picking a stable order (e.g. sorted by name) whenever cross-call
// reproducibility for the *same logical table* matters, so that equal cache
// contents always produce equal CRCs.
func computeCRC(entries []cacheEntry) uint32 {
	var crc uint32
	for _, e := range entries {
		crc = crcFold(crc, e.name, e.value)
	}
	return crc
}

// writeCache atomically rewrites the cache file for (vehicleID, componentID)
// with entries's binary layout: u64 count, then per entry
// {u64 name_len, name bytes, i32 type_tag, value bytes}.
func writeCache(dir string, vehicleID, componentID uint8, entries []cacheEntry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "cache-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	w := bufio.NewWriter(tmp)

	ok := false
	defer func() {
		tmp.Close()
		if !ok {
			os.Remove(tmpName)
		}
	}()

	if err := binary.Write(w, binary.LittleEndian, uint64(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeEntry(w, e); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	dest := cachePath(dir, vehicleID, componentID)
	if err := os.Rename(tmpName, dest); err != nil {
		return err
	}
	ok = true
	return nil
}

func writeEntry(w io.Writer, e cacheEntry) error {
	nameBytes := []byte(e.name)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(nameBytes))); err != nil {
		return err
	}
	if _, err := w.Write(nameBytes); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, int32(e.value.Kind)); err != nil {
		return err
	}
	return writeValueBytes(w, e.value)
}

func writeValueBytes(w io.Writer, v field.TypedValue) error {
	switch v.Kind {
	case field.KindUint8:
		return binary.Write(w, binary.LittleEndian, v.Uint8())
	case field.KindInt8:
		return binary.Write(w, binary.LittleEndian, v.Int8())
	case field.KindUint16:
		return binary.Write(w, binary.LittleEndian, v.Uint16())
	case field.KindInt16:
		return binary.Write(w, binary.LittleEndian, v.Int16())
	case field.KindUint32:
		return binary.Write(w, binary.LittleEndian, v.Uint32())
	case field.KindInt32:
		return binary.Write(w, binary.LittleEndian, v.Int32())
	case field.KindUint64:
		return binary.Write(w, binary.LittleEndian, v.Uint64())
	case field.KindInt64:
		return binary.Write(w, binary.LittleEndian, v.Int64())
	case field.KindFloat32:
		return binary.Write(w, binary.LittleEndian, v.Float32())
	case field.KindFloat64:
		return binary.Write(w, binary.LittleEndian, v.Float64())
	case field.KindBool:
		return binary.Write(w, binary.LittleEndian, v.Bool())
	default:
		return fmt.Errorf("param: cache cannot store kind %s", v.Kind)
	}
}

// readCache loads a cache file, returning (nil, false, nil) when the
// file does not exist (treated as "no cache", non-fatal).
func readCache(dir string, vehicleID, componentID uint8) ([]cacheEntry, bool, error) {
	f, err := os.Open(cachePath(dir, vehicleID, componentID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	var count uint64
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return nil, false, err
	}
	entries := make([]cacheEntry, 0, count)
	for i := uint64(0); i < count; i++ {
		e, err := readEntry(r)
		if err != nil {
			return nil, false, err
		}
		entries = append(entries, e)
	}
	return entries, true, nil
}

func readEntry(r io.Reader) (cacheEntry, error) {
	var nameLen uint64
	if err := binary.Read(r, binary.LittleEndian, &nameLen); err != nil {
		return cacheEntry{}, err
	}
	nameBytes := make([]byte, nameLen)
	if _, err := io.ReadFull(r, nameBytes); err != nil {
		return cacheEntry{}, err
	}
	var typeTag int32
	if err := binary.Read(r, binary.LittleEndian, &typeTag); err != nil {
		return cacheEntry{}, err
	}
	v, err := readValueBytes(r, field.Kind(typeTag))
	if err != nil {
		return cacheEntry{}, err
	}
	return cacheEntry{name: string(nameBytes), value: v}, nil
}

func readValueBytes(r io.Reader, kind field.Kind) (field.TypedValue, error) {
	switch kind {
	case field.KindUint8:
		var x uint8
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromUint8(x), err
	case field.KindInt8:
		var x int8
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromInt8(x), err
	case field.KindUint16:
		var x uint16
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromUint16(x), err
	case field.KindInt16:
		var x int16
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromInt16(x), err
	case field.KindUint32:
		var x uint32
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromUint32(x), err
	case field.KindInt32:
		var x int32
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromInt32(x), err
	case field.KindUint64:
		var x uint64
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromUint64(x), err
	case field.KindInt64:
		var x int64
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromInt64(x), err
	case field.KindFloat32:
		var x float32
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromFloat32(x), err
	case field.KindFloat64:
		var x float64
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromFloat64(x), err
	case field.KindBool:
		var x bool
		err := binary.Read(r, binary.LittleEndian, &x)
		return field.FromBool(x), err
	default:
		return field.TypedValue{}, fmt.Errorf("param: cache cannot read kind %d", kind)
	}
}
