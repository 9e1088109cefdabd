// Package bincodec encodes resolved ID tables to the version-bin file format
// and decodes existing bins back into ID tables.
//
// Format (little-endian):
//
//	Magic (4 bytes) "ABIN"
//	FormatVersion (4 bytes)
//	VersionString (2-byte length + bytes, canonical dotted form)
//	BaseAddress (8 bytes)
//	CategoryCount (4 bytes)
//	Per category, in wire order:
//	  Count (4 bytes)
//	  (ID uint32, Offset uint64) pairs sorted by ascending ID
//
// Offsets are stored relative to the version's base address. decode(encode(T))
// returns T for every valid table.
package bincodec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/binforge/addrbin/internal/model"
)

const (
	// Magic identifies a version bin ("ABIN" as a little-endian uint32).
	Magic = 0x4E494241
	// FormatVersion is the only layout revision this codec reads or writes.
	FormatVersion = 1
)

// Bin is a decoded version bin: the version it describes, its base load
// address, and the ID table with addresses rebased to absolute values.
type Bin struct {
	Version     model.Version
	BaseAddress uint64
	Table       *model.IDTable
}

// Encode writes the resolved table of one version as a version bin. The
// table's uniqueness invariant is a precondition; a violation fails with
// ErrInvariantViolation before any byte reaches w.
func Encode(w io.Writer, version model.Version, baseAddress uint64, table *model.IDTable) error {
	var buf bytes.Buffer
	bw := &binWriter{w: &buf}

	bw.uint32(Magic)
	bw.uint32(FormatVersion)
	bw.str(version.String())
	bw.uint64(baseAddress)
	bw.uint32(model.NumCategories)

	for _, cat := range model.AllCategories {
		pairs := table.Pairs(cat)
		if err := checkPairs(cat, pairs, baseAddress); err != nil {
			return err
		}
		bw.uint32(uint32(len(pairs)))
		for _, p := range pairs {
			bw.uint32(p.ID)
			bw.uint64(p.Address - baseAddress)
		}
	}
	if bw.err != nil {
		return bw.err
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// checkPairs enforces the encode precondition: IDs strictly ascending and
// unique, offsets unique, no address below base.
func checkPairs(cat model.Category, pairs []model.IDPair, baseAddress uint64) error {
	offsets := make(map[uint64]bool, len(pairs))
	for i, p := range pairs {
		if p.Address < baseAddress {
			return fmt.Errorf("%w: %s id %d at address 0x%X below base 0x%X",
				ErrInvariantViolation, cat, p.ID, p.Address, baseAddress)
		}
		if i > 0 && pairs[i-1].ID >= p.ID {
			return fmt.Errorf("%w: %s ids %d and %d are not strictly ascending",
				ErrInvariantViolation, cat, pairs[i-1].ID, p.ID)
		}
		offset := p.Address - baseAddress
		if offsets[offset] {
			return fmt.Errorf("%w: %s offset 0x%X appears twice", ErrInvariantViolation, cat, offset)
		}
		offsets[offset] = true
	}
	return nil
}

// Decode reads a version bin. Any structural defect fails with an error
// wrapping ErrMalformedBin.
func Decode(r io.Reader) (*Bin, error) {
	br := &binReader{r: r}

	if magic := br.uint32(); br.err == nil && magic != Magic {
		return nil, fmt.Errorf("%w: bad magic 0x%08X", ErrMalformedBin, magic)
	}
	if v := br.uint32(); br.err == nil && v != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", ErrMalformedBin, v)
	}
	versionStr := br.str()
	baseAddress := br.uint64()
	categoryCount := br.uint32()
	if br.err != nil {
		return nil, fmt.Errorf("%w: truncated header: %v", ErrMalformedBin, br.err)
	}
	if categoryCount != model.NumCategories {
		return nil, fmt.Errorf("%w: expected %d categories, found %d", ErrMalformedBin, model.NumCategories, categoryCount)
	}
	version, err := model.ParseVersion(versionStr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBin, err)
	}

	table := model.NewIDTable()
	for _, cat := range model.AllCategories {
		count := br.uint32()
		if br.err != nil {
			return nil, fmt.Errorf("%w: truncated %s record count: %v", ErrMalformedBin, cat, br.err)
		}
		var prevID uint32
		for i := uint32(0); i < count; i++ {
			id := br.uint32()
			offset := br.uint64()
			if br.err != nil {
				return nil, fmt.Errorf("%w: truncated %s records: %v", ErrMalformedBin, cat, br.err)
			}
			if i > 0 && id <= prevID {
				return nil, fmt.Errorf("%w: %s ids not ascending (%d after %d)", ErrMalformedBin, cat, id, prevID)
			}
			prevID = id
			if offset > math.MaxUint64-baseAddress {
				return nil, fmt.Errorf("%w: %s offset 0x%X overflows base 0x%X", ErrMalformedBin, cat, offset, baseAddress)
			}
			if err := table.Assign(cat, baseAddress+offset, id); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrMalformedBin, err)
			}
		}
	}

	// A valid bin ends exactly where the last category ends.
	var tail [1]byte
	if n, _ := br.r.Read(tail[:]); n != 0 {
		return nil, fmt.Errorf("%w: trailing bytes after last category", ErrMalformedBin)
	}

	return &Bin{Version: version, BaseAddress: baseAddress, Table: table}, nil
}

// binWriter writes little-endian fields with a sticky error.
type binWriter struct {
	w   io.Writer
	err error
}

func (b *binWriter) uint32(v uint32) {
	if b.err != nil {
		return
	}
	var raw [4]byte
	binary.LittleEndian.PutUint32(raw[:], v)
	_, b.err = b.w.Write(raw[:])
}

func (b *binWriter) uint64(v uint64) {
	if b.err != nil {
		return
	}
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], v)
	_, b.err = b.w.Write(raw[:])
}

func (b *binWriter) str(s string) {
	if b.err != nil {
		return
	}
	if len(s) > math.MaxUint16 {
		b.err = fmt.Errorf("string too long: %d bytes", len(s))
		return
	}
	var raw [2]byte
	binary.LittleEndian.PutUint16(raw[:], uint16(len(s)))
	if _, b.err = b.w.Write(raw[:]); b.err != nil {
		return
	}
	_, b.err = io.WriteString(b.w, s)
}

// binReader reads little-endian fields with a sticky error.
type binReader struct {
	r   io.Reader
	err error
}

func (b *binReader) read(n int) []byte {
	if b.err != nil {
		return nil
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(b.r, raw); err != nil {
		b.err = err
		return nil
	}
	return raw
}

func (b *binReader) uint32() uint32 {
	raw := b.read(4)
	if raw == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(raw)
}

func (b *binReader) uint64() uint64 {
	raw := b.read(8)
	if raw == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(raw)
}

func (b *binReader) str() string {
	raw := b.read(2)
	if raw == nil {
		return ""
	}
	return string(b.read(int(binary.LittleEndian.Uint16(raw))))
}
