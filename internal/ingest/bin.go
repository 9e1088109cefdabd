package ingest

import (
	"fmt"
	"os"

	"github.com/binforge/addrbin/internal/bincodec"
	"github.com/binforge/addrbin/internal/model"
)

// DecodedBin is an existing version bin decoded into an anchor ID table.
type DecodedBin struct {
	Path        string
	Version     model.Version
	BaseAddress uint64
	Table       *model.IDTable
}

// ReadBin decodes an existing version bin. The version encoded in the header
// must agree with the version declared by the file name; an anchor that
// cannot be read or contradicts itself cannot be trusted.
func ReadBin(path string, version model.Version) (*DecodedBin, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	bin, err := bincodec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if bin.Version != version {
		return nil, fmt.Errorf("bin %s declares version %s in its header but %s in its file name", path, bin.Version, version)
	}
	return &DecodedBin{
		Path:        path,
		Version:     bin.Version,
		BaseAddress: bin.BaseAddress,
		Table:       bin.Table,
	}, nil
}
