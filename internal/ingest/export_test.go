package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binforge/addrbin/internal/model"
)

func writeDump(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func writeDumpGz(t *testing.T, dir, name, content string) {
	t.Helper()
	f, err := os.Create(filepath.Join(dir, name))
	require.NoError(t, err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func exportFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t1\nbaseaddress\t400000\n")
	writeDump(t, dir, "idaexport_func.txt",
		"version\t1\nfunc\t401000\t401040\nfunc\t401100\t401180\n")
	writeDump(t, dir, "idaexport_global.txt", "version\t1\nglobal\t402000\n")
	writeDump(t, dir, "idaexport_vtable.txt", "version\t1\nvtable\t403000\t4\n")
	writeDump(t, dir, "idaexport_string.txt", "version\t1\nstring\t404000\t12\n")
	writeDump(t, dir, "idaexport_name.txt", "version\t1\nname\t401000\t_ZN4Game4InitEv\n")
	return dir
}

func TestReadExports(t *testing.T) {
	dir := exportFixture(t)
	version := model.Version{1, 6, 0, 0}

	node, err := ReadExports(dir, version)
	require.NoError(t, err)
	assert.Equal(t, version, node.Version)
	assert.Equal(t, uint64(0x400000), node.BaseAddress)

	require.True(t, node.HasEntity(model.CategoryFunction, 0x401000))
	assert.Equal(t, uint64(0x40), node.Entities[model.CategoryFunction][0x401000].Size)
	assert.Equal(t, uint64(0x80), node.Entities[model.CategoryFunction][0x401100].Size)

	assert.True(t, node.HasEntity(model.CategoryGlobal, 0x402000))
	assert.Equal(t, uint64(32), node.Entities[model.CategoryVtable][0x403000].Size)
	assert.Equal(t, uint64(12), node.Entities[model.CategoryString][0x404000].Size)

	// The name dump attaches a hash to the named entity only.
	assert.NotZero(t, node.Entities[model.CategoryFunction][0x401000].NameHash)
	assert.Zero(t, node.Entities[model.CategoryFunction][0x401100].NameHash)
}

func TestReadExportsGzip(t *testing.T) {
	dir := t.TempDir()
	writeDumpGz(t, dir, "idaexport_base.txt.gz", "version\t1\nbaseaddress\t400000\n")
	writeDumpGz(t, dir, "idaexport_func.txt.gz", "version\t1\nfunc\t401000\t401010\n")

	node, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x400000), node.BaseAddress)
	assert.True(t, node.HasEntity(model.CategoryFunction, 0x401000))
}

func TestReadExportsMissingBase(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_func.txt", "version\t1\nfunc\t401000\t401010\n")

	_, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "idaexport_base.txt")
}

func TestReadExportsMissingCategoriesAreEmpty(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t1\nbaseaddress\t400000\n")

	node, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0, node.EntityCount())
}

func TestReadExportsBadHeader(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t2\nbaseaddress\t400000\n")

	_, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported dump version")
}

func TestReadExportsAddressBelowBase(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t1\nbaseaddress\t400000\n")
	writeDump(t, dir, "idaexport_func.txt", "version\t1\nfunc\t1000\t1010\n")

	_, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below base address")
}

func TestReadExportsOffsetOverflows32Bits(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t1\nbaseaddress\t1000\n")
	// 0x200001000 - 0x1000 = 2^33, one bit too wide for a u32 offset.
	writeDump(t, dir, "idaexport_func.txt", "version\t1\nfunc\t200001000\t200001010\n")

	_, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bits")

	// The largest representable offset is still accepted.
	dir2 := t.TempDir()
	writeDump(t, dir2, "idaexport_base.txt", "version\t1\nbaseaddress\t1000\n")
	writeDump(t, dir2, "idaexport_func.txt", "version\t1\nfunc\t100000fff\t100001000\n")
	node, err := ReadExports(dir2, model.Version{1, 0, 0, 0})
	require.NoError(t, err)
	assert.True(t, node.HasEntity(model.CategoryFunction, 0x100000FFF))
}

func TestReadExportsMalformedRow(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t1\nbaseaddress\t400000\n")
	writeDump(t, dir, "idaexport_func.txt", "version\t1\nfunc\t401000\n")

	_, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed func row")
}

func TestReadExportsFunctionEndsBeforeStart(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t1\nbaseaddress\t400000\n")
	writeDump(t, dir, "idaexport_func.txt", "version\t1\nfunc\t401040\t401000\n")

	_, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ends before it starts")
}

func TestFindInputPrefersPlainFile(t *testing.T) {
	dir := t.TempDir()
	writeDump(t, dir, "idaexport_base.txt", "version\t1\nbaseaddress\t400000\n")
	writeDumpGz(t, dir, "idaexport_base.txt.gz", "version\t1\nbaseaddress\t500000\n")

	node, err := ReadExports(dir, model.Version{1, 0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, uint64(0x400000), node.BaseAddress)
}
