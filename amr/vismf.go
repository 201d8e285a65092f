package amr

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/DataDog/zstd"
)

const (
	multiFabMagic    = uint64(0x70696d66616231) // "pimfab1"
	multiFabVersion  = int64(1)
	compressionLevel = 1
)

// ErrLayoutMismatch is returned when a file does not describe the same boxes,
// components and ghost width as the MultiFab it is read into.
var ErrLayoutMismatch = errors.New("multifab layout mismatch")

// WriteMultiFab stores every box of mf, ghosts included, keyed by its box
// index. Values are the raw float64 bits compressed with zstd, so a read
// reproduces them exactly.
func WriteMultiFab(path string, mf *MultiFab) (err error) {
	var (
		file *os.File
		buf  []byte
	)
	if file, err = os.Create(path); err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = cerr
		}
	}()
	wr := bufio.NewWriter(file)
	header := []int64{int64(mf.Len()), int64(mf.nComp), int64(mf.nGrow)}
	for d := 0; d < SpaceDim; d++ {
		header = append(header, boolToInt64(mf.IxType()[d]))
	}
	if err = binary.Write(wr, binary.LittleEndian, multiFabMagic); err != nil {
		return
	}
	if err = binary.Write(wr, binary.LittleEndian, multiFabVersion); err != nil {
		return
	}
	if err = binary.Write(wr, binary.LittleEndian, header); err != nil {
		return
	}
	for i, fab := range mf.fabs {
		b := mf.ValidBox(i)
		rec := []int64{int64(i),
			int64(b.Lo[0]), int64(b.Lo[1]), int64(b.Lo[2]),
			int64(b.Hi[0]), int64(b.Hi[1]), int64(b.Hi[2])}
		if err = binary.Write(wr, binary.LittleEndian, rec); err != nil {
			return
		}
		raw := make([]byte, 8*len(fab.data))
		for n, v := range fab.data {
			binary.LittleEndian.PutUint64(raw[8*n:], math.Float64bits(v))
		}
		if buf, err = zstd.CompressLevel(buf, raw, compressionLevel); err != nil {
			return fmt.Errorf("compressing box %d: %w", i, err)
		}
		if err = binary.Write(wr, binary.LittleEndian, int64(len(buf))); err != nil {
			return
		}
		if _, err = wr.Write(buf); err != nil {
			return
		}
	}
	return wr.Flush()
}

// ReadMultiFab restores data written by WriteMultiFab into mf, which must
// have the layout the file was written with.
func ReadMultiFab(path string, mf *MultiFab) (err error) {
	var (
		file    *os.File
		magic   uint64
		version int64
		header  = make([]int64, 3+SpaceDim)
		buf     []byte
	)
	if file, err = os.Open(path); err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer file.Close()
	rd := bufio.NewReader(file)
	if err = binary.Read(rd, binary.LittleEndian, &magic); err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if magic != multiFabMagic {
		return fmt.Errorf("%s is not a multifab file", path)
	}
	if err = binary.Read(rd, binary.LittleEndian, &version); err != nil {
		return
	}
	if version != multiFabVersion {
		return fmt.Errorf("%s has unsupported version %d", path, version)
	}
	if err = binary.Read(rd, binary.LittleEndian, header); err != nil {
		return
	}
	if header[0] != int64(mf.Len()) || header[1] != int64(mf.nComp) ||
		header[2] != int64(mf.nGrow) {
		return fmt.Errorf("%s holds %d boxes x %d comps, %d ghosts: %w", path,
			header[0], header[1], header[2], ErrLayoutMismatch)
	}
	for d := 0; d < SpaceDim; d++ {
		if header[3+d] != boolToInt64(mf.IxType()[d]) {
			return fmt.Errorf("%s index type differs: %w", path, ErrLayoutMismatch)
		}
	}
	rec := make([]int64, 7)
	for i, fab := range mf.fabs {
		if err = binary.Read(rd, binary.LittleEndian, rec); err != nil {
			return fmt.Errorf("reading box %d of %s: %w", i, path, err)
		}
		b := mf.ValidBox(i)
		if rec[0] != int64(i) ||
			rec[1] != int64(b.Lo[0]) || rec[2] != int64(b.Lo[1]) || rec[3] != int64(b.Lo[2]) ||
			rec[4] != int64(b.Hi[0]) || rec[5] != int64(b.Hi[1]) || rec[6] != int64(b.Hi[2]) {
			return fmt.Errorf("box %d of %s differs from %v: %w", i, path, b,
				ErrLayoutMismatch)
		}
		var nBuf int64
		if err = binary.Read(rd, binary.LittleEndian, &nBuf); err != nil {
			return
		}
		buf = resizeBytes(buf, int(nBuf))
		if _, err = io.ReadFull(rd, buf); err != nil {
			return fmt.Errorf("reading box %d of %s: %w", i, path, err)
		}
		var raw []byte
		if raw, err = zstd.Decompress(nil, buf); err != nil {
			return fmt.Errorf("decompressing box %d of %s: %w", i, path, err)
		}
		if len(raw) != 8*len(fab.data) {
			return fmt.Errorf("box %d of %s has %d values, want %d: %w", i, path,
				len(raw)/8, len(fab.data), ErrLayoutMismatch)
		}
		for n := range fab.data {
			fab.data[n] = math.Float64frombits(binary.LittleEndian.Uint64(raw[8*n:]))
		}
	}
	return
}

func boolToInt64(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func resizeBytes(b []byte, n int) []byte {
	if cap(b) >= n {
		return b[:n]
	}
	return make([]byte, n)
}
