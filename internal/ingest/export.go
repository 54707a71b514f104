package ingest

import (
	"encoding/binary"
	"errors"
	"math"
	"os"

	"github.com/cynthiacai56/splitSFC-1m/internal/pointfile"
	"github.com/cynthiacai56/splitSFC-1m/internal/store"
)

// defaultScale is the quantization step ExportLAS uses when re-encoding
// world-coordinate result points back into a LAS point-format-3 file (one
// millimeter).
const defaultScale = 0.001

// ExportLAS writes points to path as a LAS 1.2 point-format-3 file. Every
// axis uses defaultScale, and the offset is the result set's own bounding-box
// minimum; neither is carried over from the source dataset.
func ExportLAS(path string, points []store.ResultPoint) (err error) {
	f, createErr := os.Create(path)
	if createErr != nil {
		return errors.Join(pointfile.ErrBadInputFile, createErr)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	scales := [3]float64{defaultScale, defaultScale, defaultScale}
	offsets, bbox := exportBounds(points)

	header := buildLasHeader(len(points), scales, offsets, bbox)
	if _, err = f.Write(header); err != nil {
		return err
	}

	buf := make([]byte, pointFormat3Size)
	for _, p := range points {
		encodeLasRecord(buf, p, scales, offsets)
		if _, err = f.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

// pointFormat3Size matches pointfile's LAS point-data-record length for
// point format 3; duplicated here rather than exported from pointfile since
// it is a wire-format constant, not a reader concern.
const pointFormat3Size = 34

// headerSize matches pointfile's LAS 1.2 public header block size.
const headerSize = 227

// exportBounds derives an offset (the bbox minimum, so every quantized
// coordinate stays non-negative) and the bbox itself from points. An empty
// result set exports a zero-extent, zero-point file.
func exportBounds(points []store.ResultPoint) (offsets [3]float64, bbox [6]float64) {
	if len(points) == 0 {
		return offsets, bbox
	}

	bbox = [6]float64{points[0].X, points[0].X, points[0].Y, points[0].Y, points[0].Z, points[0].Z}
	for _, p := range points[1:] {
		bbox[0] = min(bbox[0], p.X)
		bbox[1] = max(bbox[1], p.X)
		bbox[2] = min(bbox[2], p.Y)
		bbox[3] = max(bbox[3], p.Y)
		bbox[4] = min(bbox[4], p.Z)
		bbox[5] = max(bbox[5], p.Z)
	}
	offsets = [3]float64{bbox[0], bbox[2], bbox[4]}
	return offsets, bbox
}

func buildLasHeader(pointCount int, scales, offsets [3]float64, bbox [6]float64) []byte {
	buf := make([]byte, headerSize)

	copy(buf[0:4], "LASF")
	buf[24] = 1 // version major
	buf[25] = 2 // version minor
	copy(buf[26:58], "splitSFC-1m")
	copy(buf[58:90], "splitSFC-1m exporter")

	binary.LittleEndian.PutUint16(buf[94:96], uint16(headerSize))
	binary.LittleEndian.PutUint32(buf[96:100], uint32(headerSize))
	buf[104] = 3 // point data format
	binary.LittleEndian.PutUint16(buf[105:107], uint16(pointFormat3Size))
	binary.LittleEndian.PutUint32(buf[107:111], uint32(pointCount))

	putLE64(buf[131:139], scales[0])
	putLE64(buf[139:147], scales[1])
	putLE64(buf[147:155], scales[2])
	putLE64(buf[155:163], offsets[0])
	putLE64(buf[163:171], offsets[1])
	putLE64(buf[171:179], offsets[2])

	putLE64(buf[179:187], bbox[1])
	putLE64(buf[187:195], bbox[0])
	putLE64(buf[195:203], bbox[3])
	putLE64(buf[203:211], bbox[2])
	putLE64(buf[211:219], bbox[5])
	putLE64(buf[219:227], bbox[4])

	return buf
}

func encodeLasRecord(buf []byte, p store.ResultPoint, scales, offsets [3]float64) {
	for i := range buf {
		buf[i] = 0
	}
	rawX := int32(math.Round((p.X - offsets[0]) / scales[0]))
	rawY := int32(math.Round((p.Y - offsets[1]) / scales[1]))
	rawZ := int32(math.Round((p.Z - offsets[2]) / scales[2]))

	binary.LittleEndian.PutUint32(buf[0:4], uint32(rawX))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(rawY))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(rawZ))
}

func putLE64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}
