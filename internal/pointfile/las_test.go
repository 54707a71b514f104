package pointfile

import (
	"bytes"
	"encoding/binary"
	"math"
)

// buildLas assembles a minimal valid LAS 1.2 point-format-3 byte buffer with
// the given scale/offset/bbox and raw (x,y,z) int32 records, for exercising
// readHeader and Reader without a real file or TileDB VFS.
func buildLas(scales, offsets [3]float64, bbox [6]float64, raws [][3]int32) []byte {
	buf := make([]byte, headerSize)
	copy(buf[0:4], "LASF")

	binary.LittleEndian.PutUint16(buf[94:96], uint16(headerSize))
	binary.LittleEndian.PutUint32(buf[96:100], uint32(headerSize))
	buf[104] = 3
	binary.LittleEndian.PutUint16(buf[105:107], uint16(pointFormat3Size))
	binary.LittleEndian.PutUint32(buf[107:111], uint32(len(raws)))

	putLE64(buf[131:139], scales[0])
	putLE64(buf[139:147], scales[1])
	putLE64(buf[147:155], scales[2])
	putLE64(buf[155:163], offsets[0])
	putLE64(buf[163:171], offsets[1])
	putLE64(buf[171:179], offsets[2])

	putLE64(buf[179:187], bbox[1]) // XMax
	putLE64(buf[187:195], bbox[0]) // XMin
	putLE64(buf[195:203], bbox[3]) // YMax
	putLE64(buf[203:211], bbox[2]) // YMin
	putLE64(buf[211:219], bbox[5]) // ZMax
	putLE64(buf[219:227], bbox[4]) // ZMin

	var body bytes.Buffer
	for _, raw := range raws {
		rec := make([]byte, pointFormat3Size)
		binary.LittleEndian.PutUint32(rec[0:4], uint32(raw[0]))
		binary.LittleEndian.PutUint32(rec[4:8], uint32(raw[1]))
		binary.LittleEndian.PutUint32(rec[8:12], uint32(raw[2]))
		body.Write(rec)
	}

	return append(buf, body.Bytes()...)
}

func putLE64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}
