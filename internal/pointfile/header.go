package pointfile

import (
	"encoding/binary"
	"errors"
	"math"
)

// headerSize is the LAS 1.2 public header block size in bytes.
const headerSize = 227

// pointFormat3Size is the LAS point-data-record length for point format 3.
const pointFormat3Size = 34

// Header carries the dataset-wide metadata a LiDAR container exposes: point
// count, per-axis scale/offset, and the world-coordinate bounding box.
type Header struct {
	PointCount      uint32
	PointDataOffset uint32
	PointFormat     uint8
	RecordLength    uint16

	Scales  [3]float64
	Offsets [3]float64

	XMin, XMax float64
	YMin, YMax float64
	ZMin, ZMax float64
}

// BBox returns the header's bounding box as [xmin,xmax,ymin,ymax,zmin,zmax],
// the ordering the dataset descriptor uses.
func (h Header) BBox() [6]float64 {
	return [6]float64{h.XMin, h.XMax, h.YMin, h.YMax, h.ZMin, h.ZMax}
}

// readHeader parses the LAS 1.2 public header block from s.
func readHeader(s Stream) (Header, error) {
	buf := make([]byte, headerSize)
	if _, err := s.Seek(0, 0); err != nil {
		return Header{}, errors.Join(ErrBadInputFile, err)
	}
	if err := readFull(s, buf); err != nil {
		return Header{}, errors.Join(ErrBadInputFile, err)
	}

	if string(buf[0:4]) != "LASF" {
		return Header{}, errors.Join(ErrBadInputFile, errBadSignature)
	}

	var h Header

	headerSizeField := binary.LittleEndian.Uint16(buf[94:96])
	if int(headerSizeField) > len(buf) {
		return Header{}, errors.Join(ErrBadInputFile, errShortHeader)
	}

	h.PointDataOffset = binary.LittleEndian.Uint32(buf[96:100])
	h.PointFormat = buf[104]
	h.RecordLength = binary.LittleEndian.Uint16(buf[105:107])
	h.PointCount = binary.LittleEndian.Uint32(buf[107:111])

	h.Scales[0] = le64(buf[131:139])
	h.Scales[1] = le64(buf[139:147])
	h.Scales[2] = le64(buf[147:155])
	h.Offsets[0] = le64(buf[155:163])
	h.Offsets[1] = le64(buf[163:171])
	h.Offsets[2] = le64(buf[171:179])

	h.XMax = le64(buf[179:187])
	h.XMin = le64(buf[187:195])
	h.YMax = le64(buf[195:203])
	h.YMin = le64(buf[203:211])
	h.ZMax = le64(buf[211:219])
	h.ZMin = le64(buf[219:227])

	return h, nil
}

func le64(b []byte) float64 {
	bits := binary.LittleEndian.Uint64(b)
	return math.Float64frombits(bits)
}

func readFull(s Stream, buf []byte) error {
	total := 0
	for total < len(buf) {
		n, err := s.Read(buf[total:])
		total += n
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
	}
	if total < len(buf) {
		return errShortHeader
	}
	return nil
}
