package pointfile

import (
	"encoding/binary"
	"errors"
	"io"
)

// Point is a single decoded (x, y, z) world-coordinate triple.
type Point struct {
	X, Y, Z float64
}

// Reader streams (x, y, z) points out of an opened point-file one record at
// a time, applying the header's scale/offset to turn raw integer coordinates
// into world units.
type Reader struct {
	stream Stream
	closer func()
	Header Header

	recordBuf []byte
	remaining uint32
}

// NewReader parses uri's header and returns a Reader positioned at the
// first point record. configURI/inMemory are forwarded to pointfile.Open.
func NewReader(uri, configURI string, inMemory bool) (*Reader, error) {
	f, err := Open(uri, configURI, inMemory)
	if err != nil {
		return nil, err
	}

	r, err := newReader(f.Stream, f.Close)
	if err != nil {
		f.Close()
		return nil, err
	}
	return r, nil
}

// newReader builds a Reader over an already-positioned Stream; closer is
// called by Close to release any resources the stream owns. It is kept
// unexported so tests can exercise record decoding against a plain in-memory
// buffer without needing a TileDB-backed Stream.
func newReader(s Stream, closer func()) (*Reader, error) {
	h, err := readHeader(s)
	if err != nil {
		return nil, err
	}

	recLen := int(h.RecordLength)
	if recLen == 0 {
		recLen = pointFormat3Size
	}

	if _, err := s.Seek(int64(h.PointDataOffset), 0); err != nil {
		return nil, errors.Join(ErrBadInputFile, err)
	}

	return &Reader{
		stream:    s,
		closer:    closer,
		Header:    h,
		recordBuf: make([]byte, recLen),
		remaining: h.PointCount,
	}, nil
}

// Close releases the underlying file, if any.
func (r *Reader) Close() {
	if r.closer != nil {
		r.closer()
	}
}

// Next reads the next point, applying the header's scale/offset. It returns
// io.EOF once every record has been consumed.
func (r *Reader) Next() (Point, error) {
	if r.remaining == 0 {
		return Point{}, io.EOF
	}

	if err := readFull(r.stream, r.recordBuf); err != nil {
		return Point{}, errors.Join(ErrBadInputFile, err)
	}
	r.remaining--

	rawX := int32(binary.LittleEndian.Uint32(r.recordBuf[0:4]))
	rawY := int32(binary.LittleEndian.Uint32(r.recordBuf[4:8]))
	rawZ := int32(binary.LittleEndian.Uint32(r.recordBuf[8:12]))

	return Point{
		X: float64(rawX)*r.Header.Scales[0] + r.Header.Offsets[0],
		Y: float64(rawY)*r.Header.Scales[1] + r.Header.Offsets[1],
		Z: float64(rawZ)*r.Header.Scales[2] + r.Header.Offsets[2],
	}, nil
}

// All drains every remaining point into a slice, holding the whole file in
// memory; the ingest pipeline builds its blocks from this slice. ForEach is
// the streaming alternative.
func (r *Reader) All() ([]Point, error) {
	points := make([]Point, 0, r.remaining)
	for {
		p, err := r.Next()
		if errors.Is(err, io.EOF) {
			return points, nil
		}
		if err != nil {
			return nil, err
		}
		points = append(points, p)
	}
}

// ForEach streams every remaining point through fn without buffering the
// whole dataset in memory.
func (r *Reader) ForEach(fn func(Point) error) error {
	for {
		p, err := r.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
}

// PeekHeader reads and returns only uri's header, closing the file
// immediately after. Used by the ingest pipeline to derive the dataset
// split and bounding box before doing any point-level work.
func PeekHeader(uri, configURI string) (Header, error) {
	f, err := Open(uri, configURI, false)
	if err != nil {
		return Header{}, err
	}
	defer f.Close()

	return readHeader(f.Stream)
}
