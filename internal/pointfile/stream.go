package pointfile

import (
	"bytes"
	"encoding/binary"
	"errors"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// Stream is the minimal contract a point-file reader needs: both a file on
// disk/object-store and an in-memory byte buffer satisfy it.
type Stream interface {
	Read(p []byte) (int, error)
	Seek(offset int64, whence int) (int64, error)
}

// genericStream chooses between reading the whole file into memory up front
// (useful for small files or when random-access seeks would otherwise incur
// repeated object-store round trips) or leaving it as a streamed handle.
func genericStream(handle *tiledb.VFSfh, size uint64, inMemory bool) (Stream, error) {
	if !inMemory {
		return handle, nil
	}

	buffer := make([]byte, size)
	if err := binary.Read(handle, binary.BigEndian, &buffer); err != nil {
		return nil, errors.Join(ErrBadInputFile, err)
	}
	return bytes.NewReader(buffer), nil
}

// File is an opened point-file ready for streamed reading of its header and
// point records. It owns the underlying TileDB VFS handles (local disk or
// an object store such as S3) and must be closed after use.
type File struct {
	URI string
	Stream

	config  *tiledb.Config
	ctx     *tiledb.Context
	vfs     *tiledb.VFS
	handler *tiledb.VFSfh
}

// Open opens uri (a local path or an object-store URI) for streamed point
// reading. configURI optionally points at a TileDB config file for object
// store credentials/region; pass "" to use the default/environment config.
// When inMemory is true the whole file is buffered up front.
func Open(uri, configURI string, inMemory bool) (*File, error) {
	var (
		config *tiledb.Config
		err    error
	)

	if configURI == "" {
		config, err = tiledb.NewConfig()
	} else {
		config, err = tiledb.LoadConfig(configURI)
	}
	if err != nil {
		return nil, errors.Join(ErrBadInputFile, err)
	}

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		config.Free()
		return nil, errors.Join(ErrBadInputFile, err)
	}

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		ctx.Free()
		config.Free()
		return nil, errors.Join(ErrBadInputFile, err)
	}

	handler, err := vfs.Open(uri, tiledb.TILEDB_VFS_READ)
	if err != nil {
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, errors.Join(ErrBadInputFile, err)
	}

	size, err := vfs.FileSize(uri)
	if err != nil {
		handler.Close()
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, errors.Join(ErrBadInputFile, err)
	}

	stream, err := genericStream(handler, size, inMemory)
	if err != nil {
		handler.Close()
		vfs.Free()
		ctx.Free()
		config.Free()
		return nil, err
	}

	return &File{
		URI:     uri,
		Stream:  stream,
		config:  config,
		ctx:     ctx,
		vfs:     vfs,
		handler: handler,
	}, nil
}

// Close releases the file's TileDB VFS resources on every exit path.
func (f *File) Close() {
	f.handler.Close()
	f.vfs.Free()
	f.ctx.Free()
	f.config.Free()
}
