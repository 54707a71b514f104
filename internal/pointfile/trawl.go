package pointfile

import (
	"errors"
	"path/filepath"

	tiledb "github.com/TileDB-Inc/TileDB-Go"
)

// trawl recursively matches pattern against the basename of every file found
// under uri, appending matches to items and descending into every directory.
func trawl(vfs *tiledb.VFS, pattern, uri string, items []string) ([]string, error) {
	dirs, files, err := vfs.List(uri)
	if err != nil {
		return items, errors.Join(ErrBadInputFile, err)
	}

	for _, file := range files {
		match, err := filepath.Match(pattern, filepath.Base(file))
		if err != nil {
			return items, errors.Join(ErrBadInputFile, err)
		}
		if match {
			items = append(items, file)
		}
	}

	for _, dir := range dirs {
		items, err = trawl(vfs, pattern, dir, items)
		if err != nil {
			return items, err
		}
	}

	return items, nil
}

// FindLas recursively searches uri for *.las files, using TileDB VFS so the
// search works transparently against local disk or an object store such as
// S3. configURI optionally points at a TileDB config file for object-store
// credentials; pass "" to use the default/environment config.
func FindLas(uri, configURI string) ([]string, error) {
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
	defer config.Free()

	ctx, err := tiledb.NewContext(config)
	if err != nil {
		return nil, errors.Join(ErrBadInputFile, err)
	}
	defer ctx.Free()

	vfs, err := tiledb.NewVFS(ctx, config)
	if err != nil {
		return nil, errors.Join(ErrBadInputFile, err)
	}
	defer vfs.Free()

	return trawl(vfs, "*.las", uri, make([]string, 0))
}
