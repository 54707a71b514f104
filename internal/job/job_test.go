package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cynthiacai56/splitSFC-1m/internal/query"
)

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "job.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadIngestOverridesPassword(t *testing.T) {
	path := writeTemp(t, `{
		"config": {"dbname":"d","user":"u","password":"file-pw","host":"h","port":5432},
		"imports": {"ds1": {"mode":"file","path":"a.las","srid":4326,"ratio":0.5}}
	}`)

	f, err := LoadIngest(path, "cli-pw")
	require.NoError(t, err)
	assert.Equal(t, "cli-pw", f.Config.Password)
	assert.Equal(t, "file", f.Imports["ds1"].Mode)
	assert.Equal(t, 0.5, f.Imports["ds1"].Ratio)
}

func TestLoadIngestKeepsFilePasswordWhenFlagEmpty(t *testing.T) {
	path := writeTemp(t, `{"config": {"password":"file-pw"}, "imports": {}}`)

	f, err := LoadIngest(path, "")
	require.NoError(t, err)
	assert.Equal(t, "file-pw", f.Config.Password)
}

func TestLoadIngestMissingFile(t *testing.T) {
	_, err := LoadIngest(filepath.Join(t.TempDir(), "missing.json"), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadInputFile)
}

func TestLoadIngestBadJSON(t *testing.T) {
	path := writeTemp(t, `{not json`)
	_, err := LoadIngest(path, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadInputFile)
}

func TestLoadQueryDecodesQueriesAndZBounds(t *testing.T) {
	path := writeTemp(t, `{
		"config": {},
		"queries": {
			"q1": {"source_dataset":"ds","mode":"bbox","geometry":[0.5,2.5,0.5,2.5]},
			"q2": {"source_dataset":"ds","mode":"circle","geometry":[[1,1],1.0]},
			"q3": {"source_dataset":"ds","mode":"polygon","geometry":"POLYGON((0 0,0 1,1 1,0 0))","maxz":10}
		}
	}`)

	f, err := LoadQuery(path, "")
	require.NoError(t, err)
	require.Len(t, f.Queries, 3)

	require.NotNil(t, f.Queries["q3"].MaxZ)
	assert.Equal(t, 10.0, *f.Queries["q3"].MaxZ)
	assert.Nil(t, f.Queries["q3"].MinZ)
}

func TestParseGeometryBbox(t *testing.T) {
	q := Query{Mode: "bbox", Geometry: []byte(`[0.5,2.5,0.5,2.5]`)}
	g, err := ParseGeometry(q)
	require.NoError(t, err)
	assert.Equal(t, query.NewBbox(0.5, 2.5, 0.5, 2.5), g)
}

func TestParseGeometryCircle(t *testing.T) {
	q := Query{Mode: "circle", Geometry: []byte(`[[1,1],1.0]`)}
	g, err := ParseGeometry(q)
	require.NoError(t, err)
	assert.Equal(t, query.NewCircle(1, 1, 1.0), g)
}

func TestParseGeometryPolygon(t *testing.T) {
	q := Query{Mode: "polygon", Geometry: []byte(`"POLYGON((0 0,0 1,1 1,0 0))"`)}
	g, err := ParseGeometry(q)
	require.NoError(t, err)
	assert.Equal(t, query.NewPolygon("POLYGON((0 0,0 1,1 1,0 0))"), g)
}

func TestParseGeometryUnknownMode(t *testing.T) {
	q := Query{Mode: "nope"}
	_, err := ParseGeometry(q)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBadInputFile)
}
