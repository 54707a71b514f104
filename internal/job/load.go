package job

import (
	"encoding/json"
	"errors"
	"os"
)

// ErrBadInputFile is raised for a missing or malformed job description file.
var ErrBadInputFile = errors.New("job: bad input file")

// LoadIngest reads and decodes an ingest job description from path,
// overriding its config password with password if non-empty (the CLI's
// `--password` flag takes precedence over whatever the file carries).
func LoadIngest(path, password string) (IngestFile, error) {
	var f IngestFile
	if err := decodeFile(path, &f); err != nil {
		return IngestFile{}, err
	}
	if password != "" {
		f.Config.Password = password
	}
	return f, nil
}

// LoadQuery reads and decodes a query or export job description from path.
func LoadQuery(path, password string) (QueryFile, error) {
	var f QueryFile
	if err := decodeFile(path, &f); err != nil {
		return QueryFile{}, err
	}
	if password != "" {
		f.Config.Password = password
	}
	return f, nil
}

func decodeFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Join(ErrBadInputFile, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Join(ErrBadInputFile, err)
	}
	return nil
}
