package models

import (
	"encoding/json"

	"github.com/dpshade/book-editor/internal/errors"
)

// BlobWriter persists a named blob
type BlobWriter interface {
	Save(name string, data []byte) error
}

// BlobReader loads a named blob. A missing blob is reported with an error
// carrying errors.ErrCodeFileNotFound.
type BlobReader interface {
	Load(name string) ([]byte, error)
}

func writeJSON(w BlobWriter, name string, v map[string]any) error {
	if w == nil {
		return errors.InvalidArgumentError("no storage configured")
	}
	if name == "" {
		return errors.InvalidArgumentError("path cannot be empty")
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode "+name)
	}
	return w.Save(name, append(data, '\n'))
}

// readMapping loads name and decodes it into a generic mapping. Decoding
// failures are reported as FILE_CORRUPTED.
func readMapping(r BlobReader, name string) (map[string]any, error) {
	if r == nil {
		return nil, errors.InvalidArgumentError("no storage configured")
	}
	data, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.FileCorruptedError(name, err)
	}
	m, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.FileCorruptedError(name, nil).WithDetails("top-level value is not an object")
	}
	return m, nil
}
