package tabular

import (
	"errors"
	"path/filepath"
	"strings"
)

var ErrUnsupportedFormat = errors.New("unsupported file format: upload CSV or Excel")

// ReadFile picks the decoder from the file extension.
func ReadFile(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSVFile(path)
	case ".xlsx", ".xlsm":
		return ReadXLSXFile(path)
	default:
		return Table{}, ErrUnsupportedFormat
	}
}
