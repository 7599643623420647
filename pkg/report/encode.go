package report

import (
	"io"

	"github.com/gopherwall/gopherwall/pkg/fs"

	json "github.com/goccy/go-json"
)

// Encode writes doc as two space indented JSON
func Encode(w io.Writer, doc any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// Write atomically publishes doc at path and returns written size
func Write(path string, doc any) (int64, error) {
	return fs.WriteFileAtomic(path, func(w io.Writer) error {
		return Encode(w, doc)
	})
}
