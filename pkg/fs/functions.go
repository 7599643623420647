/*
Copyright © 2025 Stamus Networks oss@stamus-networks.com

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package fs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
)

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m multiCloser) Close() error {
	var first error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

/*
Open opens a file handle while accounting for compression extracted from file magic
*/
func Open(path string) (io.ReadCloser, error) {
	if path == "" {
		return nil, errors.New("Missing file path")
	}
	m, err := magic(path)
	if err != nil {
		return nil, err
	}
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if m == Gzip {
		gzipHandle, err := gzip.NewReader(handle)
		if err != nil {
			handle.Close()
			return nil, err
		}
		return multiCloser{Reader: gzipHandle, closers: []io.Closer{gzipHandle, handle}}, nil
	}
	return handle, nil
}

/*
WriteFileAtomic streams content produced by fn into a temporary file next to path and
renames it over path once everything has been flushed. Destination is left untouched when
fn or any IO step fails.
*/
func WriteFileAtomic(path string, fn func(io.Writer) error) (size int64, err error) {
	if path == "" {
		return 0, errors.New("Missing file path")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()
	if err = fn(tmp); err != nil {
		return 0, err
	}
	if err = tmp.Sync(); err != nil {
		return 0, err
	}
	stat, err := tmp.Stat()
	if err != nil {
		return 0, err
	}
	if err = tmp.Close(); err != nil {
		return 0, err
	}
	if err = os.Chmod(tmp.Name(), 0644); err != nil {
		return 0, err
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("publish %s: %w", path, err)
	}
	return stat.Size(), nil
}
