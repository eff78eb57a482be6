package datasource

import (
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pierrec/lz4"
	"github.com/pkg/errors"
)

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var first error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open открывает файл данных. Архивы .gz, .lz4 и .zip распаковываются на лету,
// исходный файл не трогаем. Второе значение имя файла внутри архива.
func Open(path string) (io.ReadCloser, string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return openZip(path)
	case ".gz":
		return openGzip(path)
	case ".lz4":
		return openLZ4(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, filepath.Base(path), nil
}

func openZip(path string) (io.ReadCloser, string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, "", errors.Wrapf(err, "open zip %s", path)
	}

	// Берём самый большой файл архива
	var largestFile *zip.File
	var largestSize uint64
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if largestFile == nil || f.UncompressedSize64 > largestSize {
			largestFile = f
			largestSize = f.UncompressedSize64
		}
	}
	if largestFile == nil {
		r.Close()
		return nil, "", errors.Errorf("zip %s: no files inside", path)
	}
	rc, err := largestFile.Open()
	if err != nil {
		r.Close()
		return nil, "", errors.Wrapf(err, "open %s in %s", largestFile.Name, path)
	}
	return &multiCloser{Reader: rc, closers: []io.Closer{r, rc}}, filepath.Base(largestFile.Name), nil
}

func openGzip(path string) (io.ReadCloser, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	gr, err := gzip.NewReader(file)
	if err != nil {
		file.Close()
		return nil, "", errors.Wrapf(err, "gzip %s", path)
	}
	return &multiCloser{Reader: gr, closers: []io.Closer{file, gr}}, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), nil
}

func openLZ4(path string) (io.ReadCloser, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return &multiCloser{Reader: lz4.NewReader(file), closers: []io.Closer{file}}, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)), nil
}
