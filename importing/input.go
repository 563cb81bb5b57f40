package importing

import (
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// compressedFile closes the decompressing reader and the underlying file.
type compressedFile struct {
	io.Reader
	closeReader func()
	file        *os.File
}

func (c *compressedFile) Close() error {
	c.closeReader()
	return c.file.Close()
}

var compressionExtensions = []string{".gz", ".zst"}

// contentNameOf returns the file name without compression suffix, e.g. "data.osm" for "data.osm.gz". This name
// determines the format of the content.
func contentNameOf(filename string) string {
	extension := filepath.Ext(filename)
	if slices.Contains(compressionExtensions, strings.ToLower(extension)) {
		return strings.TrimSuffix(filename, extension)
	}
	return filename
}

// openInput opens the file and decompresses ".gz" and ".zst" files on the fly.
func openInput(filename string) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to open input file %s", filename)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gz":
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, errors.Wrapf(err, "Unable to read gzip header of %s", filename)
		}
		return &compressedFile{
			Reader:      gzipReader,
			closeReader: func() { gzipReader.Close() },
			file:        file,
		}, nil
	case ".zst":
		zstdReader, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, errors.Wrapf(err, "Unable to read zstd data of %s", filename)
		}
		return &compressedFile{
			Reader:      zstdReader,
			closeReader: zstdReader.Close,
			file:        file,
		}, nil
	}

	return file, nil
}
