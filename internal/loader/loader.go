// Package loader provides the sources a game image can be obtained
// from: files on disk (optionally compressed or archived), byte
// slices and HTTP URLs.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/bodgit/sevenzip"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zstd"
	"github.com/thelolagemann/gbcore/internal/types"
	"github.com/ulikunitz/xz"
)

var (
	// ErrEmptyImage is returned when a source yields no bytes.
	ErrEmptyImage = errors.New("loader: empty image")
	// ErrUnsupportedArchive is returned for archives that cannot be
	// read, or that do not contain any file.
	ErrUnsupportedArchive = errors.New("loader: unsupported archive")
	// ErrTooLarge is returned when an image decompresses, or downloads,
	// to more bytes than the source allows.
	ErrTooLarge = errors.New("loader: image too large")
)

// Source is anything a game image can be loaded from.
type Source interface {
	// Load returns the image bytes.
	Load() ([]byte, error)
	// String describes the source in log messages and errors.
	String() string
}

// FileSource loads an image from disk, decompressing it according to
// its extension.
type FileSource struct {
	Path string
}

// NewFileSource returns a new FileSource for path.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Load implements Source.
func (f *FileSource) Load() ([]byte, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	return Decompress(f.Path, data)
}

func (f *FileSource) String() string {
	return f.Path
}

// BytesSource serves an image that is already in memory.
type BytesSource struct {
	Name string
	Data []byte
}

// NewBytesSource returns a new BytesSource. The image is decompressed
// according to the extension of name, if it has one.
func NewBytesSource(name string, data []byte) *BytesSource {
	return &BytesSource{Name: name, Data: data}
}

// Load implements Source.
func (b *BytesSource) Load() ([]byte, error) {
	return Decompress(b.Name, b.Data)
}

func (b *BytesSource) String() string {
	if b.Name == "" {
		return fmt.Sprintf("%d bytes", len(b.Data))
	}
	return b.Name
}

// unsupported are archive formats that are recognised but not read.
var unsupported = map[string]bool{
	".rar": true,
	".tar": true,
	".tgz": true,
}

// Decompress returns the image held in data, using the extension of
// name to determine the compression or archive format. Data with an
// unknown extension is returned as is. Archives yield their first file.
func Decompress(name string, data []byte) ([]byte, error) {
	var (
		out []byte
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".gz":
		out, err = readStream(gzip.NewReader(bytes.NewReader(data)))
	case ".xz":
		out, err = readStream(xz.NewReader(bytes.NewReader(data)))
	case ".br":
		out, err = readStream(brotli.NewReader(bytes.NewReader(data)), nil)
	case ".zst":
		out, err = decodeZstd(data)
	case ".zip":
		out, err = firstFile(zipFiles(data))
	case ".7z":
		out, err = firstFile(sevenzipFiles(data))
	default:
		if unsupported[ext] {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedArchive, ext)
		}
		out = data
	}
	if err != nil {
		return nil, fmt.Errorf("loader: decompressing %s: %w", name, err)
	}
	if len(out) == 0 {
		return nil, ErrEmptyImage
	}
	return out, nil
}

// readStream reads a decompressing reader to the end, failing once it
// yields more than a game image can hold.
func readStream(r io.Reader, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	return readLimited(r, types.ROMLimit)
}

// readLimited reads r to the end, or returns ErrTooLarge once more than
// limit bytes have been read.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, limit)
	}
	return data, nil
}

func decodeZstd(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return readStream(dec, nil)
}

// archiveFile is a single entry of an archive.
type archiveFile interface {
	FileInfo() fs.FileInfo
	Open() (io.ReadCloser, error)
}

func zipFiles(data []byte) ([]archiveFile, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedArchive, err)
	}
	files := make([]archiveFile, len(r.File))
	for i, f := range r.File {
		files[i] = f
	}
	return files, nil
}

func sevenzipFiles(data []byte) ([]archiveFile, error) {
	r, err := sevenzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedArchive, err)
	}
	files := make([]archiveFile, len(r.File))
	for i, f := range r.File {
		files[i] = f
	}
	return files, nil
}

// firstFile reads the first regular file of an archive.
func firstFile(files []archiveFile, err error) ([]byte, error) {
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return readStream(rc, nil)
	}
	return nil, fmt.Errorf("%w: no file in archive", ErrUnsupportedArchive)
}
