package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// IDX magic numbers.
const (
	idxImagesMagic = 2051 // 0x00000803: unsigned bytes, 3 dimensions
	idxLabelsMagic = 2049 // 0x00000801: unsigned bytes, 1 dimension
)

// ErrInvalidIDX is returned for files that are not well-formed IDX data.
var ErrInvalidIDX = errors.New("invalid IDX file")

// IDXImages holds raw image data read from an IDX file.
type IDXImages struct {
	Count  int
	Rows   int
	Cols   int
	Pixels []byte // Count * Rows * Cols bytes, row-major
}

// ReadIDXImages reads an IDX image file.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes (28)
//	number of cols: 4 bytes (28)
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(r io.Reader) (*IDXImages, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", ErrInvalidIDX, err)
	}
	if header[0] != idxImagesMagic {
		return nil, fmt.Errorf("%w: magic number %d, want %d", ErrInvalidIDX, header[0], idxImagesMagic)
	}

	images := &IDXImages{
		Count: int(header[1]),
		Rows:  int(header[2]),
		Cols:  int(header[3]),
	}
	images.Pixels = make([]byte, images.Count*images.Rows*images.Cols)
	if _, err := io.ReadFull(r, images.Pixels); err != nil {
		return nil, fmt.Errorf("%w: failed to read %d images: %w", ErrInvalidIDX, images.Count, err)
	}
	return images, nil
}

// ReadIDXLabels reads an IDX label file.
//
// IDX file format for labels:
//
//	magic number: 0x00000801 (2049)
//	number of labels: 4 bytes
//	label data: unsigned bytes (0-9)
func ReadIDXLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", ErrInvalidIDX, err)
	}
	if header[0] != idxLabelsMagic {
		return nil, fmt.Errorf("%w: magic number %d, want %d", ErrInvalidIDX, header[0], idxLabelsMagic)
	}

	labels := make([]byte, header[1])
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("%w: failed to read %d labels: %w", ErrInvalidIDX, len(labels), err)
	}
	return labels, nil
}

// MNIST holds images normalized to [0, 1] and their labels.
type MNIST struct {
	Images []float32 // Count * Dim values
	Labels []byte
	Count  int
	Dim    int
}

// LoadMNIST loads the MNIST training or test split from dir.
//
// Expected files in dir (optionally gzip-compressed with a .gz suffix):
//   - train-images-idx3-ubyte, train-labels-idx1-ubyte
//   - t10k-images-idx3-ubyte, t10k-labels-idx1-ubyte
//
// The image and label files are read concurrently. maxSamples limits the
// number of examples kept (0 keeps all).
func LoadMNIST(dir string, train bool, maxSamples int) (*MNIST, error) {
	prefix := "t10k"
	if train {
		prefix = "train"
	}

	var (
		images *IDXImages
		labels []byte
		g      errgroup.Group
	)
	g.Go(func() error {
		var err error
		images, err = readFile(filepath.Join(dir, prefix+"-images-idx3-ubyte"), ReadIDXImages)
		if err != nil {
			return fmt.Errorf("failed to load images: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		labels, err = readFile(filepath.Join(dir, prefix+"-labels-idx1-ubyte"), ReadIDXLabels)
		if err != nil {
			return fmt.Errorf("failed to load labels: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if images.Count != len(labels) {
		return nil, fmt.Errorf("%w: image count (%d) != label count (%d)", ErrInvalidIDX, images.Count, len(labels))
	}

	count := images.Count
	if maxSamples > 0 && count > maxSamples {
		count = maxSamples
	}
	dim := images.Rows * images.Cols

	data := &MNIST{
		Images: Normalize(images.Pixels[:count*dim]),
		Labels: labels[:count],
		Count:  count,
		Dim:    dim,
	}
	return data, nil
}

// Normalize maps bytes 0-255 to [0, 1].
func Normalize(pixels []byte) []float32 {
	out := make([]float32, len(pixels))
	for i, p := range pixels {
		out[i] = float32(p) / 255
	}
	return out
}

// readFile opens path, or path+".gz" when path does not exist, and decodes
// it with read.
func readFile[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T

	//nolint:gosec // G304: dataset paths come from the user
	f, err := os.Open(path)
	compressed := false
	if errors.Is(err, os.ErrNotExist) {
		//nolint:gosec // G304: dataset paths come from the user
		f, err = os.Open(path + ".gz")
		compressed = true
	}
	if err != nil {
		return zero, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if compressed {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return zero, fmt.Errorf("%s.gz: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	return read(r)
}
