package serialization

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/born-ml/born-vae/internal/tensor"
)

func testStateDict(t *testing.T) map[string]*tensor.Tensor {
	t.Helper()
	w, err := tensor.FromSlice([]float32{0.5, -1.25, 3, 0.125, 7, -2}, tensor.Shape{2, 3, 1})
	if err != nil {
		t.Fatal(err)
	}
	return map[string]*tensor.Tensor{
		"encoder.w1":        w,
		"encoder.b1":        tensor.Full(tensor.Shape{2, 1, 1}, 0.25),
		"optimizer.m.w1":    tensor.Zeros(tensor.Shape{2, 3, 1}),
		"optimizer.t":       tensor.Scalar(12),
		"decoder.b_out.bin": tensor.Ones(tensor.Shape{1, 1, 1}),
	}
}

func writeFile(t *testing.T, path string, stateDict map[string]*tensor.Tensor, header Header, opts WriteOptions) {
	t.Helper()
	w, err := Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := w.WriteStateDict(stateDict, header, opts); err != nil {
		t.Fatalf("WriteStateDict: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

func tensorValues(m map[string]*tensor.Tensor) map[string][]float32 {
	out := make(map[string][]float32, len(m))
	for k, v := range m {
		out[k] = v.Data()
	}
	return out
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	want := testStateDict(t)

	header := Header{
		Producer:  "test",
		ModelType: "VAE",
		RunID:     "run-1",
		Metadata:  map[string]string{"hidden_dim": "3"},
		CheckpointMeta: &CheckpointMeta{
			Step:          41,
			Loss:          12.5,
			OptimizerType: "Adam",
		},
	}
	writeFile(t, path, want, header, WriteOptions{})

	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := r.ReadStateDict()
	if err != nil {
		t.Fatalf("ReadStateDict: %v", err)
	}
	if diff := cmp.Diff(tensorValues(want), tensorValues(got)); diff != "" {
		t.Errorf("state dict mismatch (-want +got):\n%s", diff)
	}
	if !got["encoder.w1"].Shape().Equal(tensor.Shape{2, 3, 1}) {
		t.Errorf("shape = %v", got["encoder.w1"].Shape())
	}
	if got["optimizer.t"].Item() != 12 {
		t.Errorf("scalar = %v", got["optimizer.t"].Item())
	}

	h := r.Header()
	if h.CheckpointMeta == nil || h.CheckpointMeta.Step != 41 {
		t.Fatalf("checkpoint meta = %+v", h.CheckpointMeta)
	}
	if h.RunID != "run-1" || h.Metadata["hidden_dim"] != "3" {
		t.Errorf("header = %+v", h)
	}
	if r.Flags()&FlagHasOptimizer == 0 || r.Flags()&FlagHasMetadata == 0 {
		t.Errorf("flags = %b", r.Flags())
	}
}

func TestTensorsAreSortedAndAligned(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, testStateDict(t), Header{}, WriteOptions{}); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	headerSize := int64(binary.LittleEndian.Uint64(raw[16:24]))
	var h Header
	if err := json.Unmarshal(raw[FixedHeaderSize:FixedHeaderSize+headerSize], &h); err != nil {
		t.Fatal(err)
	}

	var names []string
	for _, meta := range h.Tensors {
		names = append(names, meta.Name)
	}
	want := []string{"decoder.b_out.bin", "encoder.b1", "encoder.w1", "optimizer.m.w1", "optimizer.t"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("tensor order (-want +got):\n%s", diff)
	}

	dataOffset := alignedDataOffset(headerSize)
	if dataOffset%HeaderAlignment != 0 {
		t.Errorf("data offset %d not aligned", dataOffset)
	}
	dataSize := int64(binary.LittleEndian.Uint64(raw[24:32]))
	if int64(len(raw)) != dataOffset+dataSize {
		t.Errorf("file size %d, want %d", len(raw), dataOffset+dataSize)
	}
}

func TestHalfPrecision(t *testing.T) {
	var buf bytes.Buffer
	want := testStateDict(t)
	if err := WriteTo(&buf, want, Header{}, WriteOptions{Half: true}); err != nil {
		t.Fatal(err)
	}

	got, h, err := ReadFrom(&buf)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	for _, meta := range h.Tensors {
		if meta.DType != DTypeFloat16 {
			t.Errorf("%s dtype = %s", meta.Name, meta.DType)
		}
	}
	// Every test value is exactly representable in half precision.
	if diff := cmp.Diff(tensorValues(want), tensorValues(got)); diff != "" {
		t.Errorf("half round trip (-want +got):\n%s", diff)
	}
}

func TestChecksumMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	writeFile(t, path, testStateDict(t), Header{}, WriteOptions{})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	data[len(data)-1] ^= 0xFF
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(path); !errors.Is(err, ErrChecksumMismatch) {
		t.Fatalf("Open error = %v, want ErrChecksumMismatch", err)
	}

	r, err := OpenWithOptions(path, ReaderOptions{SkipChecksumValidation: true})
	if err != nil {
		t.Fatalf("Open without checksum: %v", err)
	}
	_ = r.Close()
}

func TestInvalidMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.ckpt")
	if err := os.WriteFile(path, bytes.Repeat([]byte("NOPE"), 32), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("error = %v, want ErrInvalidMagic", err)
	}

	if err := os.WriteFile(path, []byte("BV"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrInvalidMagic) {
		t.Fatalf("short file error = %v, want ErrInvalidMagic", err)
	}
}

func TestUnsupportedVersion(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteTo(&buf, testStateDict(t), Header{}, WriteOptions{}); err != nil {
		t.Fatal(err)
	}
	raw := buf.Bytes()
	binary.LittleEndian.PutUint32(raw[4:8], 99)

	if _, _, err := ReadFrom(bytes.NewReader(raw)); !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	writeFile(t, path, testStateDict(t), Header{}, WriteOptions{})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data[:len(data)-8], 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(path); !errors.Is(err, ErrTruncated) {
		t.Fatalf("error = %v, want ErrTruncated", err)
	}
}

func TestAbortLeavesNoFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.ckpt")

	w, err := Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Abort(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("directory not empty after abort: %v", entries)
	}
}

func TestOverwriteReplacesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.ckpt")
	first := map[string]*tensor.Tensor{"w": tensor.Full(tensor.Shape{2}, 1)}
	second := map[string]*tensor.Tensor{"w": tensor.Full(tensor.Shape{2}, 2)}

	writeFile(t, path, first, Header{}, WriteOptions{})
	writeFile(t, path, second, Header{}, WriteOptions{})

	r, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	w, err := r.ReadTensor("w")
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]float32{2, 2}, w.Data()); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if _, err := r.ReadTensor("missing"); !errors.Is(err, ErrTensorNotFound) {
		t.Errorf("missing tensor error = %v", err)
	}
}

func TestValidateTensorName(t *testing.T) {
	tests := []struct {
		name    string
		wantErr bool
	}{
		{"encoder.w1", false},
		{"optimizer.m.decoder.b_out", false},
		{"", true},
		{"../etc/passwd", true},
		{"a/b", true},
		{"a\\b", true},
		{"bad\x00name", true},
		{string(bytes.Repeat([]byte("x"), MaxTensorNameLen+1)), true},
	}
	for _, tt := range tests {
		err := ValidateTensorName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateTensorName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidTensorName) {
			t.Errorf("error %v does not unwrap to ErrInvalidTensorName", err)
		}
	}
}

func TestValidateTensorOffsets(t *testing.T) {
	overlap := []TensorMeta{
		{Name: "a", Offset: 0, Size: 8},
		{Name: "b", Offset: 4, Size: 8},
	}
	if err := ValidateTensorOffsets(overlap, 16); !errors.Is(err, ErrOffsetOverlap) {
		t.Errorf("overlap error = %v", err)
	}

	outside := []TensorMeta{{Name: "a", Offset: 8, Size: 16}}
	if err := ValidateTensorOffsets(outside, 16); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("out of bounds error = %v", err)
	}

	ok := []TensorMeta{{Name: "a", Offset: 0, Size: 8}, {Name: "b", Offset: 8, Size: 8}}
	if err := ValidateTensorOffsets(ok, 16); err != nil {
		t.Errorf("valid offsets rejected: %v", err)
	}
}

func TestValidateHeaderSizeMismatch(t *testing.T) {
	h := &Header{Tensors: []TensorMeta{{Name: "w", DType: DTypeFloat32, Shape: []int{2, 2}, Size: 12}}}
	if err := ValidateHeader(h, 16, ValidationNormal); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("size mismatch error = %v", err)
	}

	h.Tensors[0].DType = "int8"
	if err := ValidateHeader(h, 16, ValidationNormal); !errors.Is(err, ErrUnsupportedDType) {
		t.Errorf("dtype error = %v", err)
	}

	if err := ValidateHeader(h, 16, ValidationNone); err != nil {
		t.Errorf("ValidationNone returned %v", err)
	}
}

func TestSafeTensorsLayout(t *testing.T) {
	var buf bytes.Buffer
	stateDict := map[string]*tensor.Tensor{
		"b": tensor.Ones(tensor.Shape{2}),
		"a": tensor.Zeros(tensor.Shape{1, 3}),
	}
	if err := EncodeSafeTensors(&buf, stateDict, map[string]string{"format": "pt"}, WriteOptions{Half: true}); err != nil {
		t.Fatal(err)
	}

	raw := buf.Bytes()
	n := binary.LittleEndian.Uint64(raw[:8])
	var header map[string]json.RawMessage
	if err := json.Unmarshal(raw[8:8+n], &header); err != nil {
		t.Fatal(err)
	}

	var a, b SafeTensorHeader
	if err := json.Unmarshal(header["a"], &a); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(header["b"], &b); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(SafeTensorHeader{DType: "F16", Shape: []int64{1, 3}, DataOffsets: [2]int64{0, 6}}, a); diff != "" {
		t.Errorf("a (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(SafeTensorHeader{DType: "F16", Shape: []int64{2}, DataOffsets: [2]int64{6, 10}}, b); diff != "" {
		t.Errorf("b (-want +got):\n%s", diff)
	}
	if got := uint64(len(raw)) - 8 - n; got != 10 {
		t.Errorf("data bytes = %d, want 10", got)
	}
	if _, ok := header["__metadata__"]; !ok {
		t.Error("metadata missing")
	}
}

func TestChecksumHelpers(t *testing.T) {
	data := []byte("test data")
	if ComputeChecksum(data) != ComputeChecksum(data) {
		t.Error("checksum not deterministic")
	}

	got, err := ComputeChecksumReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if got != ComputeChecksum(data) {
		t.Error("reader checksum differs from direct checksum")
	}

	if _, err := ComputeChecksumReader(bytes.NewReader(data), 100); err == nil {
		t.Error("expected error for short reader")
	}
	if err := ValidateChecksum([32]byte{1}, [32]byte{2}); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("ValidateChecksum = %v", err)
	}
}
