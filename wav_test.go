package mix

import (
	"encoding/binary"
	"os"
	"testing"
)

func TestWAVWriter(t *testing.T) {
	const (
		rate   = 44100
		length = 100
	)

	file, err := os.CreateTemp("", "")
	if err != nil {
		t.Fatal("can't open temp file:", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	w := NewWAVWriter(file, rate)
	silence := []Buffer{NewBuffer(length), NewBuffer(length)}
	if err := w.Write(silence); err != nil {
		t.Fatal("error while writing silent block:", err)
	}

	expectDataSize := uint32(length * blockAlign)
	expectRiffSize := uint32(riffHeaderSize + expectDataSize)
	expectLen := int(expectRiffSize + 8)

	data, err := os.ReadFile(file.Name())
	if err != nil {
		t.Fatal("can't read temp file")
	}
	if len(data) != expectLen {
		t.Errorf("invalid output length. Expected: %v, got: %v", expectLen, len(data))
	}

	actualRiffSize := binary.LittleEndian.Uint32(data[riffSizeOff : riffSizeOff+4])
	if actualRiffSize != expectRiffSize {
		t.Errorf("invalid RIFF size. Expected: %v, got: %v",
			expectRiffSize, actualRiffSize)
	}

	actualDataSize := binary.LittleEndian.Uint32(data[dataSizeOff : dataSizeOff+4])
	if actualDataSize != expectDataSize {
		t.Errorf("invalid data size. Expected: %v, got: %v",
			expectDataSize, actualDataSize)
	}

	for _, b := range data[riffHeaderSize+8:] {
		if b != 0 {
			t.Error("silent data is not zero")
			break
		}
	}
}

func TestWAVWriterGrows(t *testing.T) {
	const rate = 44100

	file, err := os.CreateTemp("", "")
	if err != nil {
		t.Fatal("can't open temp file:", err)
	}
	defer os.Remove(file.Name())
	defer file.Close()

	w := NewWAVWriter(file, rate)
	for i := 0; i < 3; i++ {
		if err := w.Write([]Buffer{NewBuffer(50), NewBuffer(50)}); err != nil {
			t.Fatal("error while writing block:", err)
		}
	}

	data, err := os.ReadFile(file.Name())
	if err != nil {
		t.Fatal("can't read temp file")
	}
	actualDataSize := binary.LittleEndian.Uint32(data[dataSizeOff : dataSizeOff+4])
	if expect := uint32(150 * blockAlign); actualDataSize != expect {
		t.Errorf("header not updated across blocks. Expected: %v, got: %v",
			expect, actualDataSize)
	}
}
