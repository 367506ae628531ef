package audio

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestFileRecorder_ReadsAudioFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "utterance.wav")
	if err := os.WriteFile(path, []byte("fake-wav-bytes"), 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	rec := NewFileRecorder(path)
	data, err := rec.Record(context.Background())
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if string(data) != "fake-wav-bytes" {
		t.Errorf("data: %q", data)
	}
}

func TestFileRecorder_RejectsUnknownFormat(t *testing.T) {
	rec := NewFileRecorder("notes.txt")
	if _, err := rec.Record(context.Background()); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestFileRecorder_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.wav")
	if err := os.WriteFile(path, nil, 0o600); err != nil {
		t.Fatalf("writing file: %v", err)
	}

	rec := NewFileRecorder(path)
	if _, err := rec.Record(context.Background()); err == nil {
		t.Fatal("expected error for empty file")
	}
}

func TestSamplesToWav_Header(t *testing.T) {
	samples := []int16{0, 100, -100, 32767}
	wav, err := samplesToWav(samples, 16000)
	if err != nil {
		t.Fatalf("samplesToWav: %v", err)
	}

	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("missing RIFF/WAVE markers: % x", wav[:12])
	}

	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	if sampleRate != 16000 {
		t.Errorf("sample rate: got %d", sampleRate)
	}

	dataSize := binary.LittleEndian.Uint32(wav[40:44])
	if int(dataSize) != len(samples)*2 {
		t.Errorf("data size: got %d, want %d", dataSize, len(samples)*2)
	}
	if len(wav) != 44+len(samples)*2 {
		t.Errorf("total size: got %d", len(wav))
	}
}
