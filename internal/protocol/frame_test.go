package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/bft-labs/extauth/internal/domain"
)

func TestEncodeBoolReply(t *testing.T) {
	if got := EncodeBoolReply(true); !bytes.Equal(got, []byte{0x00, 0x02, 0x00, 0x01}) {
		t.Errorf("EncodeBoolReply(true) = %x, want 00020001", got)
	}
	if got := EncodeBoolReply(false); !bytes.Equal(got, []byte{0x00, 0x02, 0x00, 0x00}) {
		t.Errorf("EncodeBoolReply(false) = %x, want 00020000", got)
	}
}

func TestDecodeHeader(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		want    uint16
		wantErr error
	}{
		{"empty stream", nil, 0, domain.ErrStreamClosed},
		{"one byte", []byte{0x00}, 0, domain.ErrShortRead},
		{"zero length", []byte{0x00, 0x00}, 0, nil},
		{"big endian", []byte{0x01, 0x02}, 0x0102, nil},
		{"max length", []byte{0xff, 0xff}, 0xffff, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeHeader(bytes.NewReader(tt.input))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("DecodeHeader() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeHeader() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("DecodeHeader() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeHeader_ShortReadIsNotStreamClosed(t *testing.T) {
	_, err := DecodeHeader(bytes.NewReader([]byte{0x00}))
	if errors.Is(err, domain.ErrStreamClosed) {
		t.Fatalf("one-byte header reported as clean close: %v", err)
	}
}

type failingReader struct{ err error }

func (r failingReader) Read([]byte) (int, error) { return 0, r.err }

func TestDecodeHeader_ReaderError(t *testing.T) {
	boom := errors.New("boom")
	_, err := DecodeHeader(failingReader{err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("DecodeHeader() error = %v, want wrapped boom", err)
	}
	if errors.Is(err, domain.ErrStreamClosed) || errors.Is(err, domain.ErrShortRead) {
		t.Fatalf("reader failure misclassified: %v", err)
	}
}

func TestDecodePayload(t *testing.T) {
	got, err := DecodePayload(bytes.NewReader([]byte("isuser:bob:local")), 16)
	if err != nil {
		t.Fatalf("DecodePayload() error: %v", err)
	}
	if string(got) != "isuser:bob:local" {
		t.Errorf("DecodePayload() = %q", got)
	}

	empty, err := DecodePayload(bytes.NewReader(nil), 0)
	if err != nil || len(empty) != 0 {
		t.Errorf("DecodePayload(0) = %q, %v; want empty, nil", empty, err)
	}
}

func TestDecodePayload_ShortRead(t *testing.T) {
	for _, input := range [][]byte{nil, []byte("auth:al")} {
		_, err := DecodePayload(bytes.NewReader(input), 20)
		if !errors.Is(err, domain.ErrShortRead) {
			t.Errorf("DecodePayload(%q, 20) error = %v, want ErrShortRead", input, err)
		}
	}
}

func TestReadFrame_Sequence(t *testing.T) {
	var in bytes.Buffer
	in.Write([]byte{0x00, 0x14})
	in.WriteString("auth:alice:local:pw1")
	in.Write([]byte{0x00, 0x06})
	in.WriteString("foo:x:y")

	r := bufio.NewReader(&in)

	f1, err := ReadFrame(r, nil)
	if err != nil {
		t.Fatalf("first frame: %v", err)
	}
	if f1.Length != 20 || string(f1.Payload) != "auth:alice:local:pw1" {
		t.Errorf("first frame = %+v", f1)
	}

	// declared 6 bytes of "foo:x:y": the trailing "y" starts the next header
	f2, err := ReadFrame(r, nil)
	if err != nil {
		t.Fatalf("second frame: %v", err)
	}
	if string(f2.Payload) != "foo:x:" {
		t.Errorf("second payload = %q, want foo:x:", f2.Payload)
	}

	if _, err := ReadFrame(r, nil); !errors.Is(err, domain.ErrShortRead) {
		t.Errorf("third frame error = %v, want ErrShortRead", err)
	}
}

func TestReadFrame_CleanEOF(t *testing.T) {
	_, err := ReadFrame(bytes.NewReader(nil), nil)
	if !errors.Is(err, domain.ErrStreamClosed) {
		t.Fatalf("ReadFrame() error = %v, want ErrStreamClosed", err)
	}
}

func TestReadFrame_StartedAfterFirstByte(t *testing.T) {
	pr, pw := io.Pipe()
	started := make(chan struct{})
	done := make(chan domain.Frame, 1)

	go func() {
		f, err := ReadFrame(pr, func() { close(started) })
		if err != nil {
			t.Errorf("ReadFrame() error: %v", err)
		}
		done <- f
	}()

	select {
	case <-started:
		t.Fatal("started before any byte arrived")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := pw.Write([]byte{0x00}); err != nil {
		t.Fatalf("write: %v", err)
	}
	select {
	case <-started:
	case <-time.After(time.Second):
		t.Fatal("started not called after the first header byte")
	}

	if _, err := pw.Write(append([]byte{0x03}, "a:b"...)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if f := <-done; string(f.Payload) != "a:b" {
		t.Errorf("payload = %q, want a:b", f.Payload)
	}
}

func TestReadFrame_NotStartedOnCleanEOF(t *testing.T) {
	called := false
	_, err := ReadFrame(bytes.NewReader(nil), func() { called = true })
	if !errors.Is(err, domain.ErrStreamClosed) {
		t.Fatalf("ReadFrame() error = %v, want ErrStreamClosed", err)
	}
	if called {
		t.Error("started called without a frame")
	}
}

func TestWriteReply_Flushes(t *testing.T) {
	var out bytes.Buffer
	w := bufio.NewWriter(&out)

	if err := WriteReply(w, true); err != nil {
		t.Fatalf("WriteReply() error: %v", err)
	}
	if w.Buffered() != 0 {
		t.Errorf("reply left buffered: %d bytes", w.Buffered())
	}
	if !bytes.Equal(out.Bytes(), []byte{0x00, 0x02, 0x00, 0x01}) {
		t.Errorf("output = %x", out.Bytes())
	}
}

type errWriter struct{}

func (errWriter) Write([]byte) (int, error) { return 0, io.ErrClosedPipe }

func TestWriteReply_Error(t *testing.T) {
	if err := WriteReply(errWriter{}, false); !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("WriteReply() error = %v, want ErrClosedPipe", err)
	}
}
