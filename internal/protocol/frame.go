package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/bft-labs/extauth/internal/domain"
)

const (
	// HeaderLen is the size of the request length prefix.
	HeaderLen = 2

	// ReplyLen is the size of every reply frame.
	ReplyLen = 4

	// replyPayloadLen is the constant length field of a reply.
	replyPayloadLen uint16 = 2
)

// DecodeHeader reads the 2-byte big-endian length prefix.
// A clean EOF before the first byte yields domain.ErrStreamClosed; an EOF
// after one byte yields domain.ErrShortRead.
func DecodeHeader(r io.Reader) (uint16, error) {
	return decodeHeader(r, nil)
}

// decodeHeader calls started, when not nil, once the first header byte has
// been received.
func decodeHeader(r io.Reader, started func()) (uint16, error) {
	var hdr [HeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:1]); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, domain.ErrStreamClosed
		}
		return 0, fmt.Errorf("read header: %w", err)
	}
	if started != nil {
		started()
	}
	if _, err := io.ReadFull(r, hdr[1:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return 0, fmt.Errorf("%w: header got 1 of %d bytes", domain.ErrShortRead, HeaderLen)
		}
		return 0, fmt.Errorf("read header: %w", err)
	}
	return binary.BigEndian.Uint16(hdr[:]), nil
}

// DecodePayload reads exactly length bytes.
func DecodePayload(r io.Reader, length uint16) ([]byte, error) {
	payload := make([]byte, length)
	if length == 0 {
		return payload, nil
	}
	n, err := io.ReadFull(r, payload)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, fmt.Errorf("%w: payload got %d of %d bytes", domain.ErrShortRead, n, length)
		}
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

// ReadFrame reads one complete request frame. started, when not nil, is
// called as soon as the first byte of the frame has arrived, so callers can
// tell a frame is in flight while the rest is still being read.
func ReadFrame(r io.Reader, started func()) (domain.Frame, error) {
	length, err := decodeHeader(r, started)
	if err != nil {
		return domain.Frame{}, err
	}
	payload, err := DecodePayload(r, length)
	if err != nil {
		return domain.Frame{}, err
	}
	return domain.Frame{Length: length, Payload: payload}, nil
}

// EncodeBoolReply returns the 4-byte reply frame for success.
func EncodeBoolReply(success bool) []byte {
	buf := make([]byte, ReplyLen)
	binary.BigEndian.PutUint16(buf[0:2], replyPayloadLen)
	if success {
		binary.BigEndian.PutUint16(buf[2:4], 1)
	}
	return buf
}

// flusher is satisfied by *bufio.Writer.
type flusher interface {
	Flush() error
}

// WriteReply writes one reply frame and flushes w when it buffers.
// The host blocks on this reply, so it must not stay in a buffer.
func WriteReply(w io.Writer, success bool) error {
	if _, err := w.Write(EncodeBoolReply(success)); err != nil {
		return fmt.Errorf("write reply: %w", err)
	}
	if f, ok := w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return fmt.Errorf("flush reply: %w", err)
		}
	}
	return nil
}
