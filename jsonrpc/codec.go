package jsonrpc

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	headerContentLength = "content-length"

	// maxHeaderLine caps how much of a single header line is kept in memory.
	maxHeaderLine = 64 << 10
	// maxHeaderBlock caps a whole header block when a body limit is set.
	maxHeaderBlock = 64 << 10
)

// LineReader is the byte source the framer consumes: a delimited read over
// an internal buffer plus plain reads for the body. *bufio.Reader satisfies it.
type LineReader interface {
	io.Reader
	ReadSlice(delim byte) ([]byte, error)
}

// Header is one "Key: Value" line of a packet's header block.
type Header struct {
	Key   string
	Value string
}

// ParseHeader splits a header line on the first ": ". Both sides are trimmed.
func ParseHeader(line string) (Header, error) {
	key, value, ok := strings.Cut(line, ": ")
	if !ok {
		return Header{}, &PacketError{
			Reason: fmt.Sprintf("Malformed LSP header: '%s'", strings.TrimRight(line, "\r\n")),
		}
	}
	return Header{Key: strings.TrimSpace(key), Value: strings.TrimSpace(value)}, nil
}

// ReadPacket reads one Content-Length framed packet from r and returns its
// body as text. A limit greater than zero caps the accepted body size and
// the header block size.
//
// Errors matching ErrInvalidData affect this packet only. Any other error,
// including io.ErrUnexpectedEOF, means the stream is finished.
func ReadPacket(r LineReader, limit int64) (string, error) {
	size := int64(-1)
	var headerErr error
	var headerBytes int

	for {
		line, truncated, err := readLine(r, maxHeaderLine)
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			return "", fmt.Errorf("reading header: %w", err)
		}
		headerBytes += len(line)
		if limit > 0 && headerBytes > maxHeaderBlock && headerErr == nil {
			headerErr = &PacketError{Reason: fmt.Sprintf("Header block exceeds %d bytes", maxHeaderBlock)}
		}
		if truncated {
			if headerErr == nil {
				headerErr = &PacketError{Reason: fmt.Sprintf("Header line exceeds %d bytes", maxHeaderLine)}
			}
			continue
		}
		if line == "\r\n" {
			break
		}

		h, err := ParseHeader(line)
		if err != nil {
			// Keep scanning so the body can still be skipped.
			if headerErr == nil {
				headerErr = err
			}
			continue
		}
		if !strings.EqualFold(h.Key, headerContentLength) {
			continue
		}
		n, err := strconv.ParseUint(h.Value, 10, 63)
		if err != nil {
			size = -1
			if headerErr == nil {
				headerErr = &PacketError{Reason: "Value of Content-Length header is invalid number", Err: err}
			}
			continue
		}
		size = int64(n)
	}

	if headerErr != nil {
		if size >= 0 {
			if err := discard(r, size); err != nil {
				return "", err
			}
		}
		return "", headerErr
	}
	if size < 0 {
		return "", &PacketError{Reason: "Content-Length header is missing"}
	}
	if limit > 0 && size > limit {
		if err := discard(r, size); err != nil {
			return "", err
		}
		return "", &PacketError{Reason: fmt.Sprintf("Content-Length %d exceeds limit of %d bytes", size, limit)}
	}

	body := make([]byte, size)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("reading body: %w", err)
	}
	if !utf8.Valid(body) {
		return "", &PacketError{
			Reason: fmt.Sprintf("Content of a packet is not valid UTF-8 (first bad byte at offset %d)", invalidUTF8Offset(body)),
		}
	}
	return string(body), nil
}

// readLine reads through the next '\n'. At most keep bytes are kept; the rest
// of a longer line is consumed and dropped, and truncated is set.
func readLine(r LineReader, keep int) (line string, truncated bool, err error) {
	var buf []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if room := keep - len(buf); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		buf = append(buf, chunk...)
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil {
			return "", truncated, err
		}
		return string(buf), truncated, nil
	}
}

func discard(r io.Reader, n int64) error {
	if _, err := io.CopyN(io.Discard, r, n); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("skipping body: %w", err)
	}
	return nil
}

func invalidUTF8Offset(b []byte) int {
	for i := 0; i < len(b); {
		r, n := utf8.DecodeRune(b[i:])
		if r == utf8.RuneError && n <= 1 {
			return i
		}
		i += n
	}
	return -1
}

// WritePacket writes body to w as a single Content-Length framed packet.
func WritePacket(w io.Writer, body []byte) error {
	var buf bytes.Buffer
	buf.Grow(len(body) + 32)
	fmt.Fprintf(&buf, "Content-Length: %d\r\n\r\n", len(body))
	buf.Write(body)

	_, err := w.Write(buf.Bytes())
	return err
}

// Codec reads and writes Content-Length framed packets as specified by the
// LSP base protocol. It implements Transport.
type Codec struct {
	reader *bufio.Reader
	writer io.Writer
	wmu    sync.Mutex

	maxContentLength int64
}

// CodecOption configures a Codec.
type CodecOption func(*Codec)

// WithMaxContentLength rejects packets whose body is larger than n bytes.
// Zero means unlimited.
func WithMaxContentLength(n int64) CodecOption {
	return func(c *Codec) { c.maxContentLength = n }
}

// NewCodec creates a new Content-Length framed codec over the given streams.
func NewCodec(r io.Reader, w io.Writer, opts ...CodecOption) *Codec {
	c := &Codec{
		reader: bufio.NewReaderSize(r, 64*1024),
		writer: w,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ReceivePacket blocks until one complete packet has been read.
func (c *Codec) ReceivePacket() (string, error) {
	return ReadPacket(c.reader, c.maxContentLength)
}

// SendPacket frames packet and writes it to the peer.
func (c *Codec) SendPacket(packet []byte) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	return WritePacket(c.writer, packet)
}
