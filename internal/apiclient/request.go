package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// Request describes a single call. It is built per call and never stored.
type Request struct {
	Method string
	// Path is relative to the client's base URL, e.g. "/products"
	Path  string
	Query Query
	// Body is JSON encoded unless it is a *Multipart, []byte or io.Reader, which are sent as is
	Body any
	// Header values override the client defaults
	Header http.Header
	// Timeout overrides the client timeout for this call when > 0
	Timeout time.Duration
}

// Query is a flat set of query parameters. Values are string, bool, integer or float.
type Query map[string]any

// Encode returns the url-encoded query string (without the leading '?'). Nil values are skipped.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range q {
		if v == nil {
			continue
		}
		values.Set(k, formatQueryValue(v))
	}
	return values.Encode()
}

func formatQueryValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// endpoint returns the path with its encoded query appended
func (r Request) endpoint() string {
	if qs := r.Query.Encode(); qs != "" {
		return r.Path + "?" + qs
	}
	return r.Path
}

// Multipart is a multipart/form-data payload, used for file uploads.
// It is sent with its own boundary-bearing content type, never application/json.
type Multipart struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writer *multipart.Writer
	closed bool
}

func NewMultipart() *Multipart {
	m := &Multipart{}
	m.writer = multipart.NewWriter(&m.buf)
	return m
}

var errMultipartSent = errors.New("multipart payload already sent")

// AddField adds a plain form field
func (m *Multipart) AddField(name, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMultipartSent
	}
	return m.writer.WriteField(name, value)
}

// AddFile adds a file part read from r
func (m *Multipart) AddFile(field, filename string, r io.Reader) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return errMultipartSent
	}
	part, err := m.writer.CreateFormFile(field, filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copying %s: %w", filename, err)
	}
	return nil
}

// ContentType returns the multipart content type including the boundary
func (m *Multipart) ContentType() string {
	return m.writer.FormDataContentType()
}

// reader closes the payload on first use. Every call gets its own reader over the finished buffer,
// so one payload can be sent several times, concurrently included.
func (m *Multipart) reader() (io.Reader, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		if err := m.writer.Close(); err != nil {
			return nil, err
		}
		m.closed = true
	}
	return bytes.NewReader(m.buf.Bytes()), nil
}

// bodyKind records how a body was encoded; the content type header depends on it
type bodyKind int

const (
	bodyNone bodyKind = iota
	bodyJSON
	bodyMultipart
	bodyRaw
)

func encodeBody(body any) (io.Reader, bodyKind, error) {
	switch b := body.(type) {
	case nil:
		return nil, bodyNone, nil
	case *Multipart:
		r, err := b.reader()
		if err != nil {
			return nil, bodyMultipart, fmt.Errorf("closing multipart payload: %w", err)
		}
		return r, bodyMultipart, nil
	case []byte:
		return bytes.NewReader(b), bodyRaw, nil
	case io.Reader:
		return b, bodyRaw, nil
	default:
		dat, err := json.Marshal(b)
		if err != nil {
			return nil, bodyJSON, fmt.Errorf("marshaling request body: %w", err)
		}
		return bytes.NewReader(dat), bodyJSON, nil
	}
}
