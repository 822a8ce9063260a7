package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
	"github.com/Akrog/gcs-client/pkg/retry"
	"github.com/Akrog/gcs-client/pkg/session"
)

// Reader streams an object's content with buffered ranged reads. It
// implements io.ReadSeekCloser. The retry policy in effect on the object when
// the reader was opened governs every data request; the context passed to
// NewReader governs them too.
type Reader struct {
	ctx          context.Context
	t            session.Transport
	policy       *retry.Policy
	buf          bytes.Buffer
	objectPath   string
	generation   string
	size         int64
	offset       int64
	remoteOffset int64
	chunkSize    int
	eof          bool
	closed       bool
}

func newReader(ctx context.Context, o *Object) (*Reader, error) {
	r := &Reader{
		ctx:        ctx,
		t:          o.t,
		policy:     o.effectivePolicy(),
		objectPath: o.path(),
		generation: o.generationParam(),
		chunkSize:  o.chunkSize,
	}
	if r.chunkSize <= 0 {
		r.chunkSize = session.DefaultChunkSize
	}

	// Confirm the object exists and learn its size before the first read.
	var attrs ObjectAttrs
	err := retry.Do(ctx, r.policy, func() error {
		resp, err := r.t.Do(ctx, &session.Request{
			Path: r.objectPath,
			Params: url.Values{
				"fields":     {"size"},
				"generation": {r.generation},
			},
		})
		if err != nil {
			return err
		}
		return resp.JSON(&attrs)
	})
	if err != nil {
		return nil, fmt.Errorf("opening object for read: %w", err)
	}

	r.size = int64(attrs.Size)
	return r, nil
}

// Size returns the object's total size in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Read reads up to len(p) bytes, issuing ranged requests to the storage
// service as the buffer drains. It returns io.EOF at the end of the object.
func (r *Reader) Read(p []byte) (int, error) {
	if r.closed {
		return 0, gcserrors.ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}

	for r.buf.Len() == 0 && !r.eof {
		if err := r.fetchChunk(); err != nil {
			return 0, err
		}
	}

	if r.buf.Len() == 0 {
		return 0, io.EOF
	}

	n, _ := r.buf.Read(p)
	r.offset += int64(n)
	return n, nil
}

// Seek sets the position of the next Read. Seeking discards the buffered
// data.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if r.closed {
		return 0, gcserrors.ErrClosed
	}

	var position int64
	switch whence {
	case io.SeekStart:
		position = offset
	case io.SeekCurrent:
		position = r.offset + offset
	case io.SeekEnd:
		position = r.size + offset
	default:
		return 0, fmt.Errorf("invalid seek whence %d", whence)
	}

	position = min(position, r.size)
	position = max(position, 0)

	r.offset = position
	r.remoteOffset = position
	r.buf.Reset()
	r.eof = position >= r.size
	return position, nil
}

// Close releases the reader. Calling Close more than once is allowed.
func (r *Reader) Close() error {
	r.closed = true
	r.buf.Reset()
	return nil
}

// fetchChunk requests the next chunk-sized byte range and appends it to the
// buffer.
func (r *Reader) fetchChunk() error {
	begin := r.remoteOffset
	end := begin + int64(r.chunkSize) - 1

	var resp *session.Response
	err := retry.Do(r.ctx, r.policy, func() error {
		var err error
		resp, err = r.t.Do(r.ctx, &session.Request{
			Path:   r.objectPath,
			Params: url.Values{"alt": {"media"}, "generation": {r.generation}},
			Header: http.Header{"Range": {fmt.Sprintf("bytes=%d-%d", begin, end)}},
			OK: []int{
				http.StatusOK,
				http.StatusPartialContent,
				http.StatusRequestedRangeNotSatisfiable,
			},
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("reading object range %d-%d: %w", begin, end, err)
	}

	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		r.eof = true
		return nil
	}

	data := resp.Body
	r.remoteOffset += int64(len(data))
	r.buf.Write(data)

	if total, ok := contentRangeTotal(resp.Header.Get("Content-Range")); ok {
		r.size = total
		r.eof = r.remoteOffset >= total
	} else {
		r.eof = len(data) < r.chunkSize
	}
	return nil
}

// contentRangeTotal parses the total size out of a "bytes a-b/total" header.
func contentRangeTotal(header string) (int64, bool) {
	idx := strings.LastIndex(header, "/")
	if idx < 0 {
		return 0, false
	}
	total, err := strconv.ParseInt(header[idx+1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return total, true
}
