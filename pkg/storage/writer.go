package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
	"github.com/Akrog/gcs-client/pkg/retry"
	"github.com/Akrog/gcs-client/pkg/session"
)

// statusResumeIncomplete is what the upload endpoint answers to a non-final
// chunk of a resumable upload.
const statusResumeIncomplete = 308

// Writer streams an object's content to the storage service through a
// resumable upload session. It implements io.WriteCloser. Data is buffered
// and sent in chunk-sized pieces; the upload is finalized by Close, and
// nothing is visible in the bucket until then.
type Writer struct {
	ctx       context.Context
	t         session.Transport
	policy    *retry.Policy
	buf       bytes.Buffer
	location  string
	size      int64
	offset    int64
	chunkSize int
	closed    bool
}

func newWriter(ctx context.Context, o *Object) (*Writer, error) {
	w := &Writer{
		ctx:       ctx,
		t:         o.t,
		policy:    o.effectivePolicy(),
		chunkSize: o.chunkSize,
	}
	if w.chunkSize <= 0 {
		w.chunkSize = session.DefaultChunkSize
	}

	uploadPath := "/upload/storage/v1/b/" + url.PathEscape(o.Bucket) + "/o"

	err := retry.Do(ctx, w.policy, func() error {
		resp, err := w.t.Do(ctx, &session.Request{
			Method: http.MethodPost,
			Path:   uploadPath,
			Params: url.Values{
				"uploadType": {"resumable"},
				"name":       {o.Name},
			},
			Header: http.Header{
				"X-Goog-Resumable": {"start"},
				"Content-Type":     {"application/octet-stream"},
			},
			OK: []int{http.StatusOK, http.StatusCreated},
		})
		if err != nil {
			return err
		}
		w.location = resp.Header.Get("Location")
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("starting resumable upload: %w", err)
	}
	if w.location == "" {
		return nil, fmt.Errorf("resumable upload session missing Location header")
	}
	return w, nil
}

// Write buffers p and sends full chunks to the upload session. Due to
// buffering, data may not reach the service until Close or until enough
// bytes for another chunk have accumulated.
func (w *Writer) Write(p []byte) (int, error) {
	if w.closed {
		return 0, gcserrors.ErrClosed
	}

	w.buf.Write(p)
	w.size += int64(len(p))

	for w.buf.Len() >= w.chunkSize {
		chunk := append([]byte(nil), w.buf.Next(w.chunkSize)...)
		if err := w.sendChunk(chunk, false); err != nil {
			return 0, err
		}
	}
	return len(p), nil
}

// Close flushes the remaining buffer and finalizes the upload. Calling Close
// more than once is allowed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	tail := append([]byte(nil), w.buf.Next(w.buf.Len())...)
	if err := w.sendChunk(tail, true); err != nil {
		return err
	}
	w.closed = true
	return nil
}

// sendChunk uploads one piece of the object. Non-final chunks advertise an
// unknown total ("bytes a-b/*") and expect 308; the final chunk carries the
// definite size and completes the upload.
func (w *Writer) sendChunk(data []byte, final bool) error {
	var dataRange string
	switch {
	case len(data) == 0 && !final:
		return nil
	case len(data) == 0:
		dataRange = fmt.Sprintf("bytes */%d", w.size)
	case final:
		dataRange = fmt.Sprintf("bytes %d-%d/%d", w.offset, w.offset+int64(len(data))-1, w.size)
	default:
		dataRange = fmt.Sprintf("bytes %d-%d/*", w.offset, w.offset+int64(len(data))-1)
	}

	ok := []int{statusResumeIncomplete}
	if final {
		ok = []int{http.StatusOK, http.StatusCreated}
	}

	err := retry.Do(w.ctx, w.policy, func() error {
		_, err := w.t.Do(w.ctx, &session.Request{
			Method:  http.MethodPut,
			URL:     w.location,
			Header:  http.Header{"Content-Range": {dataRange}},
			RawBody: bytes.NewReader(data),
			OK:      ok,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("uploading object chunk %s: %w", dataRange, err)
	}

	w.offset += int64(len(data))
	return nil
}
