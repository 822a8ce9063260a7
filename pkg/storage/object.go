package storage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	gcserrors "github.com/Akrog/gcs-client/pkg/errors"
	"github.com/Akrog/gcs-client/pkg/retry"
	"github.com/Akrog/gcs-client/pkg/session"
)

// Object represents a stored object.
type Object struct {
	attrs  *ObjectAttrs
	Bucket string
	Name   string

	// Generation selects a specific revision of the object instead of the
	// latest. Zero means latest.
	Generation int64

	handle
}

func (o *Object) path() string {
	return bucketsPath + "/" + url.PathEscape(o.Bucket) + "/o/" + url.PathEscape(o.Name)
}

func (o *Object) complete() error {
	if o.Bucket == "" || o.Name == "" {
		return fmt.Errorf("%w: object handle needs a bucket and a name", gcserrors.ErrIncomplete)
	}
	return nil
}

func (o *Object) generationParam() string {
	if o.Generation == 0 {
		return ""
	}
	return strconv.FormatInt(o.Generation, 10)
}

// Attrs returns the object's metadata, fetching it on first use and caching
// it on the handle.
func (o *Object) Attrs(ctx context.Context) (*ObjectAttrs, error) {
	if o.attrs != nil {
		return o.attrs, nil
	}
	return o.Refresh(ctx)
}

// Refresh re-fetches the object's metadata, replacing the cached copy.
func (o *Object) Refresh(ctx context.Context) (*ObjectAttrs, error) {
	if err := o.complete(); err != nil {
		return nil, err
	}

	var attrs ObjectAttrs
	err := retry.Do(ctx, o.effectivePolicy(), func() error {
		resp, err := o.t.Do(ctx, &session.Request{
			Path:   o.path(),
			Params: url.Values{"generation": {o.generationParam()}},
		})
		if err != nil {
			return err
		}
		return resp.JSON(&attrs)
	})
	if err != nil {
		return nil, err
	}

	o.attrs = &attrs
	return o.attrs, nil
}

// Exists reports whether the object exists in the bucket.
func (o *Object) Exists(ctx context.Context) (bool, error) {
	if err := o.complete(); err != nil {
		return false, err
	}

	err := retry.Do(ctx, o.effectivePolicy(), func() error {
		_, err := o.t.Do(ctx, &session.Request{
			Method: http.MethodHead,
			Path:   o.path(),
			Params: url.Values{"generation": {o.generationParam()}},
		})
		return err
	})
	if err != nil {
		if gcserrors.IsNotFound(err) || gcserrors.StatusCode(err) == http.StatusBadRequest {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Conditions make an object operation conditional on the object's current
// generation or metageneration.
type Conditions struct {
	GenerationMatch        int64
	GenerationNotMatch     int64
	MetagenerationMatch    int64
	MetagenerationNotMatch int64
}

func (c *Conditions) params(params url.Values) {
	if c == nil {
		return
	}
	set := func(key string, v int64) {
		if v != 0 {
			params.Set(key, strconv.FormatInt(v, 10))
		}
	}
	set("ifGenerationMatch", c.GenerationMatch)
	set("ifGenerationNotMatch", c.GenerationNotMatch)
	set("ifMetagenerationMatch", c.MetagenerationMatch)
	set("ifMetagenerationNotMatch", c.MetagenerationNotMatch)
}

// Delete deletes the object and its metadata. Deletion is permanent unless
// the bucket has versioning enabled and no generation is pinned.
func (o *Object) Delete(ctx context.Context, conds *Conditions) error {
	if err := o.complete(); err != nil {
		return err
	}

	params := url.Values{"generation": {o.generationParam()}}
	conds.params(params)

	return retry.Do(ctx, o.effectivePolicy(), func() error {
		_, err := o.t.Do(ctx, &session.Request{
			Method: http.MethodDelete,
			Path:   o.path(),
			Params: params,
			OK:     []int{http.StatusNoContent},
		})
		return err
	})
}

// NewReader opens the object for reading. The reader captures the object's
// effective retry policy at open time.
func (o *Object) NewReader(ctx context.Context) (*Reader, error) {
	if err := o.complete(); err != nil {
		return nil, err
	}
	return newReader(ctx, o)
}

// NewWriter starts a resumable upload replacing the object's content. The
// writer captures the object's effective retry policy at open time.
func (o *Object) NewWriter(ctx context.Context) (*Writer, error) {
	if err := o.complete(); err != nil {
		return nil, err
	}
	return newWriter(ctx, o)
}

func (o *Object) String() string {
	return o.Bucket + "/" + o.Name
}
