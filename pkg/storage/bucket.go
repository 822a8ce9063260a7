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

// Bucket represents a storage bucket.
type Bucket struct {
	attrs *BucketAttrs
	Name  string
	handle
}

func (b *Bucket) path() string {
	return bucketsPath + "/" + url.PathEscape(b.Name)
}

func (b *Bucket) objectsPath() string {
	return b.path() + "/o"
}

func (b *Bucket) complete() error {
	if b.Name == "" {
		return fmt.Errorf("%w: bucket handle needs a name", gcserrors.ErrIncomplete)
	}
	return nil
}

// Attrs returns the bucket's metadata, fetching it on first use and caching
// it on the handle.
func (b *Bucket) Attrs(ctx context.Context) (*BucketAttrs, error) {
	if b.attrs != nil {
		return b.attrs, nil
	}
	return b.Refresh(ctx)
}

// Refresh re-fetches the bucket's metadata, replacing the cached copy.
func (b *Bucket) Refresh(ctx context.Context) (*BucketAttrs, error) {
	if err := b.complete(); err != nil {
		return nil, err
	}

	var attrs BucketAttrs
	err := retry.Do(ctx, b.effectivePolicy(), func() error {
		resp, err := b.t.Do(ctx, &session.Request{Path: b.path()})
		if err != nil {
			return err
		}
		return resp.JSON(&attrs)
	})
	if err != nil {
		return nil, err
	}

	b.attrs = &attrs
	return b.attrs, nil
}

// Exists reports whether the bucket exists and is visible to the
// authenticated account.
func (b *Bucket) Exists(ctx context.Context) (bool, error) {
	if err := b.complete(); err != nil {
		return false, err
	}

	err := retry.Do(ctx, b.effectivePolicy(), func() error {
		_, err := b.t.Do(ctx, &session.Request{Method: http.MethodHead, Path: b.path()})
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

// DeleteConditions make a bucket deletion conditional on its current
// metageneration.
type DeleteConditions struct {
	MetagenerationMatch    int64
	MetagenerationNotMatch int64
}

// Delete deletes an empty bucket.
func (b *Bucket) Delete(ctx context.Context, conds *DeleteConditions) error {
	if err := b.complete(); err != nil {
		return err
	}

	params := url.Values{}
	if conds != nil {
		if conds.MetagenerationMatch != 0 {
			params.Set("ifMetagenerationMatch", strconv.FormatInt(conds.MetagenerationMatch, 10))
		}
		if conds.MetagenerationNotMatch != 0 {
			params.Set("ifMetagenerationNotMatch", strconv.FormatInt(conds.MetagenerationNotMatch, 10))
		}
	}

	return retry.Do(ctx, b.effectivePolicy(), func() error {
		_, err := b.t.Do(ctx, &session.Request{
			Method: http.MethodDelete,
			Path:   b.path(),
			Params: params,
			OK:     []int{http.StatusNoContent},
		})
		return err
	})
}

// Query narrows an object listing.
type Query struct {
	// Prefix filters to objects whose names begin with it.
	Prefix string

	// Delimiter rolls up object names between Prefix and the next delimiter
	// into prefix pseudo-directories.
	Delimiter string

	// Projection selects the property set to return. Defaults to noAcl.
	Projection string

	// Versions lists all generations of each object instead of only the
	// latest.
	Versions bool

	// MaxResults caps the number of entries per page.
	MaxResults int64
}

// Objects lists the bucket's objects. With a delimiter set, names rolled up
// under a common prefix are yielded as Prefix handles instead of objects.
//
// Handles yielded by the iterator capture this bucket's effective retry
// policy at listing time.
func (b *Bucket) Objects(ctx context.Context, q *Query) *ObjectIterator {
	it := &ObjectIterator{ctx: ctx, lister: &bucketLister{b}, query: q}
	if err := b.complete(); err != nil {
		it.err = err
	}
	return it
}

// Object returns a handle for an object in this bucket, inheriting the
// bucket's retry configuration as it stands right now.
func (b *Bucket) Object(name string) *Object {
	return &Object{handle: b.handle, Bucket: b.Name, Name: name}
}

// NewReader opens the named object for reading.
func (b *Bucket) NewReader(ctx context.Context, name string) (*Reader, error) {
	return b.Object(name).NewReader(ctx)
}

// NewWriter starts a resumable upload of the named object.
func (b *Bucket) NewWriter(ctx context.Context, name string) (*Writer, error) {
	return b.Object(name).NewWriter(ctx)
}

// listObjects fetches one page of the bucket's objects.
func (b *Bucket) listObjects(ctx context.Context, q *Query, pageToken string) (*objectList, error) {
	params := url.Values{"pageToken": {pageToken}}
	if q != nil {
		params.Set("prefix", q.Prefix)
		params.Set("delimiter", q.Delimiter)
		params.Set("projection", q.Projection)
		if q.Versions {
			params.Set("versions", "true")
		}
		if q.MaxResults > 0 {
			params.Set("maxResults", strconv.FormatInt(q.MaxResults, 10))
		}
	}

	var page objectList
	err := retry.Do(ctx, b.effectivePolicy(), func() error {
		resp, err := b.t.Do(ctx, &session.Request{Path: b.objectsPath(), Params: params})
		if err != nil {
			return err
		}
		return resp.JSON(&page)
	})
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (b *Bucket) String() string {
	return b.Name
}
