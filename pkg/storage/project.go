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

const bucketsPath = "/storage/v1/b"

// Project represents a Google Cloud project as the owner of storage buckets.
type Project struct {
	ID string
	handle
}

// DefaultBucketName returns the name of the project's default App Engine
// bucket.
func (p *Project) DefaultBucketName() string {
	if p.ID == "" {
		return ""
	}
	return p.ID + ".appspot.com"
}

// Exists reports whether the project is visible to the authenticated
// account. The JSON API has no project resource, so the check is a bucket
// listing capped at one result.
func (p *Project) Exists(ctx context.Context) (bool, error) {
	if p.ID == "" {
		return false, fmt.Errorf("%w: existence check needs a project id", gcserrors.ErrIncomplete)
	}

	_, err := p.listBuckets(ctx, &BucketListOptions{MaxResults: 1, Fields: "kind"}, "")
	if err != nil {
		if gcserrors.IsNotFound(err) || gcserrors.StatusCode(err) == http.StatusBadRequest {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// BucketListOptions narrows a bucket listing.
type BucketListOptions struct {
	// Prefix filters to buckets whose names begin with it.
	Prefix string

	// Projection selects the property set to return. Defaults to noAcl.
	Projection string

	// Fields limits which bucket fields the service returns.
	Fields string

	// MaxResults caps the number of buckets per page.
	MaxResults int64
}

// Buckets lists the project's buckets. Bucket list operations are eventually
// consistent: a freshly created bucket is usable immediately but may not show
// up right away.
//
// Handles yielded by the iterator capture this project's effective retry
// policy at listing time.
func (p *Project) Buckets(ctx context.Context, opts *BucketListOptions) *BucketIterator {
	it := &BucketIterator{ctx: ctx, project: p, opts: opts}
	if p.ID == "" {
		it.err = fmt.Errorf("%w: bucket listing needs a project id", gcserrors.ErrIncomplete)
	}
	return it
}

// CreateBucketOptions customizes bucket creation.
type CreateBucketOptions struct {
	// Location places the bucket's object data. Defaults to US.
	Location string

	// StorageClass defaults to NEARLINE.
	StorageClass string

	// PredefinedACL applies a predefined set of access controls.
	PredefinedACL string

	// PredefinedDefaultObjectACL applies a predefined set of default object
	// access controls.
	PredefinedDefaultObjectACL string

	// Projection selects the property set to return. Defaults to noAcl.
	Projection string
}

// CreateBucket creates a new bucket in the project. Google Cloud Storage uses
// a flat namespace, so the name must be globally unused. The returned handle
// carries the created bucket's attributes and this project's retry
// configuration.
func (p *Project) CreateBucket(ctx context.Context, name string, opts *CreateBucketOptions) (*Bucket, error) {
	if p.ID == "" || name == "" {
		return nil, fmt.Errorf("%w: bucket creation needs a project id and bucket name", gcserrors.ErrIncomplete)
	}

	if opts == nil {
		opts = &CreateBucketOptions{}
	}
	location := opts.Location
	if location == "" {
		location = "US"
	}
	class := opts.StorageClass
	if class == "" {
		class = StorageNearline
	}
	projection := opts.Projection
	if projection == "" {
		projection = ProjectionNoACL
	}

	req := &session.Request{
		Method: http.MethodPost,
		Path:   bucketsPath,
		Params: url.Values{
			"project":                    {p.ID},
			"predefinedAcl":              {opts.PredefinedACL},
			"predefinedDefaultObjectAcl": {opts.PredefinedDefaultObjectACL},
			"projection":                 {projection},
		},
		Body: &BucketAttrs{Name: name, Location: location, StorageClass: class},
	}

	var attrs BucketAttrs
	err := retry.Do(ctx, p.effectivePolicy(), func() error {
		resp, err := p.t.Do(ctx, req)
		if err != nil {
			return err
		}
		return resp.JSON(&attrs)
	})
	if err != nil {
		return nil, err
	}

	bucket := &Bucket{handle: p.handle, Name: attrs.Name, attrs: &attrs}
	return bucket, nil
}

// listBuckets fetches one page of the project's buckets.
func (p *Project) listBuckets(ctx context.Context, opts *BucketListOptions, pageToken string) (*bucketList, error) {
	params := url.Values{
		"project":   {p.ID},
		"pageToken": {pageToken},
	}
	if opts != nil {
		params.Set("prefix", opts.Prefix)
		params.Set("projection", opts.Projection)
		params.Set("fields", opts.Fields)
		if opts.MaxResults > 0 {
			params.Set("maxResults", strconv.FormatInt(opts.MaxResults, 10))
		}
	}

	var page bucketList
	err := retry.Do(ctx, p.effectivePolicy(), func() error {
		resp, err := p.t.Do(ctx, &session.Request{Path: bucketsPath, Params: params})
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

func (p *Project) String() string {
	return p.ID
}
