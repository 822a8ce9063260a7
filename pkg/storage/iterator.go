package storage

import (
	"context"

	"google.golang.org/api/iterator"
)

// BucketIterator walks the pages of a bucket listing, yielding Bucket
// handles. Next returns iterator.Done when the listing is exhausted.
type BucketIterator struct {
	ctx       context.Context
	project   *Project
	opts      *BucketListOptions
	err       error
	pageToken string
	items     []*Bucket
	started   bool
}

// Next returns the next bucket, fetching further pages as needed. Handles are
// pinned to the project's effective retry policy at the time their page was
// listed.
func (it *BucketIterator) Next() (*Bucket, error) {
	for len(it.items) == 0 {
		if it.err != nil {
			return nil, it.err
		}
		if it.started && it.pageToken == "" {
			return nil, iterator.Done
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return nil, err
		}
	}

	bucket := it.items[0]
	it.items = it.items[1:]
	return bucket, nil
}

func (it *BucketIterator) fetchPage() error {
	page, err := it.project.listBuckets(it.ctx, it.opts, it.pageToken)
	if err != nil {
		return err
	}
	it.started = true
	it.pageToken = page.NextPageToken

	child := it.project.handle
	child.retry = it.project.childOverride()
	for i := range page.Items {
		attrs := page.Items[i]
		it.items = append(it.items, &Bucket{handle: child, Name: attrs.Name, attrs: &attrs})
	}

	if len(it.items) == 0 && it.pageToken == "" {
		it.err = iterator.Done
	}
	return nil
}

// ObjectEntry is one result of an object listing: either an object or, when
// listing with a delimiter, a prefix pseudo-directory. Exactly one of the
// fields is set.
type ObjectEntry struct {
	Object *Object
	Prefix *Prefix
}

// bucketLister decouples the iterator from Bucket so Prefix listings reuse
// it.
type bucketLister struct {
	bucket *Bucket
}

// ObjectIterator walks the pages of an object listing, yielding objects and
// prefix pseudo-directories. Next returns iterator.Done when the listing is
// exhausted.
type ObjectIterator struct {
	ctx       context.Context
	lister    *bucketLister
	query     *Query
	err       error
	pageToken string
	items     []ObjectEntry
	started   bool
}

// Next returns the next entry, fetching further pages as needed. Handles are
// pinned to the lister's effective retry policy at the time their page was
// listed.
func (it *ObjectIterator) Next() (ObjectEntry, error) {
	for len(it.items) == 0 {
		if it.err != nil {
			return ObjectEntry{}, it.err
		}
		if it.started && it.pageToken == "" {
			return ObjectEntry{}, iterator.Done
		}
		if err := it.fetchPage(); err != nil {
			it.err = err
			return ObjectEntry{}, err
		}
	}

	entry := it.items[0]
	it.items = it.items[1:]
	return entry, nil
}

func (it *ObjectIterator) fetchPage() error {
	bucket := it.lister.bucket
	page, err := bucket.listObjects(it.ctx, it.query, it.pageToken)
	if err != nil {
		return err
	}
	it.started = true
	it.pageToken = page.NextPageToken

	child := bucket.handle
	child.retry = bucket.childOverride()

	for i := range page.Items {
		attrs := page.Items[i]
		obj := &Object{handle: child, Bucket: attrs.Bucket, Name: attrs.Name, attrs: &attrs}
		if obj.Bucket == "" {
			obj.Bucket = bucket.Name
		}
		// Pin the generation only for versioned listings, so reads through a
		// latest-version handle keep following the live object.
		if it.query != nil && it.query.Versions {
			obj.Generation = attrs.Generation
		}
		it.items = append(it.items, ObjectEntry{Object: obj})
	}

	var delimiter string
	if it.query != nil {
		delimiter = it.query.Delimiter
	}
	for _, prefix := range page.Prefixes {
		it.items = append(it.items, ObjectEntry{Prefix: &Prefix{
			handle:    child,
			Bucket:    bucket.Name,
			Name:      prefix,
			delimiter: delimiter,
		}})
	}

	if len(it.items) == 0 && it.pageToken == "" {
		it.err = iterator.Done
	}
	return nil
}
