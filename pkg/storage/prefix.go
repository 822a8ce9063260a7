package storage

import "context"

// Prefix is a pseudo-directory produced by a delimiter listing: the common
// prefix of a group of object names. It can be listed again to descend into
// the "directory".
type Prefix struct {
	Bucket    string
	Name      string
	delimiter string
	handle
}

// Delimiter returns the delimiter the prefix was produced with.
func (p *Prefix) Delimiter() string {
	return p.delimiter
}

// Objects lists the objects under the prefix. Unless overridden by q, the
// listing reuses the prefix's name and the delimiter it was produced with,
// so nested pseudo-directories keep appearing as Prefix handles.
func (p *Prefix) Objects(ctx context.Context, q *Query) *ObjectIterator {
	effective := Query{Prefix: p.Name, Delimiter: p.delimiter}
	if q != nil {
		effective = *q
		if effective.Prefix == "" {
			effective.Prefix = p.Name
		}
		if effective.Delimiter == "" {
			effective.Delimiter = p.delimiter
		}
	}

	bucket := &Bucket{handle: p.handle, Name: p.Bucket}
	return bucket.Objects(ctx, &effective)
}

func (p *Prefix) String() string {
	return p.Name
}
