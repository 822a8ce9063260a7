package storage

import (
	"github.com/Akrog/gcs-client/pkg/session"
)

// Client is the entry point for storage operations. It hands out resource
// handles that share the session's transport and start from its retry
// configuration.
type Client struct {
	handle
}

// NewClient creates a client on top of an established session.
func NewClient(sess *session.Session) *Client {
	return &Client{handle: handle{
		t:         sess,
		retry:     sess.RetryOverride(),
		chunkSize: sess.ChunkSize(),
	}}
}

// NewClientWithTransport creates a client over a custom transport, mainly for
// tests built on pkg/mocks. Handles created from it defer to the process
// default retry policy.
func NewClientWithTransport(t session.Transport) *Client {
	return &Client{handle: handle{t: t, chunkSize: session.DefaultChunkSize}}
}

// Project returns a handle for the given project id. The handle inherits the
// client's retry configuration as it stands right now.
func (c *Client) Project(id string) *Project {
	return &Project{handle: c.handle, ID: id}
}

// Bucket returns a handle for the named bucket.
func (c *Client) Bucket(name string) *Bucket {
	return &Bucket{handle: c.handle, Name: name}
}

// Object returns a handle for an object inside a bucket.
func (c *Client) Object(bucket, name string) *Object {
	return &Object{handle: c.handle, Bucket: bucket, Name: name}
}
