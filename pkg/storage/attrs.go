package storage

import "time"

// BucketAttrs is the bucket resource as returned by the JSON API.
type BucketAttrs struct {
	Kind           string    `json:"kind,omitempty"`
	ID             string    `json:"id,omitempty"`
	Name           string    `json:"name,omitempty"`
	Location       string    `json:"location,omitempty"`
	StorageClass   string    `json:"storageClass,omitempty"`
	Etag           string    `json:"etag,omitempty"`
	SelfLink       string    `json:"selfLink,omitempty"`
	ProjectNumber  uint64    `json:"projectNumber,string,omitempty"`
	Metageneration int64     `json:"metageneration,string,omitempty"`
	TimeCreated    time.Time `json:"timeCreated,omitzero"`
	Updated        time.Time `json:"updated,omitzero"`
}

// ObjectAttrs is the object resource as returned by the JSON API. Numeric
// fields arrive as quoted strings on the wire.
type ObjectAttrs struct {
	Kind            string    `json:"kind,omitempty"`
	ID              string    `json:"id,omitempty"`
	Name            string    `json:"name,omitempty"`
	Bucket          string    `json:"bucket,omitempty"`
	ContentType     string    `json:"contentType,omitempty"`
	StorageClass    string    `json:"storageClass,omitempty"`
	Etag            string    `json:"etag,omitempty"`
	SelfLink        string    `json:"selfLink,omitempty"`
	MediaLink       string    `json:"mediaLink,omitempty"`
	MD5Hash         string    `json:"md5Hash,omitempty"`
	CRC32C          string    `json:"crc32c,omitempty"`
	Size            uint64    `json:"size,string,omitempty"`
	Generation      int64     `json:"generation,string,omitempty"`
	Metageneration  int64     `json:"metageneration,string,omitempty"`
	TimeCreated     time.Time `json:"timeCreated,omitzero"`
	Updated         time.Time `json:"updated,omitzero"`
	TimeDeleted     time.Time `json:"timeDeleted,omitzero"`
}

// bucketList is one page of a bucket listing.
type bucketList struct {
	Kind          string        `json:"kind"`
	NextPageToken string        `json:"nextPageToken"`
	Items         []BucketAttrs `json:"items"`
}

// objectList is one page of an object listing. Prefixes carries the
// pseudo-directories rolled up by the delimiter.
type objectList struct {
	Kind          string        `json:"kind"`
	NextPageToken string        `json:"nextPageToken"`
	Prefixes      []string      `json:"prefixes"`
	Items         []ObjectAttrs `json:"items"`
}
