package models

import "time"

// Asset is the metadata record of one stored image.
//
// Key locates the payload in the object store and never changes. URL is the
// permanent, unsigned location derived from Key. ContentType and Size may be
// unknown (nil).
type Asset struct {
	ID          int64
	Key         string
	URL         string
	ContentType *string
	Size        *int64
	UserID      int64
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Owner is filled by lookups that join the users table.
	Owner *Owner
}

// Owner is the display part of the user who uploaded an asset.
type Owner struct {
	FirstName string
	LastName  string
}

// NewAsset is the input of a metadata insert.
type NewAsset struct {
	UserID      int64
	Key         string
	URL         string
	ContentType *string
	Size        *int64
}
