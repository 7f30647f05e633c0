// Package objectstore wraps a remote blob store for gallery assets. The Store
// derives object keys, uploads decoded payloads, builds permanent URLs and
// issues short-lived signed read URLs. Blob failures are logged here, once.
package objectstore

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/logging"
)

// SignedURLTTL is the lifetime of a presigned read URL.
const SignedURLTTL = 10 * time.Minute

// MaxKeyLength bounds a full object key, prefix included. Keys are stored
// in a VARCHAR(255) column.
const MaxKeyLength = 255

const (
	keyRandomBytes = 16
	keyIDLength    = 2 * keyRandomBytes
)

var folderRe = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)*$`)

// Backend is the capability set the Store needs from a blob store.
type Backend interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
	DeleteMany(ctx context.Context, keys []string) error
}

// SignedURL is the outcome of a presign request. OK is false when the blob
// store could not sign; callers then fall back to the permanent URL.
type SignedURL struct {
	URL string
	OK  bool
}

// Or returns the signed URL, or fallback when signing failed.
func (s SignedURL) Or(fallback string) string {
	if !s.OK {
		return fallback
	}
	return s.URL
}

// Location describes where objects live; it drives permanent URLs.
//
// PublicBaseURL wins when set. Otherwise a custom Endpoint gives
// path-style URLs and an empty Endpoint gives AWS virtual-hosted URLs.
type Location struct {
	Bucket        string
	Region        string
	Endpoint      string
	KeyPrefix     string
	PublicBaseURL string
}

type Store struct {
	backend  Backend
	loc      Location
	logger   logging.Logger
	observer Observer
	now      func() time.Time
	newKeyID func(size int) (string, error)
}

type Option func(*Store)

func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithObserver(o Observer) Option {
	return func(s *Store) {
		if o != nil {
			s.observer = o
		}
	}
}

func New(backend Backend, loc Location, opts ...Option) *Store {
	loc.KeyPrefix = strings.Trim(loc.KeyPrefix, "/")
	loc.PublicBaseURL = strings.TrimRight(loc.PublicBaseURL, "/")
	loc.Endpoint = strings.TrimRight(loc.Endpoint, "/")

	s := &Store{
		backend:  backend,
		loc:      loc,
		logger:   logging.Nop{},
		observer: nopObserver{},
		now:      time.Now,
		newKeyID: common.MakeRandHexString,
	}
	for _, o := range opts {
		o(s)
	}
	s.logger = s.logger.With("module", "objectstore")
	return s
}

// NormalizeFolder returns the default folder for "" and rejects names that
// are not slash-separated [A-Za-z0-9_-] segments or that cannot fit an
// unprefixed key.
func NormalizeFolder(folder string) (string, error) {
	if folder == "" {
		return common.DefaultFolder, nil
	}
	if len(folder)+1+keyIDLength > MaxKeyLength || !folderRe.MatchString(folder) {
		return "", common.ErrInvalidFolder
	}
	return folder, nil
}

// Upload parses the encoded payload and stores it under a fresh key.
func (s *Store) Upload(ctx context.Context, encoded, folder string) (string, error) {
	env, err := ParseEnvelope(encoded)
	if err != nil {
		return "", err
	}
	return s.UploadEnvelope(ctx, env, folder)
}

// UploadEnvelope stores an already parsed payload under
// [prefix/]folder/<32 hex chars> and returns the key.
func (s *Store) UploadEnvelope(ctx context.Context, env *Envelope, folder string) (string, error) {
	folder, err := NormalizeFolder(folder)
	if err != nil {
		return "", err
	}
	if len(s.keyBase(folder))+keyIDLength > MaxKeyLength {
		return "", common.ErrInvalidFolder
	}

	key, err := s.newKey(folder)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrStoreWrite, err)
	}

	start := s.now()
	err = s.backend.Put(ctx, key, env.Body, env.ContentType)
	s.observer.RecordUpload(s.now().Sub(start), len(env.Body), err)

	if err != nil {
		s.logger.Error(ctx, "object upload failed", "key", key, "error", err)
		return "", fmt.Errorf("%w: %w", common.ErrStoreWrite, err)
	}

	s.logger.Debug(ctx, "object uploaded", "key", key, "bytes", len(env.Body), "content_type", env.ContentType)
	return key, nil
}

func (s *Store) newKey(folder string) (string, error) {
	id, err := s.newKeyID(keyRandomBytes)
	if err != nil {
		return "", err
	}
	return s.keyBase(folder) + id, nil
}

func (s *Store) keyBase(folder string) string {
	if s.loc.KeyPrefix != "" {
		return s.loc.KeyPrefix + "/" + folder + "/"
	}
	return folder + "/"
}

// PermanentURL builds the unsigned location of key. It does no I/O.
func (s *Store) PermanentURL(key string) string {
	switch {
	case s.loc.PublicBaseURL != "":
		return s.loc.PublicBaseURL + "/" + key
	case s.loc.Endpoint != "":
		return s.loc.Endpoint + "/" + s.loc.Bucket + "/" + key
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.loc.Bucket, s.loc.Region, key)
	}
}

// SignedURL asks the blob store for a read URL valid for SignedURLTTL.
// It never fails; an unsigned result has OK == false.
func (s *Store) SignedURL(ctx context.Context, key string) SignedURL {
	start := s.now()
	url, err := s.backend.PresignGet(ctx, key, SignedURLTTL)
	s.observer.RecordOperation(OpPresign, s.now().Sub(start), err)

	if err != nil {
		s.logger.Warn(ctx, "presign failed, falling back to permanent url", "key", key,
			"error", fmt.Errorf("%w: %w", common.ErrStoreRead, err))
		return SignedURL{}
	}
	return SignedURL{URL: url, OK: true}
}

// Remove deletes one object and reports whether it succeeded.
func (s *Store) Remove(ctx context.Context, key string) bool {
	start := s.now()
	err := s.backend.Delete(ctx, key)
	s.observer.RecordOperation(OpDelete, s.now().Sub(start), err)

	if err != nil {
		s.logger.Error(ctx, "object delete failed", "key", key, "error", err)
		return false
	}
	return true
}

// RemoveMany deletes keys in one batch and reports whether every key was
// removed. An empty batch succeeds without calling the blob store.
func (s *Store) RemoveMany(ctx context.Context, keys []string) bool {
	if len(keys) == 0 {
		return true
	}

	start := s.now()
	err := s.backend.DeleteMany(ctx, keys)
	s.observer.RecordOperation(OpDeleteMany, s.now().Sub(start), err)

	if err != nil {
		s.logger.Error(ctx, "batch object delete failed", "count", len(keys), "error", err)
		return false
	}
	return true
}
