package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mockbase/internal/blob"
	"mockbase/pkg/domain"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata key holding the object id assigned at upload.
const metaObjectID = "object-id"

// Storage is the object storage entry point.
type Storage struct {
	client *Client
}

// Storage returns the object storage façade.
func (c *Client) Storage() Storage { return Storage{client: c} }

// From selects a bucket.
func (s Storage) From(bucket string) Bucket {
	return Bucket{client: s.client, name: bucket}
}

// Bucket addresses objects under one bucket. Objects are stored in the blob
// backend under "<bucket>/<path>".
type Bucket struct {
	client *Client
	name   string
}

// UploadOptions tunes Upload.
type UploadOptions struct {
	ContentType string
	// Upsert replaces an existing object instead of failing.
	Upsert bool
}

// UploadData describes an uploaded object.
type UploadData struct {
	ID       string `json:"id"`
	Path     string `json:"path"`
	FullPath string `json:"fullPath"`
}

// UploadResponse is the envelope of Upload.
type UploadResponse struct {
	Data  *UploadData   `json:"data"`
	Error *domain.Error `json:"error"`
}

// PublicURLData carries a public object URL.
type PublicURLData struct {
	PublicURL string `json:"publicUrl"`
}

// PublicURLResponse is the envelope of GetPublicURL.
type PublicURLResponse struct {
	Data PublicURLData `json:"data"`
}

// RemovedObject names an object removed by Remove.
type RemovedObject struct {
	Name     string `json:"name"`
	BucketID string `json:"bucket_id"`
}

// RemoveResponse is the envelope of Remove.
type RemoveResponse struct {
	Data  []RemovedObject `json:"data"`
	Error *domain.Error   `json:"error"`
}

// FileObject describes a listed object.
type FileObject struct {
	Name        string    `json:"name"`
	ID          string    `json:"id,omitempty"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListResponse is the envelope of List.
type ListResponse struct {
	Data  []FileObject  `json:"data"`
	Error *domain.Error `json:"error"`
}

// SignedURLData carries a signed object URL.
type SignedURLData struct {
	SignedURL string `json:"signedUrl"`
}

// SignedURLResponse is the envelope of CreateSignedURL.
type SignedURLResponse struct {
	Data  *SignedURLData `json:"data"`
	Error *domain.Error  `json:"error"`
}

func (b Bucket) key(path string) string {
	return b.name + "/" + strings.TrimLeft(path, "/")
}

func storageError(err error) *domain.Error {
	e := &domain.Error{Message: err.Error(), Code: domain.CodeStorage}
	switch {
	case errors.Is(err, blob.ErrExists):
		e.Message = "The resource already exists"
		e.Details = err.Error()
	case errors.Is(err, blob.ErrNotFound):
		e.Message = "Object not found"
		e.Details = err.Error()
	case errors.Is(err, blob.ErrUnsupported):
		e.Message = "Operation not supported by the storage driver"
		e.Details = err.Error()
	}
	return e
}

// Upload writes r to path. Without Upsert an existing object fails the upload.
func (b Bucket) Upload(ctx context.Context, path string, r io.Reader, opts ...UploadOptions) UploadResponse {
	var o UploadOptions
	for _, opt := range opts {
		o = opt
	}
	var resp UploadResponse
	b.client.run(ctx, "upload", b.name, func() (int, *domain.Error) {
		if r == nil {
			resp.Error = &domain.Error{Message: "Upload body is empty", Code: domain.CodeStorage, Details: path}
			return 0, resp.Error
		}
		id := uuid.NewString()
		key := b.key(path)
		_, err := b.client.blobs.Put(ctx, key, r, blob.PutOptions{
			ContentType: o.ContentType,
			Metadata:    map[string]string{metaObjectID: id},
			Overwrite:   o.Upsert,
		})
		if err != nil {
			resp.Error = storageError(err)
			return 0, resp.Error
		}
		resp.Data = &UploadData{ID: id, Path: path, FullPath: key}
		return 1, nil
	})
	return resp
}

// GetPublicURL returns the public URL of path. It does not check that the
// object exists.
func (b Bucket) GetPublicURL(path string) PublicURLResponse {
	segments := strings.Split(strings.TrimLeft(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return PublicURLResponse{Data: PublicURLData{
		PublicURL: fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.client.publicURL, url.PathEscape(b.name), strings.Join(segments, "/")),
	}}
}

// Remove deletes paths and reports the objects that were removed.
func (b Bucket) Remove(ctx context.Context, paths ...string) RemoveResponse {
	resp := RemoveResponse{Data: []RemovedObject{}}
	b.client.run(ctx, "remove", b.name, func() (int, *domain.Error) {
		for _, p := range paths {
			existed, err := b.client.blobs.Delete(ctx, b.key(p))
			if err != nil {
				resp.Error = storageError(err)
				return len(resp.Data), resp.Error
			}
			if existed {
				resp.Data = append(resp.Data, RemovedObject{Name: p, BucketID: b.name})
			}
		}
		return len(resp.Data), nil
	})
	return resp
}

// List returns the objects under prefix, names relative to the bucket.
func (b Bucket) List(ctx context.Context, prefix string) ListResponse {
	resp := ListResponse{Data: []FileObject{}}
	b.client.run(ctx, "list", b.name, func() (int, *domain.Error) {
		infos, err := b.client.blobs.List(ctx, b.key(prefix))
		if err != nil {
			resp.Error = storageError(err)
			return 0, resp.Error
		}
		for _, info := range infos {
			resp.Data = append(resp.Data, FileObject{
				Name:        strings.TrimPrefix(info.Key, b.name+"/"),
				ID:          info.Metadata[metaObjectID],
				Size:        info.Size,
				ContentType: info.ContentType,
				UpdatedAt:   info.LastModified,
			})
		}
		return len(resp.Data), nil
	})
	return resp
}

// CreateSignedURL returns a time-limited download URL when the blob driver
// can sign one.
func (b Bucket) CreateSignedURL(ctx context.Context, path string, expiresIn time.Duration) SignedURLResponse {
	var resp SignedURLResponse
	b.client.run(ctx, "sign", b.name, func() (int, *domain.Error) {
		u, err := b.client.blobs.PresignURL(ctx, b.key(path), blob.SignedURLOptions{Expiry: expiresIn})
		if err != nil {
			resp.Error = storageError(err)
			return 0, resp.Error
		}
		resp.Data = &SignedURLData{SignedURL: u}
		return 1, nil
	})
	return resp
}
