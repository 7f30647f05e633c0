package httpapi

import (
	"time"

	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
)

type ownerJSON struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type imageJSON struct {
	ID          int64      `json:"id"`
	Filename    string     `json:"filename"`
	S3Key       string     `json:"s3_key"`
	URL         string     `json:"url"`
	SignedURL   string     `json:"signed_url,omitempty"`
	ContentType *string    `json:"content_type"`
	Size        *int64     `json:"size"`
	UserID      int64      `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	User        *ownerJSON `json:"user,omitempty"`
}

type userJSON struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type publicUserJSON struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

type userWithImagesJSON struct {
	userJSON
	Images []imageJSON `json:"images"`
}

type publicProfileJSON struct {
	publicUserJSON
	Images []imageJSON `json:"images"`
}

func toOwnerJSON(o *models.Owner) *ownerJSON {
	if o == nil {
		return nil
	}
	return &ownerJSON{FirstName: o.FirstName, LastName: o.LastName}
}

func newImageJSON(v services.AssetView) imageJSON {
	return imageJSON{
		ID:          v.ID,
		Filename:    v.Filename,
		S3Key:       v.Key,
		URL:         v.URL,
		SignedURL:   v.SignedURL,
		ContentType: v.ContentType,
		Size:        v.Size,
		UserID:      v.UserID,
		CreatedAt:   v.CreatedAt,
		UpdatedAt:   v.UpdatedAt,
		User:        toOwnerJSON(v.Owner),
	}
}

func newImagesJSON(views []services.AssetView) []imageJSON {
	out := make([]imageJSON, 0, len(views))
	for _, v := range views {
		out = append(out, newImageJSON(v))
	}
	return out
}

// newUploadedImageJSON renders a freshly stored asset; it has no signed URL yet.
func newUploadedImageJSON(a *models.Asset) imageJSON {
	return imageJSON{
		ID:          a.ID,
		Filename:    a.Key,
		S3Key:       a.Key,
		URL:         a.URL,
		ContentType: a.ContentType,
		Size:        a.Size,
		UserID:      a.UserID,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		User:        toOwnerJSON(a.Owner),
	}
}

func newUserJSON(u *models.User) userJSON {
	return userJSON{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func newPublicUserJSON(u *models.User) publicUserJSON {
	return publicUserJSON{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, CreatedAt: u.CreatedAt}
}
