package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
	"github.com/dmitrijs2005/photogallery/internal/server/services"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadImage(t *testing.T) {
	h := newHarness(t)
	var gotOwner int64
	var gotData, gotFolder string
	h.assets.upload = func(ownerID int64, encoded, folder string) (*models.Asset, error) {
		gotOwner, gotData, gotFolder = ownerID, encoded, folder
		return &models.Asset{
			ID: 1, Key: "avatars/abc", URL: "https://cdn.test/avatars/abc",
			ContentType: strPtr("image/png"), Size: i64Ptr(6), UserID: ownerID,
			CreatedAt: testTime, UpdatedAt: testTime,
		}, nil
	}

	rec := h.do(t, http.MethodPost, "/api/images/upload",
		`{"imageData":"image/png;base64,aGVsbG8=","folder":"avatars"}`, h.tokenFor(t, 7))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	assert.Equal(t, int64(7), gotOwner)
	assert.Equal(t, "image/png;base64,aGVsbG8=", gotData)
	assert.Equal(t, "avatars", gotFolder)

	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	image := body["image"].(map[string]any)
	assert.Equal(t, "avatars/abc", image["s3_key"])
	assert.Equal(t, "avatars/abc", image["filename"])
	assert.Equal(t, "image/png", image["content_type"])
	assert.Equal(t, float64(6), image["size"])
	assert.Equal(t, float64(7), image["user_id"])
	assert.NotContains(t, image, "signed_url")
}

func TestUploadImage_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing image data", `{"folder":"x"}`, nil, http.StatusBadRequest, "image data is required"},
		{"invalid json", `{"imageData":`, nil, http.StatusBadRequest, "invalid JSON body"},
		{"bad envelope", `{"imageData":"x"}`, common.ErrInvalidPayloadFormat, http.StatusBadRequest, "invalid base64 data format"},
		{"bad folder", `{"imageData":"x"}`, common.ErrInvalidFolder, http.StatusBadRequest, "invalid folder name"},
		{"store failure", `{"imageData":"x"}`, fmt.Errorf("%w: %w", common.ErrStoreWrite, errTransport), http.StatusInternalServerError, "failed to upload image"},
		{"metadata failure", `{"imageData":"x"}`, fmt.Errorf("%w: %w", common.ErrPersistence, errTransport), http.StatusInternalServerError, "failed to upload image"},
		{"key collision", `{"imageData":"x"}`, fmt.Errorf("%w: db error: %w", common.ErrPersistence, &pgconn.PgError{Code: "23505"}), http.StatusInternalServerError, "failed to upload image"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.assets.upload = func(int64, string, string) (*models.Asset, error) { return nil, tt.err }

			rec := h.do(t, http.MethodPost, "/api/images/upload", tt.body, h.tokenFor(t, 7))
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeBody(t, rec)["error"])
			assert.NotContains(t, rec.Body.String(), "connection reset")
		})
	}
}

func TestUploadImage_BodyTooLarge(t *testing.T) {
	h := newHarness(t, func(o *Options) { o.MaxBodyBytes = 64 })
	h.assets.upload = func(int64, string, string) (*models.Asset, error) {
		t.Fatal("upload must not be called")
		return nil, nil
	}

	body := `{"imageData":"` + strings.Repeat("A", 200) + `"}`
	rec := h.do(t, http.MethodPost, "/api/images/upload", body, h.tokenFor(t, 7))
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestListPublicImages(t *testing.T) {
	h := newHarness(t)
	h.assets.listPublic = func() ([]services.AssetView, error) {
		return []services.AssetView{sampleView(2), sampleView(1)}, nil
	}

	rec := h.do(t, http.MethodGet, "/api/images", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["count"])
	images := body["images"].([]any)
	require.Len(t, images, 2)

	first := images[0].(map[string]any)
	assert.Equal(t, float64(2), first["id"])
	assert.Equal(t, "https://signed.test/gallery/abc", first["signed_url"])
	assert.Equal(t, "2024-03-01T12:00:00Z", first["created_at"])
	assert.Equal(t, map[string]any{"first_name": "Ann", "last_name": "Lee"}, first["user"])
}

func TestListPublicImages_EmptyIsArray(t *testing.T) {
	h := newHarness(t)
	h.assets.listPublic = func() ([]services.AssetView, error) { return nil, nil }

	rec := h.do(t, http.MethodGet, "/api/images", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"images":[]`)
	assert.Contains(t, rec.Body.String(), `"count":0`)
}

func TestListMyImages(t *testing.T) {
	h := newHarness(t)
	h.assets.listMine = func(ownerID int64) ([]services.AssetView, error) {
		require.Equal(t, int64(7), ownerID)
		v := sampleView(1)
		v.Owner = nil
		return []services.AssetView{v}, nil
	}

	for _, path := range []string{"/api/images/my-images", "/api/users/me/images"} {
		rec := h.do(t, http.MethodGet, path, "", h.tokenFor(t, 7))
		require.Equal(t, http.StatusOK, rec.Code, path)

		body := decodeBody(t, rec)
		assert.Equal(t, float64(1), body["count"])
		assert.NotContains(t, body["images"].([]any)[0], "user")
	}
}

func TestGetImage(t *testing.T) {
	h := newHarness(t)
	h.assets.get = func(id int64) (*services.AssetView, error) {
		if id == 5 {
			v := sampleView(5)
			return &v, nil
		}
		return nil, common.ErrorNotFound
	}

	rec := h.do(t, http.MethodGet, "/api/images/5", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(5), decodeBody(t, rec)["image"].(map[string]any)["id"])

	rec = h.do(t, http.MethodGet, "/api/images/6", "", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "image not found", decodeBody(t, rec)["error"])

	rec = h.do(t, http.MethodGet, "/api/images/abc", "", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteImage(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{"deleted", nil, http.StatusOK, `"message":"Image deleted successfully"`},
		{"not owned", common.ErrNotFoundOrForbidden, http.StatusNotFound, `"error":"image not found or access denied"`},
		{"storage failure", common.ErrStorageCleanupFailed, http.StatusInternalServerError, `"error":"failed to delete image from storage"`},
		{"metadata failure", fmt.Errorf("%w: %w", common.ErrPersistence, errTransport), http.StatusInternalServerError, `"error":"failed to delete image"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.assets.del = func(ownerID, id int64) error {
				assert.Equal(t, int64(7), ownerID)
				assert.Equal(t, int64(3), id)
				return tt.err
			}

			rec := h.do(t, http.MethodDelete, "/api/images/3", "", h.tokenFor(t, 7))
			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestDeleteMyImages(t *testing.T) {
	h := newHarness(t)
	h.assets.deleteAllMine = func(ownerID int64) (int64, error) { return 4, nil }

	rec := h.do(t, http.MethodDelete, "/api/images", "", h.tokenFor(t, 7))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(4), body["count"])
	assert.Equal(t, "Images deleted successfully", body["message"])

	h.assets.deleteAllMine = func(int64) (int64, error) { return 0, common.ErrStorageCleanupFailed }
	rec = h.do(t, http.MethodDelete, "/api/images", "", h.tokenFor(t, 7))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
