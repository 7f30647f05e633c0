package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/go-chi/chi/v5"
)

type uploadRequest struct {
	ImageData string `json:"imageData"`
	Folder    string `json:"folder"`
}

type imageResponse struct {
	Success bool      `json:"success"`
	Image   imageJSON `json:"image"`
}

type imagesResponse struct {
	Success bool        `json:"success"`
	Images  []imageJSON `json:"images"`
	Count   int         `json:"count"`
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req uploadRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.ImageData == "" {
		writeError(w, http.StatusBadRequest, "image data is required")
		return
	}

	asset, err := s.assets.Upload(r.Context(), userID, req.ImageData, req.Folder)
	if err != nil {
		writeServiceError(w, err, "failed to upload image")
		return
	}

	writeJSON(w, http.StatusCreated, imageResponse{Success: true, Image: newUploadedImageJSON(asset)})
}

func (s *Server) listMyImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	views, err := s.assets.ListMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to fetch images")
		return
	}

	images := newImagesJSON(views)
	writeJSON(w, http.StatusOK, imagesResponse{Success: true, Images: images, Count: len(images)})
}

func (s *Server) listPublicImages(w http.ResponseWriter, r *http.Request) {
	views, err := s.assets.ListPublic(r.Context())
	if err != nil {
		writeServiceError(w, err, "failed to fetch images")
		return
	}

	images := newImagesJSON(views)
	writeJSON(w, http.StatusOK, imagesResponse{Success: true, Images: images, Count: len(images)})
}

func (s *Server) getImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	view, err := s.assets.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeError(w, http.StatusNotFound, "image not found")
			return
		}
		writeServiceError(w, err, "failed to fetch image")
		return
	}

	writeJSON(w, http.StatusOK, imageResponse{Success: true, Image: newImageJSON(*view)})
}

func (s *Server) deleteImage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid image ID")
		return
	}

	if err := s.assets.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "failed to delete image")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Image deleted successfully"})
}

func (s *Server) deleteMyImages(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	n, err := s.assets.DeleteAllMine(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "failed to delete images")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Images deleted successfully", Count: &n})
}
