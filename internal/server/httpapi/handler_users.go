package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/photogallery/internal/common"
	"github.com/dmitrijs2005/photogallery/internal/server/models"
)

type updateProfileRequest struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Email     *string `json:"email"`
}

type userResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    any    `json:"user"`
}

type profileResponse struct {
	Success bool              `json:"success"`
	Profile publicProfileJSON `json:"profile"`
}

func writeUserLookupError(w http.ResponseWriter, err error, internalMsg string) {
	if errors.Is(err, common.ErrorNotFound) {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeServiceError(w, err, internalMsg)
}

func (s *Server) getMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	u, views, err := s.users.Profile(r.Context(), userID)
	if err != nil {
		writeUserLookupError(w, err, "failed to fetch user profile")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Success: true,
		User:    userWithImagesJSON{userJSON: newUserJSON(u), Images: newImagesJSON(views)},
	})
}

func (s *Server) updateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	var req updateProfileRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	u, err := s.users.UpdateProfile(r.Context(), userID, models.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		writeUserLookupError(w, err, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{
		Success: true,
		Message: "Profile updated successfully",
		User:    newUserJSON(u),
	})
}

func (s *Server) deactivateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "user not authenticated")
		return
	}

	if err := s.users.Deactivate(r.Context(), userID); err != nil {
		writeUserLookupError(w, err, "failed to deactivate account")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Account deactivated successfully"})
}

func (s *Server) getPublicUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	u, err := s.users.PublicUser(r.Context(), id)
	if err != nil {
		writeUserLookupError(w, err, "failed to fetch user")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{Success: true, User: newPublicUserJSON(u)})
}

func (s *Server) getPublicProfile(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	u, views, err := s.users.PublicProfile(r.Context(), id)
	if err != nil {
		writeUserLookupError(w, err, "failed to fetch user profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		Success: true,
		Profile: publicProfileJSON{publicUserJSON: newPublicUserJSON(u), Images: newImagesJSON(views)},
	})
}
