package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/photogallery/internal/server/services"
)

type registerRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	User    userJSON `json:"user"`
	Token   string   `json:"token"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	u, token, err := s.users.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeServiceError(w, err, "failed to register user")
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{
		Success: true,
		Message: "User registered successfully",
		User:    newUserJSON(u),
		Token:   token,
	})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err, "failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Success: true,
		Message: "Login successful",
		User:    newUserJSON(u),
		Token:   token,
	})
}
