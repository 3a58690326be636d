package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/agritrack/internal/common"
	"github.com/dmitrijs2005/agritrack/internal/server/services"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in services.SignupInput
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}

	token, err := s.users.Signup(r.Context(), in)
	if err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, maxJSONBody, &in); err != nil {
		respondWithError(w, r, s.logger, err)
		return
	}

	res, err := s.users.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		// unknown email and wrong password look the same to the caller
		if errors.Is(err, common.ErrorNotFound) {
			err = common.ErrInvalidCredential
		}
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

// handleLogout revokes the presented token when there is a valid one. A
// missing, invalid or expired token still logs out: the client discards it.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, err := s.gate.Authorize(r)
	switch {
	case err == nil:
		if err := s.users.Logout(r.Context(), id); err != nil {
			respondWithError(w, r, s.logger, err)
			return
		}
	case errors.Is(err, common.ErrAuthMissing),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
	default:
		respondWithError(w, r, s.logger, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "You have been logged out."})
}
