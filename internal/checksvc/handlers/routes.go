package handlers

import (
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"
)

func (h *Handler) SetRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {

		// public routes here
		r.Post("/cards/check", h.CheckCard)
		r.Post("/cards/upload", h.Upload)
		r.Get("/cards/download/{job}/{filename}", h.Download)

		// Secure routes
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(h.tokenAuth))
			r.Use(jwtauth.Authenticator)

			r.Get("/health", h.HealthHandler)
			r.Get("/runs/{id}", h.GetRun)
		})
	})
}

// InitAuth prepares the verifier for the secure routes and returns a service
// token valid for a week.
func (h *Handler) InitAuth(secret string) string {
	h.tokenAuth = jwtauth.New("HS256", []byte(secret), nil)

	expirationTime := time.Now().Add(7 * 24 * time.Hour).Unix()

	_, tokenString, err := h.tokenAuth.Encode(map[string]interface{}{
		"service_id": "cardcheck",
		"exp":        expirationTime,
	})
	if err != nil {
		log.Warnf("unable to issue service token: %s", err)
		return ""
	}

	log.Debugf("DEBUG: JWT for testing expires soon : %s", tokenString)
	return tokenString
}
