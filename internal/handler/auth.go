package handler

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/pkordes/homestay/backend/internal/auth"
)

// Login handles GET /auth/login by redirecting the browser to the identity
// provider with a fresh one-time state.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	state := auth.NewState()
	if err := s.states.Put(r.Context(), state); err != nil {
		s.serviceError(w, r, "handler.Login", err)
		return
	}
	http.Redirect(w, r, s.idp.AuthorizationURL(state), http.StatusFound)
}

// Callback handles GET /auth/callback. It checks the state, exchanges the
// code for the provider's claims, syncs the local user and returns a
// session token.
func (s *Server) Callback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		writeErrorBody(w, r, http.StatusUnauthorized, "unauthorized", "login rejected: "+reason)
		return
	}

	valid, err := s.states.Consume(r.Context(), q.Get("state"))
	if err != nil {
		s.serviceError(w, r, "handler.Callback", err)
		return
	}
	if !valid {
		writeErrorBody(w, r, http.StatusUnauthorized, "unauthorized", "invalid or expired login state")
		return
	}
	code := q.Get("code")
	if code == "" {
		requestError(w, r, "code is required")
		return
	}

	claims, err := s.idp.Exchange(r.Context(), code)
	if err != nil {
		s.log.WarnContext(r.Context(), "code exchange failed", "err", err)
		writeErrorBody(w, r, http.StatusUnauthorized, "unauthorized", "identity provider rejected the login")
		return
	}

	user, err := s.users.SyncWithIdp(r.Context(), claims, false)
	if err != nil {
		s.serviceError(w, r, "handler.Callback", err)
		return
	}
	token, err := s.tokens.Issue(user)
	if err != nil {
		s.serviceError(w, r, "handler.Callback", err)
		return
	}
	render.JSON(w, r, TokenResponse{Token: token, User: userToResponse(user)})
}

// Me handles GET /auth/me.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.caller(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, userToResponse(caller))
}

// Logout handles POST /auth/logout. Session tokens are stateless; the client
// drops its token and follows logout_url to end the provider session.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, LogoutResponse{LogoutURL: s.idp.LogoutURL(s.logoutReturnTo)})
}
