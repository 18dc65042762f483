package server

import (
	"net/http"

	"github.com/pkg/errors"

	"yatube/internal/forms"
	"yatube/internal/logging"
	"yatube/internal/model"
	"yatube/internal/storage"
)

const (
	usernameTaken    = "A user with that username already exists."
	usernameReserved = "This username is not available."
	badCredentials   = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

func (s *Server) signup(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	if r.Method != http.MethodPost {
		s.render(w, r, rc, http.StatusOK, "auth/signup.html", ViewData{"form": forms.NewSignupForm()})
		return
	}
	form, err := forms.ParseSignupForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	if form.Valid() && reservedUsernames[form.Username] {
		form.Errors.Add("username", usernameReserved)
	}
	if len(form.Errors) > 0 {
		s.render(w, r, rc, http.StatusOK, "auth/signup.html", ViewData{"form": form})
		return
	}

	hash, err := HashPassword(form.Password)
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	user := &model.User{
		Username:     form.Username,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
		Email:        form.Email,
		PasswordHash: hash,
	}
	err = s.store.CreateUser(r.Context(), user)
	if errors.Is(err, storage.ErrAlreadyExists) {
		form.Errors.Add("username", usernameTaken)
		s.render(w, r, rc, http.StatusOK, "auth/signup.html", ViewData{"form": form})
		return
	}
	if err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	logging.Logger.WithField("username", user.Username).Info("User registered")
	redirect(w, r, "/auth/login/")
}

func (s *Server) login(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	if r.Method != http.MethodPost {
		s.render(w, r, rc, http.StatusOK, "auth/login.html", ViewData{"form": forms.NewLoginForm(rc.Query.Get("next"))})
		return
	}
	form, err := forms.ParseLoginForm(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}
	if !form.Valid() {
		s.render(w, r, rc, http.StatusOK, "auth/login.html", ViewData{"form": form})
		return
	}

	user, err := s.store.UserByUsername(r.Context(), form.Username)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.serverError(w, r, rc, err)
		return
	}
	if user == nil || !CheckPasswordHash(form.Password, user.PasswordHash) {
		form.Errors.Add(forms.NonFieldErrors, badCredentials)
		s.render(w, r, rc, http.StatusOK, "auth/login.html", ViewData{"form": form})
		return
	}

	rc.Session.Values[sessionUserID] = user.ID
	if err := rc.Session.Save(r, w); err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	redirect(w, r, safeNext(form.Next))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
	delete(rc.Session.Values, sessionUserID)
	rc.Session.Options.MaxAge = -1
	if err := rc.Session.Save(r, w); err != nil {
		s.serverError(w, r, rc, err)
		return
	}
	redirect(w, r, "/")
}

// flatPage renders a static page.
func (s *Server) flatPage(name string) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, rc *RequestContext) {
		s.render(w, r, rc, http.StatusOK, name, nil)
	}
}
