package forms

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

type SignupForm struct {
	FirstName string `form:"first_name" validate:"max=150"`
	LastName  string `form:"last_name" validate:"max=150"`
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"omitempty,email,max=254"`
	Password  string `form:"password1" validate:"required,min=8"`
	Password2 string `form:"password2" validate:"required,eqfield=Password"`
	Errors    Errors `form:"-" validate:"-"`
}

func NewSignupForm() *SignupForm {
	return &SignupForm{Errors: Errors{}}
}

func ParseSignupForm(r *http.Request) (*SignupForm, error) {
	if err := parse(r); err != nil {
		return nil, errors.Wrap(err, "failed to parse signup form")
	}
	return &SignupForm{
		FirstName: strings.TrimSpace(r.PostFormValue("first_name")),
		LastName:  strings.TrimSpace(r.PostFormValue("last_name")),
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Email:     strings.TrimSpace(r.PostFormValue("email")),
		Password:  r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
		Errors:    Errors{},
	}, nil
}

func (f *SignupForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
	Next     string `form:"next" validate:"-"`
	Errors   Errors `form:"-" validate:"-"`
}

func NewLoginForm(next string) *LoginForm {
	return &LoginForm{Next: next, Errors: Errors{}}
}

func ParseLoginForm(r *http.Request) (*LoginForm, error) {
	if err := parse(r); err != nil {
		return nil, errors.Wrap(err, "failed to parse login form")
	}
	return &LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
		Next:     r.PostFormValue("next"),
		Errors:   Errors{},
	}, nil
}

func (f *LoginForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}
