package forms

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"yatube/internal/model"
)

// CommentForm only carries the text; author and post come from the request.
type CommentForm struct {
	Text   string `form:"text" validate:"required"`
	Errors Errors `form:"-" validate:"-"`
}

func NewCommentForm() *CommentForm {
	return &CommentForm{Errors: Errors{}}
}

func ParseCommentForm(r *http.Request) (*CommentForm, error) {
	if err := parse(r); err != nil {
		return nil, errors.Wrap(err, "failed to parse comment form")
	}
	return &CommentForm{
		Text:   strings.TrimSpace(r.PostFormValue("text")),
		Errors: Errors{},
	}, nil
}

func (f *CommentForm) Valid() bool {
	check(f, f.Errors)
	return len(f.Errors) == 0
}

// Comment builds the comment written by author under post.
func (f *CommentForm) Comment(author *model.User, post *model.Post) *model.Comment {
	return &model.Comment{
		Text:     f.Text,
		AuthorID: author.ID,
		PostID:   post.ID,
	}
}
