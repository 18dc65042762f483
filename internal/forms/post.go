package forms

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"yatube/internal/model"
	"yatube/internal/storage"
)

// GroupFinder resolves the group chosen in a post form.
type GroupFinder interface {
	GroupByID(ctx context.Context, id uint) (*model.Group, error)
}

// PostForm is the new/edit post form. Text is required, Group is an
// optional group id and Image an optional upload. ClearImage drops the
// current image of an edited post.
type PostForm struct {
	Text       string `form:"text" validate:"required"`
	Group      string `form:"group" validate:"omitempty,numeric"`
	ClearImage bool   `form:"image-clear" validate:"-"`

	Image  *Image `form:"image" validate:"-"`
	Errors Errors `form:"-" validate:"-"`

	group *model.Group
}

// NewPostForm returns the form filled from the current state of post, or an
// empty form when post is nil.
func NewPostForm(post *model.Post) *PostForm {
	f := &PostForm{Errors: Errors{}}
	if post != nil {
		f.Text = post.Text
		if post.GroupID != nil {
			f.Group = strconv.FormatUint(uint64(*post.GroupID), 10)
		}
	}
	return f
}

// ParsePostForm reads a submitted post form. Invalid field values are kept
// so the page can be shown again with them; only transport failures are
// returned as errors.
func ParsePostForm(r *http.Request) (*PostForm, error) {
	if err := parse(r); err != nil {
		return nil, errors.Wrap(err, "failed to parse post form")
	}
	f := &PostForm{
		Text:       strings.TrimSpace(r.PostFormValue("text")),
		Group:      strings.TrimSpace(r.PostFormValue("group")),
		ClearImage: r.PostFormValue("image-clear") != "",
		Errors:     Errors{},
	}
	img, msg, err := readImage(r, "image")
	if err != nil {
		return nil, err
	}
	if msg != "" {
		f.Errors.Add("image", msg)
	}
	f.Image = img
	return f, nil
}

// Valid checks every field and resolves the chosen group.
func (f *PostForm) Valid(ctx context.Context, groups GroupFinder) (bool, error) {
	check(f, f.Errors)

	if f.Group != "" && !f.Errors.Has("group") {
		id, err := strconv.ParseUint(f.Group, 10, 0)
		if err != nil {
			f.Errors.Add("group", invalidChoice)
		} else {
			group, err := groups.GroupByID(ctx, uint(id))
			switch {
			case err == nil:
				f.group = group
			case errors.Is(err, storage.ErrNotFound):
				f.Errors.Add("group", invalidChoice)
			default:
				return false, err
			}
		}
	}
	return len(f.Errors) == 0, nil
}

// Bind copies the validated fields into post. imageKey is the stored key of
// the uploaded image, or "" when nothing was uploaded.
func (f *PostForm) Bind(post *model.Post, imageKey string) {
	post.Text = f.Text
	post.Group = f.group
	post.GroupID = nil
	if f.group != nil {
		post.GroupID = &f.group.ID
	}
	switch {
	case imageKey != "":
		post.Image = imageKey
	case f.ClearImage:
		post.Image = ""
	}
}
