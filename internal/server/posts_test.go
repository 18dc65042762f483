package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yatube/internal/forms"
	"yatube/internal/model"
	"yatube/internal/paginator"
)

func TestNewPostCreatesPost(t *testing.T) {
	env := newTestEnv(t, false)
	user := env.createUser(t, "leo")
	group := env.createGroup(t, "Cats", "cats")
	client := env.loginAs(t, user)

	before := env.postCount(t)
	resp := postForm(t, client, env.url("/new/"), url.Values{
		"text":  {"T"},
		"group": {strconv.FormatUint(uint64(group.ID), 10)},
	})
	assertRedirect(t, resp, "/")
	assert.Equal(t, before+1, env.postCount(t))

	posts, err := env.store.AuthorPosts(context.Background(), user.ID).Fetch(0, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "T", posts[0].Text)
	assert.Equal(t, user.ID, posts[0].AuthorID)
	require.NotNil(t, posts[0].GroupID)
	assert.Equal(t, group.ID, *posts[0].GroupID)
	assert.Empty(t, posts[0].Image)
}

func TestNewPostWithImage(t *testing.T) {
	env := newTestEnv(t, false)
	user := env.createUser(t, "leo")
	client := env.loginAs(t, user)

	resp := postMultipart(t, client, env.url("/new/"), map[string]string{"text": "with a picture"}, "small.gif", smallGIF)
	assertRedirect(t, resp, "/")

	posts, err := env.store.AuthorPosts(context.Background(), user.ID).Fetch(0, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.NotEmpty(t, posts[0].Image)
	assert.FileExists(t, filepath.Join(env.mediaRoot, filepath.FromSlash(posts[0].Image)))

	media := get(t, client, env.url("/media/"+posts[0].Image))
	assert.Equal(t, http.StatusOK, media.StatusCode)

	for _, dir := range []string{"/media/", "/media/posts/", "/media/posts"} {
		resp := get(t, client, env.url(dir))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode, dir)
		assertNotContains(t, resp, posts[0].Image)
	}
}

func TestNewPostInvalid(t *testing.T) {
	env := newTestEnv(t, false)
	user := env.createUser(t, "leo")
	client := env.loginAs(t, user)

	resp := postMultipart(t, client, env.url("/new/"), map[string]string{"text": "  ", "group": "999"}, "notes.txt", []byte("not an image"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Zero(t, env.postCount(t))

	call := env.views.last(t)
	assert.Equal(t, "new.html", call.name)
	form := call.data["form"].(*forms.PostForm)
	assert.True(t, form.Errors.Has("text"))
	assert.True(t, form.Errors.Has("group"))
	assert.True(t, form.Errors.Has("image"))
	assert.Equal(t, false, call.data["is_edit"])

	entries, err := os.ReadDir(filepath.Join(env.mediaRoot, "posts"))
	require.NoError(t, err)
	assert.Empty(t, entries, "nothing is stored for an invalid form")
}

func TestNewPostRequiresLogin(t *testing.T) {
	env := newTestEnv(t, false)
	client := env.client(t)

	assertRedirect(t, get(t, client, env.url("/new/")), "/auth/login/?next=%2Fnew%2F")

	resp := postForm(t, client, env.url("/new/"), url.Values{"text": {"sneaky"}})
	assertRedirect(t, resp, "/auth/login/?next=%2Fnew%2F")
	assert.Zero(t, env.postCount(t))
}

func TestPathsWithoutTrailingSlash(t *testing.T) {
	env := newTestEnv(t, false)
	user := env.createUser(t, "leo")
	client := env.loginAs(t, user)

	resp := postForm(t, client, env.url("/new"), url.Values{"text": {"no slash"}})
	assertRedirect(t, resp, "/")
	assert.Equal(t, int64(1), env.postCount(t))

	assert.Equal(t, http.StatusOK, get(t, client, env.url("/leo")).StatusCode)
}

func TestEditPostByNonAuthor(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	other := env.createUser(t, "max")
	group := env.createGroup(t, "Cats", "cats")
	post := &model.Post{Text: "original", AuthorID: author.ID, GroupID: &group.ID, Image: "posts/original.gif"}
	require.NoError(t, env.store.CreatePost(context.Background(), post))

	client := env.loginAs(t, other)
	detail := fmt.Sprintf("/leo/%d/", post.ID)

	assertRedirect(t, get(t, client, env.url(detail+"edit/")), detail)
	resp := postForm(t, client, env.url(detail+"edit/"), url.Values{"text": {"changed"}, "image-clear": {"on"}})
	assertRedirect(t, resp, detail)
	resp = postMultipart(t, client, env.url(detail+"edit/"), map[string]string{"text": "changed"}, "small.gif", smallGIF)
	assertRedirect(t, resp, detail)

	stored, err := env.store.PostByAuthor(context.Background(), "leo", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Text)
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, group.ID, *stored.GroupID)
	assert.Equal(t, "posts/original.gif", stored.Image)

	entries, err := os.ReadDir(filepath.Join(env.mediaRoot, "posts"))
	require.NoError(t, err)
	assert.Empty(t, entries, "a rejected edit stores no upload")
}

func TestEditPostByAuthor(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	group := env.createGroup(t, "Cats", "cats")
	post := env.createPost(t, author, "original", group)

	client := env.loginAs(t, author)
	detail := fmt.Sprintf("/leo/%d/", post.ID)

	resp := get(t, client, env.url(detail+"edit/"))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	call := env.views.last(t)
	assert.Equal(t, "new.html", call.name)
	assert.Equal(t, true, call.data["is_edit"])
	assert.Equal(t, "original", call.data["form"].(*forms.PostForm).Text)

	resp = postMultipart(t, client, env.url(detail+"edit/"), map[string]string{"text": "changed"}, "small.gif", smallGIF)
	assertRedirect(t, resp, detail)

	stored, err := env.store.PostByAuthor(context.Background(), "leo", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "changed", stored.Text)
	assert.Nil(t, stored.GroupID)
	require.NotEmpty(t, stored.Image)
	firstImage := stored.Image

	// No upload keeps the image, the clear checkbox removes it.
	resp = postForm(t, client, env.url(detail+"edit/"), url.Values{"text": {"again"}})
	assertRedirect(t, resp, detail)
	stored, err = env.store.PostByAuthor(context.Background(), "leo", post.ID)
	require.NoError(t, err)
	assert.Equal(t, firstImage, stored.Image)

	resp = postForm(t, client, env.url(detail+"edit/"), url.Values{"text": {"again"}, "image-clear": {"on"}})
	assertRedirect(t, resp, detail)
	stored, err = env.store.PostByAuthor(context.Background(), "leo", post.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Image)
	assert.NoFileExists(t, filepath.Join(env.mediaRoot, filepath.FromSlash(firstImage)))
}

func TestEditPostInvalid(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	post := env.createPost(t, author, "original", nil)
	client := env.loginAs(t, author)

	resp := postForm(t, client, env.url(fmt.Sprintf("/leo/%d/edit/", post.ID)), url.Values{"text": {""}})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	call := env.views.last(t)
	assert.Equal(t, "new.html", call.name)
	assert.True(t, call.data["form"].(*forms.PostForm).Errors.Has("text"))

	stored, err := env.store.PostByAuthor(context.Background(), "leo", post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", stored.Text)
}

func TestPostView(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	other := env.createUser(t, "max")
	post := env.createPost(t, author, "T", nil)
	env.createPost(t, author, "second", nil)
	require.NoError(t, env.store.CreateComment(context.Background(), &model.Comment{
		PostID: post.ID, AuthorID: other.ID, Text: "nice",
	}))
	client := env.client(t)

	resp := get(t, client, env.url(fmt.Sprintf("/leo/%d/", post.ID)))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	call := env.views.last(t)
	assert.Equal(t, "post.html", call.name)
	assert.Equal(t, "T", call.data["post"].(*model.Post).Text)
	assert.Equal(t, "leo", call.data["author"].(*model.User).Username)
	assert.Equal(t, int64(2), call.data["posts_count"])
	comments := call.data["comments"].([]model.Comment)
	require.Len(t, comments, 1)
	assert.Equal(t, "nice", comments[0].Text)
	assert.Equal(t, "max", comments[0].Author.Username)

	resp = get(t, client, env.url(fmt.Sprintf("/max/%d/", post.ID)))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "misc/404.html", env.views.last(t).name)

	resp = get(t, client, env.url("/leo/9999/"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddComment(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	reader := env.createUser(t, "max")
	post := env.createPost(t, author, "T", nil)
	detail := fmt.Sprintf("/leo/%d/", post.ID)
	ctx := context.Background()

	anonymous := env.client(t)
	resp := postForm(t, anonymous, env.url(detail+"comment/"), url.Values{"text": {"hi"}})
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Location"), "/auth/login/?next=")

	client := env.loginAs(t, reader)
	resp = postForm(t, client, env.url(detail+"comment/"), url.Values{"text": {""}})
	assertRedirect(t, resp, detail)
	n, err := env.store.CountComments(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	assertRedirect(t, get(t, client, env.url(detail+"comment/")), detail)
	n, err = env.store.CountComments(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	resp = postForm(t, client, env.url(detail+"comment/"), url.Values{
		"text":   {"hello"},
		"author": {strconv.FormatUint(uint64(author.ID), 10)},
	})
	assertRedirect(t, resp, detail)

	comments, err := env.store.Comments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "hello", comments[0].Text)
	assert.Equal(t, reader.ID, comments[0].AuthorID)
}

func TestPagination(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	group := env.createGroup(t, "Cats", "cats")
	reader := env.createUser(t, "max")
	for i := 0; i < 13; i++ {
		env.createPost(t, author, fmt.Sprintf("post %d", i), group)
	}
	_, err := env.store.Follow(context.Background(), reader.ID, author.ID)
	require.NoError(t, err)
	client := env.loginAs(t, reader)

	for _, path := range []string{"/", "/group/cats/", "/leo/", "/follow/"} {
		tests := []struct {
			query  string
			number int
			items  int
		}{
			{"", 1, 10},
			{"?page=2", 2, 3},
			{"?page=99", 2, 3},
			{"?page=99999999999999999999", 2, 3},
			{"?page=abc", 1, 10},
			{"?page=0", 1, 10},
		}
		for _, tc := range tests {
			resp := get(t, client, env.url(path+tc.query))
			require.Equal(t, http.StatusOK, resp.StatusCode, path+tc.query)
			page := env.views.last(t).data["page"].(*paginator.Page[model.Post])
			assert.Equal(t, tc.number, page.Number, path+tc.query)
			assert.Len(t, page.Items, tc.items, path+tc.query)
			assert.Equal(t, 2, page.NumPages)
		}
	}
}

func TestNewestPostFirst(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	env.createPost(t, author, "older", nil)
	env.createPost(t, author, "newer", nil)

	get(t, env.client(t), env.url("/leo/"))
	page := env.views.last(t).data["page"].(*paginator.Page[model.Post])
	require.Len(t, page.Items, 2)
	assert.Equal(t, "newer", page.Items[0].Text)
}

func TestIndexIsCached(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	client := env.client(t)

	assertNotContains(t, get(t, client, env.url("/")), "post=fresh")

	env.createPost(t, author, "fresh", nil)
	assertNotContains(t, get(t, client, env.url("/")), "post=fresh")

	require.NoError(t, env.srv.ClearCache(context.Background()))
	assertContains(t, get(t, client, env.url("/")), "post=fresh")
}

func TestGroups(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	cats := env.createGroup(t, "Cats", "cats")
	env.createGroup(t, "Dogs", "dogs")
	env.createPost(t, author, "meow", cats)
	env.createPost(t, author, "no group", nil)
	client := env.client(t)

	resp := get(t, client, env.url("/group/"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	groups := env.views.last(t).data["groups"].([]model.Group)
	require.Len(t, groups, 2)
	assert.Equal(t, "Dogs", groups[0].Title)

	resp = get(t, client, env.url("/group/cats/"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	call := env.views.last(t)
	assert.Equal(t, "group.html", call.name)
	assert.Equal(t, "cats", call.data["group"].(*model.Group).Slug)
	page := call.data["page"].(*paginator.Page[model.Post])
	require.Len(t, page.Items, 1)
	assert.Equal(t, "meow", page.Items[0].Text)

	assert.Equal(t, http.StatusNotFound, get(t, client, env.url("/group/birds/")).StatusCode)
}

func TestProfile(t *testing.T) {
	env := newTestEnv(t, false)
	author := env.createUser(t, "leo")
	reader := env.createUser(t, "max")
	env.createPost(t, author, "hello", nil)
	_, err := env.store.Follow(context.Background(), reader.ID, author.ID)
	require.NoError(t, err)

	resp := get(t, env.loginAs(t, reader), env.url("/leo/"))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	call := env.views.last(t)
	assert.Equal(t, "profile.html", call.name)
	assert.Equal(t, "leo", call.data["author"].(*model.User).Username)
	assert.Equal(t, int64(1), call.data["followers_count"])
	assert.Equal(t, int64(0), call.data["following_count"])
	assert.Equal(t, true, call.data["following"])

	get(t, env.client(t), env.url("/leo/"))
	assert.Equal(t, false, env.views.last(t).data["following"])

	assert.Equal(t, http.StatusNotFound, get(t, env.client(t), env.url("/nobody/")).StatusCode)
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t, false)

	resp := get(t, env.client(t), env.url("/leo/1/nothing/here/"))
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	call := env.views.last(t)
	assert.Equal(t, "misc/404.html", call.name)
	assert.Equal(t, "/leo/1/nothing/here/", call.data["path"])
}

func TestDeletedUserIsAnonymous(t *testing.T) {
	env := newTestEnv(t, false)
	user := env.createUser(t, "leo")
	client := env.loginAs(t, user)
	require.NoError(t, env.store.DeleteUser(context.Background(), user.ID))

	assertRedirect(t, get(t, client, env.url("/follow/")), "/auth/login/?next=%2Ffollow%2F")
}

func TestStorageFailureRendersServerError(t *testing.T) {
	env := newTestEnv(t, false)
	env.createUser(t, "leo")
	require.NoError(t, env.store.Close())

	resp := get(t, env.client(t), env.url("/leo/"))
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "misc/500.html", env.views.last(t).name)
}
