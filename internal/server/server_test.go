package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"

	"yatube/internal/media"
	"yatube/internal/model"
	"yatube/internal/pagecache"
	"yatube/internal/paginator"
	"yatube/internal/storage"
)

type renderCall struct {
	name string
	data ViewData
}

// recordingRenderer keeps every render call and writes the template name
// followed by the texts of the listed posts.
type recordingRenderer struct {
	mu    sync.Mutex
	calls []renderCall
}

func (rr *recordingRenderer) Render(w io.Writer, name string, data ViewData) error {
	rr.mu.Lock()
	rr.calls = append(rr.calls, renderCall{name: name, data: data})
	rr.mu.Unlock()

	fmt.Fprintf(w, "template=%s\n", name)
	if page, ok := data["page"].(*paginator.Page[model.Post]); ok {
		for _, p := range page.Items {
			fmt.Fprintf(w, "post=%s\n", p.Text)
		}
	}
	return nil
}

func (rr *recordingRenderer) last(t *testing.T) renderCall {
	t.Helper()
	rr.mu.Lock()
	defer rr.mu.Unlock()
	require.NotEmpty(t, rr.calls, "nothing was rendered")
	return rr.calls[len(rr.calls)-1]
}

type testEnv struct {
	srv       *Server
	http      *httptest.Server
	store     *storage.Storage
	mediaRoot string
	cookies   *sessions.CookieStore
	views     *recordingRenderer
}

// newTestEnv starts a server over a fresh database. With templates the real
// pages are rendered, otherwise a recordingRenderer captures the view data.
func newTestEnv(t *testing.T, templates bool) *testEnv {
	t.Helper()
	dir := t.TempDir()

	store, err := storage.OpenSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate())
	t.Cleanup(func() { _ = store.Close() })

	mediaRoot := filepath.Join(dir, "media")
	mediaStore, err := media.NewLocalStore(mediaRoot, "/media/")
	require.NoError(t, err)

	env := &testEnv{
		store:     store,
		mediaRoot: mediaRoot,
		cookies:   NewCookieStore("test-session-key"),
	}
	opts := Options{
		Storage:   store,
		Media:     mediaStore,
		Cache:     pagecache.New(pagecache.NewMemoryStore(64), 20*time.Second),
		Sessions:  env.cookies,
		MediaRoot: mediaRoot,
	}
	if !templates {
		env.views = &recordingRenderer{}
		opts.Renderer = env.views
	}
	env.srv, err = New(opts)
	require.NoError(t, err)

	env.http = httptest.NewServer(env.srv)
	t.Cleanup(env.http.Close)
	return env
}

func (e *testEnv) url(path string) string {
	return e.http.URL + path
}

// client does not follow redirects so tests can check where they point.
func (e *testEnv) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// loginAs returns a client whose session belongs to user.
func (e *testEnv) loginAs(t *testing.T, user *model.User) *http.Client {
	t.Helper()
	client := e.client(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	session, err := e.cookies.Get(req, sessionName)
	require.NoError(t, err)
	session.Values[sessionUserID] = user.ID
	require.NoError(t, session.Save(req, rec))

	u, err := url.Parse(e.http.URL)
	require.NoError(t, err)
	client.Jar.SetCookies(u, rec.Result().Cookies())
	return client
}

func (e *testEnv) createUser(t *testing.T, username string) *model.User {
	t.Helper()
	hash, err := HashPassword("default-password")
	require.NoError(t, err)
	user := &model.User{Username: username, PasswordHash: hash}
	require.NoError(t, e.store.CreateUser(context.Background(), user))
	return user
}

func (e *testEnv) createGroup(t *testing.T, title, slug string) *model.Group {
	t.Helper()
	group := &model.Group{Title: title, Slug: slug, Description: title + " posts"}
	require.NoError(t, e.store.CreateGroup(context.Background(), group))
	return group
}

func (e *testEnv) createPost(t *testing.T, author *model.User, text string, group *model.Group) *model.Post {
	t.Helper()
	post := &model.Post{Text: text, AuthorID: author.ID}
	if group != nil {
		post.GroupID = &group.ID
	}
	require.NoError(t, e.store.CreatePost(context.Background(), post))
	return post
}

func (e *testEnv) postCount(t *testing.T) int64 {
	t.Helper()
	n, err := e.store.CountPosts(context.Background())
	require.NoError(t, err)
	return n
}

func get(t *testing.T, client *http.Client, u string) *http.Response {
	t.Helper()
	resp, err := client.Get(u)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func postForm(t *testing.T, client *http.Client, u string, data url.Values) *http.Response {
	t.Helper()
	resp, err := client.PostForm(u, data)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func postMultipart(t *testing.T, client *http.Client, u string, values map[string]string, fileName string, file []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range values {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := w.CreateFormFile("image", fileName)
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	resp, err := client.Post(u, w.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, location, resp.Header.Get("Location"))
}

func assertContains(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	body := string(bodyBytes)
	if !strings.Contains(body, expected) {
		t.Errorf("Expected response to contain %q but got %q", expected, body)
	}
}

func assertNotContains(t *testing.T, resp *http.Response, expected string) {
	t.Helper()
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}

	body := string(bodyBytes)
	if strings.Contains(body, expected) {
		t.Errorf("Expected response not to contain %q but got %q", expected, body)
	}
}

var smallGIF = []byte{
	0x47, 0x49, 0x46, 0x38, 0x39, 0x61, 0x02, 0x00,
	0x01, 0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00,
	0xFF, 0xFF, 0xFF, 0x21, 0xF9, 0x04, 0x00, 0x00,
	0x00, 0x00, 0x00, 0x2C, 0x00, 0x00, 0x00, 0x00,
	0x02, 0x00, 0x01, 0x00, 0x00, 0x02, 0x02, 0x0C,
	0x0A, 0x00, 0x3B,
}
