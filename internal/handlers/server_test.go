package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"wikihub/internal/export"
	"wikihub/internal/handlers"
	"wikihub/internal/models"
	"wikihub/internal/repository/inmem"
	"wikihub/internal/routes"
	"wikihub/internal/services"
	"wikihub/internal/storage"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "handlers-test-secret"

type fakePrinter struct{ err error }

func (p fakePrinter) PrintPDF(_ context.Context, html string) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return []byte("%PDF-1.4 " + html[:10]), nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type server struct {
	t      *testing.T
	router *mux.Router
	auth   *services.AuthService
	blobs  storage.Blobs
}

type serverOpts struct {
	printer export.Printer
	dbErr   error
}

func newServer(t *testing.T, opts ...func(*serverOpts)) *server {
	t.Helper()
	o := serverOpts{printer: fakePrinter{}}
	for _, fn := range opts {
		fn(&o)
	}

	disk, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	store := inmem.NewStore()
	notifier := services.NewNotifier(nil)
	limits := services.DefaultUploadLimits()
	articles := services.NewArticleService(services.ArticleDeps{
		Articles:   store.Articles(),
		Workspaces: store.Workspaces(),
		Comments:   store.Comments(),
		Blobs:      disk,
		Notifier:   notifier,
		Limits:     limits,
	})
	auth := services.NewAuthService(store.Users(), jwtSecret, time.Hour)

	router := mux.NewRouter()
	routes.InitRoutes(router, routes.Handlers{
		Auth:       handlers.NewAuthHandler(auth),
		Article:    handlers.NewArticleHandler(articles, export.NewService(o.printer, "")),
		Attachment: handlers.NewAttachmentHandler(articles, limits),
		Version:    handlers.NewVersionHandler(articles),
		Comment:    handlers.NewCommentHandler(services.NewCommentService(store.Comments(), store.Articles(), notifier)),
		Workspace:  handlers.NewWorkspaceHandler(services.NewWorkspaceService(store.Workspaces())),
		Admin:      handlers.NewAdminHandler(services.NewUserService(store.Users())),
		Logs:       handlers.NewAdminLogsHandler(t.TempDir()),
		Health:     handlers.NewHealthHandler(fakePinger{err: o.dbErr}),
		Uploads:    handlers.NewUploadsHandler(disk),
	}, jwtSecret)

	return &server{t: t, router: router, auth: auth, blobs: disk}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Code  string          `json:"code"`
}

type result struct {
	*httptest.ResponseRecorder
	env envelope
}

// into разбирает data ответа в dst.
func (r result) into(t *testing.T, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.env.Data, dst), r.Body.String())
}

func (s *server) do(method, path, token string, body io.Reader, contentType string) result {
	s.t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	res := result{ResponseRecorder: rec}
	if rec.Header().Get("Content-Type") == "application/json" && rec.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &res.env), rec.Body.String())
	}
	return res
}

func (s *server) json(method, path, token string, payload any) result {
	s.t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(s.t, err)
		body = bytes.NewReader(raw)
	}
	return s.do(method, path, token, body, "application/json")
}

// register заводит пользователя через API и возвращает токен.
func (s *server) register(email, name string) (string, *models.User) {
	s.t.Helper()
	res := s.json(http.MethodPost, "/api/auth/register", "", models.RegisterRequest{
		Email: email, Password: "secret123", Name: name,
	})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Body.String())
	var auth models.AuthResponse
	res.into(s.t, &auth)
	return auth.Token, auth.User
}

func (s *server) admin() (string, *models.User) {
	s.t.Helper()
	_, err := s.auth.CreateUser(context.Background(), "root@example.com", "secret123", "Root", models.RoleAdmin)
	require.NoError(s.t, err)
	res := s.json(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Email: "root@example.com", Password: "secret123"})
	require.Equal(s.t, http.StatusOK, res.Code, res.Body.String())
	var auth models.AuthResponse
	res.into(s.t, &auth)
	return auth.Token, auth.User
}

func (s *server) createArticle(token, title string) *models.Article {
	s.t.Helper()
	res := s.json(http.MethodPost, "/api/articles", token, models.CreateArticleRequest{
		Title: title, Content: "<p>" + title + "</p>",
	})
	require.Equal(s.t, http.StatusCreated, res.Code, res.Body.String())
	var a models.Article
	res.into(s.t, &a)
	return &a
}

type part struct {
	name, contentType, body string
}

func multipartBody(t *testing.T, parts ...part) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.name+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write([]byte(p.body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

