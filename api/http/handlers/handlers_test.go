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
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apihttp "github.com/artem13815/places/api/http"
	"github.com/artem13815/places/api/http/handlers"
	"github.com/artem13815/places/pkg/auth"
	"github.com/artem13815/places/pkg/health"
	"github.com/artem13815/places/pkg/place"
	"github.com/artem13815/places/pkg/security/jwt"
	"github.com/artem13815/places/pkg/upload"
)

const (
	testSecret = "test-secret"
	testIssuer = "places-service"
)

type fakeAuthUC struct {
	registerErr error
	loginErr    error
	result      auth.AuthResult
	users       []auth.User
}

func (f *fakeAuthUC) Register(ctx context.Context, name, email, password, imageRef string) (auth.AuthResult, error) {
	if f.registerErr != nil {
		return auth.AuthResult{}, f.registerErr
	}
	return f.result, nil
}

func (f *fakeAuthUC) Login(ctx context.Context, email, password string) (auth.AuthResult, error) {
	if f.loginErr != nil {
		return auth.AuthResult{}, f.loginErr
	}
	return f.result, nil
}

func (f *fakeAuthUC) ListUsers(ctx context.Context) ([]auth.User, error) {
	return f.users, nil
}

type fakePlaceUC struct {
	place     place.Place
	places    []place.Place
	err       error
	deleted   []uuid.UUID
	lastIdent uuid.UUID
}

func (f *fakePlaceUC) Create(ctx context.Context, creatorID uuid.UUID, title, description string, loc place.Location, address, imageRef string) (place.Place, error) {
	f.lastIdent = creatorID
	return f.place, f.err
}

func (f *fakePlaceUC) GetByID(ctx context.Context, id uuid.UUID) (place.Place, error) {
	return f.place, f.err
}

func (f *fakePlaceUC) ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]place.Place, error) {
	return f.places, f.err
}

func (f *fakePlaceUC) Update(ctx context.Context, identity, id uuid.UUID, title, description string) (place.Place, error) {
	f.lastIdent = identity
	return f.place, f.err
}

func (f *fakePlaceUC) Delete(ctx context.Context, identity, id uuid.UUID) error {
	f.lastIdent = identity
	if f.err == nil {
		f.deleted = append(f.deleted, id)
	}
	return f.err
}

func newApp(t *testing.T, authUC auth.AuthUseCase, placeUC place.UseCase, uploadDir string) *fiber.App {
	t.Helper()
	app := fiber.New()
	uploads := upload.NewStore(uploadDir)
	apihttp.Register(app,
		handlers.NewUserHandler(authUC, uploads),
		handlers.NewPlaceHandler(placeUC, uploads),
		handlers.NewHealthHandler(health.NewService()),
		jwt.NewAuthMiddleware(testSecret, testIssuer),
	)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func bearerFor(t *testing.T, id uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewGenerator(testSecret, testIssuer, time.Hour).
		Generate(context.Background(), auth.User{ID: id, Email: "a@x.com"})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestLoginFailureBodyIsIdentical(t *testing.T) {
	app := newApp(t, &fakeAuthUC{loginErr: auth.ErrInvalidCredentials}, &fakePlaceUC{}, t.TempDir())

	resp1, body1 := doJSON(t, app, http.MethodPost, "/api/users/login",
		map[string]string{"email": "a@x.com", "password": "wrongpass"}, nil)
	resp2, body2 := doJSON(t, app, http.MethodPost, "/api/users/login",
		map[string]string{"email": "nouser@x.com", "password": "anything"}, nil)

	assert.Equal(t, http.StatusUnauthorized, resp1.StatusCode)
	assert.Equal(t, http.StatusUnauthorized, resp2.StatusCode)
	assert.Equal(t, body1["message"], body2["message"])
}

func TestListUsersOmitsPasswordHash(t *testing.T) {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	app := newApp(t, &fakeAuthUC{users: []auth.User{{
		ID: uuid.New(), Name: "Alice", Email: "a@x.com", PasswordHash: hash,
	}}}, &fakePlaceUC{}, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "a@x.com")
	assert.NotContains(t, string(raw), hash)
	assert.NotContains(t, string(raw), "password")
}

func TestMutatingPlaceRoutesRequireToken(t *testing.T) {
	app := newApp(t, &fakeAuthUC{}, &fakePlaceUC{}, t.TempDir())

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/places/"},
		{http.MethodPatch, "/api/places/" + uuid.NewString()},
		{http.MethodDelete, "/api/places/" + uuid.NewString()},
	} {
		resp, body := doJSON(t, app, tc.method, tc.path, map[string]string{}, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, "%s %s", tc.method, tc.path)
		assert.Equal(t, "Authentication failed", body["message"])
	}
}

func TestReadOnlyPlaceRoutesArePublic(t *testing.T) {
	p := place.Place{ID: uuid.New(), Title: "Eiffel", CreatorID: uuid.New()}
	app := newApp(t, &fakeAuthUC{}, &fakePlaceUC{place: p, places: []place.Place{p}}, t.TempDir())

	resp, body := doJSON(t, app, http.MethodGet, "/api/places/"+p.ID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	assert.Equal(t, "Eiffel", data["title"])

	resp, _ = doJSON(t, app, http.MethodGet, "/api/places/user/"+p.CreatorID.String(), nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestDeletePlaceResponse(t *testing.T) {
	uc := &fakePlaceUC{}
	app := newApp(t, &fakeAuthUC{}, uc, t.TempDir())
	identity := uuid.New()
	placeID := uuid.New()

	resp, body := doJSON(t, app, http.MethodDelete, "/api/places/"+placeID.String(), nil,
		map[string]string{"Authorization": bearerFor(t, identity)})

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Deleted place", body["message"])
	assert.Equal(t, identity, uc.lastIdent, "verified token subject is the acting identity")
	assert.Equal(t, []uuid.UUID{placeID}, uc.deleted)
}

func TestUpdatePlaceForbidden(t *testing.T) {
	app := newApp(t, &fakeAuthUC{}, &fakePlaceUC{err: place.ErrForbidden}, t.TempDir())

	resp, body := doJSON(t, app, http.MethodPatch, "/api/places/"+uuid.NewString(),
		map[string]string{"title": "Mine", "description": "long enough"},
		map[string]string{"Authorization": bearerFor(t, uuid.New())})

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, place.ErrForbidden.Error(), body["message"])
}

func signupBody(t *testing.T) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("name", "Alice"))
	require.NoError(t, w.WriteField("email", "a@x.com"))
	require.NoError(t, w.WriteField("password", "secret1"))
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="image"; filename="avatar.png"`)
	h.Set("Content-Type", "image/png")
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSignupStagedImageIsDiscardedOnConflict(t *testing.T) {
	dir := t.TempDir()
	app := newApp(t, &fakeAuthUC{registerErr: auth.ErrUserAlreadyExists}, &fakePlaceUC{}, dir)

	body, contentType := signupBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/users/signup", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "staged image must not survive a failed signup")
}

func TestSignupSuccess(t *testing.T) {
	dir := t.TempDir()
	user := auth.User{ID: uuid.New(), Name: "Alice", Email: "a@x.com"}
	app := newApp(t, &fakeAuthUC{result: auth.AuthResult{User: user, Token: "tok"}}, &fakePlaceUC{}, dir)

	body, contentType := signupBody(t)
	req := httptest.NewRequest(http.MethodPost, "/api/users/signup", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Contains(t, string(raw), `"token":"tok"`)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "image stays staged on success")
	assert.True(t, strings.HasSuffix(entries[0].Name(), ".png"))
}

func TestUnknownRouteGetsNotFoundEnvelope(t *testing.T) {
	app := newApp(t, &fakeAuthUC{}, &fakePlaceUC{}, t.TempDir())
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "Could not find this route"})
	})

	resp, body := doJSON(t, app, http.MethodGet, "/api/nope", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Could not find this route", body["message"])
}
