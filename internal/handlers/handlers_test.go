package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path"
	"path/filepath"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop/internal/models"
	"proshop/internal/service"
	"proshop/internal/upload"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[primitive.ObjectID]models.User{}}
}

func (r *fakeUserRepo) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	r.users[user.ID] = *user
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUsers(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *fakeUserRepo) UpdateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) DeleteUser(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[primitive.ObjectID]models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[primitive.ObjectID]models.Product{}}
}

func (r *fakeProductRepo) CreateProduct(_ context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	r.products[product.ID] = *product
	return product, nil
}

func (r *fakeProductRepo) GetProducts(_ context.Context, offset, limit int) (int64, []models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := []models.Product{}
	for _, p := range r.products {
		all = append(all, p)
	}
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return int64(len(all)), all[offset:end], nil
}

func (r *fakeProductRepo) GetProductByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.products[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (r *fakeProductRepo) ReplaceProduct(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[product.ID] = *product
	return nil
}

func (r *fakeProductRepo) DeleteProduct(_ context.Context, id primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return false, nil
	}
	delete(r.products, id)
	return true, nil
}

func (r *fakeProductRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.products)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]interface{}
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m, ok := event.(map[string]interface{}); ok {
		m["_topic"] = topic
		p.events = append(p.events, m)
	}
	return nil
}

type testEnv struct {
	T         *testing.T
	E         *echo.Echo
	A         *AuthHandler
	U         *UserAdminHandler
	P         *ProductHandler
	Users     *fakeUserRepo
	Products  *fakeProductRepo
	Events    *recordingPublisher
	Tokens    *service.TokenService
	UploadDir string
}

func newTestEnv(t *testing.T) *testEnv {
	users := newFakeUserRepo()
	products := newFakeProductRepo()
	events := &recordingPublisher{}
	tokens := &service.TokenService{Secret: []byte("test-jwt-secret")}
	uploadDir := t.TempDir()

	env := &testEnv{
		T:         t,
		E:         echo.New(),
		Users:     users,
		Products:  products,
		Events:    events,
		Tokens:    tokens,
		UploadDir: uploadDir,
	}
	env.A = &AuthHandler{Users: users, Tokens: tokens, Producer: events}
	env.U = &UserAdminHandler{Users: users, Producer: events}
	env.P = &ProductHandler{
		Products: products,
		Users:    users,
		Store:    upload.NewDiskStore(uploadDir, "http://localhost:8080/public/uploads"),
		Producer: events,
	}
	return env
}

// uploadedFile maps an image URL back to its path under the test upload dir.
func (env *testEnv) uploadedFile(imageURL string) string {
	return filepath.Join(env.UploadDir, path.Base(imageURL))
}

func (env *testEnv) doJSONRequest(method, path string, payload interface{}) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(env.T, err)
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

// asLoggedIn mimics the access guard annotating the context.
func asLoggedIn(c echo.Context, userID primitive.ObjectID, isAdmin bool) {
	c.Set("userID", userID.Hex())
	c.Set("isAdmin", isAdmin)
}

func multipartProduct(t *testing.T, imageName, imageType string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}

	if imageName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+imageName+`"`)
		h.Set("Content-Type", imageType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("image-bytes"))
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func productFields() map[string]string {
	return map[string]string{
		"name":         "camera",
		"price":        "199.90",
		"brand":        "acme",
		"category":     "electronics",
		"countInStock": "5",
		"description":  "a camera",
	}
}

func (env *testEnv) doMultipartRequest(path string, body *bytes.Buffer, contentType string) (*httptest.ResponseRecorder, echo.Context) {
	env.T.Helper()

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError, got %v", err)
	require.Equal(t, code, he.Code)
}
