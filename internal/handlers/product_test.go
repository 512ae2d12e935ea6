package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop/internal/models"
)

func TestCreateProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartProduct(t, "cam shot.png", "image/png", productFields())

	rec, c := env.doMultipartRequest("/api/products", body, contentType)
	require.NoError(t, env.P.CreateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "camera", resp.Name)
	assert.Equal(t, 199.90, resp.Price)
	assert.Equal(t, 5, resp.CountInStock)
	assert.True(t, strings.HasPrefix(resp.Image, "http://localhost:8080/public/uploads/cam-shot-"), "got %q", resp.Image)
	assert.True(t, strings.HasSuffix(resp.Image, ".png"), "got %q", resp.Image)
	assert.Equal(t, 0, resp.NumReviews)

	assert.Equal(t, 1, env.Products.count())
}

func TestCreateProduct_RejectsGif(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartProduct(t, "anim.gif", "image/gif", productFields())

	_, c := env.doMultipartRequest("/api/products", body, contentType)
	requireHTTPError(t, env.P.CreateProduct(c), http.StatusBadRequest)

	// Rejected before any document write.
	assert.Equal(t, 0, env.Products.count())
}

func TestCreateProduct_MissingImage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartProduct(t, "", "", productFields())

	_, c := env.doMultipartRequest("/api/products", body, contentType)
	requireHTTPError(t, env.P.CreateProduct(c), http.StatusBadRequest)
	assert.Equal(t, 0, env.Products.count())
}

func TestCreateProduct_NegativePrice(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	fields := productFields()
	fields["price"] = "-5"
	body, contentType := multipartProduct(t, "cam.png", "image/png", fields)

	_, c := env.doMultipartRequest("/api/products", body, contentType)
	requireHTTPError(t, env.P.CreateProduct(c), http.StatusBadRequest)
	assert.Equal(t, 0, env.Products.count())
}

func TestGetProduct_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	_, c := env.doJSONRequest(http.MethodGet, "/api/products/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())
	requireHTTPError(t, env.P.GetProduct(c), http.StatusNotFound)
}

func TestGetProducts_Pagination(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	for i := 0; i < 12; i++ {
		_, err := env.Products.CreateProduct(t.Context(), &models.Product{Name: "p"})
		require.NoError(t, err)
	}

	rec, c := env.doJSONRequest(http.MethodGet, "/api/products?page=1&size=10", nil)
	require.NoError(t, env.P.GetProducts(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []models.Product `json:"data"`
		Meta struct {
			Total   int64 `json:"total"`
			HasNext bool  `json:"has_next"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 10)
	assert.Equal(t, int64(12), resp.Meta.Total)
	assert.True(t, resp.Meta.HasNext)
}

func TestUpdateProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product, err := env.Products.CreateProduct(t.Context(), &models.Product{
		Name:  "old name",
		Price: 10,
	})
	require.NoError(t, err)

	fields := productFields()
	fields["name"] = "new name"
	body, contentType := multipartProduct(t, "new.jpeg", "image/jpeg", fields)

	rec, c := env.doMultipartRequest("/api/products/:id", body, contentType)
	c.SetParamNames("id")
	c.SetParamValues(product.ID.Hex())
	require.NoError(t, env.P.UpdateProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.Products.GetProductByID(t.Context(), product.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "new name", stored.Name)
	assert.Equal(t, 199.90, stored.Price)
	assert.True(t, strings.HasSuffix(stored.Image, ".jpeg"), "got %q", stored.Image)
}

func TestUpdateProduct_NotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartProduct(t, "new.jpeg", "image/jpeg", productFields())

	_, c := env.doMultipartRequest("/api/products/:id", body, contentType)
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())
	requireHTTPError(t, env.P.UpdateProduct(c), http.StatusNotFound)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	product, err := env.Products.CreateProduct(t.Context(), &models.Product{Name: "p"})
	require.NoError(t, err)

	rec, c := env.doJSONRequest(http.MethodDelete, "/api/products/:id", nil)
	c.SetParamNames("id")
	c.SetParamValues(product.ID.Hex())
	require.NoError(t, env.P.DeleteProduct(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c2 := env.doJSONRequest(http.MethodDelete, "/api/products/:id", nil)
	c2.SetParamNames("id")
	c2.SetParamValues(product.ID.Hex())
	requireHTTPError(t, env.P.DeleteProduct(c2), http.StatusNotFound)
}

func TestDeleteProduct_RemovesImage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartProduct(t, "cam.png", "image/png", productFields())
	rec, c := env.doMultipartRequest("/api/products", body, contentType)
	require.NoError(t, env.P.CreateProduct(c))

	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	imagePath := env.uploadedFile(created.Image)
	_, err := os.Stat(imagePath)
	require.NoError(t, err, "image must exist before delete")

	_, c2 := env.doJSONRequest(http.MethodDelete, "/api/products/:id", nil)
	c2.SetParamNames("id")
	c2.SetParamValues(created.ID.Hex())
	require.NoError(t, env.P.DeleteProduct(c2))

	_, err = os.Stat(imagePath)
	assert.True(t, os.IsNotExist(err), "image must be gone after delete")
}

func TestUpdateProduct_ReplacesImage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	body, contentType := multipartProduct(t, "old.png", "image/png", productFields())
	rec, c := env.doMultipartRequest("/api/products", body, contentType)
	require.NoError(t, env.P.CreateProduct(c))

	var created models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	oldPath := env.uploadedFile(created.Image)
	_, err := os.Stat(oldPath)
	require.NoError(t, err)

	body2, contentType2 := multipartProduct(t, "new.jpeg", "image/jpeg", productFields())
	_, c2 := env.doMultipartRequest("/api/products/:id", body2, contentType2)
	c2.SetParamNames("id")
	c2.SetParamValues(created.ID.Hex())
	require.NoError(t, env.P.UpdateProduct(c2))

	stored, err := env.Products.GetProductByID(t.Context(), created.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)

	_, err = os.Stat(env.uploadedFile(stored.Image))
	assert.NoError(t, err, "new image must exist")
	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err), "old image must be gone after replacement")
}

func TestCreateReview(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user, err := env.Users.CreateUser(t.Context(), &models.User{Name: "Alice", Email: "a@example.com"})
	require.NoError(t, err)
	product, err := env.Products.CreateProduct(t.Context(), &models.Product{Name: "camera"})
	require.NoError(t, err)

	rec, c := env.doJSONRequest(http.MethodPost, "/api/products/:id/reviews", CreateReviewRequest{Rating: 4, Comment: "solid"})
	c.SetParamNames("id")
	c.SetParamValues(product.ID.Hex())
	asLoggedIn(c, user.ID, false)
	require.NoError(t, env.P.CreateReview(c))
	require.Equal(t, http.StatusOK, rec.Code)

	stored, err := env.Products.GetProductByID(t.Context(), product.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Len(t, stored.Reviews, 1)
	assert.Equal(t, "Alice", stored.Reviews[0].Name)
	assert.Equal(t, 1, stored.NumReviews)
	assert.Equal(t, 4.0, stored.Rating)
}

func TestCreateReview_Duplicate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user, err := env.Users.CreateUser(t.Context(), &models.User{Name: "Alice", Email: "a@example.com"})
	require.NoError(t, err)
	product, err := env.Products.CreateProduct(t.Context(), &models.Product{Name: "camera"})
	require.NoError(t, err)

	submit := func() error {
		_, c := env.doJSONRequest(http.MethodPost, "/api/products/:id/reviews", CreateReviewRequest{Rating: 5, Comment: "great"})
		c.SetParamNames("id")
		c.SetParamValues(product.ID.Hex())
		asLoggedIn(c, user.ID, false)
		return env.P.CreateReview(c)
	}

	require.NoError(t, submit())
	requireHTTPError(t, submit(), http.StatusBadRequest)

	stored, err := env.Products.GetProductByID(t.Context(), product.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 1, stored.NumReviews, "count unchanged after rejected duplicate")
}

func TestCreateReview_ProductNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	user, err := env.Users.CreateUser(t.Context(), &models.User{Name: "Alice", Email: "a@example.com"})
	require.NoError(t, err)

	_, c := env.doJSONRequest(http.MethodPost, "/api/products/:id/reviews", CreateReviewRequest{Rating: 5})
	c.SetParamNames("id")
	c.SetParamValues(primitive.NewObjectID().Hex())
	asLoggedIn(c, user.ID, false)
	requireHTTPError(t, env.P.CreateReview(c), http.StatusNotFound)
}
