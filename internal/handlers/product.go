package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop/internal/es"
	"proshop/internal/logging"
	"proshop/internal/models"
	"proshop/internal/repo"
	"proshop/internal/upload"
	"proshop/internal/util"
)

type ProductHandler struct {
	Products repo.ProductRepository
	Users    repo.UserRepository
	Store    upload.Store
	Producer EventPublisher
	Indexer  *es.Indexer
}

func (h *ProductHandler) index(c echo.Context, product *models.Product) {
	if h.Indexer == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Indexer.IndexProduct(ctx, product); err != nil {
		logging.FromContext(ctx).Error("es_index_error", "productID", product.ID.Hex(), "error", err)
	}
}

// removeImage drops a stored image that no product references anymore.
// Failures are logged; the request already succeeded.
func (h *ProductHandler) removeImage(c echo.Context, fileURL string) {
	if fileURL == "" {
		return
	}
	ctx := c.Request().Context()
	if err := h.Store.Delete(ctx, fileURL); err != nil {
		logging.FromContext(ctx).Error("image_delete_error", "url", fileURL, "error", err)
	}
}

func (h *ProductHandler) deindex(c echo.Context, id string) {
	if h.Indexer == nil {
		return
	}
	ctx := c.Request().Context()
	if err := h.Indexer.DeleteProduct(ctx, id); err != nil {
		logging.FromContext(ctx).Error("es_deindex_error", "productID", id, "error", err)
	}
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_list")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	total, items, err := h.Products.GetProducts(ctx, offset, limit)
	if err != nil {
		l.Error("product_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list products")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"data": items,
		"meta": map[string]any{
			"page":        page,
			"size":        limit,
			"total":       total,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
			"has_prev":    page > 1,
			"has_next":    int64(offset+limit) < total,
		},
	})
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_get")

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		l.Warn("product_get_error", "status", 400, "reason", "malformed id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Products.GetProductByID(ctx, id)
	if err != nil {
		l.Error("product_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}
	if product == nil {
		l.Warn("product_get_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	return c.JSON(http.StatusOK, product)
}

// productForm reads the non-file multipart fields shared by create and
// update.
type productForm struct {
	Name         string
	Price        float64
	Brand        string
	Category     string
	CountInStock int
	Description  string
}

func bindProductForm(c echo.Context) (*productForm, error) {
	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil || price < 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "price must be a non-negative number")
	}
	count, err := strconv.Atoi(c.FormValue("countInStock"))
	if err != nil || count < 0 {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "countInStock must be a non-negative integer")
	}

	return &productForm{
		Name:         c.FormValue("name"),
		Price:        price,
		Brand:        c.FormValue("brand"),
		Category:     c.FormValue("category"),
		CountInStock: count,
		Description:  c.FormValue("description"),
	}, nil
}

// saveImage validates the uploaded part and writes it through the store.
// Runs before any product document is created or changed.
func (h *ProductHandler) saveImage(c echo.Context) (string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "no image in the request")
	}

	contentType := file.Header.Get(echo.HeaderContentType)
	if !upload.ValidType(contentType) {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid image type")
	}

	name, err := upload.FileName(file.Filename, contentType)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid image type")
	}

	src, err := file.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "cannot read image")
	}
	defer src.Close()

	url, err := h.Store.Save(c.Request().Context(), name, contentType, src)
	if err != nil {
		return "", echo.NewHTTPError(http.StatusInternalServerError, "cannot store image")
	}
	return url, nil
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_create")

	imageURL, err := h.saveImage(c)
	if err != nil {
		l.Warn("product_create_error", "error", err)
		return err
	}

	form, err := bindProductForm(c)
	if err != nil {
		l.Warn("product_create_error", "error", err)
		return err
	}

	product, err := h.Products.CreateProduct(ctx, &models.Product{
		Name:         form.Name,
		Price:        form.Price,
		Brand:        form.Brand,
		Category:     form.Category,
		CountInStock: form.CountInStock,
		Description:  form.Description,
		Image:        imageURL,
		Reviews:      []models.Review{},
	})
	if err != nil {
		l.Error("product_create_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create product")
	}

	publish(c, h.Producer, TopicProductEvents, product.ID.Hex(), map[string]interface{}{
		"type":      "product_created",
		"productID": product.ID.Hex(),
		"name":      product.Name,
	})
	h.index(c, product)

	l.Info("product_create_success", "productID", product.ID.Hex())
	return c.JSON(http.StatusOK, product)
}

// UpdateProduct is a full field replace; a fresh image is required, just as
// on create.
func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_update")

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		l.Warn("product_update_error", "status", 400, "reason", "malformed id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Products.GetProductByID(ctx, id)
	if err != nil {
		l.Error("product_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}
	if product == nil {
		l.Warn("product_update_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	imageURL, err := h.saveImage(c)
	if err != nil {
		l.Warn("product_update_error", "error", err)
		return err
	}

	form, err := bindProductForm(c)
	if err != nil {
		l.Warn("product_update_error", "error", err)
		return err
	}

	oldImage := product.Image

	product.Name = form.Name
	product.Price = form.Price
	product.Brand = form.Brand
	product.Category = form.Category
	product.CountInStock = form.CountInStock
	product.Description = form.Description
	product.Image = imageURL

	if err := h.Products.ReplaceProduct(ctx, product); err != nil {
		l.Error("product_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update product")
	}

	if oldImage != imageURL {
		h.removeImage(c, oldImage)
	}

	publish(c, h.Producer, TopicProductEvents, product.ID.Hex(), map[string]interface{}{
		"type":      "product_updated",
		"productID": product.ID.Hex(),
		"name":      product.Name,
	})
	h.index(c, product)

	l.Info("product_update_success", "productID", product.ID.Hex())
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_delete")

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		l.Warn("product_delete_error", "status", 400, "reason", "malformed id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	product, err := h.Products.GetProductByID(ctx, id)
	if err != nil {
		l.Error("product_delete_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}
	if product == nil {
		l.Warn("product_delete_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	deleted, err := h.Products.DeleteProduct(ctx, id)
	if err != nil {
		l.Error("product_delete_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete product")
	}
	if !deleted {
		l.Warn("product_delete_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	publish(c, h.Producer, TopicProductEvents, id.Hex(), map[string]interface{}{
		"type":      "product_deleted",
		"productID": id.Hex(),
	})
	h.deindex(c, id.Hex())
	h.removeImage(c, product.Image)

	l.Info("product_delete_success", "productID", id.Hex())
	return c.JSON(http.StatusOK, echo.Map{"message": "product removed"})
}
