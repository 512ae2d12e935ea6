package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop/internal/logging"
	authmw "proshop/internal/middleware/auth"
	"proshop/internal/service"
)

type CreateReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// CreateReview appends the caller's review and persists the recomputed
// document in one replace.
func (h *ProductHandler) CreateReview(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product_review")

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		l.Warn("review_error", "status", 400, "reason", "malformed id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	userID, err := primitive.ObjectIDFromHex(authmw.UserID(c))
	if err != nil {
		l.Warn("review_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity")
	}

	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("review_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, err := h.Products.GetProductByID(ctx, id)
	if err != nil {
		l.Error("review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load product")
	}
	if product == nil {
		l.Warn("review_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	user, err := h.Users.GetUserByID(ctx, userID)
	if err != nil {
		l.Error("review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load reviewer")
	}
	if user == nil {
		l.Warn("review_error", "status", 401, "reason", "reviewer gone")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity")
	}

	if err := service.AddReview(product, userID, user.Name, req.Rating, req.Comment); err != nil {
		if errors.Is(err, service.ErrAlreadyReviewed) {
			l.Warn("review_error", "status", 400, "reason", "already reviewed")
			return echo.NewHTTPError(http.StatusBadRequest, "product already reviewed")
		}
		l.Error("review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot add review")
	}

	if err := h.Products.ReplaceProduct(ctx, product); err != nil {
		l.Error("review_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot save review")
	}

	publish(c, h.Producer, TopicProductEvents, product.ID.Hex(), map[string]interface{}{
		"type":      "review_added",
		"productID": product.ID.Hex(),
		"userID":    userID.Hex(),
		"rating":    req.Rating,
	})
	h.index(c, product)

	l.Info("review_success", "productID", product.ID.Hex(), "userID", userID.Hex())
	return c.JSON(http.StatusOK, echo.Map{"message": "review added"})
}
