package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"proshop/internal/logging"
	"proshop/internal/repo"
)

// UserAdminHandler serves the admin-only user management routes.
type UserAdminHandler struct {
	Users    repo.UserRepository
	Producer EventPublisher
}

type AdminUpdateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	IsAdmin *bool   `json:"isAdmin"`
}

func (h *UserAdminHandler) GetUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_list")

	users, err := h.Users.GetUsers(ctx)
	if err != nil {
		l.Error("users_list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot list users")
	}

	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = userResponse(&users[i])
	}
	return c.JSON(http.StatusOK, out)
}

func (h *UserAdminHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_get")

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		l.Warn("users_get_error", "status", 400, "reason", "malformed id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Users.GetUserByID(ctx, id)
	if err != nil {
		l.Error("users_get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	if user == nil {
		l.Warn("users_get_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, userResponse(user))
}

func (h *UserAdminHandler) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_update")

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		l.Warn("users_update_error", "status", 400, "reason", "malformed id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req AdminUpdateUserRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("users_update_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.GetUserByID(ctx, id)
	if err != nil {
		l.Error("users_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	if user == nil {
		l.Warn("users_update_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		other, err := h.Users.GetUserByEmail(ctx, *req.Email)
		if err != nil {
			l.Error("users_update_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
		}
		if other != nil {
			l.Warn("users_update_error", "status", 400, "reason", "email taken")
			return echo.NewHTTPError(http.StatusBadRequest, "email already in use")
		}
		user.Email = *req.Email
	}
	if req.IsAdmin != nil {
		user.IsAdmin = *req.IsAdmin
	}

	if err := h.Users.UpdateUser(ctx, user); err != nil {
		l.Error("users_update_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update user")
	}

	l.Info("users_update_success", "userID", user.ID.Hex())
	return c.JSON(http.StatusOK, userResponse(user))
}

func (h *UserAdminHandler) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "users_delete")

	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		l.Warn("users_delete_error", "status", 400, "reason", "malformed id", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	user, err := h.Users.GetUserByID(ctx, id)
	if err != nil {
		l.Error("users_delete_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load user")
	}
	if user == nil {
		l.Warn("users_delete_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	// Admin accounts are never deleted through the API.
	if user.IsAdmin {
		l.Warn("users_delete_error", "status", 400, "reason", "admin target")
		return echo.NewHTTPError(http.StatusBadRequest, "cannot delete admin user")
	}

	deleted, err := h.Users.DeleteUser(ctx, id)
	if err != nil {
		l.Error("users_delete_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot delete user")
	}
	if !deleted {
		l.Warn("users_delete_error", "status", 404)
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	publish(c, h.Producer, TopicUserEvents, id.Hex(), map[string]interface{}{
		"type":   "user_deleted",
		"userID": id.Hex(),
	})

	l.Info("users_delete_success", "userID", id.Hex())
	return c.JSON(http.StatusOK, echo.Map{"message": "user removed"})
}
