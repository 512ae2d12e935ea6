package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"proshop/internal/hash"
	"proshop/internal/logging"
	authmw "proshop/internal/middleware/auth"
	"proshop/internal/models"
	"proshop/internal/repo"
	"proshop/internal/service"
)

type AuthHandler struct {
	Users    repo.UserRepository
	Tokens   *service.TokenService
	Producer EventPublisher
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type UserResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:      u.ID.Hex(),
		Name:    u.Name,
		Email:   u.Email,
		IsAdmin: u.IsAdmin,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		l.Warn("register_error", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}

	existing, err := h.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot check email")
	}
	if existing != nil {
		l.Warn("register_error", "status", 400, "reason", "email already registered")
		return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot register user")
	}

	user, err := h.Users.CreateUser(ctx, &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: pwHash,
		IsAdmin:      false,
	})
	if err != nil {
		// The unique index on email catches registrations that raced past the
		// lookup above.
		if mongo.IsDuplicateKeyError(err) {
			l.Warn("register_error", "status", 400, "reason", "email already registered")
			return echo.NewHTTPError(http.StatusBadRequest, "user already exists")
		}
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot register user")
	}

	token, exp, err := h.Tokens.Issue(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		l.Error("register_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}
	c.SetCookie(CreateCookie(authmw.CookieName, token, "/", exp))

	publish(c, h.Producer, TopicUserEvents, user.ID.Hex(), map[string]interface{}{
		"type":   "user_registered",
		"userID": user.ID.Hex(),
		"email":  user.Email,
	})

	l.Info("register_success", "userID", user.ID.Hex())
	return c.JSON(http.StatusOK, userResponse(user))
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot look up user")
	}
	if user == nil || !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid email or password")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
	}

	token, exp, err := h.Tokens.Issue(user.ID.Hex(), user.IsAdmin)
	if err != nil {
		l.Error("login_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue token")
	}
	c.SetCookie(CreateCookie(authmw.CookieName, token, "/", exp))

	publish(c, h.Producer, TopicUserEvents, user.ID.Hex(), map[string]interface{}{
		"type":   "user_logged_in",
		"userID": user.ID.Hex(),
		"email":  user.Email,
	})

	l.Info("login_successful", "userID", user.ID.Hex())
	return c.JSON(http.StatusOK, echo.Map{
		"token":   token,
		"email":   user.Email,
		"isAdmin": user.IsAdmin,
	})
}

// LogOut only clears the client cookie; issued tokens stay valid until
// their natural expiry.
func (h *AuthHandler) LogOut(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "auth_logout")

	c.SetCookie(DeleteCookie(authmw.CookieName, "/"))

	l.Info("logout_successful", "userID", authmw.UserID(c))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "logged out",
	})
}

func (h *AuthHandler) GetProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_profile")

	id, err := primitive.ObjectIDFromHex(authmw.UserID(c))
	if err != nil {
		l.Warn("profile_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity")
	}

	user, err := h.Users.GetUserByID(ctx, id)
	if err != nil {
		l.Error("profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load profile")
	}
	if user == nil {
		l.Warn("profile_error", "status", 404, "reason", "user gone")
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, userResponse(user))
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_update_profile")

	id, err := primitive.ObjectIDFromHex(authmw.UserID(c))
	if err != nil {
		l.Warn("update_profile_error", "status", 401, "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid identity")
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_profile_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Users.GetUserByID(ctx, id)
	if err != nil {
		l.Error("update_profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot load profile")
	}
	if user == nil {
		l.Warn("update_profile_error", "status", 404, "reason", "user gone")
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil && *req.Email != user.Email {
		other, err := h.Users.GetUserByEmail(ctx, *req.Email)
		if err != nil {
			l.Error("update_profile_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot check email")
		}
		if other != nil {
			l.Warn("update_profile_error", "status", 400, "reason", "email taken")
			return echo.NewHTTPError(http.StatusBadRequest, "email already in use")
		}
		user.Email = *req.Email
	}
	if req.Password != nil {
		pwHash, err := hash.HashPassword(*req.Password)
		if err != nil {
			l.Error("update_profile_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "cannot update password")
		}
		user.PasswordHash = pwHash
	}

	if err := h.Users.UpdateUser(ctx, user); err != nil {
		l.Error("update_profile_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update profile")
	}

	l.Info("update_profile_success", "userID", user.ID.Hex())
	return c.JSON(http.StatusOK, userResponse(user))
}
