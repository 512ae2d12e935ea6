package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"proshop/internal/handlers"
	authmw "proshop/internal/middleware/auth"
)

type Deps struct {
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserAdminHandler
	ProductHandler *handlers.ProductHandler
	SearchHandler  *handlers.SearchHandler
	Guard          *authmw.Guard
	UploadDir      string
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	// Uploaded images are served straight from disk.
	e.Static("/public/uploads", d.UploadDir)

	api := e.Group("/api")

	users := api.Group("/users")
	users.POST("", d.AuthHandler.Register)
	users.POST("/login", d.AuthHandler.Login)
	users.POST("/logout", d.AuthHandler.LogOut, d.Guard.RequireLogin)
	users.GET("/profile", d.AuthHandler.GetProfile, d.Guard.RequireLogin)
	users.PUT("/profile", d.AuthHandler.UpdateProfile, d.Guard.RequireLogin)
	users.GET("", d.UserHandler.GetUsers, d.Guard.AdminOnly)
	users.GET("/:id", d.UserHandler.GetUser, d.Guard.AdminOnly)
	users.PUT("/:id", d.UserHandler.UpdateUser, d.Guard.AdminOnly)
	users.DELETE("/:id", d.UserHandler.DeleteUser, d.Guard.AdminOnly)

	products := api.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	if d.SearchHandler != nil {
		products.GET("/search", d.SearchHandler.Search)
	}
	products.GET("/:id", d.ProductHandler.GetProduct)
	products.POST("", d.ProductHandler.CreateProduct, d.Guard.AdminOnly)
	products.PUT("/:id", d.ProductHandler.UpdateProduct, d.Guard.AdminOnly)
	products.DELETE("/:id", d.ProductHandler.DeleteProduct, d.Guard.AdminOnly)
	products.POST("/:id/reviews", d.ProductHandler.CreateReview, d.Guard.RequireLogin)
}
