package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jnitin/flask-catalog/internal/auth"
	"github.com/jnitin/flask-catalog/internal/config"
	"github.com/jnitin/flask-catalog/internal/middleware"
	"github.com/jnitin/flask-catalog/internal/models"
	"github.com/jnitin/flask-catalog/internal/service"
)

// Pinger is a dependency checked by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Log      zerolog.Logger
	Config   *config.AppConfig
	Gate     *auth.Gate
	Auth     *service.AuthService
	Accounts *service.AccountService
	Catalog  *service.CatalogService
	// Probes are reported by /healthz under their map key.
	Probes map[string]Pinger
}

type HandlerSet struct {
	log         zerolog.Logger
	cfg         *config.AppConfig
	gate        *auth.Gate
	authService *service.AuthService
	accounts    *service.AccountService
	catalog     *service.CatalogService
	probes      map[string]Pinger
}

func NewHandlerSet(deps Deps) HandlerSet {
	return HandlerSet{
		log:         deps.Log,
		cfg:         deps.Config,
		gate:        deps.Gate,
		authService: deps.Auth,
		accounts:    deps.Accounts,
		catalog:     deps.Catalog,
		probes:      deps.Probes,
	}
}

// Register mounts the API under /api on engine.
func (h HandlerSet) Register(engine *gin.Engine) {
	router := engine.Group("/api")
	router.GET("/healthz", h.Health)

	v1 := router.Group("/v1")
	base := v1.BasePath()

	policy := middleware.NewAccessPolicy().
		AllowAnonymous(http.MethodPost, base+"/users/").
		AllowUnconfirmed(http.MethodPost, base+"/confirm").
		AllowUnconfirmed(http.MethodPost, base+"/confirm/:token")

	// token flows redeemed from email links, no credentials needed
	open := v1.Group("/auth")
	open.POST("/register/:token", h.CompleteInvitation)
	open.POST("/reset-password", h.RequestPasswordReset)
	open.POST("/reset-password/:token", h.ResetPassword)

	gated := v1.Group("")
	gated.Use(middleware.Authenticate(h.gate, policy, h.log))

	gated.POST("/token", h.IssueToken)
	gated.POST("/tokens", h.IssueToken)

	gated.POST("/confirm", h.ResendConfirmation)
	gated.POST("/confirm/:token", h.Confirm)
	gated.POST("/password", h.ChangePassword)
	gated.POST("/email", h.RequestEmailChange)
	gated.POST("/email/:token", h.ChangeEmail)
	gated.POST("/invite/:email", middleware.RequirePermission(models.PermAdmin), h.Invite)
	gated.GET("/help", middleware.RequirePermission(models.PermAdmin), h.Help(engine.Routes))

	users := gated.Group("/users")
	users.POST("/", h.CreateUser)
	users.GET("/", h.ListUsers)
	users.GET("/:id", h.GetUser)
	users.PATCH("/:id", h.UpdateUser)
	users.DELETE("/:id", h.DeleteUser)
	users.PUT("/:id/role", middleware.RequirePermission(models.PermAdmin), h.AssignRole)
	users.POST("/:id/unblock", h.Unblock)
	users.GET("/:id/categories/", h.ListUserCategories)
	users.GET("/:id/items/", h.ListUserItems)

	categories := gated.Group("/categories")
	categories.GET("/", h.ListCategories)
	categories.POST("/", h.CreateCategory)
	categories.GET("/:id", h.GetCategory)
	categories.PATCH("/:id", h.UpdateCategory)
	categories.DELETE("/:id", h.DeleteCategory)
	categories.GET("/:id/items/", h.ListCategoryItems)
	categories.POST("/:id/items/", h.CreateCategoryItem)
	categories.GET("/:id/relationships/user", h.CategoryOwner)

	items := gated.Group("/items")
	items.GET("/", h.ListItems)
	items.GET("/:id", h.GetItem)
	items.PATCH("/:id", h.UpdateItem)
	items.DELETE("/:id", h.DeleteItem)
	items.GET("/:id/relationships/user", h.ItemOwner)
}
