package handler

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/GoArmGo/RecipeApp/internal/domain"
	"github.com/GoArmGo/RecipeApp/internal/usecase"
	"github.com/GoArmGo/RecipeApp/internal/validation"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/sessions"
)

// RouterConfig — все, что нужно для сборки HTTP-маршрутов
type RouterConfig struct {
	Users      usecase.UserUseCase
	Recipes    usecase.RecipeUseCase
	Attributes usecase.AttributeUseCase
	Admin      usecase.AdminUseCase
	Validator  *validation.Validator
	Sessions   sessions.Store
	DB         Pinger
	Logger     *slog.Logger

	RequestTimeout     time.Duration
	MaxUploadBytes     int64
	CORSAllowedOrigins []string

	// MediaRoot и MediaURL задаются только для локального хранилища файлов
	MediaRoot string
	MediaURL  string
}

// NewRouter собирает chi-роутер API и админки
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", Health(cfg.DB, cfg.Logger))

	userHandler := NewUserHandler(cfg.Users, cfg.Validator, cfg.Logger)
	r.Post("/users/create", userHandler.Register)
	r.Post("/users/token", userHandler.ObtainToken)

	r.Group(func(r chi.Router) {
		r.Use(TokenAuth(cfg.Users, cfg.Logger))

		r.Get("/users/me", userHandler.Me)
		r.Put("/users/me", userHandler.UpdateMe)
		r.Patch("/users/me", userHandler.UpdateMe)

		recipeHandler := NewRecipeHandler(cfg.Recipes, cfg.MaxUploadBytes, cfg.Logger)
		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", recipeHandler.List)
			r.Post("/", recipeHandler.Create)
			r.Get("/{id}", recipeHandler.Get)
			r.Put("/{id}", recipeHandler.Update)
			r.Patch("/{id}", recipeHandler.Update)
			r.Delete("/{id}", recipeHandler.Delete)
			r.Post("/{id}/upload-image", recipeHandler.UploadImage)
		})

		mountAttributes(r, "/tags", NewAttributeHandler(cfg.Attributes, domain.KindTag, cfg.Logger))
		mountAttributes(r, "/ingredients", NewAttributeHandler(cfg.Attributes, domain.KindIngredient, cfg.Logger))
	})

	adminHandler := NewAdminHandler(cfg.Admin, cfg.Recipes.ImageURL, cfg.Sessions, cfg.Validator, cfg.Logger)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", adminHandler.Login)
		r.Post("/logout", adminHandler.Logout)

		r.Group(func(r chi.Router) {
			r.Use(adminHandler.RequireAdmin)

			r.Get("/users", adminHandler.ListUsers)
			r.Post("/users", adminHandler.CreateUser)
			r.Get("/users/{id}", adminHandler.GetUser)
			r.Patch("/users/{id}", adminHandler.UpdateUser)

			r.Get("/recipes", adminHandler.ListRecipes)
			r.Get("/recipes/{id}", adminHandler.GetRecipe)
			r.Patch("/recipes/{id}", adminHandler.UpdateRecipe)
			r.Delete("/recipes/{id}", adminHandler.DeleteRecipe)

			for prefix, kind := range map[string]domain.AttributeKind{"/tags": domain.KindTag, "/ingredients": domain.KindIngredient} {
				list, get, update, remove := adminHandler.AttributeRoutes(kind)
				r.Get(prefix, list)
				r.Get(prefix+"/{id}", get)
				r.Patch(prefix+"/{id}", update)
				r.Delete(prefix+"/{id}", remove)
			}
		})
	})

	if cfg.MediaRoot != "" {
		mountMedia(r, cfg.MediaURL, cfg.MediaRoot)
	}

	return r
}

func mountAttributes(r chi.Router, prefix string, h *AttributeHandler) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// mountMedia раздает загруженные файлы из MediaRoot без листинга каталогов
func mountMedia(r chi.Router, mediaURL, root string) {
	prefix := "/" + strings.Trim(mediaURL, "/")
	if prefix == "/" {
		return
	}
	files := http.StripPrefix(prefix, http.FileServer(noListingFS{http.Dir(root)}))
	r.Get(prefix+"/*", files.ServeHTTP)
}

// noListingFS отдает только обычные файлы
type noListingFS struct {
	fs http.FileSystem
}

func (n noListingFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
