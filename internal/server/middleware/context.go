package middleware

import (
	"github.com/MicahParks/keyfunc/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/rabbitmq/amqp091-go"

	"github.com/graphbio/bel/internal/storage"
	"github.com/graphbio/bel/pkg/resolve"
	"github.com/graphbio/bel/pkg/store"
)

type AppUser struct {
	UserID      int64
	Role        string
	Permissions []string
}

// App carries the shared clients every handler needs.
type App struct {
	DBConn         *pgxpool.Pool
	Queue          *amqp091.Channel
	Key            *keyfunc.Keyfunc
	S3             *storage.Client
	Store          store.GraphStore
	Resolver       *resolve.Resolver
	MasterAPIKey   string
	MasterUserID   int64
	MasterUserRole string
}

type AppContext struct {
	echo.Context
	App  *App
	User *AppUser
}

// AppContextMiddleware wraps every request context in an AppContext.
// User stays nil until AuthMiddleware fills it.
func AppContextMiddleware(app *App) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cc := &AppContext{c, app, nil}
			return next(cc)
		}
	}
}
