// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	authfeature "github.com/dalemusser/spendhub/internal/app/features/auth"
	authgooglefeature "github.com/dalemusser/spendhub/internal/app/features/authgoogle"
	categoriesfeature "github.com/dalemusser/spendhub/internal/app/features/categories"
	expensesfeature "github.com/dalemusser/spendhub/internal/app/features/expenses"
	groupsfeature "github.com/dalemusser/spendhub/internal/app/features/groups"
	healthfeature "github.com/dalemusser/spendhub/internal/app/features/health"
	reportsfeature "github.com/dalemusser/spendhub/internal/app/features/reports"
	categorystore "github.com/dalemusser/spendhub/internal/app/store/categories"
	expensestore "github.com/dalemusser/spendhub/internal/app/store/expenses"
	userstore "github.com/dalemusser/spendhub/internal/app/store/users"
	"github.com/dalemusser/spendhub/internal/app/system/auth"
	"github.com/dalemusser/spendhub/internal/app/system/llm"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app. WAFFLE calls it after configuration, DB connection,
// schema setup, and Startup have completed.
//
// The surface splits into three bands: /health is public, /auth/google
// hosts the browser-facing OAuth flow, and everything under /api
// requires an identity (bearer token or session cookie) resolved by
// the global LoadIdentity middleware.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase

	users := userstore.New(db)
	tokens := auth.NewTokenManager(appCfg.JWTSecret, appCfg.JWTExpiry)

	var reportClient llm.Client
	if appCfg.GeminiAPIKey != "" {
		client, err := llm.NewGemini(llm.Config{
			APIKey: appCfg.GeminiAPIKey,
			Model:  appCfg.GeminiModel,
		})
		if err != nil {
			logger.Error("gemini client init failed", zap.Error(err))
			return nil, err
		}
		reportClient = client
	}

	r := chi.NewRouter()

	// Global identity middleware: resolves a bearer token or session
	// cookie into auth.CurrentUser(r) for every handler.
	r.Use(auth.LoadIdentity(tokens))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Browser-facing Google OAuth flow (public)
	googleHandler := authgooglefeature.NewHandler(users,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret,
		appCfg.BaseURL, appCfg.FrontendURL, appCfg.SessionKey, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	r.Route("/api", func(api chi.Router) {
		// Password auth (register/login public, profile and the
		// Google session probe gated inside the feature router)
		authHandler := authfeature.NewHandler(users, tokens, logger)
		api.Mount("/auth", authfeature.Routes(authHandler, googleHandler.ServeSuccess))

		// Everything else requires an identity.
		api.Group(func(priv chi.Router) {
			priv.Use(auth.RequireSignedIn)

			categoriesHandler := categoriesfeature.NewHandler(categorystore.New(db), expensestore.New(db), logger)
			priv.Mount("/categories", categoriesfeature.Routes(categoriesHandler))

			expensesHandler := expensesfeature.NewHandler(db, logger)
			priv.Mount("/expenses", expensesfeature.Routes(expensesHandler))

			groupsHandler := groupsfeature.NewHandler(db, logger)
			priv.Mount("/groups", groupsfeature.Routes(groupsHandler))

			if reportClient != nil {
				reportsHandler := reportsfeature.NewHandler(db, reportClient, appCfg.ReportTimeout, logger)
				priv.Mount("/reports", reportsfeature.Routes(reportsHandler))
			}
		})
	})

	logger.Info("routes mounted",
		zap.Bool("google_oauth", googleHandler.IsConfigured()),
		zap.Bool("reports", reportClient != nil))

	return r, nil
}
