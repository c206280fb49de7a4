// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	accountsfeature "github.com/sainikhub/sainikhub/internal/app/features/accounts"
	applicationsfeature "github.com/sainikhub/sainikhub/internal/app/features/applications"
	authcheckfeature "github.com/sainikhub/sainikhub/internal/app/features/authcheck"
	departmentsfeature "github.com/sainikhub/sainikhub/internal/app/features/departments"
	errorsfeature "github.com/sainikhub/sainikhub/internal/app/features/errors"
	familycodefeature "github.com/sainikhub/sainikhub/internal/app/features/familycode"
	familysignupfeature "github.com/sainikhub/sainikhub/internal/app/features/familysignup"
	healthfeature "github.com/sainikhub/sainikhub/internal/app/features/health"
	schemesfeature "github.com/sainikhub/sainikhub/internal/app/features/schemes"
	accountstore "github.com/sainikhub/sainikhub/internal/app/store/accounts"
	sessionstore "github.com/sainikhub/sainikhub/internal/app/store/sessions"
	"github.com/sainikhub/sainikhub/internal/app/system/auth"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. SainikHub mounts JSON feature routers
// for identity, family linkage, the scheme catalog, applications, and
// department administration.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Sessions live server-side; the cookie carries only the opaque record
	// ID, so logout invalidates even replayed cookies.
	sessionMgr.SetSessionBackend(sessionstore.New(deps.MongoDatabase))

	// Set up the AccountFetcher so LoadSessionUser fetches fresh account data
	// on each request. This ensures deleted accounts take effect immediately.
	sessionMgr.SetAccountFetcher(accountstore.NewFetcher(deps.MongoDatabase))

	// Create error logger for handlers.
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current principal available via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Identity: register, login, logout for all variants
	accountsHandler := accountsfeature.NewHandler(deps.MongoDatabase, sessionMgr, errLog, logger)
	r.Mount("/accounts", accountsfeature.Routes(accountsHandler))

	// Session probe
	authcheckHandler := authcheckfeature.NewHandler(logger)
	r.Mount("/auth", authcheckfeature.Routes(authcheckHandler))

	// Family linkage: personnel-side code issue, family-side signup
	familycodeHandler := familycodefeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/personnel", familycodefeature.Routes(familycodeHandler, sessionMgr))

	familysignupHandler := familysignupfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/family", familysignupfeature.Routes(familysignupHandler))

	// Benefit scheme catalog and applications
	schemesHandler := schemesfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/schemes", schemesfeature.Routes(schemesHandler, sessionMgr))

	applicationsHandler := applicationsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/applications", applicationsfeature.Routes(applicationsHandler, sessionMgr))

	// Department administration
	departmentsHandler := departmentsfeature.NewHandler(deps.MongoDatabase, errLog, logger)
	r.Mount("/departments", departmentsfeature.Routes(departmentsHandler, sessionMgr))

	return r, nil
}
