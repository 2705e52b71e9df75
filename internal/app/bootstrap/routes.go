// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	applicationsfeature "github.com/mwalimuhub/unionhub/internal/app/features/applications"
	approvalsfeature "github.com/mwalimuhub/unionhub/internal/app/features/approvals"
	authgooglefeature "github.com/mwalimuhub/unionhub/internal/app/features/authgoogle"
	contactfeature "github.com/mwalimuhub/unionhub/internal/app/features/contact"
	dashboardfeature "github.com/mwalimuhub/unionhub/internal/app/features/dashboard"
	errorsfeature "github.com/mwalimuhub/unionhub/internal/app/features/errors"
	healthfeature "github.com/mwalimuhub/unionhub/internal/app/features/health"
	homefeature "github.com/mwalimuhub/unionhub/internal/app/features/home"
	joinfeature "github.com/mwalimuhub/unionhub/internal/app/features/join"
	loginfeature "github.com/mwalimuhub/unionhub/internal/app/features/login"
	logoutfeature "github.com/mwalimuhub/unionhub/internal/app/features/logout"
	membersfeature "github.com/mwalimuhub/unionhub/internal/app/features/members"
	profilefeature "github.com/mwalimuhub/unionhub/internal/app/features/profile"
	referralsfeature "github.com/mwalimuhub/unionhub/internal/app/features/referrals"
	regionsfeature "github.com/mwalimuhub/unionhub/internal/app/features/regions"
	approvalstore "github.com/mwalimuhub/unionhub/internal/app/store/approvals"
	auditstore "github.com/mwalimuhub/unionhub/internal/app/store/audit"
	referralstore "github.com/mwalimuhub/unionhub/internal/app/store/referrals"
	userstore "github.com/mwalimuhub/unionhub/internal/app/store/users"
	"github.com/mwalimuhub/unionhub/internal/app/system/approval"
	"github.com/mwalimuhub/unionhub/internal/app/system/auditlog"
	"github.com/mwalimuhub/unionhub/internal/app/system/auth"
	"github.com/mwalimuhub/unionhub/internal/app/system/referral"
	regionmgr "github.com/mwalimuhub/unionhub/internal/app/system/regions"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// auditLogger is started in BuildHandler and drained in Shutdown.
var auditLogger *auditlog.Logger

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// UnionHub initializes the template engine, applies session and CSRF
// middleware, starts the audit writer, and mounts feature routers for the
// public site (home, join, contact) and the signed-in area (dashboard,
// applications, approvals, referrals, regions, members, profile).
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Create the session manager using app config.
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Set up the UserFetcher so LoadSessionUser fetches fresh user data on
	// each request. Role changes, permission grants, and disabled accounts
	// take effect immediately.
	users := userstore.New(deps.MongoDatabase)
	sessionMgr.SetUserFetcher(userstore.NewFetcher(users, logger))

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Audit sink: shared by every feature that records admin or auth events.
	auditLogger = auditlog.New(
		auditstore.New(deps.MongoDatabase),
		auditlog.ParseMode(appCfg.AuditLogMode),
		logger,
	)
	auditLogger.Start()

	// Domain services.
	workflow := approval.NewWorkflow(approvalstore.New(deps.MongoDatabase), auditLogger)
	referrals := referral.NewTracker(referralstore.New(deps.MongoDatabase), auditLogger)
	regionManager := regionmgr.NewManager(users, auditLogger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(sessionMgr.LoadSessionUser)

	// CSRF protection for every form post. A missing key gets a random
	// per-boot key, which invalidates in-flight tokens on restart.
	csrfKey := []byte(appCfg.CSRFKey)
	if len(csrfKey) == 0 {
		logger.Warn("csrf_key not set; using a random per-boot key")
		csrfKey = securecookie.GenerateRandomKey(32)
	}
	r.Use(csrf.Protect(csrfKey, csrf.Secure(secure), csrf.Path("/")))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Public pages
	homeHandler := homefeature.NewHandler(logger)
	r.Mount("/", homefeature.Routes(homeHandler))

	contactHandler := contactfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/contact", contactfeature.Routes(contactHandler))

	joinHandler := joinfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/join", joinfeature.Routes(joinHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(deps.MongoDatabase, sessionMgr, auditLogger, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLogger, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(deps.MongoDatabase, sessionMgr, auditLogger,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	// Error pages
	errorsHandler := errorsfeature.NewHandler()
	r.Get("/forbidden", errorsHandler.Forbidden)
	r.Get("/unauthorized", errorsHandler.Unauthorized)

	// Signed-in area
	dashboardHandler := dashboardfeature.NewHandler(deps.MongoDatabase, logger)
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler))

	applicationsHandler := applicationsfeature.NewHandler(deps.MongoDatabase, referrals, auditLogger, logger)
	r.Mount("/applications", applicationsfeature.Routes(applicationsHandler))

	approvalsHandler := approvalsfeature.NewHandler(workflow, logger)
	r.Mount("/approvals", approvalsfeature.Routes(approvalsHandler))

	referralsHandler := referralsfeature.NewHandler(referrals, logger)
	r.Mount("/referrals", referralsfeature.Routes(referralsHandler))

	regionsHandler := regionsfeature.NewHandler(users, regionManager, logger)
	r.Mount("/regions", regionsfeature.Routes(regionsHandler))

	membersHandler := membersfeature.NewHandler(users, auditLogger, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	profileHandler := profilefeature.NewHandler(users, auditLogger, logger)
	r.Mount("/profile", profilefeature.Routes(profileHandler))

	return r, nil
}
