package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/compfund/cfportal/internal/config"
	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
	"github.com/compfund/cfportal/internal/identity/token"
	orgdomain "github.com/compfund/cfportal/internal/organisation/domain"
	roedomain "github.com/compfund/cfportal/internal/roe/domain"
)

var Module = fx.Module("http.server",
	fx.Provide(NewHTTPMetrics),
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(logger *zap.Logger, metrics *HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(MetricsMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	identitySvc  identitydomain.Service
	identityRepo identitydomain.Repository
	tokens       *token.Issuer
	orgSvc       orgdomain.Service
	roeSvc       roedomain.Service
	uploadDir    string
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	IdentitySvc  identitydomain.Service
	IdentityRepo identitydomain.Repository
	Tokens       *token.Issuer
	OrgSvc       orgdomain.Service
	ROESvc       roedomain.Service
}

func NewServer(p ServerParams) *Server {
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		identitySvc:  p.IdentitySvc,
		identityRepo: p.IdentityRepo,
		tokens:       p.Tokens,
		orgSvc:       p.OrgSvc,
		roeSvc:       p.ROESvc,
		uploadDir:    "uploads/documents",
	}

	s.registerAuthRoutes()
	s.registerUserRoutes()
	s.registerOrganisationRoutes()
	s.registerROERoutes()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/check-user", s.CheckUser)
	auth.POST("/register", s.Register)
	auth.POST("/login", s.Login)
	auth.POST("/admin-login", s.AdminLogin)
	auth.POST("/reset-password", s.ResetPassword)
	auth.POST("/check-user-exists", s.CheckUserExists)
	auth.POST("/forgot-password", s.ForgotPassword)
}

func (s *Server) registerUserRoutes() {
	users := s.engine.Group("/api/users")

	users.GET("", s.AuthRequired(), s.ListUsers)
}

func (s *Server) registerOrganisationRoutes() {
	orgs := s.engine.Group("/api/organisations")

	orgs.POST("/verify", s.AuthRequired(), s.VerifyOrganisation)
	orgs.POST("/documents", s.AuthRequired(), s.UploadOrganisationDocument)
	orgs.GET("/profile", s.AuthRequired(), s.GetOrganisationProfile)
	orgs.GET("/documents", s.AuthRequired(), s.GetOrganisationProfile)
	orgs.POST("/submit-approval", s.AuthRequired(), s.SubmitForApproval)
	orgs.GET("/user-organisations", s.AuthRequired(), s.GetUserOrganisations)
	orgs.POST("/link", s.AuthRequired(), s.LinkOrganisation)
	orgs.POST("/upload-signed-form", s.AuthRequired(), s.UploadSignedForm)

	// Fixed segments come before parametric routes so "admin" is
	// never captured as an organisation id.
	orgs.GET("/admin/all", s.AdminRequired(), s.ListAllOrganisations)
	orgs.PATCH("/admin/:id/approve", s.AdminRequired(), s.ApproveOrganisation)
	orgs.PATCH("/admin/:id/reject", s.AdminRequired(), s.RejectOrganisation)

	orgs.GET("/:id", s.GetOrganisationByID)
	orgs.PUT("/:id/details", s.AuthRequired(), s.UpdateOrganisationDetails)
	orgs.PUT("/:id/resubmit", s.AuthRequired(), s.ResubmitOrganisation)
	orgs.PUT("/:id/contact", s.AuthRequired(), s.UpdateContactInfo)
	orgs.PUT("/:id/address", s.AuthRequired(), s.UpdateAddressInfo)
	orgs.PUT("/:id/banking", s.AuthRequired(), s.UpdateBankingInfo)
	orgs.PUT("/:id/business", s.AuthRequired(), s.UpdateBusinessInfo)
	orgs.PUT("/:id/documents/:documentId/type/:documentType", s.AuthRequired(), s.ReplaceOrganisationDocument)
}

func (s *Server) registerROERoutes() {
	roes := s.engine.Group("/api/roes")

	roes.POST("/documents", s.AuthRequired(), s.CreateROE)
	roes.POST("/submit", s.AuthRequired(), s.SubmitROE)
	roes.GET("/organisation/:cfRegistrationNumber", s.AuthRequired(), s.ListROEsByOrganisation)

	roes.PATCH("/admin/:id/flag-for-audit", s.AdminRequired(), s.FlagROEForAudit)
	roes.PATCH("/admin/:id/accept-submission", s.AdminRequired(), s.AcceptROESubmission)

	roes.GET("/:id", s.AuthRequired(), s.GetROE)
	roes.PUT("/:id", s.AuthRequired(), s.UpdateROE)
}

func run(lc fx.Lifecycle, r *gin.Engine, cfg config.Config, logger *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
