package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/workpulse-backend-go/internal/handler/http/middleware"
)

func NewRouter(
	jwtAuth *jwtauth.JWTAuth,
	attendanceHandler AttendanceHandler,
	payrollHandler PayrollHandler,
	policyHandler PolicyHandler,
	webhookHandler WebhookHandler,
	eventStreamHandler EventStreamHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "workpulse"),
		slog.String("version", "v1.0.0"),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		// Signed callbacks authenticate with an HMAC signature, not a JWT.
		r.Post("/webhooks/payment", webhookHandler.PaymentConfirmation)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtAuth))
			r.Use(middleware.AuthRequired(jwtAuth))

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/punch", attendanceHandler.Punch)
				r.Get("/my", attendanceHandler.GetMyAttendance)

				// HR / admin only
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManagement)
					r.Get("/today", attendanceHandler.Today)
				})
			})

			r.Route("/payrolls", func(r chi.Router) {
				r.Use(middleware.RequireManagement)
				r.Post("/", payrollHandler.Generate)
				r.Get("/", payrollHandler.ListMonth)
				r.Get("/{id}", payrollHandler.Get)
				r.Post("/{id}/mark-paid", payrollHandler.MarkPaid)
			})

			r.Route("/policy", func(r chi.Router) {
				r.Get("/", policyHandler.Get)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireManagement)
					r.Put("/", policyHandler.Upsert)
				})
			})

			r.Get("/events", eventStreamHandler.Subscribe)
		})
	})
	return r
}
