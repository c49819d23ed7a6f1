package main

import (
	"fmt"
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/workpulse/workpulse-backend-go/internal/config"
	appHTTP "github.com/workpulse/workpulse-backend-go/internal/handler/http"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/cron"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/database"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/sse"
	"github.com/workpulse/workpulse-backend-go/internal/pkg/webhook"
	"github.com/workpulse/workpulse-backend-go/internal/repository/postgresql"
	attendanceService "github.com/workpulse/workpulse-backend-go/internal/service/attendance"
	payrollService "github.com/workpulse/workpulse-backend-go/internal/service/payroll"
	policyService "github.com/workpulse/workpulse-backend-go/internal/service/policy"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	employeeRepo := postgresql.NewEmployeeRepository(db)
	policyRepo := postgresql.NewPolicyRepository(db)

	hub := sse.NewHub()
	verifier := webhook.NewVerifier(cfg.Webhook.PaymentSecret)
	jwtAuth := jwtauth.New("HS256", []byte(cfg.JWT.Secret), nil)

	policyResolver := policyService.NewPolicyResolver(policyRepo)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, employeeRepo, policyResolver, hub)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, employeeRepo, attendanceRepo, hub)

	scheduler := cron.NewScheduler()
	cron.NewAttendanceJobs(attendanceSvc, employeeRepo).RegisterJobs(scheduler)
	scheduler.Start()
	defer scheduler.Stop()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	policyHandler := appHTTP.NewPolicyHandler(policyResolver)
	webhookHandler := appHTTP.NewWebhookHandler(verifier, payrollSvc)
	eventStreamHandler := appHTTP.NewEventStreamHandler(hub)

	router := appHTTP.NewRouter(
		jwtAuth,
		attendanceHandler,
		payrollHandler,
		policyHandler,
		webhookHandler,
		eventStreamHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
