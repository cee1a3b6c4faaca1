package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edalquez/facegate/internal/web/handlers"
)

func (s *Server) setupRoutes() {
	commandHandler := handlers.NewCommandHandler(s.commands)
	captureHandler := handlers.NewCaptureHandler(s.workflow)
	logsHandler := handlers.NewLogsHandler(s.attendance, s.students, s.workflow, s.config)

	s.router.Get("/health", handlers.HealthCheck(s.workflow, s.config.SMTP.Enabled()))

	s.router.Route("/api", func(r chi.Router) {
		// Command exchange between the operator console and the camera.
		r.Post("/command/capture", commandHandler.Capture)
		r.Get("/command/poll", commandHandler.Poll)
		r.Get("/command/result", commandHandler.Result)
		r.Post("/command/clear", commandHandler.Clear)

		// Camera capture submission.
		r.Post("/recognize", captureHandler.Recognize)

		// Direct browser uploads, used when no camera is attached.
		r.Post("/register", captureHandler.Register)
		r.Post("/web/register", captureHandler.Register)
		r.Post("/web/attendance", captureHandler.WebAttendance)
		r.Post("/web/logout", captureHandler.WebLogout)

		// Attendance queries.
		r.Get("/attendance", logsHandler.Attendance)
		r.Get("/stats", logsHandler.Stats)
		r.Get("/students", logsHandler.Students)
		r.Get("/year-levels", logsHandler.YearLevels)
		r.Post("/reload", logsHandler.Reload)
	})

	// Captured frames for the dashboard.
	s.router.Handle("/uploads/*", http.StripPrefix("/uploads/",
		http.FileServer(http.Dir(s.uploadsDir))))
}
