package api

import (
	"log"
	"net/http"

	"github.com/Amoako-T/Medlink-server/service/appointment"
	"github.com/Amoako-T/Medlink-server/service/auth"
	"github.com/Amoako-T/Medlink-server/service/reminder"
	"github.com/Amoako-T/Medlink-server/service/schedule"
	"github.com/Amoako-T/Medlink-server/service/user"
	"github.com/Amoako-T/Medlink-server/service/ws"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type APIServer struct {
	address string
	db      *gorm.DB
	sweeper *reminder.Sweeper
}

func NewApiServer(address string, db *gorm.DB, sweeper *reminder.Sweeper) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
		sweeper: sweeper,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	scheduleHandler := schedule.NewScheduleHandler(
		schedule.NewGormDoctorProvider(s.db),
		schedule.NewGormAppointmentProvider(s.db),
	)
	scheduleHandler.RegisterRoutes(subrouter)

	feed := ws.NewHub()

	appointmentHandler := appointment.NewAppointmentHandler(s.db, feed)
	appointmentHandler.RegisterRoutes(subrouter)

	reminderHandler := reminder.NewReminderHandler(s.db, s.sweeper)
	reminderHandler.RegisterRoutes(subrouter)

	authHandler := auth.NewAuthHandler(auth.NewHTTPSessionProvider())
	authHandler.RegisterRoutes(subrouter)

	feedHandler := ws.NewFeedHandler(feed)
	feedHandler.RegisterRoutes(router)

	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, corsHandler(router))
}
