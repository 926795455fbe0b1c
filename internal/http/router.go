// README: HTTP router registration.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"cabcab/internal/http/handlers"
	"cabcab/internal/http/middleware"
	"cabcab/internal/infra"
	"cabcab/internal/modules/commission"
	"cabcab/internal/modules/driver"
	"cabcab/internal/modules/matching"
	"cabcab/internal/modules/payment"
	"cabcab/internal/modules/ride"
)

type RouterDeps struct {
	Verifier    infra.TokenVerifier
	Rides       *ride.Service
	Gate        *matching.Gate
	Settlements *payment.SettlementEngine
	Commission  *commission.Service
	Drivers     driver.Store
	Logger      *slog.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.Logging(deps.Logger))
	r.Use(middleware.Metrics())

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := r.Group("/api", middleware.Auth(deps.Verifier))

	passengerHandler := handlers.NewPassengerHandler(deps.Rides)
	passenger := auth.Group("", middleware.RequireType(infra.UserTypePassenger))
	passenger.POST("/rides", passengerHandler.RequestRide)
	passenger.GET("/passenger/rides", passengerHandler.ListRides)
	passenger.POST("/rides/:id/cancel", passengerHandler.Cancel)
	passenger.POST("/rides/:id/rate", passengerHandler.Rate)

	// Ride detail is shared: the requester or the assigned driver may read it.
	auth.GET("/rides/:id", passengerHandler.GetRide)

	driverHandler := handlers.NewDriverHandler(deps.Gate, deps.Rides, deps.Settlements, deps.Drivers)
	driverRoutes := auth.Group("", middleware.RequireType(infra.UserTypeDriver))
	driverRoutes.GET("/driver/rides/open", driverHandler.ListOpenRequests)
	driverRoutes.GET("/driver/rides", driverHandler.ListRides)
	driverRoutes.POST("/rides/:id/accept", driverHandler.Accept)
	driverRoutes.POST("/rides/:id/start", driverHandler.Start)
	driverRoutes.POST("/rides/:id/complete", driverHandler.Complete)
	driverRoutes.PUT("/driver/availability", driverHandler.SetAvailability)
	driverRoutes.GET("/driver/earnings", driverHandler.Earnings)

	adminHandler := handlers.NewAdminHandler(deps.Commission)
	admin := auth.Group("/admin", middleware.RequireType(infra.UserTypeAdmin))
	admin.PUT("/commission", adminHandler.SetCommission)
	admin.POST("/commission/enable", adminHandler.EnableCommission)
	admin.POST("/commission/disable", adminHandler.DisableCommission)
	admin.GET("/commission", adminHandler.GetCommission)

	return r
}
