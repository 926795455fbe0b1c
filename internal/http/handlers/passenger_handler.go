// README: Passenger-facing handlers (request, cancel, rate, ride queries).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabcab/internal/http/middleware"
	"cabcab/internal/modules/location"
	"cabcab/internal/modules/ride"
	"cabcab/internal/observability"
	"cabcab/internal/types"
)

type PassengerHandler struct {
	rides *ride.Service
}

func NewPassengerHandler(rides *ride.Service) *PassengerHandler {
	return &PassengerHandler{rides: rides}
}

type addressPayload struct {
	Street     string   `json:"street"`
	City       string   `json:"city"`
	State      string   `json:"state"`
	PostalCode string   `json:"postal_code"`
	Country    string   `json:"country"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
}

func (a addressPayload) toAddress() location.Address {
	return location.Address{
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func (a addressPayload) toPoint() *types.Point {
	if a.Lat == nil || a.Lng == nil {
		return nil
	}
	return &types.Point{Lat: *a.Lat, Lng: *a.Lng}
}

type requestRideReq struct {
	Pickup  addressPayload `json:"pickup"`
	Dropoff addressPayload `json:"dropoff"`
}

func (h *PassengerHandler) RequestRide(c *gin.Context) {
	var req requestRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Pickup.Street == "" || req.Dropoff.Street == "" {
		writeError(c, http.StatusBadRequest, "pickup and dropoff street are required")
		return
	}

	caller := middleware.Caller(c)
	detail, err := h.rides.CreateRequest(c.Request.Context(), ride.CreateCommand{
		RiderID:        caller.UserID,
		PickupAddress:  req.Pickup.toAddress(),
		DropoffAddress: req.Dropoff.toAddress(),
		Pickup:         req.Pickup.toPoint(),
		Dropoff:        req.Dropoff.toPoint(),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	observability.RidesRequestedTotal.Inc()
	writeJSON(c, http.StatusCreated, detail)
}

func (h *PassengerHandler) GetRide(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	detail, err := h.rides.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	caller := middleware.Caller(c)
	r := detail.Ride
	if r.RiderID != caller.UserID && (r.DriverID == nil || *r.DriverID != caller.UserID) {
		writeError(c, http.StatusForbidden, "you are not a participant of this ride")
		return
	}
	writeJSON(c, http.StatusOK, detail)
}

func (h *PassengerHandler) ListRides(c *gin.Context) {
	caller := middleware.Caller(c)
	rides, err := h.rides.ListByRider(c.Request.Context(), caller.UserID, ride.Status(c.Query("status")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": rides})
}

func (h *PassengerHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	caller := middleware.Caller(c)
	r, err := h.rides.Cancel(c.Request.Context(), ride.CancelCommand{
		RideID:  types.ID(id),
		ActorID: caller.UserID,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	observability.RidesCancelledTotal.Inc()
	writeJSON(c, http.StatusOK, r)
}

type rateRideReq struct {
	Rating   int    `json:"rating"`
	Feedback string `json:"feedback"`
}

func (h *PassengerHandler) Rate(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	var req rateRideReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	caller := middleware.Caller(c)
	r, err := h.rides.RateRide(c.Request.Context(), ride.RateCommand{
		RideID:   types.ID(id),
		RaterID:  caller.UserID,
		Rating:   req.Rating,
		Feedback: req.Feedback,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}
