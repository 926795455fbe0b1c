// README: Driver-facing handlers (open requests, accept, start, complete,
// availability, earnings).
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cabcab/internal/http/middleware"
	"cabcab/internal/modules/driver"
	"cabcab/internal/modules/matching"
	"cabcab/internal/modules/payment"
	"cabcab/internal/modules/ride"
	"cabcab/internal/observability"
	"cabcab/internal/types"
)

type DriverHandler struct {
	gate        *matching.Gate
	rides       *ride.Service
	settlements *payment.SettlementEngine
	drivers     driver.Store
}

func NewDriverHandler(gate *matching.Gate, rides *ride.Service, settlements *payment.SettlementEngine, drivers driver.Store) *DriverHandler {
	return &DriverHandler{gate: gate, rides: rides, settlements: settlements, drivers: drivers}
}

func (h *DriverHandler) ListOpenRequests(c *gin.Context) {
	caller := middleware.Caller(c)
	open, err := h.gate.ListOpenRequests(c.Request.Context(), caller.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": open})
}

func (h *DriverHandler) Accept(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	caller := middleware.Caller(c)
	r, err := h.gate.Accept(c.Request.Context(), types.ID(id), caller.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	observability.RidesAcceptedTotal.Inc()
	writeJSON(c, http.StatusOK, r)
}

func (h *DriverHandler) Start(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	caller := middleware.Caller(c)
	r, err := h.rides.Start(c.Request.Context(), ride.StartCommand{
		RideID:   types.ID(id),
		DriverID: caller.UserID,
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, r)
}

type completeRideReq struct {
	// ActualFareCents overrides the estimate; zero means charge the estimate.
	ActualFareCents int64  `json:"actual_fare_cents"`
	PaymentMethodID string `json:"payment_method_id"`
}

func (h *DriverHandler) Complete(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid ride id")
		return
	}
	var req completeRideReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	if req.ActualFareCents < 0 {
		writeError(c, http.StatusBadRequest, "actual fare cannot be negative")
		return
	}

	caller := middleware.Caller(c)
	r, err := h.rides.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if r.Ride.DriverID == nil || *r.Ride.DriverID != caller.UserID {
		writeError(c, http.StatusForbidden, "ride is not assigned to this driver")
		return
	}

	settlement, err := h.settlements.Settle(c.Request.Context(), payment.SettleCommand{
		RideID:        types.ID(id),
		ActualFare:    types.Cents(req.ActualFareCents),
		PayerMethodID: types.ID(req.PaymentMethodID),
	})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if !settlement.AlreadySettled {
		observability.SettlementsTotal.Inc()
		if settlement.Commission != nil {
			observability.CommissionCents.Add(float64(settlement.Commission.Amount.Amount))
		}
	}
	writeJSON(c, http.StatusOK, settlement)
}

func (h *DriverHandler) ListRides(c *gin.Context) {
	caller := middleware.Caller(c)
	rides, err := h.rides.ListByDriver(c.Request.Context(), caller.UserID, ride.Status(c.Query("status")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"rides": rides})
}

type availabilityReq struct {
	Available *bool `json:"available"`
}

func (h *DriverHandler) SetAvailability(c *gin.Context) {
	var req availabilityReq
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		writeError(c, http.StatusBadRequest, "available flag is required")
		return
	}
	caller := middleware.Caller(c)
	if err := h.drivers.SetAvailability(c.Request.Context(), caller.UserID, *req.Available); err != nil {
		writeDomainError(c, err)
		return
	}
	profile, err := h.drivers.Get(c.Request.Context(), caller.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, profile)
}

func (h *DriverHandler) Earnings(c *gin.Context) {
	caller := middleware.Caller(c)
	payments, err := h.settlements.ListEarnings(c.Request.Context(), caller.UserID)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	var total int64
	for _, p := range payments {
		total += p.Amount.Amount
	}
	writeJSON(c, http.StatusOK, gin.H{
		"total_earned": types.Cents(total),
		"payments":     payments,
	})
}
