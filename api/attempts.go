package api

import (
	"net/http"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/service/booking"
	"github.com/easyrent/vehiclerental/internal/validation"
	"github.com/gin-gonic/gin"
)

// AttemptHandler exposes the step-by-step booking flow. Each call answers
// with the stored attempt so the client never guesses its state.
type AttemptHandler struct {
	service booking.AttemptUseCase
	loc     *time.Location
}

type startAttemptRequest struct {
	VehicleID int64 `json:"vehicleId" binding:"required,gt=0"`
}

type locationsRequest struct {
	Branch   string          `json:"branch" binding:"required"`
	Pickup   domain.Location `json:"pickup"`
	Drop     domain.Location `json:"drop"`
	DateFrom string          `json:"dateFrom" binding:"required"`
	TimeFrom string          `json:"timeFrom" binding:"required"`
	DateTo   string          `json:"dateTo" binding:"required"`
	TimeTo   string          `json:"timeTo" binding:"required"`
}

type consentRequest struct {
	Accepted bool `json:"accepted"`
}

type driverRequest struct {
	DriverName    string  `json:"driverName" binding:"required,drivername"`
	DriverContact string  `json:"driverContact" binding:"required,contact"`
	DriverAge     jsonInt `json:"driverAge" binding:"required,min=18,max=65"`
	DriverLicense string  `json:"driverLicense" binding:"required,license"`
	CaptchaAnswer string  `json:"captchaAnswer" binding:"required"`
}

func NewAttemptHandler(service booking.AttemptUseCase, loc *time.Location) *AttemptHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AttemptHandler{service: service, loc: loc}
}

func (h *AttemptHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	attempts := router.Group("/booking-attempts", auth)
	attempts.POST("", h.start)
	attempts.GET("/:id", h.get)
	attempts.PUT("/:id/locations", h.setLocations)
	attempts.POST("/:id/quote", h.quote)
	attempts.POST("/:id/consent", h.consent)
	attempts.POST("/:id/captcha", h.refreshCaptcha)
	attempts.POST("/:id/driver", h.submitDriver)
	attempts.POST("/:id/payment", h.pay)
}

func (h *AttemptHandler) start(c *gin.Context) {
	var req startAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	attempt, err := h.service.Start(c.Request.Context(), currentUserID(c), req.VehicleID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"attempt": attempt})
}

func (h *AttemptHandler) get(c *gin.Context) {
	attempt, err := h.service.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": attempt})
}

func (h *AttemptHandler) setLocations(c *gin.Context) {
	var req locationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	pickupAt, err := parseDateTime(req.DateFrom, req.TimeFrom, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid pickup date or time"})
		return
	}
	dropAt, err := parseDateTime(req.DateTo, req.TimeTo, h.loc)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid drop date or time"})
		return
	}

	attempt, err := h.service.SetLocations(c.Request.Context(), currentUserID(c), c.Param("id"), booking.LocationsInput{
		Branch:   req.Branch,
		Pickup:   req.Pickup,
		Drop:     req.Drop,
		PickupAt: pickupAt,
		DropAt:   dropAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": attempt})
}

func (h *AttemptHandler) quote(c *gin.Context) {
	attempt, err := h.service.Quote(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": attempt, "quote": attempt.Quote})
}

func (h *AttemptHandler) consent(c *gin.Context) {
	var req consentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	attempt, challenge, err := h.service.Consent(c.Request.Context(), currentUserID(c), c.Param("id"), req.Accepted)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": attempt, "captcha": challenge})
}

func (h *AttemptHandler) refreshCaptcha(c *gin.Context) {
	challenge, err := h.service.RefreshCaptcha(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"captcha": challenge})
}

func (h *AttemptHandler) submitDriver(c *gin.Context) {
	var req driverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	driver := validation.DriverDetails{
		Name:    req.DriverName,
		Contact: req.DriverContact,
		Age:     int(req.DriverAge),
		License: req.DriverLicense,
	}
	attempt, created, err := h.service.SubmitDriver(c.Request.Context(), currentUserID(c), c.Param("id"), driver, req.CaptchaAnswer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": attempt, "booking": newBookingResponse(created, h.loc)})
}

func (h *AttemptHandler) pay(c *gin.Context) {
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	attempt, paid, err := h.service.Pay(c.Request.Context(), currentUserID(c), c.Param("id"), req.card())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attempt": attempt, "booking": newBookingResponse(paid, h.loc)})
}
