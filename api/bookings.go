package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/receipt"
	"github.com/easyrent/vehiclerental/internal/service/booking"
	"github.com/easyrent/vehiclerental/internal/validation"
	"github.com/gin-gonic/gin"
)

// Booking forms send times with or without seconds.
var dateTimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04"}

func parseDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		if t, err = time.ParseInLocation(layout, date+" "+clock, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// jsonInt accepts a JSON number or a numeric string such as a text input posts.
type jsonInt int

func (n *jsonInt) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	v, err := strconv.Atoi(num.String())
	if err != nil {
		return fmt.Errorf("not a whole number: %q", num)
	}
	*n = jsonInt(v)
	return nil
}

// jsonFloat accepts a JSON number or a numeric string like "12.40".
type jsonFloat float64

func (f *jsonFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	v, err := num.Float64()
	if err != nil {
		return err
	}
	*f = jsonFloat(v)
	return nil
}

type BookingHandler struct {
	service booking.BookingUseCase
	loc     *time.Location
}

type createBookingRequest struct {
	VehicleID     int64     `json:"vehicleId" binding:"required,gt=0"`
	Pickup        string    `json:"pickup" binding:"required"`
	Drop          string    `json:"drop" binding:"required"`
	DateFrom      string    `json:"dateFrom" binding:"required"`
	TimeFrom      string    `json:"timeFrom" binding:"required"`
	DateTo        string    `json:"dateTo" binding:"required"`
	TimeTo        string    `json:"timeTo" binding:"required"`
	Price         int64     `json:"price" binding:"required,gt=0"`
	DistanceKm    jsonFloat `json:"distanceKm" binding:"gte=0"`
	DriverName    string    `json:"driverName" binding:"required,drivername"`
	DriverContact string    `json:"driverContact" binding:"required,contact"`
	DriverAge     jsonInt   `json:"driverAge" binding:"required,min=18,max=65"`
	DriverLicense string    `json:"driverLicense" binding:"required,license"`
	BranchName    string    `json:"branchName" binding:"required"`
	CaptchaID     string    `json:"captchaId" binding:"required"`
	CaptchaAnswer string    `json:"captchaAnswer" binding:"required"`
}

type paymentRequest struct {
	CardNumber string `json:"cardNumber" binding:"required,cardnumber"`
	CardName   string `json:"cardName" binding:"required,min=3"`
	Expiry     string `json:"expiry" binding:"required,cardexpiry"`
	CVV        string `json:"cvv" binding:"required,cvv"`
}

type bookingResponse struct {
	ID              int64   `json:"id"`
	TransactionID   string  `json:"transactionId"`
	VehicleID       int64   `json:"vehicleId"`
	VehicleName     string  `json:"vehicleName"`
	Pickup          string  `json:"pickupLocation"`
	Drop            string  `json:"dropLocation"`
	DateFrom        string  `json:"dateFrom"`
	DateTo          string  `json:"dateTo"`
	Price           int64   `json:"price"`
	DistanceKm      float64 `json:"distanceKm"`
	DriverName      string  `json:"driverName"`
	DriverContact   string  `json:"driverContact"`
	DriverAge       int     `json:"driverAge"`
	DriverLicense   string  `json:"driverLicense"`
	BranchName      string  `json:"branchName"`
	Status          string  `json:"status"`
	PaymentDeadline string  `json:"paymentDeadline,omitempty"`
	CreatedAt       string  `json:"createdAt"`
}

func NewBookingHandler(service booking.BookingUseCase, loc *time.Location) *BookingHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &BookingHandler{service: service, loc: loc}
}

func (h *BookingHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.POST("/bookings", auth, h.create)
	router.GET("/bookings-history", auth, h.history)
	router.DELETE("/bookings/:id", auth, h.cancel)
	router.POST("/bookings/:id/payment", auth, h.pay)
	router.GET("/bookings/:id/receipt", auth, h.receipt)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
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

	created, err := h.service.CreateBooking(c.Request.Context(), currentUserID(c), booking.CreateBookingInput{
		VehicleID:  req.VehicleID,
		Pickup:     req.Pickup,
		Drop:       req.Drop,
		PickupAt:   pickupAt,
		DropAt:     dropAt,
		Price:      req.Price,
		DistanceKm: float64(req.DistanceKm),
		BranchName: req.BranchName,
		Driver: validation.DriverDetails{
			Name:    req.DriverName,
			Contact: req.DriverContact,
			Age:     int(req.DriverAge),
			License: req.DriverLicense,
		},
		CaptchaID:     req.CaptchaID,
		CaptchaAnswer: req.CaptchaAnswer,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Booking saved successfully",
		"id":              created.ID,
		"transactionId":   created.TransactionID,
		"status":          created.Status,
		"paymentDeadline": created.PaymentDeadline.Format(time.RFC3339),
	})
}

func (h *BookingHandler) history(c *gin.Context) {
	list, err := h.service.History(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, newBookingResponse(&list[i], h.loc))
	}
	c.JSON(http.StatusOK, gin.H{"bookings": out})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	cancelled, err := h.service.CancelBooking(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Booking cancelled successfully", "booking": newBookingResponse(cancelled, h.loc)})
}

func (h *BookingHandler) pay(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	paid, err := h.service.PayBooking(c.Request.Context(), currentUserID(c), id, req.card())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment successful", "booking": newBookingResponse(paid, h.loc)})
}

func (h *BookingHandler) receipt(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pdf, err := h.service.Receipt(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", receipt.Filename(id)))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

func (r paymentRequest) card() validation.CardDetails {
	return validation.CardDetails{Number: r.CardNumber, Name: r.CardName, Expiry: r.Expiry, CVV: r.CVV}
}

func newBookingResponse(b *domain.Booking, loc *time.Location) bookingResponse {
	resp := bookingResponse{
		ID:            b.ID,
		TransactionID: b.TransactionID,
		VehicleID:     b.VehicleID,
		VehicleName:   b.VehicleName,
		Pickup:        b.Pickup,
		Drop:          b.Drop,
		DateFrom:      b.PickupAt.In(loc).Format(time.RFC3339),
		DateTo:        b.DropAt.In(loc).Format(time.RFC3339),
		Price:         b.Price,
		DistanceKm:    b.DistanceKm,
		DriverName:    b.DriverName,
		DriverContact: b.DriverContact,
		DriverAge:     b.DriverAge,
		DriverLicense: b.DriverLicense,
		BranchName:    b.BranchName,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.In(loc).Format(time.RFC3339),
	}
	if b.Status == domain.BookingStatusPendingPayment && !b.PaymentDeadline.IsZero() {
		resp.PaymentDeadline = b.PaymentDeadline.In(loc).Format(time.RFC3339)
	}
	return resp
}
