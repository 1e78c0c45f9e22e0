package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/service/feedback"
	"github.com/easyrent/vehiclerental/internal/service/vehicles"
	"github.com/gin-gonic/gin"
)

type VehicleHandler struct {
	vehicles vehicles.VehicleUseCase
	feedback feedback.FeedbackUseCase
}

type vehicleQuery struct {
	Type   string `form:"type"`
	Fuel   string `form:"fuel"`
	Seats  int    `form:"seats" binding:"omitempty,min=1"`
	Search string `form:"search"`
	Sort   string `form:"sort" binding:"omitempty,oneof=price_asc price_desc"`
}

type feedbackRequest struct {
	Rating  *float64 `json:"rating"`
	Comment string   `json:"comment" binding:"max=1000"`
}

type feedbackResponse struct {
	ID        int64   `json:"id"`
	UserName  string  `json:"userName"`
	Rating    float64 `json:"rating"`
	Comment   string  `json:"comment"`
	CreatedAt string  `json:"createdAt"`
}

func NewVehicleHandler(vehicles vehicles.VehicleUseCase, feedback feedback.FeedbackUseCase) *VehicleHandler {
	return &VehicleHandler{vehicles: vehicles, feedback: feedback}
}

func (h *VehicleHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.GET("/vehicles", h.list)
	router.GET("/vehicles/:id", h.get)
	router.GET("/vehicles/:id/feedback", h.listFeedback)
	router.POST("/vehicles/:id/feedback", auth, h.submitFeedback)
}

func (h *VehicleHandler) list(c *gin.Context) {
	var q vehicleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}

	list, err := h.vehicles.List(c.Request.Context(), vehicles.Filter{
		Type:   q.Type,
		Fuel:   q.Fuel,
		Seats:  q.Seats,
		Search: q.Search,
		Sort:   q.Sort,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if list == nil {
		list = []domain.Vehicle{}
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": list})
}

func (h *VehicleHandler) get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	vehicle, err := h.vehicles.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, vehicle)
}

func (h *VehicleHandler) listFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.feedback.List(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]feedbackResponse, 0, len(items))
	for _, f := range items {
		out = append(out, feedbackResponse{
			ID:        f.ID,
			UserName:  f.UserName,
			Rating:    f.Rating,
			Comment:   f.Comment,
			CreatedAt: f.CreatedAt.Format(time.RFC3339),
		})
	}
	c.JSON(http.StatusOK, gin.H{"feedback": out})
}

func (h *VehicleHandler) submitFeedback(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	_, err := h.feedback.Submit(c.Request.Context(), feedback.SubmitInput{
		UserID:    currentUserID(c),
		VehicleID: id,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback submitted successfully"})
}

// pathID parses a positive integer path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid " + name})
		return 0, false
	}
	return id, true
}
