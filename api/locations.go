package api

import (
	"context"
	"net/http"

	"github.com/easyrent/vehiclerental/internal/branch"
	"github.com/easyrent/vehiclerental/internal/captcha"
	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/routing"
	"github.com/gin-gonic/gin"
)

type RoutingClient interface {
	Directions(ctx context.Context, start, end routing.Coordinate) ([]byte, error)
	Search(ctx context.Context, text string) (*domain.Location, error)
	Reverse(ctx context.Context, lat, lng float64) (*domain.Location, error)
}

type CaptchaIssuer interface {
	Issue(ctx context.Context) (*captcha.Challenge, error)
}

// LocationHandler serves the branch table, routing proxy and CAPTCHA issuing
// used by the booking form.
type LocationHandler struct {
	routes  RoutingClient
	captcha CaptchaIssuer
}

type directionsRequest struct {
	Start *routing.Coordinate `json:"start" binding:"required"`
	End   *routing.Coordinate `json:"end" binding:"required"`
}

type searchQuery struct {
	Text string `form:"text" binding:"required"`
}

type reverseQuery struct {
	Lat *float64 `form:"lat" binding:"required,min=-90,max=90"`
	Lng *float64 `form:"lng" binding:"required,min=-180,max=180"`
}

func NewLocationHandler(routes RoutingClient, captcha CaptchaIssuer) *LocationHandler {
	return &LocationHandler{routes: routes, captcha: captcha}
}

func (h *LocationHandler) Register(router *gin.RouterGroup) {
	router.GET("/branches", h.branches)
	router.POST("/directions", h.directions)
	router.GET("/geocode/search", h.search)
	router.GET("/geocode/reverse", h.reverse)
	router.GET("/captcha", h.issueCaptcha)
}

func (h *LocationHandler) branches(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"branches": branch.All()})
}

func (h *LocationHandler) directions(c *gin.Context) {
	var req directionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Start and end coordinates required"})
		return
	}
	body, err := h.routes.Directions(c.Request.Context(), *req.Start, *req.End)
	if err != nil {
		if respondUpstream(c, err) {
			return
		}
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/json", body)
}

func (h *LocationHandler) search(c *gin.Context) {
	var q searchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	loc, err := h.routes.Search(c.Request.Context(), q.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) reverse(c *gin.Context) {
	var q reverseQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	loc, err := h.routes.Reverse(c.Request.Context(), *q.Lat, *q.Lng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loc)
}

func (h *LocationHandler) issueCaptcha(c *gin.Context) {
	ch, err := h.captcha.Issue(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ch)
}
