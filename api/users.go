package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/easyrent/vehiclerental/internal/domain"
	"github.com/easyrent/vehiclerental/internal/service/users"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const dateLayout = "2006-01-02"

var avatarExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type UserHandler struct {
	service   users.UserUseCase
	cookie    SessionCookie
	uploadDir string
	now       func() time.Time
}

type signUpRequest struct {
	FullName string `json:"fullName"`
	DOB      string `json:"dob"`
	Email    string `json:"email" binding:"omitempty,email"`
	Contact  string `json:"contact"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	City          string `json:"city"`
	State         string `json:"state"`
	Pincode       string `json:"pincode"`
	Password      string `json:"password"`
	CaptchaID     string `json:"captchaId"`
	CaptchaAnswer string `json:"captchaAnswer"`
}

type userSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Username string `json:"username"`
	DOB      string `json:"dob"`
	Age      int    `json:"age"`
	Contact  string `json:"contact"`
	City     string `json:"city"`
	State    string `json:"state"`
	Pincode  string `json:"pincode"`
	Avatar   string `json:"avatar,omitempty"`
}

func NewUserHandler(service users.UserUseCase, cookie SessionCookie, uploadDir string) *UserHandler {
	return &UserHandler{service: service, cookie: cookie, uploadDir: uploadDir, now: time.Now}
}

func (h *UserHandler) Register(router *gin.RouterGroup, auth gin.HandlerFunc) {
	router.POST("/signup", h.signUp)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
	router.GET("/current-user", auth, h.currentUser)
	router.GET("/profile", auth, h.profile)
	router.PUT("/update-profile", auth, h.updateProfile)
	router.POST("/upload-avatar", auth, h.uploadAvatar)
}

func (h *UserHandler) signUp(c *gin.Context) {
	var req signUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	var dob time.Time
	if req.DOB != "" {
		parsed, err := time.Parse(dateLayout, req.DOB)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "dob must be YYYY-MM-DD"})
			return
		}
		dob = parsed
	}

	_, err := h.service.SignUp(c.Request.Context(), users.SignUpInput{
		FullName: strings.TrimSpace(req.FullName),
		DOB:      dob,
		Email:    req.Email,
		Contact:  req.Contact,
		City:     req.City,
		State:    req.State,
		Pincode:  req.Pincode,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "User registered successfully"})
}

func (h *UserHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	user, sid, err := h.service.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, sid, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    userSummary{ID: user.ID, Username: user.Username, FullName: user.FullName},
	})
}

func (h *UserHandler) logout(c *gin.Context) {
	sid, _ := c.Cookie(h.cookie.Name)
	if err := h.service.Logout(c.Request.Context(), sid); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Logout failed"})
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *UserHandler) currentUser(c *gin.Context) {
	h.writeUser(c)
}

func (h *UserHandler) profile(c *gin.Context) {
	h.writeUser(c)
}

func (h *UserHandler) writeUser(c *gin.Context) {
	user, err := h.service.Profile(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": h.toUserResponse(user)})
}

func (h *UserHandler) updateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	err := h.service.UpdateProfile(c.Request.Context(), currentUserID(c), users.UpdateProfileInput{
		City:          req.City,
		State:         req.State,
		Pincode:       req.Pincode,
		Password:      req.Password,
		CaptchaID:     req.CaptchaID,
		CaptchaAnswer: req.CaptchaAnswer,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (h *UserHandler) uploadAvatar(c *gin.Context) {
	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "avatar file is required"})
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !avatarExtensions[ext] {
		c.JSON(http.StatusBadRequest, gin.H{"message": "avatar must be an image"})
		return
	}

	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(h.uploadDir, name)); err != nil {
		respondError(c, fmt.Errorf("save avatar: %w", err))
		return
	}

	avatar := "/uploads/" + name
	if err := h.service.SetAvatar(c.Request.Context(), currentUserID(c), avatar); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Avatar updated successfully", "avatar": avatar})
}

func (h *UserHandler) toUserResponse(u *domain.User) userResponse {
	resp := userResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Username: u.Username,
		Age:      u.Age(h.now()),
		Contact:  u.Contact,
		City:     u.City,
		State:    u.State,
		Pincode:  u.Pincode,
		Avatar:   u.AvatarPath,
	}
	if !u.DOB.IsZero() {
		resp.DOB = u.DOB.Format(dateLayout)
	}
	return resp
}
