// File: beautybot/handlers/admin.go
package handlers

import (
	"net/http"
	"time"

	"beautybot/config"
	appointmentRepo "beautybot/database/repository/appointment"
	"beautybot/services/availability"
	"beautybot/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AdminHandler encapsulates elevated admin-level operations.
type AdminHandler struct {
	Appointments appointmentRepo.AppointmentRepository
	Cache        *availability.Cache
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(appts appointmentRepo.AppointmentRepository, cache *availability.Cache) *AdminHandler {
	return &AdminHandler{
		Appointments: appts,
		Cache:        cache,
	}
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginHandler checks admin credentials and issues a bearer token.
func (ah *AdminHandler) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	if req.Username != config.AppConfig.AdminUser ||
		bcrypt.CompareHashAndPassword([]byte(config.AppConfig.AdminPasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := utils.GenerateToken(req.Username, 12*time.Hour)
	if err != nil {
		zap.L().Error("Failed to generate admin token", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListAppointmentsHandler returns upcoming appointments, optionally from a
// given date (yyyy-mm-dd).
func (ah *AdminHandler) ListAppointmentsHandler(c *gin.Context) {
	from := time.Now()
	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "from must be yyyy-mm-dd"})
			return
		}
		from = parsed
	}

	appts, err := ah.Appointments.GetAll(c.Request.Context(), from)
	if err != nil {
		zap.L().Error("Failed to fetch appointments", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch appointments"})
		return
	}
	c.JSON(http.StatusOK, appts)
}

// RefreshAvailabilityHandler forces a re-read of the availability source.
func (ah *AdminHandler) RefreshAvailabilityHandler(c *gin.Context) {
	ah.Cache.Invalidate()
	if _, err := ah.Cache.Get(c.Request.Context()); err != nil {
		zap.L().Error("Forced availability refresh failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Availability source unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}

// HealthHandler returns the latest dependency health snapshot.
func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, utils.GetHealthStatus())
}
