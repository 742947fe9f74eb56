package delivery

import (
	"log"
	"net/http"

	devicedomain "liveclass-backend/internal/device/domain"
	"liveclass-backend/internal/device/repository"

	"github.com/gin-gonic/gin"
)

// DeviceHandler handles push token registration
type DeviceHandler struct {
	tokenRepo repository.DeviceTokenRepository
}

// NewDeviceHandler creates a new DeviceHandler
func NewDeviceHandler(tokenRepo repository.DeviceTokenRepository) *DeviceHandler {
	return &DeviceHandler{tokenRepo: tokenRepo}
}

// RegisterTokenRequest represents the request body for registering a device token
type RegisterTokenRequest struct {
	Token    string `json:"token" binding:"required"`
	Platform string `json:"platform"`
}

// Register saves the caller's token
// POST /api/devices
func (h *DeviceHandler) Register(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	platform := devicedomain.Platform(req.Platform)
	if platform == "" {
		platform = devicedomain.PlatformAndroid
	}
	if !platform.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "platform must be one of android, ios, web"})
		return
	}

	userID := c.GetString("userID")
	if err := h.tokenRepo.SaveToken(userID, req.Token, platform); err != nil {
		log.Printf("[Device] Failed to save token for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device registered successfully"})
}

// Unregister removes one of the caller's tokens
// DELETE /api/devices/:token
func (h *DeviceHandler) Unregister(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.tokenRepo.DeleteToken(userID, c.Param("token")); err != nil {
		log.Printf("[Device] Failed to delete token for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unregister device"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Device unregistered successfully"})
}

// List returns the caller's registered devices
// GET /api/devices
func (h *DeviceHandler) List(c *gin.Context) {
	userID := c.GetString("userID")
	tokens, err := h.tokenRepo.GetTokensByUserID(userID)
	if err != nil {
		log.Printf("[Device] Failed to list tokens for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list devices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"devices": tokens, "count": len(tokens)})
}
