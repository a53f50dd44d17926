package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

// POST /api/erp/login
//
// Password check first, then the worker_profiles lookup. A user with valid
// credentials but no profile row is not staff: the session is destroyed on
// the spot instead of leaving a half-authenticated state.
func StaffLogin(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	err := db.DB.WithContext(ctx).Where("email = ?", strings.ToLower(req.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
		return
	}

	var profile models.WorkerProfile
	if err := db.DB.WithContext(ctx).Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		destroySession(c)
		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized for ERP access"})
		return
	}

	sess := sessions.Default(c)
	sess.Set(userIDKey, user.ID)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "profile": profile})
}

// GET /api/erp/session
func StaffSession(c *gin.Context) {
	profile, ok := c.Get("staff")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// RequireStaff re-queries worker_profiles on every request. The role is
// never cached in the session or taken from the client, so an out-of-band
// revocation takes effect on the next call.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		userID, ok := sess.Get(userIDKey).(uint)
		if !ok || userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var profile models.WorkerProfile
		if err := db.DB.WithContext(c.Request.Context()).Where("user_id = ?", userID).First(&profile).Error; err != nil {
			destroySession(c)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "not authorized for ERP access"})
			return
		}

		c.Set("staff", &profile)
		c.Next()
	}
}

// RequireRole restricts a route group to the named roles. Admins pass any
// role check. Unlike the staff gate, a role mismatch keeps the session:
// the caller is legitimate staff, just in the wrong console.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, exists := c.Get("staff")
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		profile := v.(*models.WorkerProfile)
		if profile.Role == models.RoleAdmin {
			c.Next()
			return
		}
		for _, role := range roles {
			if profile.Role == role {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient role"})
	}
}
