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

const (
	SessionName = "chromasess"
	userIDKey   = "user_id"
)

type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req RegisterRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Password != req.ConfirmPassword {
		c.JSON(http.StatusBadRequest, gin.H{"error": "passwords do not match"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process password"})
		return
	}

	user := models.User{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: string(hash),
	}

	if err := db.DB.WithContext(c.Request.Context()).Create(&user).Error; err != nil {
		if strings.Contains(err.Error(), "unique constraint") || strings.Contains(err.Error(), "UNIQUE constraint") || strings.Contains(err.Error(), "duplicate key") {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, user)
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := db.DB.WithContext(c.Request.Context()).
		Where("email = ?", strings.ToLower(req.Email)).
		First(&user).Error
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

	sess := sessions.Default(c)
	sess.Set(userIDKey, user.ID)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "user": user})
}

// POST /api/auth/logout
func Logout(c *gin.Context) {
	destroySession(c)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// GET /api/auth/session
func Session(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no active session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// RequireUser ensures a signed-in user and injects *models.User into the
// context. A session pointing at a deleted user is destroyed rather than
// left half-authenticated.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := sessionUser(c)
		if !ok {
			destroySession(c)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Set("user", user)
		c.Next()
	}
}

// CurrentUser returns the signed-in user when one exists, for handlers
// that serve both guests and account holders.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	if v, exists := c.Get("user"); exists {
		if u, ok := v.(*models.User); ok {
			return u, true
		}
	}
	return sessionUser(c)
}

func sessionUser(c *gin.Context) (*models.User, bool) {
	sess := sessions.Default(c)
	userID, ok := sess.Get(userIDKey).(uint)
	if !ok || userID == 0 {
		return nil, false
	}

	var user models.User
	if err := db.DB.WithContext(c.Request.Context()).First(&user, userID).Error; err != nil {
		return nil, false
	}
	return &user, true
}

func destroySession(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()
}
