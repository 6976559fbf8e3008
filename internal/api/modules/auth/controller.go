package auth_module

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/launchkite/launchkite/internal/stores/user"
	"github.com/launchkite/launchkite/pkg/sdk"
)

// authService is the module-level service instance, set by Init
var authService *Service

// Init wires the auth module to its store
func Init(users user.Store) {
	authService = NewService(users)
}

// RequireSession middleware resolves the session cookie to a user and aborts
// with 401 when there is none
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Authentication required", nil).AsGinResponse())
			c.Abort()
			return
		}

		u, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Session expired or invalid", nil).AsGinResponse())
			c.Abort()
			return
		}

		// Store the user in context for handlers downstream
		c.Set("current_user", u)
		c.Set("session_token", token)

		c.Next()
	}
}

// CurrentUser retrieves the authenticated user from the gin context
func CurrentUser(c *gin.Context) (*user.User, bool) {
	value, exists := c.Get("current_user")
	if !exists {
		return nil, false
	}

	if u, ok := value.(*user.User); ok {
		return u, true
	}

	return nil, false
}

// CurrentUserID retrieves the authenticated user's id from the gin context
func CurrentUserID(c *gin.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.ID
	}
	return ""
}

// setSessionCookie issues the session cookie on the response
func setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, token, maxAge, "/", "", false, true)
}

func toUserResponse(u *user.User) sdk.UserResponse {
	return sdk.UserResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Signup handles POST requests to create an account
func Signup(c *gin.Context) {
	// Parse request body
	var req sdk.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	u, session, err := authService.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Email already registered", nil).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to create account", err).AsGinResponse())
		return
	}

	setSessionCookie(c, session.Token, int(sessionTTL.Seconds()))
	c.JSON(sdk.NewSuccessResponse("Account created successfully", toUserResponse(u)).AsGinResponse())
}

// Login handles POST requests to start a session
func Login(c *gin.Context) {
	// Parse request body
	var req sdk.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(sdk.NewErrorResponse(http.StatusBadRequest, "Could not parse request body", err).AsGinResponse())
		return
	}

	u, session, err := authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Invalid email or password", nil).AsGinResponse())
			return
		}
		c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to log in", err).AsGinResponse())
		return
	}

	setSessionCookie(c, session.Token, int(sessionTTL.Seconds()))
	c.JSON(sdk.NewSuccessResponse("Logged in successfully", toUserResponse(u)).AsGinResponse())
}

// Logout handles POST requests to revoke the current session
func Logout(c *gin.Context) {
	token, _ := c.Get("session_token")
	if tokenStr, ok := token.(string); ok {
		if err := authService.Logout(c.Request.Context(), tokenStr); err != nil {
			c.JSON(sdk.NewErrorResponse(http.StatusInternalServerError, "Failed to log out", err).AsGinResponse())
			return
		}
	}

	setSessionCookie(c, "", -1)
	c.JSON(sdk.NewSuccess("Logged out successfully").AsGinResponse())
}

// Me handles GET requests for the current account
func Me(c *gin.Context) {
	u, ok := CurrentUser(c)
	if !ok {
		c.JSON(sdk.NewErrorResponse(http.StatusUnauthorized, "Authentication required", nil).AsGinResponse())
		return
	}

	c.JSON(sdk.NewSuccessResponse("Account retrieved successfully", toUserResponse(u)).AsGinResponse())
}
