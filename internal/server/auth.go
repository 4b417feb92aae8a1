package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identitydomain "github.com/compfund/cfportal/internal/identity/domain"
)

type checkUserRequest struct {
	IDNumber string `json:"idNumber"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

func (r checkUserRequest) toDomain() identitydomain.CheckUserRequest {
	return identitydomain.CheckUserRequest{
		IDNumber: r.IDNumber,
		Name:     r.Name,
		Surname:  r.Surname,
	}
}

// CheckUser validates the id number and confirms no account exists
// for it yet.
func (s *Server) CheckUser(c *gin.Context) {
	var req checkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	if err := s.identitySvc.CheckUserInfo(c.Request.Context(), req.toDomain()); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User information is valid",
	})
}

// CheckUserExists confirms an account matches the supplied personal
// details, for the forgot-password flow.
func (s *Server) CheckUserExists(c *gin.Context) {
	var req checkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	user, err := s.identitySvc.VerifyUserIdentity(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User exists",
		"data": gin.H{
			"user": gin.H{
				"idNumber": user.IDNumber,
				"name":     user.Name,
				"surname":  user.Surname,
				"email":    user.Email,
			},
		},
	})
}

type registerRequest struct {
	IDNumber        string `json:"idNumber"`
	Name            string `json:"name"`
	Surname         string `json:"surname"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber"`
	TelephoneNumber string `json:"telephoneNumber"`
}

// Register creates an account; the generated password is emailed to
// the new user.
func (s *Server) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	result, err := s.identitySvc.Register(c.Request.Context(), identitydomain.RegisterRequest{
		IDNumber:        req.IDNumber,
		Name:            req.Name,
		Surname:         req.Surname,
		Email:           req.Email,
		PhoneNumber:     req.PhoneNumber,
		TelephoneNumber: req.TelephoneNumber,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful. Your password has been sent to your email.",
		"data": gin.H{
			"user":  result.User,
			"token": result.Token,
		},
	})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates a user by id number, falling back to admin
// credentials so staff can use the same form.
func (s *Server) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	result, err := s.identitySvc.Login(c.Request.Context(), identitydomain.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse(result))
}

func (s *Server) AdminLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	result, err := s.identitySvc.AdminLogin(c.Request.Context(), identitydomain.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, loginResponse(result))
}

func loginResponse(result *identitydomain.LoginResult) gin.H {
	if result.Admin != nil {
		return gin.H{
			"success": true,
			"message": "Login successful",
			"data": gin.H{
				"admin": gin.H{
					"id":       result.Admin.ID.String(),
					"username": result.Admin.Username,
					"email":    result.Admin.Email,
					"role":     result.Admin.Role,
				},
				"permissions": result.Permissions,
				"token":       result.Token,
				"isAdmin":     true,
			},
		}
	}
	return gin.H{
		"success": true,
		"message": "Login successful",
		"data": gin.H{
			"user":  result.User,
			"token": result.Token,
		},
	}
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}

func (s *Server) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.NewPassword == "" {
		AbortWithError(c, errInvalidRequest)
		return
	}

	if err := s.identitySvc.ResetPassword(c.Request.Context(), req.Email, req.NewPassword); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Password reset successfully",
	})
}

// ForgotPassword regenerates the password for a verified identity and
// emails it.
func (s *Server) ForgotPassword(c *gin.Context) {
	var req checkUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, errInvalidRequest)
		return
	}

	email, err := s.identitySvc.ForgotPassword(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "A new password has been sent to " + email,
	})
}

func (s *Server) ListUsers(c *gin.Context) {
	users, err := s.identitySvc.ListUsers(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"users": users,
			"count": len(users),
		},
	})
}
