package devserver

import (
	"strings"

	"github.com/gin-gonic/gin"

	"suju/storefront/internal/models"
	"suju/storefront/internal/security"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}

func (r registerRequest) validate() map[string][]string {
	fields := map[string][]string{}
	if strings.TrimSpace(r.Username) == "" {
		fields["username"] = append(fields["username"], "username is required")
	}
	if strings.TrimSpace(r.Email) == "" || !strings.Contains(r.Email, "@") {
		fields["email"] = append(fields["email"], "a valid email is required")
	}
	if len(r.Password) < 6 {
		fields["password"] = append(fields["password"], "password must be at least 6 characters")
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}
	if fields := req.validate(); fields != nil {
		failValidation(c, "validation failed", fields)
		return
	}

	user, err := s.store.Register(req.Username, req.Email, req.Password, req.Phone)
	if err != nil {
		fail(c, err)
		return
	}

	s.sendAuthResult(c, user)
}

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}

	user, err := s.store.Authenticate(req.Account, req.Password)
	if err != nil {
		fail(c, err)
		return
	}

	s.sendAuthResult(c, user)
}

func (s *Server) sendAuthResult(c *gin.Context, user models.User) {
	token, err := security.GenerateToken(s.cfg.JWTSecret, user.ID, user.IsAdmin, s.cfg.JWTTTL)
	if err != nil {
		fail(c, err)
		return
	}

	ok(c, models.AuthResult{User: user, Token: token})
}

func (s *Server) handleMe(c *gin.Context) {
	ok(c, currentUser(c))
}

type updateMeRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
	Phone     string `json:"phone"`
}

func (s *Server) handleUpdateMe(c *gin.Context) {
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}

	user, err := s.store.UpdateUser(currentUser(c).ID, UserUpdate{
		Username:  req.Username,
		AvatarURL: req.AvatarURL,
		Phone:     req.Phone,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, user)
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleChangePassword(c *gin.Context) {
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		failValidation(c, "invalid request body", nil)
		return
	}

	if err := s.store.ChangePassword(currentUser(c).ID, req.OldPassword, req.NewPassword); err != nil {
		fail(c, err)
		return
	}
	ok(c, nil)
}
