package server

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kalasetu/artist-tracker/internal/auth"
	"github.com/kalasetu/artist-tracker/internal/entity"
)

var (
	reUsername = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	reEmail    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

func (r *registerRequest) validate() string {
	r.Username = strings.ToLower(strings.TrimSpace(r.Username))
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.FullName = strings.TrimSpace(r.FullName)

	if len(r.Username) < 3 || len(r.Username) > 50 {
		return "username must be 3-50 characters"
	}
	if !reUsername.MatchString(r.Username) {
		return "username may only contain letters, digits, underscore and hyphen"
	}
	if !reEmail.MatchString(r.Email) {
		return "invalid email address"
	}
	if len(r.FullName) < 2 || len(r.FullName) > 100 {
		return "full_name must be 2-100 characters"
	}
	if len(r.Password) < 6 {
		return "password must be at least 6 characters"
	}
	if r.Role == "" {
		r.Role = "user"
	}
	if r.Role != "user" && r.Role != "admin" {
		return "role must be user or admin"
	}
	return ""
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if msg := req.validate(); msg != "" {
		return badRequest(c, msg)
	}

	ctx := c.Context()
	if exists, err := s.store.UsernameExists(ctx, req.Username); err != nil {
		return fail(c, err)
	} else if exists {
		return c.Status(409).JSON(fiber.Map{"error": "username already registered", "code": "USERNAME_TAKEN"})
	}
	if exists, err := s.store.EmailExists(ctx, req.Email); err != nil {
		return fail(c, err)
	} else if exists {
		return c.Status(409).JSON(fiber.Map{"error": "email already registered", "code": "EMAIL_TAKEN"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return fail(c, err)
	}
	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		FullName:     req.FullName,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return fail(c, err)
	}
	token, err := s.tokens.Issue(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return fail(c, err)
	}
	s.logger.Info("user registered", zap.String("username", user.Username))
	return c.Status(201).JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	req.UsernameOrEmail = strings.ToLower(strings.TrimSpace(req.UsernameOrEmail))
	if req.UsernameOrEmail == "" || req.Password == "" {
		return badRequest(c, "username_or_email and password are required")
	}

	user, err := s.store.GetUserByUsernameOrEmail(c.Context(), req.UsernameOrEmail)
	if err != nil || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		// Same response whether the user is unknown or the password is wrong.
		return c.Status(401).JSON(fiber.Map{"error": "invalid credentials", "code": "AUTH_ERROR"})
	}

	token, err := s.tokens.Issue(auth.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"access_token": token,
		"token_type":   "bearer",
		"user":         user,
	})
}

func (s *Server) handleAuthProfile(c *fiber.Ctx) error {
	claims := claimsFrom(c)
	user, err := s.store.GetUserByID(c.Context(), claims.UserID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(user)
}
