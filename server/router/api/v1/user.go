package v1

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/lectern/lectern/store"
)

// userDTO never carries the password hash.
type userDTO struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName"`
	Role      int    `json:"role"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

func toUserDTO(u *store.User) *userDTO {
	return &userDTO{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Role:      u.Role,
		CreatedAt: u.CreatedTs,
		UpdatedAt: u.UpdatedTs,
	}
}

type upsertUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     *int   `json:"role"`
}

func validRole(role int) bool {
	return role == store.RoleStudent || role == store.RoleInstructor || role == store.RoleAdmin
}

// ListUsers lists accounts.
// GET /api/users
func (s *APIV1Service) ListUsers(c echo.Context) error {
	users, err := s.Store.ListUsers(c.Request().Context(), &store.FindUser{})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to list users")
	}

	list := make([]*userDTO, 0, len(users))
	for _, user := range users {
		list = append(list, toUserDTO(user))
	}
	return respondOK(c, http.StatusOK, list)
}

// CreateUser registers an account with a bcrypt password hash.
// POST /api/users
func (s *APIV1Service) CreateUser(c echo.Context) error {
	var req upsertUserRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		return respondError(c, http.StatusBadRequest, "a valid email is required")
	}
	if len(req.Password) < 8 {
		return respondError(c, http.StatusBadRequest, "password must be at least 8 characters")
	}

	role := store.RoleStudent
	if req.Role != nil {
		if !validRole(*req.Role) {
			return respondError(c, http.StatusBadRequest, "invalid role")
		}
		role = *req.Role
	}

	existing, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{Email: &req.Email})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to check email")
	}
	if existing != nil {
		return respondError(c, http.StatusConflict, "email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to hash password")
	}

	now := time.Now().Unix()
	user, err := s.Store.CreateUser(c.Request().Context(), &store.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         role,
		CreatedTs:    now,
		UpdatedTs:    now,
	})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to create user")
	}
	return respondOK(c, http.StatusCreated, toUserDTO(user))
}

// GetUser returns one account.
// GET /api/users/:id
func (s *APIV1Service) GetUser(c echo.Context) error {
	id := c.Param("id")
	user, err := s.Store.GetUser(c.Request().Context(), &store.FindUser{ID: &id})
	if err != nil {
		return respondError(c, http.StatusInternalServerError, "failed to load user")
	}
	if user == nil {
		return respondError(c, http.StatusNotFound, "user not found")
	}
	return respondOK(c, http.StatusOK, toUserDTO(user))
}

// UpdateUser patches an account; a new password is re-hashed.
// PUT /api/users/:id
func (s *APIV1Service) UpdateUser(c echo.Context) error {
	var req upsertUserRequest
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "malformed request body")
	}

	now := time.Now().Unix()
	update := &store.UpdateUser{ID: c.Param("id"), UpdatedTs: &now}
	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		update.Email = &email
	}
	if req.FullName != "" {
		update.FullName = &req.FullName
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return respondError(c, http.StatusBadRequest, "invalid role")
		}
		update.Role = req.Role
	}
	if req.Password != "" {
		if len(req.Password) < 8 {
			return respondError(c, http.StatusBadRequest, "password must be at least 8 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return respondError(c, http.StatusInternalServerError, "failed to hash password")
		}
		hashStr := string(hash)
		update.PasswordHash = &hashStr
	}

	user, err := s.Store.UpdateUser(c.Request().Context(), update)
	if err != nil {
		return respondError(c, http.StatusNotFound, "user not found")
	}
	return respondOK(c, http.StatusOK, toUserDTO(user))
}

// DeleteUser removes an account.
// DELETE /api/users/:id
func (s *APIV1Service) DeleteUser(c echo.Context) error {
	if err := s.Store.DeleteUser(c.Request().Context(), &store.DeleteUser{ID: c.Param("id")}); err != nil {
		return respondError(c, http.StatusNotFound, "user not found")
	}
	return respondOK(c, http.StatusOK, nil)
}
