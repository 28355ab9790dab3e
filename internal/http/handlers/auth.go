package handlers

import (
	"encoding/json"
	"errors"
	"net/mail"
	"time"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"github.com/FabCode67/neoparental/internal/auth"
	"github.com/FabCode67/neoparental/internal/config"
	dbpkg "github.com/FabCode67/neoparental/internal/db"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(u *dbpkg.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		CreatedAt: u.CreatedAt,
	}
}

// Register creates a new user account.
func Register(db *gorm.DB) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req registerRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Email == "" || req.Password == "" || req.FullName == "" {
			errResponse(ctx, fasthttp.StatusBadRequest, "email, password and full_name are required")
			return
		}
		if _, err := mail.ParseAddress(req.Email); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid email address")
			return
		}

		user, err := dbpkg.RegisterUser(db, req.Email, req.Password, req.FullName)
		if err != nil {
			if errors.Is(err, dbpkg.ErrEmailTaken) {
				errResponse(ctx, fasthttp.StatusBadRequest, "Email already registered")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to create user")
			return
		}

		jsonResponse(ctx, fasthttp.StatusCreated, toUserResponse(user))
	}
}

// Login verifies credentials and issues an access token.
func Login(db *gorm.DB, cfg *config.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		var req loginRequest
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			errResponse(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
			return
		}

		user, err := dbpkg.VerifyUser(db, req.Email, req.Password)
		if err != nil {
			if errors.Is(err, dbpkg.ErrInvalidCredentials) {
				errResponse(ctx, fasthttp.StatusUnauthorized, "Incorrect email or password")
				return
			}
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to verify credentials")
			return
		}

		token, err := auth.GenerateToken(user.ID, []byte(cfg.JWTSecret), cfg.TokenTTL)
		if err != nil {
			errResponse(ctx, fasthttp.StatusInternalServerError, "failed to issue token")
			return
		}

		jsonResponse(ctx, fasthttp.StatusOK, map[string]string{
			"access_token": token,
			"token_type":   "bearer",
		})
	}
}

// Me returns the caller's own user record.
func Me() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		user, ok := MustUser(ctx)
		if !ok {
			return
		}
		jsonResponse(ctx, fasthttp.StatusOK, toUserResponse(user))
	}
}
