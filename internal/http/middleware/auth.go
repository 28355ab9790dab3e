package middleware

import (
	"bytes"
	"strings"

	"github.com/valyala/fasthttp"
	"gorm.io/gorm"

	"github.com/FabCode67/neoparental/internal/auth"
	dbpkg "github.com/FabCode67/neoparental/internal/db"
	httpctx "github.com/FabCode67/neoparental/internal/http/ctx"
)

// BearerAuth validates the Authorization bearer token as a JWT,
// resolves the user it names, and sets it on the request context.
// Every failure mode gets the same generic 401.
func BearerAuth(db *gorm.DB, secret []byte) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			auth401 := func() {
				ctx.Response.Header.Set("WWW-Authenticate", "Bearer")
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				ctx.SetContentType("application/json")
				ctx.SetBodyString(`{"detail":"Could not validate credentials"}`)
			}

			header := ctx.Request.Header.Peek("Authorization")
			const prefix = "Bearer "
			if len(header) == 0 || !bytes.HasPrefix(header, []byte(prefix)) {
				auth401()
				return
			}

			token := strings.TrimSpace(string(header[len(prefix):]))
			if token == "" {
				auth401()
				return
			}

			userID, err := auth.ParseToken(token, secret)
			if err != nil {
				auth401()
				return
			}

			user, err := dbpkg.GetUserByID(db, userID)
			if err != nil {
				auth401()
				return
			}

			httpctx.SetUser(ctx, user)
			next(ctx)
		}
	}
}
