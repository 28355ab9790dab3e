package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/valyala/fasthttp"

	dbpkg "github.com/FabCode67/neoparental/internal/db"
	httpctx "github.com/FabCode67/neoparental/internal/http/ctx"
)

// MustUser returns the current user from context, or sends 401 and returns (nil, false).
func MustUser(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	user, ok := httpctx.UserFromCtx(ctx)
	if !ok {
		errResponse(ctx, fasthttp.StatusUnauthorized, "Could not validate credentials")
		return nil, false
	}
	return user, true
}

func jsonResponse(ctx *fasthttp.RequestCtx, status int, data any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	body, _ := json.Marshal(data)
	ctx.SetBody(body)
}

// errResponse writes the error body shape the mobile client already
// parses: {"detail": "..."}.
func errResponse(ctx *fasthttp.RequestCtx, status int, detail string) {
	jsonResponse(ctx, status, map[string]string{"detail": detail})
}

// parsePage reads skip/limit query parameters, clamping negatives and
// falling back to the collection's default page size.
func parsePage(ctx *fasthttp.RequestCtx, defaultLimit int) (skip, limit int) {
	limit = defaultLimit
	if v := string(ctx.QueryArgs().Peek("skip")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			skip = n
		}
	}
	if v := string(ctx.QueryArgs().Peek("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	return skip, limit
}

// recordID pulls the {id} path parameter.
func recordID(ctx *fasthttp.RequestCtx) string {
	if v, ok := ctx.UserValue("id").(string); ok {
		return v
	}
	return ""
}
