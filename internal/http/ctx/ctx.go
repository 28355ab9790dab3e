package ctx

import (
	"github.com/valyala/fasthttp"

	dbpkg "github.com/FabCode67/neoparental/internal/db"
)

const userKey = "user"

// SetUser stores the authenticated user on the request context.
func SetUser(ctx *fasthttp.RequestCtx, user *dbpkg.User) {
	ctx.SetUserValue(userKey, user)
}

// UserFromCtx returns the authenticated user, if any.
func UserFromCtx(ctx *fasthttp.RequestCtx) (*dbpkg.User, bool) {
	v := ctx.UserValue(userKey)
	if v == nil {
		return nil, false
	}
	u, ok := v.(*dbpkg.User)
	return u, ok && u != nil
}
