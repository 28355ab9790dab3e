package handlers

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	dbpkg "github.com/FabCode67/neoparental/internal/db"
	httpctx "github.com/FabCode67/neoparental/internal/http/ctx"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, dbpkg.Migrate(gdb))
	return gdb
}

// newCtx builds a request context the way the router would hand it to
// a handler.
func newCtx(method, uri string, body []byte) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&fasthttp.Request{}, nil, nil)
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != nil {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBody(body)
	}
	return ctx
}

// asUser plants an authenticated user on the context, standing in for
// the bearer middleware.
func asUser(ctx *fasthttp.RequestCtx, user *dbpkg.User) *fasthttp.RequestCtx {
	httpctx.SetUser(ctx, user)
	return ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), out))
}

func registerTestUser(t *testing.T, gdb *gorm.DB, email string) *dbpkg.User {
	t.Helper()
	user, err := dbpkg.RegisterUser(gdb, email, "pw1", "Test User")
	require.NoError(t, err)
	return user
}
