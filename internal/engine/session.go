package engine

import (
	"context"

	"github.com/dolthub/go-mysql-server/sql"
)

// Session is a minimal wrapper around go-mysql-server's base session that
// remembers the originating request context, so query code can recover
// deadlines/cancellation without threading a second context parameter
// through the planner.
type Session struct {
	sql.Session
	base context.Context
}

func (s *Session) Context() context.Context { return s.base }

// NewSessionContext builds a *sql.Context bound to database db and carrying
// a Session wrapping ctx, for use with Engine.Query.
func NewSessionContext(ctx context.Context, database string) *sql.Context {
	sess := &Session{Session: sql.NewBaseSession(), base: ctx}
	sqlCtx := sql.NewContext(ctx, sql.WithSession(sess))
	sqlCtx.SetCurrentDatabase(database)
	return sqlCtx
}

// GetSession recovers the Session installed by NewSessionContext.
func GetSession(ctx *sql.Context) *Session {
	s, _ := ctx.Session.(*Session)
	return s
}
