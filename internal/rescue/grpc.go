package rescue

import (
	"context"
	"strings"
	"unicode"

	gqlerrors "github.com/hanpama/gqlcore/internal/gqlerrors"
	schema "github.com/hanpama/gqlcore/internal/schema"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RescueGRPC converts errors carrying a gRPC status into field errors with
// the status message and an extensions.code such as NOT_FOUND. Internal and
// Unknown statuses are left to other handlers.
func RescueGRPC(m *Middleware) *Middleware {
	return m.On(isClientStatus, func(_ context.Context, _ *schema.FieldInvocation, err error) *gqlerrors.ExecutionError {
		st, _ := status.FromError(err)
		return gqlerrors.New("%s", st.Message()).WithExtensions(map[string]any{
			"code": CodeName(st.Code()),
		})
	})
}

func isClientStatus(err error) bool {
	st, ok := status.FromError(err)
	if !ok {
		return false
	}
	switch st.Code() {
	case codes.OK, codes.Unknown, codes.Internal:
		return false
	}
	return true
}

// CodeName renders a gRPC code in upper snake case: NotFound -> NOT_FOUND.
func CodeName(c codes.Code) string {
	var b strings.Builder
	for i, r := range c.String() {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte('_')
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}
