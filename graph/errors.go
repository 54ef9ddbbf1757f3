package graph

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/syssam/chinook"
)

// Codes for failures that do not come from the chinook error taxonomy.
const (
	CodeCancelled        = "CANCELLED"
	CodeInternal         = "INTERNAL_SERVER_ERROR"
	CodeValidation       = "GRAPHQL_VALIDATION_FAILED"
	CodeBadVariables     = "BAD_USER_INPUT"
	CodeUnknownOperation = "OPERATION_RESOLUTION_FAILURE"
)

// Messages reported instead of the underlying error.
const (
	msgStorage   = "internal storage error"
	msgInternal  = "internal server error"
	msgCancelled = "request cancelled"
)

// fieldError converts an error returned while resolving field at path into
// the error reported to the caller.
func fieldError(err error, field *ast.Field, path ast.Path) *gqlerror.Error {
	gerr := &gqlerror.Error{
		Err:        err,
		Message:    err.Error(),
		Path:       path,
		Extensions: map[string]any{},
	}
	if field != nil && field.Position != nil {
		gerr.Locations = []gqlerror.Location{{Line: field.Position.Line, Column: field.Position.Column}}
	}
	var nf *chinook.NotFoundError
	switch {
	case errors.As(err, &nf):
		gerr.Extensions["code"] = nf.Code()
		if id := nf.ID(); id != nil {
			gerr.Extensions["id"] = idString(id)
		}
	case chinook.IsStorageFailure(err):
		gerr.Message = msgStorage
		gerr.Extensions["code"] = chinook.CodeStorageFailure
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		gerr.Message = msgCancelled
		gerr.Extensions["code"] = CodeCancelled
	default:
		if code := chinook.CodeOf(err); code != "" {
			gerr.Extensions["code"] = code
		} else {
			gerr.Message = msgInternal
			gerr.Extensions["code"] = CodeInternal
		}
	}
	return gerr
}

// requestErrors tags errors raised before execution with code.
func requestErrors(code string, errs ...*gqlerror.Error) gqlerror.List {
	for _, e := range errs {
		if e.Extensions == nil {
			e.Extensions = map[string]any{}
		}
		if _, ok := e.Extensions["code"]; !ok {
			e.Extensions["code"] = code
		}
	}
	return errs
}

func idString(id any) string {
	switch id := id.(type) {
	case int:
		return strconv.Itoa(id)
	default:
		return fmt.Sprint(id)
	}
}
