package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/chinook/graph"
)

// Content types.
const (
	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
)

// CodeBadRequest is reported for requests that cannot be read.
const CodeBadRequest = "BAD_REQUEST"

// maxBodySize bounds POST /query bodies.
const maxBodySize = 1 << 20

func (s *Server) handleQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := readRequest(c)
		if err != nil {
			s.write(c, http.StatusBadRequest, badRequest(err))
			return
		}
		resp := s.exec.Execute(c.Request.Context(), req)
		status := http.StatusOK
		if !resp.Executed {
			status = http.StatusBadRequest
		}
		s.write(c, status, resp)
	}
}

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), s.healthTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			s.log.WarnContext(ctx, "health check failed", "error", err, "request_id", RequestIDFrom(c))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// readRequest decodes a GraphQL request from the query string (GET) or a
// JSON body (POST). Numbers in variables are kept as json.Number so that
// large ids are not rounded.
func readRequest(c *gin.Context) (*graph.Request, error) {
	req := &graph.Request{}
	if c.Request.Method == http.MethodGet {
		req.Query = c.Query("query")
		req.OperationName = c.Query("operationName")
		if vars := c.Query("variables"); vars != "" {
			if err := decodeJSON(strings.NewReader(vars), &req.Variables); err != nil {
				return nil, errors.New("variables: " + err.Error())
			}
		}
	} else {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodySize+1))
		if err != nil {
			return nil, err
		}
		if len(body) > maxBodySize {
			return nil, errors.New("request body too large")
		}
		if err := decodeJSON(bytes.NewReader(body), req); err != nil {
			return nil, errors.New("body: " + err.Error())
		}
	}
	if strings.TrimSpace(req.Query) == "" {
		return nil, errors.New("query is required")
	}
	return req, nil
}

func decodeJSON(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(v)
}

func badRequest(err error) *graph.Response {
	return &graph.Response{Errors: gqlerror.List{{
		Message:    err.Error(),
		Extensions: map[string]any{"code": CodeBadRequest},
	}}}
}

// write encodes resp in the format the client accepts.
func (s *Server) write(c *gin.Context, status int, resp *graph.Response) {
	if acceptsMsgpack(c.GetHeader("Accept")) {
		b, err := msgpack.Marshal(resp)
		if err != nil {
			s.log.ErrorContext(c.Request.Context(), "encode response", "format", "msgpack", "error", err)
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.Data(status, ContentTypeMsgpack, b)
		return
	}
	b, err := json.Marshal(resp)
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "encode response", "format", "json", "error", err)
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.Data(status, ContentTypeJSON, b)
}

func acceptsMsgpack(accept string) bool {
	for _, part := range strings.Split(accept, ",") {
		mt, _, _ := strings.Cut(strings.TrimSpace(part), ";")
		switch strings.TrimSpace(mt) {
		case ContentTypeMsgpack, "application/x-msgpack":
			return true
		}
	}
	return false
}
