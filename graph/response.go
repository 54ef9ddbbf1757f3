package graph

import (
	"encoding/json"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"github.com/vmihailenco/msgpack/v5"
)

// Request is a GraphQL request as sent over the wire.
type Request struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Response is the result of executing a Request.
//
// A response without Executed set failed before execution started and
// carries no data key at all. An executed response always carries one,
// possibly null when a failure bubbled up to the root.
type Response struct {
	Errors   gqlerror.List
	Data     *Object
	Executed bool
}

// HasErrors reports whether the response carries any error.
func (r *Response) HasErrors() bool {
	return len(r.Errors) > 0
}

// Codes returns the extensions.code of every error, in order.
func (r *Response) Codes() []string {
	codes := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if c, ok := e.Extensions["code"].(string); ok {
			codes = append(codes, c)
		}
	}
	return codes
}

// object renders the response as it goes over the wire.
func (r *Response) object() *Object {
	o := NewObject(2)
	if len(r.Errors) > 0 {
		errs := make([]any, len(r.Errors))
		for i, e := range r.Errors {
			errs[i] = errorObject(e)
		}
		o.Set("errors", errs)
	}
	if r.Executed {
		if r.Data == nil {
			o.Set("data", nil)
		} else {
			o.Set("data", r.Data)
		}
	}
	return o
}

func errorObject(e *gqlerror.Error) *Object {
	o := NewObject(4)
	o.Set("message", e.Message)
	if len(e.Path) > 0 {
		o.Set("path", pathValues(e.Path))
	}
	if len(e.Locations) > 0 {
		locs := make([]any, len(e.Locations))
		for i, l := range e.Locations {
			loc := NewObject(2)
			loc.Set("line", l.Line)
			loc.Set("column", l.Column)
			locs[i] = loc
		}
		o.Set("locations", locs)
	}
	if len(e.Extensions) > 0 {
		o.Set("extensions", e.Extensions)
	}
	return o
}

func pathValues(p ast.Path) []any {
	vs := make([]any, len(p))
	for i, el := range p {
		switch el := el.(type) {
		case ast.PathIndex:
			vs[i] = int(el)
		case ast.PathName:
			vs[i] = string(el)
		}
	}
	return vs
}

// MarshalJSON implements json.Marshaler.
func (r *Response) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.object())
}

var _ msgpack.CustomEncoder = (*Response)(nil)

// EncodeMsgpack implements msgpack.CustomEncoder.
func (r *Response) EncodeMsgpack(enc *msgpack.Encoder) error {
	return r.object().EncodeMsgpack(enc)
}
