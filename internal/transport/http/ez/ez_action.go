package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-user-api/internal/domain"
	resp "go-user-api/internal/transport/http/response"
)

type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

// Binder selects how the input struct is populated.
type Binder string

const (
	BindJSON  Binder = "json"  // request body
	BindQuery Binder = "query" // URL ?a=b
	BindNone  Binder = "none"  // handler reads c.Param itself
)

// AErr is the unified action error carrying a response code.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Conflict(msg string) error   { return &AErr{Code: resp.CodeConflict, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromDomain translates the service error taxonomy into response codes.
// Store failures pass through as 500 with no retry and no rewording.
func FromDomain(err error) error {
	var ae *AErr
	if errors.As(err, &ae) {
		return err
	}
	switch domain.KindOf(err) {
	case domain.KindConflict:
		return &AErr{Code: resp.CodeConflict, Msg: err.Error(), Err: err}
	case domain.KindNotFound:
		return &AErr{Code: resp.CodeNotFound, Msg: err.Error(), Err: err}
	case domain.KindBadRequest:
		return &AErr{Code: resp.CodeBadRequest, Msg: err.Error(), Err: err}
	default:
		return &AErr{Code: resp.CodeServerError, Msg: err.Error(), Err: err}
	}
}

// Action registers one endpoint: bind input, run the handler, wrap the
// result in the response envelope. I is the input struct, O the output.
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PATCH" | "PUT" | "DELETE"
	Path    string
	Binder  Binder
	Handler func(c *gin.Context, in *I) (O, error)
}

func Register[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone
		}
		if bindErr != nil {
			c.JSON(http.StatusOK, resp.Error(resp.CodeBadRequest, bindErr.Error()))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			var ae *AErr
			if errors.As(err, &ae) {
				c.JSON(http.StatusOK, resp.Error(ae.Code, ae.Error()))
				return
			}
			c.JSON(http.StatusOK, resp.Error(resp.CodeServerError, err.Error()))
			return
		}
		c.JSON(http.StatusOK, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodPatch:
		e.g.PATCH(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}
