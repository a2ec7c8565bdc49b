package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"tabswitch/internal/infrastructure/errors"
	"tabswitch/internal/infrastructure/logging"
	"tabswitch/internal/types"
)

// Service is the surface the HTTP API exposes. Implemented by the app
// controller, which resolves tab ids against its most recent discovery
// snapshot; ids are only stable within one pass.
type Service interface {
	DiscoverTabs(ctx context.Context) ([]types.Tab, error)
	ActivateTab(id string) (bool, error)
	CloseTab(id string) (bool, error)
	PreviewTab(id string) (*types.TabPreview, error)
}

type tabIDInput struct {
	ID string `path:"id" doc:"Tab id from the most recent discovery pass"`
}

// NewHandler builds the localhost control API router.
func NewHandler(svc Service, logger logging.Logger) http.Handler {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	cfg := huma.DefaultConfig("TabSwitch Control API", "1.0.0")
	api := humachi.New(router, cfg)

	type healthOutput struct {
		Body struct {
			Status string `json:"status"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "health", Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*healthOutput, error) {
			out := &healthOutput{}
			out.Body.Status = "ok"
			return out, nil
		})

	type tabsOutput struct {
		Body struct {
			Tabs []types.Tab `json:"tabs"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-tabs", Method: http.MethodGet, Path: "/api/v1/tabs", Summary: "Discover all open browser tabs", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *struct{}) (*tabsOutput, error) {
			tabs, err := svc.DiscoverTabs(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &tabsOutput{}
			out.Body.Tabs = tabs
			return out, nil
		})

	type actionOutput struct {
		Body struct {
			Success bool `json:"success"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "activate-tab", Method: http.MethodPost, Path: "/api/v1/tabs/{id}/activate", Summary: "Activate a discovered tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabIDInput) (*actionOutput, error) {
			ok, err := svc.ActivateTab(input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &actionOutput{}
			out.Body.Success = ok
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "close-tab", Method: http.MethodPost, Path: "/api/v1/tabs/{id}/close", Summary: "Close a discovered tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabIDInput) (*actionOutput, error) {
			ok, err := svc.CloseTab(input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &actionOutput{}
			out.Body.Success = ok
			return out, nil
		})

	type previewOutput struct {
		Body types.TabPreview
	}
	huma.Register(api, huma.Operation{OperationID: "preview-tab", Method: http.MethodGet, Path: "/api/v1/tabs/{id}/preview", Summary: "Fetch page metadata for a tab", Tags: []string{"Tabs"}},
		func(ctx context.Context, input *tabIDInput) (*previewOutput, error) {
			preview, err := svc.PreviewTab(input.ID)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &previewOutput{}
			out.Body = *preview
			return out, nil
		})

	return router
}

// mapErr translates classified automation errors into HTTP statuses.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var autoErr *errors.AutomationError
	if goerrors.As(err, &autoErr) {
		switch autoErr.Code {
		case errors.ErrCodeValidation:
			return huma.Error400BadRequest(autoErr.Error())
		case errors.ErrCodeStaleElement, errors.ErrCodeProcessGone:
			return huma.Error404NotFound(autoErr.Error())
		case errors.ErrCodeCancelled, errors.ErrCodeTimeout:
			return huma.Error504GatewayTimeout(autoErr.Error())
		default:
			return huma.Error500InternalServerError(autoErr.Error())
		}
	}
	return huma.Error500InternalServerError(err.Error())
}

func requestLogger(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
