package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/fxboard/internal/dashboard"
	"github.com/dgnsrekt/fxboard/internal/view"
)

type sourceInput struct {
	Source string `query:"source" doc:"Feed source: 10pair or 28pair. Defaults to 28pair."`
}

type viewOutput struct {
	Body view.View
}

func registerSignalHandlers(api huma.API, svc Service) {
	huma.Register(api, huma.Operation{OperationID: "get-signals", Method: http.MethodGet, Path: "/api/v1/signals", Summary: "Current ranked signal table", Tags: []string{"Signals"}},
		func(ctx context.Context, input *sourceInput) (*viewOutput, error) {
			v, err := svc.Signals(ctx, input.Source)
			if err != nil {
				return nil, mapErr(err)
			}
			return &viewOutput{Body: v}, nil
		})

	type rawOutput struct {
		Body struct {
			Source    string          `json:"source"`
			ForexData json.RawMessage `json:"forexData"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-signals-raw", Method: http.MethodGet, Path: "/api/v1/signals/raw", Summary: "forexData exactly as last loaded", Tags: []string{"Signals"}},
		func(ctx context.Context, input *sourceInput) (*rawOutput, error) {
			raw, err := svc.Raw(ctx, input.Source)
			if err != nil {
				return nil, mapErr(err)
			}
			v, err := svc.Signals(ctx, input.Source)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &rawOutput{}
			out.Body.Source = v.Source
			out.Body.ForexData = raw
			return out, nil
		})

	huma.Register(api, huma.Operation{OperationID: "refresh-signals", Method: http.MethodPost, Path: "/api/v1/refresh", Summary: "Fetch the feed now", Tags: []string{"Signals"}},
		func(ctx context.Context, input *sourceInput) (*viewOutput, error) {
			v, err := svc.Refresh(ctx, input.Source)
			if err != nil {
				return nil, mapErr(err)
			}
			return &viewOutput{Body: v}, nil
		})
}

func registerStatusHandlers(api huma.API, svc Service) {
	type statusOutput struct {
		Body dashboard.Status
	}
	huma.Register(api, huma.Operation{OperationID: "get-status", Method: http.MethodGet, Path: "/api/v1/status", Summary: "Load state, scheduled tasks and push subscribers", Tags: []string{"Health"}},
		func(ctx context.Context, input *struct{}) (*statusOutput, error) {
			return &statusOutput{Body: svc.Status(ctx)}, nil
		})
}

func registerHealthHandlers(api huma.API) {
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
}
