package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/dgnsrekt/fxboard/internal/charts"
)

func registerChartHandlers(api huma.API, svc Service) {
	type chartsOutput struct {
		Body struct {
			Enabled bool          `json:"enabled"`
			Table   *charts.Table `json:"table,omitempty"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "get-charts", Method: http.MethodGet, Path: "/api/v1/charts", Summary: "Verification chart grid", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct{}) (*chartsOutput, error) {
			table, err := svc.Charts(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &chartsOutput{}
			out.Body.Enabled = table != nil
			out.Body.Table = table
			return out, nil
		})

	type imagesOutput struct {
		Body struct {
			Images []charts.Image `json:"images"`
		}
	}
	huma.Register(api, huma.Operation{OperationID: "list-chart-images", Method: http.MethodGet, Path: "/api/v1/charts/images", Summary: "List stored chart images", Tags: []string{"Charts"}},
		func(ctx context.Context, input *struct{}) (*imagesOutput, error) {
			images, err := svc.Images(ctx)
			if err != nil {
				return nil, mapErr(err)
			}
			out := &imagesOutput{}
			out.Body.Images = images
			return out, nil
		})

	type slotInput struct {
		Date string `path:"date" doc:"Entry date, YYYY_MM_DD"`
		Slot string `path:"slot" doc:"Entry hour, HHMM"`
	}
	type metaOutput struct {
		Body charts.Meta
	}
	huma.Register(api, huma.Operation{OperationID: "get-chart-meta", Method: http.MethodGet, Path: "/api/v1/charts/{date}/{slot}", Summary: "Capture metadata of one chart image", Tags: []string{"Charts"}},
		func(ctx context.Context, input *slotInput) (*metaOutput, error) {
			meta, err := svc.ChartMeta(ctx, input.Date, input.Slot)
			if err != nil {
				return nil, mapErr(err)
			}
			return &metaOutput{Body: meta}, nil
		})

	type outcomeInput struct {
		Date string `path:"date" doc:"Entry date, YYYY_MM_DD"`
		Slot string `path:"slot" doc:"Entry hour, HHMM"`
		Body struct {
			Outcome string `json:"outcome" doc:"Win, Lose, or empty to clear"`
		}
	}
	type imageOutput struct {
		Body charts.Image
	}
	huma.Register(api, huma.Operation{OperationID: "mark-chart-outcome", Method: http.MethodPut, Path: "/api/v1/charts/{date}/{slot}/outcome", Summary: "Tag a chart image as Win or Lose", Tags: []string{"Charts"}},
		func(ctx context.Context, input *outcomeInput) (*imageOutput, error) {
			img, err := svc.MarkOutcome(ctx, input.Date, input.Slot, input.Body.Outcome)
			if err != nil {
				return nil, mapErr(err)
			}
			return &imageOutput{Body: img}, nil
		})
}
