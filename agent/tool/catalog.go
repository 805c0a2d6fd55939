package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/tanpawarit/trip-dining/agent/agents/selector"
	contractx "github.com/tanpawarit/trip-dining/agent/contract"
)

const (
	ToolTopRestaurant = "top_restaurant"
	ToolDistance      = "distance"
	ToolMathEvaluate  = "math.evaluate"
)

type Executor func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error)

// Selector is the part of the selector service the tools call.
type Selector interface {
	Select(ctx context.Context, req contractx.SelectRequest) (selector.Result, error)
}

// Build returns the tool descriptions together with an executor bound to
// sel and geocoder. A nil geocoder limits distance to coordinate input.
func Build(sel Selector, geocoder contractx.Geocoder) ([]*schema.ToolInfo, Executor) {
	return Infos(), NewExecutor(sel, geocoder)
}

func NewExecutor(sel Selector, geocoder contractx.Geocoder) Executor {
	fallback := DefaultExecutor()
	return func(ctx context.Context, tool string, args map[string]any) (contractx.ToolResult, error) {
		switch tool {
		case ToolTopRestaurant:
			if sel == nil {
				return fallback(ctx, tool, args)
			}
			return executeTopRestaurant(ctx, sel, tool, args)
		case ToolDistance:
			return executeDistance(ctx, geocoder, tool, args)
		case ToolMathEvaluate:
			return executeMathTool(tool, args)
		default:
			return fallback(ctx, tool, args)
		}
	}
}

func DefaultExecutor() Executor {
	return func(ctx context.Context, tool string, _ map[string]any) (contractx.ToolResult, error) {
		return contractx.ToolResult{
			Tool:  tool,
			Error: fmt.Sprintf("tool=%s is unavailable", tool),
		}, nil
	}
}

// Param describes one tool argument. Arguments are strings unless Number
// is set.
type Param struct {
	Name     string
	Desc     string
	Number   bool
	Required bool
}

// Spec is a transport-neutral tool description.
type Spec struct {
	Name   string
	Desc   string
	Params []Param
}

func Specs() []Spec {
	return []Spec{
		{
			Name: ToolTopRestaurant,
			Desc: "Find the top-rated restaurant near a location that has not been recommended earlier in the trip. " +
				"Give a location name or latitude and longitude.",
			Params: []Param{
				{Name: "location", Desc: "Place name or address to search around"},
				{Name: "latitude", Desc: "Latitude in degrees, used with longitude instead of location", Number: true},
				{Name: "longitude", Desc: "Longitude in degrees", Number: true},
				{Name: "date", Desc: "Visit date as YYYY-MM-DD, selects that day's opening hours"},
				{Name: "run_id", Desc: "Trip identifier that scopes duplicate suppression"},
			},
		},
		{
			Name: ToolDistance,
			Desc: "Straight-line distance between two places.",
			Params: []Param{
				{Name: "origin", Desc: "Origin place name or address"},
				{Name: "destination", Desc: "Destination place name or address"},
				{Name: "origin_lat", Desc: "Origin latitude", Number: true},
				{Name: "origin_lng", Desc: "Origin longitude", Number: true},
				{Name: "destination_lat", Desc: "Destination latitude", Number: true},
				{Name: "destination_lng", Desc: "Destination longitude", Number: true},
			},
		},
		{
			Name: ToolMathEvaluate,
			Desc: "Evaluate an arithmetic expression, for example a meal budget.",
			Params: []Param{
				{Name: "expression", Desc: "Expression to evaluate", Required: true},
			},
		},
	}
}

// Infos renders Specs as eino tool descriptions.
func Infos() []*schema.ToolInfo {
	specs := Specs()
	infos := make([]*schema.ToolInfo, 0, len(specs))
	for _, spec := range specs {
		params := make(map[string]*schema.ParameterInfo, len(spec.Params))
		for _, p := range spec.Params {
			typ := schema.String
			if p.Number {
				typ = schema.Number
			}
			params[p.Name] = &schema.ParameterInfo{Type: typ, Desc: p.Desc, Required: p.Required}
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        spec.Name,
			Desc:        spec.Desc,
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}
