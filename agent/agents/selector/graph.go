package selector

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	nodex "github.com/tanpawarit/trip-dining/agent/nodes"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
)

func (s *Service) compileSelectGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(in, s.now, s.defaultRunID)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("open_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.OpenSession(ctx, in, s.registry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node open_session: %w", err)
	}

	if err := graph.AddLambdaNode("resolve_location",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ResolveLocation(ctx, in, s.places)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node resolve_location: %w", err)
	}

	if err := graph.AddLambdaNode("fetch_candidates",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.FetchCandidates(ctx, in, s.places, s.radiusMeters, s.placeType)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node fetch_candidates: %w", err)
	}

	if err := graph.AddLambdaNode("select_venue",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.SelectVenue(ctx, in, s.places, s.proximityMeters)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node select_venue: %w", err)
	}

	if err := graph.AddLambdaNode("commit_session",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.CommitSession(ctx, in, s.registry)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node commit_session: %w", err)
	}

	if err := graph.AddLambdaNode("normalize_detail",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.NormalizeDetail(in, s.hoursMode, s.placeType, s.format)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node normalize_detail: %w", err)
	}

	if err := graph.AddLambdaNode("finalize",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.Finalize(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize: %w", err)
	}

	afterFetch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if len(in.Candidates) == 0 {
				return "finalize", nil
			}
			return "select_venue", nil
		},
		map[string]bool{
			"select_venue": true,
			"finalize":     true,
		},
	)
	if err := graph.AddBranch("fetch_candidates", afterFetch); err != nil {
		return nil, fmt.Errorf("add branch after fetch_candidates: %w", err)
	}

	afterSelect := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in.Selection.Status == restaurant.StatusSelected {
				return "commit_session", nil
			}
			return "finalize", nil
		},
		map[string]bool{
			"commit_session": true,
			"finalize":       true,
		},
	)
	if err := graph.AddBranch("select_venue", afterSelect); err != nil {
		return nil, fmt.Errorf("add branch after select_venue: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "open_session"},
		{"open_session", "resolve_location"},
		{"resolve_location", "fetch_candidates"},
		{"commit_session", "normalize_detail"},
		{"normalize_detail", "finalize"},
		{"finalize", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("selector.top_restaurant"))
	if err != nil {
		return nil, fmt.Errorf("compile selector graph: %w", err)
	}
	return runner, nil
}
