package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	nodex "github.com/medflow-ai/appointment-agent/agent/nodes/orchestrator"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

// compileTurnGraph wires the node functions into the per-turn state
// machine: validate -> classify -> route -> one handler -> finalize.
// Exactly one handler branch runs per invocation.
func (o *Orchestrator) compileTurnGraph(
	ctx context.Context,
) (compose.Runnable[*statex.ConversationState, *statex.ConversationState], error) {
	graph := compose.NewGraph[*statex.ConversationState, *statex.ConversationState]()

	if err := graph.AddLambdaNode("validate_request",
		compose.InvokableLambda(func(ctx context.Context, st *statex.ConversationState) (*nodex.GraphState, error) {
			return nodex.ValidateRequest(st)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_request: %w", err)
	}

	if err := graph.AddLambdaNode("classify_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ClassifyIntent(ctx, in, o.models.Classifier())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node classify_intent: %w", err)
	}

	if err := graph.AddLambdaNode("route_intent",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Route(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node route_intent: %w", err)
	}

	handlerNodes := map[statex.AgentName]string{
		statex.AgentAvailability: "handle_availability",
		statex.AgentBooking:      "handle_booking",
		statex.AgentGeneral:      "handle_general",
	}
	for agent, nodeName := range handlerNodes {
		agent := agent
		if err := graph.AddLambdaNode(nodeName,
			compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
				return nodex.RunHandler(ctx, in, nodex.PickHandler(agent, o.models))
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nodeName, err)
		}
	}

	if err := graph.AddLambdaNode("finalize_response",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*statex.ConversationState, error) {
			return nodex.FinalizeResponse(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finalize_response: %w", err)
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, in *nodex.GraphState) (string, error) {
			if in == nil {
				return "", fmt.Errorf("%w: graph state is nil", contractx.ErrMalformedState)
			}
			node, ok := handlerNodes[in.Route]
			if !ok {
				return "handle_general", nil
			}
			return node, nil
		},
		map[string]bool{
			"handle_availability": true,
			"handle_booking":      true,
			"handle_general":      true,
		},
	)
	if err := graph.AddBranch("route_intent", branch); err != nil {
		return nil, fmt.Errorf("add handler branch: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_request"},
		{"validate_request", "classify_intent"},
		{"classify_intent", "route_intent"},
		{"handle_availability", "finalize_response"},
		{"handle_booking", "finalize_response"},
		{"handle_general", "finalize_response"},
		{"finalize_response", compose.END},
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.turn_graph"))
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}
