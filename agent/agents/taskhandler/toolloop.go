package taskhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
	toolx "github.com/medflow-ai/appointment-agent/agent/tool"
)

// maxToolRounds bounds the plan-execute loop. A model that keeps planning
// past this many rounds is not converging; the handler degrades instead
// of spinning.
const maxToolRounds = 3

const clinicDateFormat = "02-01-2006"

// runToolLoop drives one plan-execute conversation: invoke the tool-bound
// model, execute whatever it planned, feed the results back, repeat until
// the model answers in plain text. Tools outside allowed are refused with
// an error result rather than executed.
func runToolLoop(
	ctx context.Context,
	runner compose.Runnable[map[string]any, *schema.Message],
	exec toolx.Executor,
	allowed map[string]struct{},
	patientID int64,
	history []*schema.Message,
) (string, error) {
	vars := map[string]any{
		"current_date": time.Now().Format(clinicDateFormat),
		"patient_id":   patientID,
		"history":      history,
	}

	for round := 0; round < maxToolRounds; round++ {
		msg, err := runner.Invoke(ctx, vars)
		if err != nil {
			return "", fmt.Errorf("%w: %v", contractx.ErrModelInvoke, err)
		}
		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		history = append(history, msg)
		for _, call := range msg.ToolCalls {
			content := executeCall(ctx, exec, allowed, patientID, call)
			history = append(history, schema.ToolMessage(content, call.ID))
		}
		vars["history"] = history
	}

	return "", fmt.Errorf("%w: tool planning did not converge after %d rounds", contractx.ErrModelInvoke, maxToolRounds)
}

func executeCall(ctx context.Context, exec toolx.Executor, allowed map[string]struct{}, patientID int64, call schema.ToolCall) string {
	name := call.Function.Name
	if _, ok := allowed[name]; !ok {
		log.Warn().Str("tool", name).Msg("model planned a tool outside its allowed set")
		return fmt.Sprintf("error: tool %s is not available to this agent", name)
	}

	req := contractx.ToolRequest{Tool: name, Args: map[string]any{}}
	if call.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Function.Arguments), &req.Args); err != nil {
			return fmt.Sprintf("error: tool arguments are not valid JSON: %v", err)
		}
	}

	res, err := exec(ctx, patientID, req)
	if err != nil {
		log.Error().Err(err).Str("tool", name).Msg("tool execution failed")
		return fmt.Sprintf("error: %v", err)
	}
	return resultContent(res)
}

func resultContent(res contractx.ToolResult) string {
	if res.Error != "" {
		return "error: " + res.Error
	}
	switch v := res.Result.(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(raw)
	}
}

func allowedSet(infos []string) map[string]struct{} {
	out := make(map[string]struct{}, len(infos))
	for _, name := range infos {
		out[name] = struct{}{}
	}
	return out
}

// historyToSchema converts state messages into eino chat messages.
func historyToSchema(msgs []statex.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case statex.RoleUser:
			out = append(out, schema.UserMessage(m.Content))
		case statex.RoleAssistant:
			out = append(out, schema.AssistantMessage(m.Content, nil))
		case statex.RoleSystem:
			out = append(out, schema.SystemMessage(m.Content))
		}
	}
	return out
}
