// Package tool declares the slot-store tools each task handler may plan,
// and executes planned requests against the store. Argument validation
// failures come back as ToolResult errors (clarification material for the
// model), never as Go errors: a bad argument must not abort the turn.
package tool

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	schedulex "github.com/medflow-ai/appointment-agent/agent/schedule"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

const (
	ToolCheckByDoctor         = "availability.check_by_doctor"
	ToolCheckBySpecialization = "availability.check_by_specialization"
	ToolBookAppointment       = "appointment.book"
	ToolCancelAppointment     = "appointment.cancel"
	ToolRescheduleAppointment = "appointment.reschedule"
)

// Executor runs one planned tool request for one patient.
type Executor func(ctx context.Context, patientID int64, req contractx.ToolRequest) (contractx.ToolResult, error)

// BuildForAgent returns the tool schemas for an agent plus an executor
// bound to the slot store.
func BuildForAgent(agent statex.AgentName, store schedulex.Store) ([]*schema.ToolInfo, Executor) {
	return infosForAgent(agent), NewExecutor(store)
}

// NewExecutor dispatches tool requests to the slot store.
func NewExecutor(store schedulex.Store) Executor {
	return func(ctx context.Context, patientID int64, req contractx.ToolRequest) (contractx.ToolResult, error) {
		switch req.Tool {
		case ToolCheckByDoctor:
			return executeCheckByDoctor(ctx, store, req.Args)
		case ToolCheckBySpecialization:
			return executeCheckBySpecialization(ctx, store, req.Args)
		case ToolBookAppointment:
			return executeBook(ctx, store, patientID, req.Args)
		case ToolCancelAppointment:
			return executeCancel(ctx, store, patientID, req.Args)
		case ToolRescheduleAppointment:
			return executeReschedule(ctx, store, patientID, req.Args)
		default:
			return contractx.ToolResult{
				Tool:  req.Tool,
				Error: fmt.Sprintf("tool=%s is not available", req.Tool),
			}, nil
		}
	}
}

func infosForAgent(agent statex.AgentName) []*schema.ToolInfo {
	doctorParam := &schema.ParameterInfo{
		Type:     schema.String,
		Desc:     "Exact doctor name from the clinic roster, lowercase",
		Required: true,
	}
	dateParam := &schema.ParameterInfo{
		Type:     schema.String,
		Desc:     "Calendar date in DD-MM-YYYY format",
		Required: true,
	}
	timeParam := &schema.ParameterInfo{
		Type:     schema.String,
		Desc:     "Slot time in 24-hour HH:MM format",
		Required: true,
	}

	switch agent {
	case statex.AgentAvailability:
		return []*schema.ToolInfo{
			{
				Name: ToolCheckByDoctor,
				Desc: "Check free appointment slots for a specific doctor on a given day.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"date":        dateParam,
					"doctor_name": doctorParam,
				}),
			},
			{
				Name: ToolCheckBySpecialization,
				Desc: "Check free appointment slots for a medical specialization on a given day, grouped by doctor.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"date": dateParam,
					"specialization": {
						Type:     schema.String,
						Desc:     "One of the clinic specializations, e.g. general_dentist",
						Required: true,
					},
				}),
			},
		}
	case statex.AgentBooking:
		return []*schema.ToolInfo{
			{
				Name: ToolBookAppointment,
				Desc: "Reserve a free slot for the patient.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"date":        dateParam,
					"time":        timeParam,
					"doctor_name": doctorParam,
				}),
			},
			{
				Name: ToolCancelAppointment,
				Desc: "Cancel an appointment the patient holds.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"date":        dateParam,
					"time":        timeParam,
					"doctor_name": doctorParam,
				}),
			},
			{
				Name: ToolRescheduleAppointment,
				Desc: "Move an existing appointment to a new slot with the same doctor. Fails without touching the old booking when the new slot is taken.",
				ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
					"old_date":    dateParam,
					"old_time":    timeParam,
					"new_date":    dateParam,
					"new_time":    timeParam,
					"doctor_name": doctorParam,
				}),
			},
		}
	default:
		return nil
	}
}
