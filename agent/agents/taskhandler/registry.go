package taskhandler

import (
	"context"
	"fmt"

	contractx "github.com/medflow-ai/appointment-agent/agent/contract"
	llmx "github.com/medflow-ai/appointment-agent/agent/llm"
	promptx "github.com/medflow-ai/appointment-agent/agent/prompt"
	schedulex "github.com/medflow-ai/appointment-agent/agent/schedule"
	statex "github.com/medflow-ai/appointment-agent/agent/state"
)

type registryImpl struct {
	classifier   contractx.Classifier
	availability contractx.Handler
	booking      contractx.Handler
	general      contractx.Handler
}

func (r *registryImpl) Classifier() contractx.Classifier {
	return r.classifier
}

func (r *registryImpl) Availability() contractx.Handler {
	return r.availability
}

func (r *registryImpl) Booking() contractx.Handler {
	return r.booking
}

func (r *registryImpl) General() contractx.Handler {
	return r.general
}

// NewRegistry builds the classifier and the three task handlers, each on
// its own configured model, with the booking and availability handlers
// bound to the slot store.
func NewRegistry(ctx context.Context, cfg llmx.Config, store schedulex.Store) (contractx.Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("%w: slot store is required", contractx.ErrValidation)
	}

	prompts := promptx.LoadPromptSet()

	classifierCfg := cfg.ClassifierConfig()
	classifierModel, err := classifierCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}
	availabilityCfg := cfg.HandlerConfig(statex.AgentAvailability)
	availabilityModel, err := availabilityCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create availability model: %v", contractx.ErrModelInvoke, err)
	}
	bookingCfg := cfg.HandlerConfig(statex.AgentBooking)
	bookingModel, err := bookingCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create booking model: %v", contractx.ErrModelInvoke, err)
	}
	generalCfg := cfg.HandlerConfig(statex.AgentGeneral)
	generalModel, err := generalCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create general model: %v", contractx.ErrModelInvoke, err)
	}

	classifier, err := newClassifier(ctx, classifierModel, prompts.Classifier)
	if err != nil {
		return nil, err
	}
	availability, err := newAvailabilityHandler(ctx, availabilityModel, prompts.Availability, store)
	if err != nil {
		return nil, err
	}
	booking, err := newBookingHandler(ctx, bookingModel, prompts, store)
	if err != nil {
		return nil, err
	}
	general, err := newGeneralHandler(ctx, generalModel, prompts.General)
	if err != nil {
		return nil, err
	}

	return &registryImpl{
		classifier:   classifier,
		availability: availability,
		booking:      booking,
		general:      general,
	}, nil
}
