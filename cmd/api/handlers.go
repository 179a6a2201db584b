package main

import (
	"context"

	"current-weather/internal/pipeline"
)

// PingOutput represents the response for the ping endpoint
type PingOutput struct {
	Body struct {
		Message string `json:"message" example:"pong" doc:"Response message"`
	}
}

func (app *App) handlePing(ctx context.Context, input *struct{}) (*PingOutput, error) {
	resp := &PingOutput{}
	resp.Body.Message = "pong"
	return resp, nil
}

// ConditionsBody is the resolution state plus the image for its time of day
type ConditionsBody struct {
	pipeline.ResolutionState
	Backdrop string `json:"backdrop" doc:"Background image for the time of day, empty until known"`
}

// ConditionsOutput wraps ConditionsBody for huma
type ConditionsOutput struct {
	Body ConditionsBody
}

func (app *App) conditions() *ConditionsOutput {
	state := app.store.Snapshot()
	return &ConditionsOutput{Body: ConditionsBody{
		ResolutionState: state,
		Backdrop:        app.backdrops.For(state.TimeOfDay),
	}}
}

func (app *App) handleGetConditions(ctx context.Context, input *struct{}) (*ConditionsOutput, error) {
	return app.conditions(), nil
}

// handleRefresh starts a run and answers with the state right after the trigger
func (app *App) handleRefresh(ctx context.Context, input *struct{}) (*ConditionsOutput, error) {
	app.refresher.TriggerRefresh()
	app.logger.Info("refresh requested")
	return app.conditions(), nil
}
