package queue

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dunamismax/avatarforge/internal/domain"
	"github.com/hibiken/asynq"
)

const TypeProcessLogo = "logo:process"

type ProcessLogoPayload struct {
	RunID      string `json:"run_id"`
	Name       string `json:"name"`
	SourceType string `json:"source_type"`
	ObjectKey  string `json:"object_key"`
	OutputName string `json:"output_name"`
	Format     string `json:"format"`
	Quality    int    `json:"quality,omitempty"`
	Size       int    `json:"size,omitempty"`
	// WhiteThreshold of zero leaves the choice to the worker's configuration.
	WhiteThreshold int       `json:"white_threshold,omitempty"`
	RequestedAt    time.Time `json:"requested_at"`
}

// Render is the output settings shared by every task of a run.
type Render struct {
	Format         string
	Quality        int
	Size           int
	WhiteThreshold int
}

// PayloadFor builds the payload for one enumerated task.
func PayloadFor(runID string, task domain.Task, render Render, now time.Time) ProcessLogoPayload {
	return ProcessLogoPayload{
		RunID:          runID,
		Name:           task.Name,
		SourceType:     task.SourceType,
		ObjectKey:      task.SourceKey,
		OutputName:     task.OutputName,
		Format:         render.Format,
		Quality:        render.Quality,
		Size:           render.Size,
		WhiteThreshold: render.WhiteThreshold,
		RequestedAt:    now.UTC(),
	}
}

func (p ProcessLogoPayload) Task() domain.Task {
	return domain.Task{
		Name:       p.Name,
		OutputName: p.OutputName,
		SourceType: p.SourceType,
		SourceKey:  p.ObjectKey,
	}
}

func NewProcessLogoTask(payload ProcessLogoPayload) (*asynq.Task, error) {
	if strings.TrimSpace(payload.RunID) == "" {
		return nil, fmt.Errorf("run_id is required")
	}
	if err := payload.Task().Validate(); err != nil {
		return nil, fmt.Errorf("invalid process payload: %w", err)
	}
	if payload.WhiteThreshold < 0 || payload.WhiteThreshold > 255 {
		return nil, fmt.Errorf("white_threshold %d out of range 0-255", payload.WhiteThreshold)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal process payload: %w", err)
	}
	return asynq.NewTask(TypeProcessLogo, body), nil
}

func ParseProcessLogoPayload(task *asynq.Task) (ProcessLogoPayload, error) {
	var payload ProcessLogoPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ProcessLogoPayload{}, fmt.Errorf("unmarshal process payload: %w", err)
	}
	return payload, nil
}
