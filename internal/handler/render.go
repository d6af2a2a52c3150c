package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/edlbridge/api/internal/bridge"
	"github.com/edlbridge/api/pkg/response"
)

// RenderHandler exposes the render trigger and job status endpoints.
type RenderHandler struct {
	bridge          *bridge.Bridge
	validator       *validator.Validate
	outputDir       string
	defaultBitDepth int
}

func NewRenderHandler(b *bridge.Bridge, v *validator.Validate, outputDir string, defaultBitDepth int) *RenderHandler {
	return &RenderHandler{
		bridge:          b,
		validator:       v,
		outputDir:       outputDir,
		defaultBitDepth: defaultBitDepth,
	}
}

type renderTriggerParams struct {
	EdlID string  `validate:"required"`
	Start float64 `validate:"gte=0"`
	Dur   float64 `validate:"gt=0"`
	Bit   int     `validate:"oneof=16 24 32"`
	Out   string
}

type renderTriggerResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// Trigger handles GET /render.
//
// Query parameters: edl_id, start (seconds), dur (seconds) required;
// bit (16|24|32, default 16) and out (output path) optional. Malformed
// requests are rejected before any job is created.
func (h *RenderHandler) Trigger(c *fiber.Ctx) error {
	edlID := c.Query("edl_id")
	startStr := c.Query("start")
	durStr := c.Query("dur")
	if edlID == "" || startStr == "" || durStr == "" {
		return response.ValidationError(c, "Missing required parameters: edl_id, start, dur")
	}

	params := renderTriggerParams{
		EdlID: edlID,
		Bit:   h.defaultBitDepth,
		Out:   c.Query("out"),
	}

	var err error
	if params.Start, err = strconv.ParseFloat(startStr, 64); err != nil {
		return response.ValidationError(c, "Invalid numeric parameter")
	}
	if params.Dur, err = strconv.ParseFloat(durStr, 64); err != nil {
		return response.ValidationError(c, "Invalid numeric parameter")
	}
	if bitStr := c.Query("bit"); bitStr != "" {
		if params.Bit, err = strconv.Atoi(bitStr); err != nil {
			return response.ValidationError(c, "Invalid numeric parameter")
		}
	}

	if err := h.validator.Struct(&params); err != nil {
		return response.ValidationError(c, validationMessage(err))
	}

	if params.Out == "" {
		params.Out = fmt.Sprintf("%s/render_%s_%d.wav", h.outputDir, params.EdlID, time.Now().Unix())
	}

	jobID, err := h.bridge.EnqueueRender(params.EdlID, params.Start, params.Dur, params.Out, params.Bit)
	if err != nil {
		return response.ValidationError(c, err.Error())
	}

	return response.Accepted(c, renderTriggerResponse{
		JobID:  jobID,
		Status: "accepted",
	})
}

// Status handles GET /job/:job_id.
func (h *RenderHandler) Status(c *fiber.Ctx) error {
	jobID := c.Params("job_id")
	if jobID == "" {
		return response.ValidationError(c, "Job ID is required")
	}

	snapshot, ok := h.bridge.JobStatus(jobID)
	if !ok {
		return response.NotFound(c, "Job not found")
	}
	return response.OK(c, snapshot)
}

func validationMessage(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return "Invalid request parameters"
	}
	switch verrs[0].StructField() {
	case "Bit":
		return "bit_depth must be 16, 24, or 32"
	case "Start":
		return "start must be non-negative"
	case "Dur":
		return "dur must be positive"
	default:
		return "Invalid request parameters"
	}
}
