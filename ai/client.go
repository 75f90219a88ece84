package ai

import (
	"context"
	"fmt"

	"github.com/studymate/server/metrics"
	"go.uber.org/zap"
)

// Template names, also used as metric labels.
const (
	TemplateStudyPlan = "study_plan"
	TemplateWellness  = "wellness"
)

const studyPlanTemplate = `
You are an AI assistant that creates structured study plans using any of the major study techniques that
are recognized such as Pomodoro, spaced repetition, Feynman technique etc.

User's Study Goals or follow-up question: %s

Format:
Study Plan:
- Time Blocks:
- Breaks:
- Techniques:
- Duration:
`

const wellnessTemplate = `
You are a supportive wellness chatbot. Provide motivational and wellness-oriented responses.
Format:
Response:
- Mood:
- Suggestion:
- Additional Notes:

User Query: %s
`

// Client formats the fixed prompt templates and hands them to a Generator.
// Output is returned untouched.
type Client struct {
	gen    Generator
	logger *zap.Logger
}

// NewClient creates a Client over gen.
func NewClient(gen Generator, logger *zap.Logger) *Client {
	return &Client{gen: gen, logger: logger}
}

// StudyPlan generates a study plan (time blocks, breaks, techniques,
// duration) for the student's goals.
func (c *Client) StudyPlan(ctx context.Context, input string) (string, error) {
	return c.run(ctx, TemplateStudyPlan, fmt.Sprintf(studyPlanTemplate, input))
}

// WellnessResponse generates a supportive reply (mood, suggestion, notes).
func (c *Client) WellnessResponse(ctx context.Context, input string) (string, error) {
	return c.run(ctx, TemplateWellness, fmt.Sprintf(wellnessTemplate, input))
}

func (c *Client) run(ctx context.Context, template, prompt string) (string, error) {
	out, err := c.gen.Generate(ctx, prompt)
	metrics.RecordTextGen(template, err)
	if err != nil {
		err = Upstream(err)
		c.logger.Warn("text generation failed",
			zap.String("template", template), zap.Error(err))
		return "", err
	}
	return out, nil
}
