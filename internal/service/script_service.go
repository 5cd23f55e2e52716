package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"vir/coach-app/internal/domain"

	"github.com/sashabaranov/go-openai"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScriptService turns a day's plan into a short spoken-style session script
// the athlete can read or play before training.
type ScriptService interface {
	SessionScript(ctx context.Context, userID primitive.ObjectID, date time.Time) (string, error)
}

type scriptService struct {
	schedule ScheduleService
	client   *openai.Client
	model    string
}

// NewScriptService creates a new scriptService. With an empty API key the
// service falls back to a deterministic template.
func NewScriptService(schedule ScheduleService, apiKey, model string) ScriptService {
	var client *openai.Client
	if apiKey != "" {
		client = openai.NewClient(apiKey)
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	return &scriptService{
		schedule: schedule,
		client:   client,
		model:    model,
	}
}

func (s *scriptService) SessionScript(ctx context.Context, userID primitive.ObjectID, date time.Time) (string, error) {
	detail, err := s.schedule.DayDetail(ctx, userID, date)
	if err != nil {
		return "", err
	}

	if s.client == nil {
		return templateScript(detail), nil
	}

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleSystem,
				Content: "You are a personal training coach. Write a short, " +
					"motivating session briefing in plain prose. No markdown, " +
					"no emoji, at most 120 words.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: scriptPrompt(detail),
			},
		},
	}

	resp, err := s.client.CreateChatCompletion(ctx, req)
	if err != nil {
		// The page must not break when the API is down.
		return templateScript(detail), nil
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("model returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func scriptPrompt(d *DayDetail) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s\nPlan type: %s\n", d.Date, d.Plan.PlanType)
	if d.Plan.Warmup != "" {
		fmt.Fprintf(&b, "Warmup: %s\n", d.Plan.Warmup)
	}
	if d.Routine != nil {
		fmt.Fprintf(&b, "Routine: %s\n", d.Routine.Name)
		for _, it := range d.Items {
			fmt.Fprintf(&b, "- %s %s x %s\n", it.Name, it.Sets, it.Reps)
		}
	} else if d.Plan.Main != "" {
		fmt.Fprintf(&b, "Main: %s\n", d.Plan.Main)
	}
	if d.Plan.Finisher != "" {
		fmt.Fprintf(&b, "Finisher: %s\n", d.Plan.Finisher)
	}
	return b.String()
}

// templateScript is the no-API fallback: flat but always available.
func templateScript(d *DayDetail) string {
	if d.Plan != nil && d.Plan.PlanType == domain.PlanRest && d.Routine == nil {
		return fmt.Sprintf("Today (%s) is a rest day. Recover well and come back strong tomorrow.", d.Date)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session for %s.", d.Date)
	if d.Plan != nil && d.Plan.Warmup != "" {
		fmt.Fprintf(&b, " Start with your warmup: %s.", d.Plan.Warmup)
	}
	if d.Routine != nil {
		fmt.Fprintf(&b, " Main work is the %s routine", d.Routine.Name)
		if n := len(d.Items); n > 0 {
			fmt.Fprintf(&b, " with %d exercises", n)
		}
		b.WriteString(".")
	} else if d.Plan != nil && d.Plan.Main != "" {
		fmt.Fprintf(&b, " Main work: %s.", d.Plan.Main)
	}
	if d.Plan != nil && d.Plan.Finisher != "" {
		fmt.Fprintf(&b, " Finish with: %s.", d.Plan.Finisher)
	}
	b.WriteString(" Check off each exercise as you complete it.")
	return b.String()
}
