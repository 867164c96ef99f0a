package replan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/Chabota512/forge-drift/internal/models"
)

// GeminiRequester asks the Gemini API directly for a reschedule. Used when
// no sidecar is running, for example from the standalone CLI.
type GeminiRequester struct {
	client *genai.Client
	model  string
}

func NewGeminiRequester(ctx context.Context, apiKey, model string) (*GeminiRequester, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiRequester{
		client: client,
		model:  model,
	}, nil
}

func (r *GeminiRequester) RequestReschedule(ctx context.Context, req Request) ([]models.TimeBlock, error) {
	if len(req.RemainingBlocks) == 0 {
		return nil, ErrNoRemainingBlocks
	}

	prompt, err := buildReschedulePrompt(req)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	result, err := r.client.Models.GenerateContent(ctx, r.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("Gemini request failed: %w", err)
	}

	revised, err := parseRescheduleResponse(result.Text())
	if err != nil {
		return nil, err
	}

	revised = annotateAdjustments(req.RemainingBlocks, revised)
	if err := checkRevised(revised); err != nil {
		return nil, err
	}
	return revised, nil
}

// buildReschedulePrompt renders the request as instructions plus the
// remaining blocks as JSON the model can edit in place.
func buildReschedulePrompt(req Request) (string, error) {
	blocksJSON, err := json.MarshalIndent(req.RemainingBlocks, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("You are rescheduling the remainder of a student's day after an activity ran long.\n")
	fmt.Fprintf(&b, "Date: %s. Current time: %s.\n", req.ScheduleDate, req.CurrentTime)
	b.WriteString("Revise the blocks below so the sequence starts at or after the current time, ")
	b.WriteString("keeps every block's title and type, stays in start-time order without overlaps, ")
	b.WriteString("and shortens lower-priority blocks first when time must be recovered.\n")
	b.WriteString("Times are 24-hour zero-padded HH:MM strings.\n")
	b.WriteString("Respond with JSON of the shape {\"rescheduledBlocks\": [...]} and nothing else.\n\n")
	b.WriteString("Remaining blocks:\n")
	b.Write(blocksJSON)
	return b.String(), nil
}

// parseRescheduleResponse accepts either the documented envelope or a bare
// block array, with or without a markdown code fence around it.
func parseRescheduleResponse(text string) ([]models.TimeBlock, error) {
	cleaned := stripCodeFence(text)
	if cleaned == "" {
		return nil, fmt.Errorf("re-planner returned an empty response")
	}

	var envelope Response
	if err := json.Unmarshal([]byte(cleaned), &envelope); err == nil && len(envelope.RescheduledBlocks) > 0 {
		return envelope.RescheduledBlocks, nil
	}

	var blocks []models.TimeBlock
	if err := json.Unmarshal([]byte(cleaned), &blocks); err == nil && len(blocks) > 0 {
		return blocks, nil
	}

	return nil, fmt.Errorf("re-planner returned unparseable blocks: %.120s", cleaned)
}

func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
