package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	openai "github.com/sashabaranov/go-openai"
	"github.com/tidwall/gjson"
)

const safeDOMLimit = 60000

func (c *OpenAIClient) DecideAction(ctx context.Context, input DecisionInput) (*DecisionOutput, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: buildDecisionPrompt(input)},
	}

	if c.opts.Vision && input.ScreenshotBase64 != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{
				URL: "data:image/jpeg;base64," + input.ScreenshotBase64,
			},
		})
	}

	resp, err := c.createChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: visionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: c.opts.Temperature,
		MaxTokens:   c.opts.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices")
	}

	return ParseDecision(resp.Choices[0].Message.Content)
}

func buildDecisionPrompt(input DecisionInput) string {
	var sb strings.Builder
	sb.WriteString("TASK: " + input.Task + "\n")
	sb.WriteString("URL: " + input.CurrentURL + "\n")

	if input.History != "" {
		sb.WriteString("HISTORY:\n" + input.History + "\n")
	}

	dom := input.DOMTree
	if len(dom) > safeDOMLimit {
		dom = cutAt(dom, safeDOMLimit) + "\n...[TRUNCATED]"
	}
	sb.WriteString("\nDOM:\n" + dom)
	return sb.String()
}

// ParseDecision reads the model's JSON reply. It tolerates code fences and
// numbers sent as strings; an unknown action type becomes a scroll.
func ParseDecision(content string) (*DecisionOutput, error) {
	content = stripCodeFence(content)
	if !gjson.Valid(content) {
		return nil, fmt.Errorf("decision is not valid JSON: %q", truncate(content, 200))
	}

	res := gjson.Parse(content)
	if !res.IsObject() {
		return nil, fmt.Errorf("decision is not a JSON object: %q", truncate(content, 200))
	}

	act := res.Get("action")
	out := &DecisionOutput{
		CurrentPhase: res.Get("current_phase").String(),
		Observation:  res.Get("observation").String(),
		Thought:      res.Get("thought").String(),
		Action: Action{
			Type:          ActionType(act.Get("type").String()),
			TargetID:      int(act.Get("target_id").Int()),
			Text:          act.Get("text").String(),
			URL:           act.Get("url").String(),
			Submit:        act.Get("submit").Bool(),
			IsDestructive: act.Get("is_destructive").Bool(),
		},
	}

	normalizeActionType(&out.Action)
	return out, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return cutAt(s, n) + "..."
}

// cutAt returns at most the first n bytes of s without splitting a rune.
func cutAt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func normalizeActionType(a *Action) {
	switch strings.ToLower(strings.TrimSpace(string(a.Type))) {
	case "click":
		a.Type = ActionClick
	case "type":
		a.Type = ActionTypeInput
	case "scroll_down", "scroll":
		a.Type = ActionScroll
	case "navigate":
		a.Type = ActionNavigate
	case "save":
		a.Type = ActionSave
	case "finish":
		a.Type = ActionFinish
	default:
		a.Type = ActionScroll
	}
}
