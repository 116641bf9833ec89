package oracle

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/tengfone/deadtext/internal/game/domain/turn"
	apperrors "github.com/tengfone/deadtext/internal/platform/errors"
)

// DefaultBaseURL and DefaultModel target OpenRouter's chat-completions
// endpoint with the model the game ships with.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "mistralai/mistral-nemo"
	DefaultTimeout = 30 * time.Second

	maxCompletionTokens = 1000
)

// ClientConfig configures the LLM-backed oracle.
type ClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is the LLM-backed oracle speaking the chat-completions API.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
}

// NewClient builds an LLM oracle. The API key is required; base URL,
// model and timeout fall back to the OpenRouter defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("oracle api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		api:     openai.NewClient(option.WithAPIKey(cfg.APIKey), option.WithBaseURL(cfg.BaseURL)),
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// ClassifyAction asks the model for a structured interpretation of the
// player's action and validates the reply before trusting it.
func (c *Client) ClassifyAction(ctx context.Context, view SessionView, action, scenario string) (turn.ActionEffect, error) {
	prompt := classifyPrompt(view, action)

	raw, err := c.complete(ctx, nil, prompt, true)
	if err != nil {
		return turn.ActionEffect{}, err
	}

	payload, err := parseClassification([]byte(raw))
	if err != nil {
		return turn.ActionEffect{}, apperrors.Wrap(apperrors.CodeOracleUnavailable,
			"oracle returned malformed classification", err)
	}

	effect := turn.ActionEffect{
		Kind:        turn.ParseKind(payload.ActionType),
		Description: action,
		RiskLevel:   int(payload.RiskLevel),
		Deltas: turn.ResourceDeltas{
			Health: int(payload.Impacts.Health),
			Food:   payload.Impacts.Food,
			Water:  payload.Impacts.Water,
		},
	}
	if err := effect.Validate(); err != nil {
		return turn.ActionEffect{}, apperrors.Wrap(apperrors.CodeOracleUnavailable,
			"oracle classification out of bounds", err)
	}
	return effect, nil
}

// DescribeScenario asks the model to open the turn with a formatted
// scene in the [ATMOSPHERE]/[SITUATION]/[CHOICES] layout.
func (c *Client) DescribeScenario(ctx context.Context, view SessionView) (string, error) {
	text, err := c.complete(ctx, stateContext(view), scenarioPrompt(view), false)
	if err != nil {
		return "", err
	}
	return boldSectionHeaders(text), nil
}

// DescribeOutcome asks the model to narrate a resolved turn in the
// [OUTCOME]/[STATUS]/[NEXT] layout.
func (c *Client) DescribeOutcome(ctx context.Context, view SessionView, effect turn.ActionEffect, result turn.Result) (string, error) {
	text, err := c.complete(ctx, stateContext(view), outcomePrompt(view, effect, result), false)
	if err != nil {
		return "", err
	}
	return boldSectionHeaders(text), nil
}

func (c *Client) complete(ctx context.Context, systemContext []string, prompt string, jsonReply bool) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if len(systemContext) > 0 {
		messages = append(messages, openai.SystemMessage(
			"Current game state: "+strings.Join(systemContext, "; ")))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:     openai.ChatModel(c.model),
		Messages:  messages,
		MaxTokens: openai.Int(maxCompletionTokens),
	}
	if jsonReply {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeOracleUnavailable, "oracle request failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeOracleUnavailable, "oracle returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func stateContext(view SessionView) []string {
	return []string{
		fmt.Sprintf("day=%d", view.Day),
		fmt.Sprintf("location=%s", view.Location),
		fmt.Sprintf("health=%d", view.Health),
		fmt.Sprintf("food=%.1f", view.Food),
		fmt.Sprintf("water=%.1f", view.Water),
		fmt.Sprintf("weapons=%s", strings.Join(view.Weapons, ", ")),
	}
}

func classifyPrompt(view SessionView, action string) string {
	return fmt.Sprintf(`You are analyzing a player's action in a zombie survival game. Return a JSON object with the following structure:
{
    "action_type": "COMBAT" | "STEALTH" | "EXPLORE" | "REST" | "MOVE",
    "description": "brief description of interpreted action",
    "consequences": ["list", "of", "potential", "outcomes"],
    "risk_level": number between 1-10,
    "resource_impacts": {
        "health": number between -100 and 100,
        "food": number between -10 and 10,
        "water": number between -10 and 10
    }
}

Player's action: %q

Current context:
- Health: %d
- Location: %s
- Available weapons: %s
- Food: %.1f
- Water: %.1f

Return ONLY the JSON object, no additional text.`,
		action, view.Health, view.Location,
		strings.Join(view.Weapons, ", "), view.Food, view.Water)
}

func scenarioPrompt(view SessionView) string {
	return fmt.Sprintf(`You are generating a scenario for a text-based zombie survival game. You MUST format your response using Markdown and EXACTLY as shown below, with section headers in square brackets.

Current context:
- Day: %d
- Location: %s
- Player Health: %d
- Resources: Food (%.1f), Water (%.1f)
- Weapons: %s
- Inventory: %s

Generate a response with EXACTLY these sections and formatting:

[ATMOSPHERE]
Write 2-3 sentences setting the mood and describing the environment. Focus on creating tension and atmosphere. Use *bold* for important elements.

[SITUATION]
Write 2-3 sentences describing the immediate challenge or opportunity the player faces. Make it specific and actionable. Use *bold* for key threats or opportunities.

[CHOICES]
1. (Safe) - Write a low-risk option with modest rewards
2. (Risky) - Write a medium-risk option with good rewards
3. (Desperate) - Write a high-risk option with the best rewards

Keep each section concise but immersive. Focus on survival and resource management.
DO NOT add any additional sections or change the formatting.
IMPORTANT: Make sure to use proper Markdown formatting with *asterisks* for bold text.`,
		view.Day, view.Location, view.Health, view.Food, view.Water,
		strings.Join(view.Weapons, ", "), inventoryLine(view.Inventory))
}

func outcomePrompt(view SessionView, effect turn.ActionEffect, result turn.Result) string {
	return fmt.Sprintf(`You are narrating the outcome of a player's action in a text-based zombie survival game. You MUST format your response using Markdown and EXACTLY as shown below, with section headers in square brackets.

Action taken: %q (type %s)
Damage taken: %d
Health recovered: %d

Generate a response with EXACTLY these sections and formatting:

[OUTCOME]
Write 2-3 sentences describing what happened as a consequence of the action.

[STATUS]
Summarize the player's condition changes in one short line.

[NEXT]
Write one sentence teasing what the player faces next.

DO NOT add any additional sections or change the formatting.`,
		effect.Description, effect.Kind, result.DamageTaken, result.Healed)
}

// inventoryLine renders non-zero inventory entries in sorted order.
func inventoryLine(inventory map[string]int) string {
	items := make([]string, 0, len(inventory))
	for item, qty := range inventory {
		if qty > 0 {
			items = append(items, fmt.Sprintf("%s: %d", item, qty))
		}
	}
	if len(items) == 0 {
		return "Empty"
	}
	sort.Strings(items)
	return strings.Join(items, ", ")
}

// boldSectionHeaders wraps [SECTION] markers in asterisks for Markdown.
func boldSectionHeaders(text string) string {
	for _, header := range []string{
		"[ATMOSPHERE]", "[SITUATION]", "[CHOICES]",
		"[OUTCOME]", "[STATUS]", "[NEXT]",
	} {
		text = strings.ReplaceAll(text, header, "*"+header+"*")
	}
	return strings.ReplaceAll(text, "\n\n\n", "\n\n")
}
