package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/athlos-ai/athlos/internal/domain/model"
	"github.com/athlos-ai/athlos/pkg/logger"
)

const defaultModel = openai.GPT4oMini

// OpenAIProvider implements Provider against the OpenAI chat-completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
	log    logger.Logger
}

// OpenAIOption applies a configuration option to the provider.
type OpenAIOption func(*OpenAIProvider)

// WithModel overrides the completion model.
func WithModel(m string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if m != "" {
			p.model = m
		}
	}
}

// NewOpenAIProvider creates a provider from an API key.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing api key", ErrUnavailable)
	}
	p := &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  defaultModel,
		log:    logger.Named("openai"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *OpenAIProvider) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrEmptyResult
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) GeneratePlan(ctx context.Context, snap *model.ContextSnapshot) (*model.WeeklyPlan, error) {
	system := "You are a strength and conditioning planner. Respond with a single JSON object matching the WeeklyPlan schema: {\"phase\",\"sessions\":[{\"day\",\"type\",\"zone\",\"status\"}]}. Zones are 1-5, status is PLANNED."
	user := planContext(snap)

	out, err := p.complete(ctx, system, user)
	if err != nil {
		return nil, err
	}
	var plan model.WeeklyPlan
	if err := json.Unmarshal([]byte(extractJSON(out)), &plan); err != nil {
		return nil, fmt.Errorf("decode generated plan: %w", err)
	}
	plan.AthleteID = snap.Athlete.ID
	if plan.Phase == "" {
		plan.Phase = snap.EffectivePhase()
	}
	plan.Source = "ai"
	return &plan, nil
}

func (p *OpenAIProvider) RunCriticLoop(ctx context.Context, snap *model.ContextSnapshot, topic, knowledge string) ([]model.AgentMessage, error) {
	proposal, err := p.complete(ctx,
		"You are the proposing coach in a two-agent debate. Make one concrete recommendation.",
		fmt.Sprintf("Topic: %s\n\nAthlete context:\n%s\n\nDomain knowledge:\n%s", topic, planContext(snap), knowledge))
	if err != nil {
		return nil, err
	}
	critique, err := p.complete(ctx,
		"You are the safety critic in a two-agent debate. Challenge the proposal strictly against the provided domain knowledge.",
		fmt.Sprintf("Proposal:\n%s\n\nDomain knowledge:\n%s", proposal, knowledge))
	if err != nil {
		return nil, err
	}
	return []model.AgentMessage{
		{Agent: "proposer", Content: proposal},
		{Agent: "critic", Content: critique},
	}, nil
}

func (p *OpenAIProvider) Chat(ctx context.Context, message string, snap *model.ContextSnapshot, knowledge, role string) (string, error) {
	system := fmt.Sprintf("You are an assistant for a %s in an athlete-management platform. Ground answers in the provided context and knowledge; be concise.", role)
	user := fmt.Sprintf("Context:\n%s\n\nKnowledge:\n%s\n\nMessage: %s", planContext(snap), knowledge, message)
	return p.complete(ctx, system, user)
}

func (p *OpenAIProvider) AnalyzeVideo(ctx context.Context, images []string, contextText string) (*model.AnalysisResult, error) {
	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: "Analyze the technique shown across these frames. Respond with JSON {\"summary\",\"score\",\"flags\"}; score 0-10.\n\nContext: " + contextText},
	}
	for _, img := range images {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: img},
		})
	}
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResult
	}
	var result model.AnalysisResult
	if err := json.Unmarshal([]byte(extractJSON(resp.Choices[0].Message.Content)), &result); err != nil {
		return nil, fmt.Errorf("decode analysis: %w", err)
	}
	return &result, nil
}

// planContext renders the snapshot into prompt text.
func planContext(snap *model.ContextSnapshot) string {
	var b strings.Builder
	a := snap.Athlete
	fmt.Fprintf(&b, "Athlete %s (%s), status %s, load ratio %.2f, HRV %d, technical trend %s, level %s, phase %s.\n",
		a.Name, a.Sport, a.Status, a.LoadRatio, a.HRV, snap.TechnicalTrend, snap.ProfilingLevel, snap.EffectivePhase())
	for _, f := range snap.RecentFeedback {
		fmt.Fprintf(&b, "Feedback (%s): %s\n", f.Day, f.Feedback)
	}
	for _, s := range snap.LongTermMemory {
		fmt.Fprintf(&b, "Week %s: %s\n", s.Week, s.Summary)
	}
	return b.String()
}

// extractJSON trims markdown fences models often wrap JSON in.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}
