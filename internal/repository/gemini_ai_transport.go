package repository

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"gold-analyst/config"
	"gold-analyst/internal/dto"
	"gold-analyst/internal/model"
	"gold-analyst/pkg/httpclient"

	"google.golang.org/genai"
)

// geminiSDKTransport talks to Gemini through the official genai client.
type geminiSDKTransport struct {
	cfg    config.Gemini
	client *genai.Client
}

func newGeminiSDKTransport(ctx context.Context, cfg config.Gemini) (*geminiSDKTransport, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &geminiSDKTransport{cfg: cfg, client: client}, nil
}

func (t *geminiSDKTransport) CountTokens(ctx context.Context, prompt string) (int, error) {
	ctx, cancel := withTimeout(ctx, t.cfg)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := t.client.Models.CountTokens(ctx, t.cfg.BaseModel, contents, nil)
	if err != nil {
		return 0, err
	}
	return int(resp.TotalTokens), nil
}

func (t *geminiSDKTransport) Generate(ctx context.Context, req dto.AnalysisRequest) (*dto.AIRawResponse, error) {
	ctx, cancel := withTimeout(ctx, t.cfg)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.EnableSearch {
		genConfig.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	resp, err := t.client.Models.GenerateContent(ctx, t.cfg.BaseModel,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		genConfig,
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini returned no candidates")
	}

	raw := &dto.AIRawResponse{Text: resp.Text()}
	if gm := resp.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk != nil && chunk.Web != nil {
				raw.Sources = append(raw.Sources, model.GroundingSource{Title: chunk.Web.Title, URI: chunk.Web.URI})
			}
		}
	}
	return raw, nil
}

// geminiRESTTransport calls the generateContent endpoint directly.
type geminiRESTTransport struct {
	cfg        config.Gemini
	httpClient httpclient.HTTPClient
}

func newGeminiRESTTransport(cfg config.Gemini) *geminiRESTTransport {
	return &geminiRESTTransport{
		cfg:        cfg,
		httpClient: httpclient.New(cfg.BaseURL, cfg.Timeout, map[string]string{"x-goog-api-key": cfg.APIKey}),
	}
}

func (t *geminiRESTTransport) CountTokens(ctx context.Context, prompt string) (int, error) {
	payload := dto.GeminiCountTokensRequest{
		Contents: []dto.Content{{Role: "user", Parts: []dto.Part{{Text: prompt}}}},
	}
	var result dto.GeminiCountTokensResponse

	resp, err := t.httpClient.Post(ctx, fmt.Sprintf("/%s:countTokens", t.cfg.BaseModel), payload, nil, &result)
	if err != nil {
		return 0, fmt.Errorf("failed to count tokens: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("count tokens returned status %d: %s", resp.StatusCode, truncate(string(resp.Body), 200))
	}
	return result.TotalTokens, nil
}

func (t *geminiRESTTransport) Generate(ctx context.Context, req dto.AnalysisRequest) (*dto.AIRawResponse, error) {
	payload := dto.GeminiAPIRequest{
		Contents: []dto.Content{{Role: "user", Parts: []dto.Part{{Text: req.Prompt}}}},
		GenerationConfig: &dto.GenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   req.Schema,
		},
	}
	if req.EnableSearch {
		payload.Tools = []dto.GeminiTool{{GoogleSearch: &struct{}{}}}
	}

	var result dto.GeminiAPIResponse
	resp, err := t.httpClient.Post(ctx, fmt.Sprintf("/%s:generateContent", t.cfg.BaseModel), payload, nil, &result)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to gemini: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gemini returned status %d: %s", resp.StatusCode, truncate(string(resp.Body), 200))
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("invalid response from Gemini API: no content found")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	raw := &dto.AIRawResponse{Text: sb.String()}
	if gm := result.Candidates[0].GroundingMetadata; gm != nil {
		for _, chunk := range gm.GroundingChunks {
			if chunk.Web != nil {
				raw.Sources = append(raw.Sources, model.GroundingSource{Title: chunk.Web.Title, URI: chunk.Web.URI})
			}
		}
	}
	return raw, nil
}

func withTimeout(ctx context.Context, cfg config.Gemini) (context.Context, context.CancelFunc) {
	if cfg.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, cfg.Timeout)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
