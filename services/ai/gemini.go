// Package aisvc talks to a Gemini-style text generation API. The backend is
// strictly an enrichment dependency: callers fall back to templated text
// whenever it errors.
package aisvc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

type geminiService struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ core.TextService = (*geminiService)(nil)

func NewGeminiService(conf *core.Config) core.TextService {
	baseURL := conf.AI.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &geminiService{
		baseURL: baseURL,
		apiKey:  conf.AI.ApiKey,
		model:   conf.AI.Model,
		client:  &http.Client{Timeout: conf.AI.Timeout},
	}
}

type (
	generateRequest struct {
		Contents []content `json:"contents"`
	}

	content struct {
		Parts []part `json:"parts"`
	}

	part struct {
		Text string `json:"text"`
	}

	generateResponse struct {
		Candidates []struct {
			Content content `json:"content"`
		} `json:"candidates"`
	}
)

func (svc *geminiService) GenerateText(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", errors.Wrap(err, "encoding request")
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", svc.baseURL, svc.model, svc.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "calling generation API")
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("generation API returned %d", res.StatusCode)
	}

	var out generateResponse
	if err = json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("generation API returned no candidates")
	}
	return core.CleanString(out.Candidates[0].Content.Parts[0].Text), nil
}
