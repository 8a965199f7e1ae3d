package core

import "context"

// TextService is any service that can complete a text prompt.
// It is used as an optional enrichment only; callers must treat a failure
// as "keep the fallback text" and never surface it to the client.
type TextService interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}
