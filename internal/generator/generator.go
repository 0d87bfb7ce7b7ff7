// Package generator defines the external answer-generation collaborator at
// its interface boundary and ships the Gemini-backed implementation.
package generator

import "context"

// Request carries everything a generation call needs: the rendered prompt,
// the system instruction and the scheme IDs the prompt was grounded on.
type Request struct {
	System             string
	Prompt             string
	GroundingSchemeIDs []string
}

// Answer is a successful generation result. CitedSchemeIDs feed the cache's
// invalidation index; Confidence is surfaced on the cache entry.
type Answer struct {
	Text           string
	CitedSchemeIDs []string
	Confidence     float64
}

// Generator is the black-box text generation collaborator. Failures are typed
// through errx kinds (GeneratorTimeout, GeneratorUnavailable,
// GeneratorRateLimited); the orchestrator recovers from all of them locally.
type Generator interface {
	Generate(ctx context.Context, req Request) (*Answer, error)
}
