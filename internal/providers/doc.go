// Package providers implements the Generator interface for each supported
// LLM backend.
//
// Supported providers: Ollama / LM Studio for local models (OpenAI-
// compatible API), OpenRouter, and Google Gemini. Use [New] to obtain a
// Generator by provider name and model string; selection is by
// configuration, never by type hierarchy.
//
// Every failure crossing this boundary is a typed [*Error] with a [Kind]
// of timeout, rateLimited, invalidResponse, or unreachable. Auth
// rejections and malformed bodies map to invalidResponse: the provider
// answered, and repeating the identical request cannot help.
//
// Providers make exactly one attempt per call. The retry policy
// (linear backoff for timeout/unreachable, a single hint-honoring
// retry for rate limits, no retry for invalid responses) is owned by
// [Retrier], which wraps any Generator.
//
// Base URLs live in struct fields so tests can point a provider at a
// local httptest server without touching the network.
package providers
