// Package llm provides a provider-neutral abstraction layer for Large Language Model (LLM) APIs.
//
// This package defines common types, interfaces, and utilities that allow the codebase
// to work with multiple LLM providers (OpenAI, Anthropic, custom OpenAI-compatible
// endpoints, Ollama) without being tightly coupled to any specific provider's SDK
// or wire format.
//
// # Core Concepts
//
//  1. Messages: the Message type represents a conversation message with a role
//     (user, assistant, system) and plain text content.
//
//  2. Client Interface: the Client interface provides Synchronous() for non-streaming
//     calls and Stream() for streaming calls. Implementations handle provider-specific
//     details internally.
//
//  3. Streams: the Stream interface yields StreamEvent values in provider emission
//     order. A stream is finite and not restartable; Collect drains one into a
//     complete Response whose content equals the concatenation of all text deltas.
//
//  4. Middleware: the Middleware and StreamMiddleware interfaces allow adding
//     cross-cutting concerns like logging without modifying provider implementations.
//
//  5. Errors: the Error type provides provider-neutral error handling. Every
//     provider translates transport failures (auth, rate limits, network faults,
//     server errors) into the same ErrorType taxonomy so callers never need to
//     inspect provider-specific errors.
//
// # Extension Points
//
// To add a new LLM provider:
//  1. Implement the Client interface in a subpackage
//  2. Translate between provider-specific types and llm package types
//  3. Translate provider-specific errors into llm.Error values
//  4. Add one case to the dispatch switch in the client package
package llm
