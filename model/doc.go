// Package model defines the provider‑agnostic abstractions and concrete
// helpers for interacting with language models inside planmesh.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Pass core.ExecutionSettings through to providers untouched by the plan engine
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI, Anthropic, any langchaingo llms.Model) implement the
// Model interface from this package so prompt functions and agents remain
// decoupled from vendor SDKs.
package model
