// Package agent contains a minimal agent abstraction that consumes a
// model.Model. It covers three concerns:
//
//  1. Identity and instructions (Agent)
//  2. Conversation batching through channels (Channel, ChatHistoryChannel)
//  3. A model-backed agent answering from the channel history (ChatCompletionAgent)
//
// Agents are deliberately thin; orchestration of multi-step work belongs to
// the plan package.
package agent
