// Copyright 2024 AgentQuorum Authors. All rights reserved.
// Use of this source code is governed by a MIT license that can be
// found in the LICENSE file.

/*
Package agent defines the capability boundary between the coordination engine
and the agents it coordinates.

# Overview

The engine never looks inside an agent. An agent is an immutable descriptor
(types.AgentProfile) plus exactly one operation:

	type Agent interface {
	    Profile() types.AgentProfile
	    Execute(ctx context.Context, query string, cctx *types.Context) (*types.AgentResponse, error)
	}

How the content is produced (LLM call, rule engine, human in the loop) is the
agent's own business.

# Architecture

	┌──────────────────────────────────────────────────────────┐
	│              agent/collaboration.Coordinator              │
	│   select → validate → execute → detect → resolve → merge  │
	├──────────────┬──────────────┬──────────────┬─────────────┤
	│   strategy   │   conflict   │  consensus   │  synthesis  │
	├──────────────┴──────────────┴──────────────┴─────────────┤
	│                      agent/scoring                        │
	├──────────────────────────────────────────────────────────┤
	│                 Agent (this package)                      │
	└──────────────────────────────────────────────────────────┘

# Adapters

  - StaticAgent: a rule-engine style responder returning configured content,
    loadable from a YAML pool file.
  - Func: wraps a plain function as an Agent.

# Errors

Sentinel errors (ErrNoSuitableStrategy, ErrInsufficientResponses, ...) are
*types.Error values; match them with errors.Is.
*/
package agent
