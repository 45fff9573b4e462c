// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package ai defines the enrichment boundary of distill.
//
// The pipeline depends only on the Enricher interface, so the business logic
// can be tested without a live service and providers can be swapped without
// touching the orchestration code.
//
// # Implementation Packages
//
//   - ai/anthropic: production client for the Anthropic messages API
//   - ai/mock: test doubles for unit testing without external dependencies
//
// Production constructors (anthropic.NewEnricher) return the ai.Enricher
// INTERFACE to enforce abstraction. Mock constructors return CONCRETE types
// so tests can inject behavior and assert on call counts.
package ai
