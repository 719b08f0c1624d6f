// Copyright 2025 KrakLabs
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
//
// SPDX-License-Identifier: Apache-2.0

package queryapi

import (
	"context"

	"github.com/kraklabs/codegraph/pkg/indexer"
)

// IndexProject runs the scan -> extract -> resolve -> persist -> PageRank ->
// metadata pipeline against the project root this API is bound to.
// progress, if non-nil, receives extractor progress forwarded verbatim.
func (a *API) IndexProject(ctx context.Context, opts indexer.Options, progress indexer.ProgressFunc) (*indexer.Result, error) {
	ix := indexer.New(a.store, a.cfg, a.logger)
	return ix.IndexProject(ctx, a.root, opts, progress)
}

// IndexProjectSince runs a git delta-based incremental re-scan: it
// computes changed/deleted paths directly from `git diff
// --name-status -M baseSHA headSHA` instead of walking the tree, then
// applies the same extract/resolve/persist/PageRank tail IndexProject uses.
func (a *API) IndexProjectSince(ctx context.Context, baseSHA, headSHA string, progress indexer.ProgressFunc) (*indexer.Result, error) {
	ix := indexer.New(a.store, a.cfg, a.logger)
	return ix.IndexProjectSince(ctx, a.root, baseSHA, headSHA, progress)
}
