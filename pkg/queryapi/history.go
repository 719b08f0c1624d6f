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

import "github.com/kraklabs/codegraph/pkg/types"

// HistoryOptions narrows a GetSymbolHistory call").
type HistoryOptions struct {
	// Refresh re-shells to git for target's file instead of returning the
	// snapshot recorded at the last indexProject run.
	Refresh bool
}

// GetSymbolHistory returns target's git metadata: the snapshot attached at
// index time, or (with Refresh) a freshly probed one. Returns nil if the
// symbol is unknown or git metadata is unavailable.
func (a *API) GetSymbolHistory(target string, opts HistoryOptions) *types.GitMeta {
	sym := a.store.GetSymbol(target)
	if sym == nil {
		return nil
	}
	if !opts.Refresh {
		return sym.GitMeta
	}
	return a.gitProvider().ForFile(sym.FilePath)
}
