/*
 * Copyright (c) 2024. Devtron Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package github

import (
	"context"

	"github.com/devtron-labs/dco-sensor/bean"
)

// GitClient abstracts the GitHub API operations the check pipeline needs.
// There is one production implementation backed by the GitHub REST API and a
// generated test double under pkg/mocks.
type GitClient interface {
	// CompareCommits returns the ordered list of commits between the base
	// and head SHAs provided (base excluded, head included).
	CompareCommits(ctx context.Context, gctx *Ctx, baseSha string, headSha string) ([]*bean.Commit, error)

	// CreateCheckRun reports a check run result. Fields exceeding the limits
	// of the checks API are silently truncated before submission.
	CreateCheckRun(ctx context.Context, gctx *Ctx, checkRun *CheckRun) error

	// GetDcoConfig fetches the repository DCO policy file. A missing file is
	// not an error, it yields a nil config (all defaults).
	GetDcoConfig(ctx context.Context, gctx *Ctx) (*bean.DcoConfig, error)

	// IsOrganizationMember reports whether the username provided is a member
	// of the organization. Results are cached with a bounded TTL.
	IsOrganizationMember(ctx context.Context, gctx *Ctx, org string, username string) (bool, error)
}
