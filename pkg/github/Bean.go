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

import "time"

const (
	CheckRunStatusCompleted = "completed"

	CheckRunConclusionSuccess        = "success"
	CheckRunConclusionActionRequired = "action_required"
)

// Field length limits enforced by the GitHub checks API.
const (
	maxOutputSummaryLength     = 65535
	maxActionLabelLength       = 20
	maxActionDescriptionLength = 40
	maxActionIdentifierLength  = 20
)

// Ctx identifies the installation and repository a GitHub API request is
// targeted at.
type Ctx struct {
	InstallationId int64
	Owner          string
	Repo           string
}

// CheckRun is the check result reported back to GitHub for a head commit.
type CheckRun struct {
	Actions     []*CheckRunAction
	CompletedAt time.Time
	Conclusion  string
	HeadSha     string
	Name        string
	StartedAt   time.Time
	Status      string
	Summary     string
	Title       string
}

// CheckRunAction is a manual action offered to maintainers in the check run UI.
type CheckRunAction struct {
	Label       string
	Description string
	Identifier  string
}

func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
