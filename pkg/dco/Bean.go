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

package dco

import (
	"github.com/devtron-labs/dco-sensor/bean"
)

// CommitError is a problem found on a commit during the check. Errors are
// data, the check itself never fails.
type CommitError string

const (
	CommitErrorInvalidAuthorEmail    CommitError = "invalid author email"
	CommitErrorInvalidCommitterEmail CommitError = "invalid committer email"
	CommitErrorSignOffMismatch       CommitError = "no sign-off matches the author or committer"
	CommitErrorSignOffNotFound       CommitError = "sign-off not found"
)

// CommitSuccessReason states why a commit passed the check.
type CommitSuccessReason string

const (
	SuccessReasonIsMerge                         CommitSuccessReason = "merge commit"
	SuccessReasonFromBot                         CommitSuccessReason = "commit from bot"
	SuccessReasonFromMember                      CommitSuccessReason = "commit from member"
	SuccessReasonValidSignOff                    CommitSuccessReason = "valid sign-off"
	SuccessReasonValidSignOffInRemediationCommit CommitSuccessReason = "valid sign-off in remediation commit"
)

// CheckInput is everything the check engine needs to evaluate a pull request.
type CheckInput struct {
	Commits []*bean.Commit
	Config  *bean.EffectiveDcoConfig
	HeadRef string
	Members []string
}

// CommitCheckOutput is the per-commit verdict. A commit never carries both
// errors and a success reason.
type CommitCheckOutput struct {
	Commit        *bean.Commit
	Errors        []CommitError
	SuccessReason *CommitSuccessReason
}

// CheckOutput is the aggregate verdict, with commits in input order.
type CheckOutput struct {
	Commits                      []*CommitCheckOutput
	HeadRef                      string
	NumCommitsWithErrors         int
	OnlyLastCommitContainsErrors bool
}

// SignOff is a Signed-off-by statement extracted from a commit message.
type SignOff struct {
	Name  string
	Email string
}

// Remediation is a statement found in a commit message claiming that the
// declarant retroactively signs off the commit identified by TargetSha.
type Remediation struct {
	Declarant bean.User
	TargetSha string
}
