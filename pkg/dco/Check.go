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
	"net/mail"
	"regexp"
	"strings"

	"github.com/devtron-labs/dco-sensor/bean"
	"go.uber.org/zap"
)

// Patterns scanned for in commit messages, compiled once at process start.
// Captured names, emails and shas are trimmed after matching, so padded
// statements still count.
var (
	signOffRegex = regexp.MustCompile(
		`(?mi)^signed-off-by:(.*)<(.*)>[ \t\r]*$`)
	individualRemediationRegex = regexp.MustCompile(
		`(?mi)^I,(.*)<(.*)>, hereby add my Signed-off-by to this commit:(.*)$`)
	thirdPartyRemediationRegex = regexp.MustCompile(
		`(?mi)^On behalf of(.*)<(.*)>, I,(.*)<(.*)>, hereby add my Signed-off-by to this commit:(.*)$`)
)

type CheckService interface {
	// Check evaluates the commits of a pull request against the DCO policy.
	// It is pure and total: it always produces a complete output, whatever
	// the shape of the input commits.
	Check(input *CheckInput) *CheckOutput
}

type CheckServiceImpl struct {
	logger *zap.SugaredLogger
}

func NewCheckServiceImpl(logger *zap.SugaredLogger) *CheckServiceImpl {
	return &CheckServiceImpl{logger: logger}
}

func (impl CheckServiceImpl) Check(input *CheckInput) *CheckOutput {
	output := &CheckOutput{HeadRef: input.HeadRef}

	// Remediations are collected upfront from the whole commit list, a
	// remediation in a later commit can clear an earlier commit's errors.
	remediations := collectRemediations(input.Commits, input.Config)

	for _, commit := range input.Commits {
		commitOutput := &CommitCheckOutput{Commit: commit}
		output.Commits = append(output.Commits, commitOutput)

		// Exempt commits pass without further evaluation
		if reason := shouldSkipCommit(commit, input.Config, input.Members); reason != nil {
			commitOutput.SuccessReason = reason
			impl.logger.Debugw("commit skipped", "sha", commit.Sha, "reason", *reason)
			continue
		}

		emailsAreValid := true
		if emailErrors := validateEmails(commit); len(emailErrors) > 0 {
			commitOutput.Errors = append(commitOutput.Errors, emailErrors...)
			emailsAreValid = false
		}

		signOffs := getSignOffs(commit)
		if len(signOffs) == 0 {
			commitOutput.Errors = append(commitOutput.Errors, CommitErrorSignOffNotFound)
		}

		if emailsAreValid && len(signOffs) > 0 {
			if signOffsMatch(signOffs, commit) {
				commitOutput.SuccessReason = successReason(SuccessReasonValidSignOff)
			} else {
				commitOutput.Errors = append(commitOutput.Errors, CommitErrorSignOffMismatch)
			}
		}

		// A matching remediation overrides any error accumulated above, but
		// never replaces a direct sign-off success.
		if commitOutput.SuccessReason == nil && remediationsMatch(remediations, commit) {
			commitOutput.Errors = nil
			commitOutput.SuccessReason = successReason(SuccessReasonValidSignOffInRemediationCommit)
		}

		impl.logger.Debugw("commit processed", "sha", commit.Sha, "errors", commitOutput.Errors,
			"signOffs", len(signOffs))
	}

	for _, commitOutput := range output.Commits {
		if len(commitOutput.Errors) > 0 {
			output.NumCommitsWithErrors++
		}
	}
	if output.NumCommitsWithErrors == 1 && len(output.Commits) > 0 {
		lastCommitOutput := output.Commits[len(output.Commits)-1]
		output.OnlyLastCommitContainsErrors = len(lastCommitOutput.Errors) > 0
	}
	return output
}

// shouldSkipCommit decides whether the commit is exempt from sign-off,
// returning the exemption reason. Rules are evaluated in priority order,
// first match wins.
func shouldSkipCommit(commit *bean.Commit, config *bean.EffectiveDcoConfig, members []string) *CommitSuccessReason {
	if commit.IsMerge {
		return successReason(SuccessReasonIsMerge)
	}
	if commit.Author != nil && commit.Author.IsBot {
		return successReason(SuccessReasonFromBot)
	}
	if !config.MembersSignOffRequired && commit.IsVerified() &&
		(userIsMember(commit.Author, members) || userIsMember(commit.Committer, members)) {
		return successReason(SuccessReasonFromMember)
	}
	return nil
}

func userIsMember(user *bean.User, members []string) bool {
	if user == nil || len(user.Login) == 0 {
		return false
	}
	for _, member := range members {
		if member == user.Login {
			return true
		}
	}
	return false
}

// validateEmails checks the committer and author email syntax. The author
// email is only validated when it differs from the committer email, so a
// shared invalid address is reported once. The committer error always comes
// first in the result.
func validateEmails(commit *bean.Commit) []CommitError {
	var errors []CommitError

	committerEmail := ""
	hasCommitter := commit.Committer != nil
	if hasCommitter {
		committerEmail = commit.Committer.Email
		if !isValidEmail(committerEmail) {
			errors = append(errors, CommitErrorInvalidCommitterEmail)
		}
	}
	if commit.Author != nil {
		sameAsCommitter := hasCommitter && commit.Author.Email == committerEmail
		if !sameAsCommitter && !isValidEmail(commit.Author.Email) {
			errors = append(errors, CommitErrorInvalidAuthorEmail)
		}
	}
	return errors
}

func isValidEmail(email string) bool {
	address, err := mail.ParseAddress(email)
	return err == nil && address.Address == email
}

// getSignOffs extracts all explicit sign-off statements from the commit
// message, in order and without deduplication. Lines that do not match the
// pattern are silently ignored.
func getSignOffs(commit *bean.Commit) []*SignOff {
	var signOffs []*SignOff
	for _, match := range signOffRegex.FindAllStringSubmatch(commit.Message, -1) {
		name := strings.TrimSpace(match[1])
		email := strings.TrimSpace(match[2])
		// a statement without a name or email is not a sign-off
		if len(name) == 0 || len(email) == 0 {
			continue
		}
		signOffs = append(signOffs, &SignOff{Name: name, Email: email})
	}
	return signOffs
}

// signOffsMatch reports whether any sign-off matches the commit author or
// committer identity.
func signOffsMatch(signOffs []*SignOff, commit *bean.Commit) bool {
	for _, signOff := range signOffs {
		if commit.Author.IdentityEquals(signOff.Name, signOff.Email) ||
			commit.Committer.IdentityEquals(signOff.Name, signOff.Email) {
			return true
		}
	}
	return false
}

// collectRemediations scans all commits for remediation statements. A
// statement whose declarant (or representative, for the third party form)
// does not match the identity of the commit carrying it is dropped silently.
// Third party statements are only scanned when individual remediations are
// also enabled.
func collectRemediations(commits []*bean.Commit, config *bean.EffectiveDcoConfig) []*Remediation {
	if !config.IndividualRemediationCommitsAllowed {
		return nil
	}

	var remediations []*Remediation
	for _, commit := range commits {
		for _, match := range individualRemediationRegex.FindAllStringSubmatch(commit.Message, -1) {
			name := strings.TrimSpace(match[1])
			email := strings.TrimSpace(match[2])
			targetSha := strings.TrimSpace(match[3])
			if len(name) == 0 || len(email) == 0 || len(targetSha) == 0 {
				continue
			}
			if commit.Author.IdentityEquals(name, email) || commit.Committer.IdentityEquals(name, email) {
				remediations = append(remediations, &Remediation{
					Declarant: bean.User{Name: name, Email: email},
					TargetSha: targetSha,
				})
			}
		}
		if !config.ThirdPartyRemediationCommitsAllowed {
			continue
		}
		for _, match := range thirdPartyRemediationRegex.FindAllStringSubmatch(commit.Message, -1) {
			declarantName := strings.TrimSpace(match[1])
			declarantEmail := strings.TrimSpace(match[2])
			representativeName := strings.TrimSpace(match[3])
			representativeEmail := strings.TrimSpace(match[4])
			targetSha := strings.TrimSpace(match[5])
			if len(declarantName) == 0 || len(declarantEmail) == 0 || len(representativeName) == 0 ||
				len(representativeEmail) == 0 || len(targetSha) == 0 {
				continue
			}
			if commit.Author.IdentityEquals(representativeName, representativeEmail) ||
				commit.Committer.IdentityEquals(representativeName, representativeEmail) {
				remediations = append(remediations, &Remediation{
					Declarant: bean.User{Name: declarantName, Email: declarantEmail},
					TargetSha: targetSha,
				})
			}
		}
	}
	return remediations
}

// remediationsMatch reports whether any collected remediation targets this
// commit and was declared by its author or committer.
func remediationsMatch(remediations []*Remediation, commit *bean.Commit) bool {
	for _, remediation := range remediations {
		if remediation.TargetSha != commit.Sha {
			continue
		}
		if commit.Author.IdentityEquals(remediation.Declarant.Name, remediation.Declarant.Email) ||
			commit.Committer.IdentityEquals(remediation.Declarant.Name, remediation.Declarant.Email) {
			return true
		}
	}
	return false
}

func successReason(reason CommitSuccessReason) *CommitSuccessReason {
	return &reason
}
