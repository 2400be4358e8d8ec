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
	"testing"

	"github.com/devtron-labs/dco-sensor/bean"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

var (
	user1 = &bean.User{Name: "user1", Email: "user1@email.test", Login: "user1"}
	user2 = &bean.User{Name: "user2", Email: "user2@email.test", Login: "user2"}
)

func testCheckService() *CheckServiceImpl {
	return NewCheckServiceImpl(zap.NewNop().Sugar())
}

func defaultConfig() *bean.EffectiveDcoConfig {
	var config *bean.DcoConfig
	return config.Effective()
}

func remediationConfig(individual, thirdParty bool) *bean.EffectiveDcoConfig {
	return (&bean.DcoConfig{
		AllowRemediationCommits: &bean.AllowRemediationCommits{
			Individual: &individual,
			ThirdParty: &thirdParty,
		},
	}).Effective()
}

func membersNotRequiredConfig() *bean.EffectiveDcoConfig {
	required := false
	return (&bean.DcoConfig{Require: &bean.Require{Members: &required}}).Effective()
}

func newCommit(sha string, message string, author *bean.User, committer *bean.User) *bean.Commit {
	return &bean.Commit{Sha: sha, Message: message, Author: author, Committer: committer}
}

func TestCheckSignOffScenarios(t *testing.T) {
	tests := []struct {
		name              string
		message           string
		author            *bean.User
		committer         *bean.User
		wantErrors        []CommitError
		wantSuccessReason *CommitSuccessReason
	}{
		{
			name:              "sign-off matching the author",
			message:           "Test commit message\n\nSigned-off-by: user1 <user1@email.test>",
			author:            user1,
			committer:         user1,
			wantSuccessReason: successReason(SuccessReasonValidSignOff),
		},
		{
			name:              "sign-off matching the committer",
			message:           "Test commit message\n\nSigned-off-by: user2 <user2@email.test>",
			author:            user1,
			committer:         user2,
			wantSuccessReason: successReason(SuccessReasonValidSignOff),
		},
		{
			name:              "sign-off matching case-insensitively",
			message:           "Test commit message\n\nSigned-off-by: USER1 <USER1@EMAIL.TEST>",
			author:            user1,
			committer:         user1,
			wantSuccessReason: successReason(SuccessReasonValidSignOff),
		},
		{
			name:              "lowercase keyword and trailing whitespace",
			message:           "Test commit message\n\nsigned-off-by: user1 <user1@email.test>  ",
			author:            user1,
			committer:         user1,
			wantSuccessReason: successReason(SuccessReasonValidSignOff),
		},
		{
			name:              "extra whitespace around name and email",
			message:           "Test commit message\n\nSigned-off-by:   user1   < user1@email.test >",
			author:            user1,
			committer:         user1,
			wantSuccessReason: successReason(SuccessReasonValidSignOff),
		},
		{
			name:              "multiple sign-offs, one matching",
			message:           "Test commit message\n\nSigned-off-by: user3 <user3@email.test>\nSigned-off-by: user1 <user1@email.test>",
			author:            user1,
			committer:         user1,
			wantSuccessReason: successReason(SuccessReasonValidSignOff),
		},
		{
			name:       "no sign-off at all",
			message:    "Test commit message",
			author:     user1,
			committer:  user1,
			wantErrors: []CommitError{CommitErrorSignOffNotFound},
		},
		{
			name:       "sign-off without a name",
			message:    "Test commit message\n\nSigned-off-by: <user1@email.test>",
			author:     user1,
			committer:  user1,
			wantErrors: []CommitError{CommitErrorSignOffNotFound},
		},
		{
			name:       "sign-off without an email",
			message:    "Test commit message\n\nSigned-off-by: user1 <>",
			author:     user1,
			committer:  user1,
			wantErrors: []CommitError{CommitErrorSignOffNotFound},
		},
		{
			name:       "sign-off without angle brackets",
			message:    "Test commit message\n\nSigned-off-by: user1 user1@email.test",
			author:     user1,
			committer:  user1,
			wantErrors: []CommitError{CommitErrorSignOffNotFound},
		},
		{
			name:       "sign-off not matching author or committer",
			message:    "Test commit message\n\nSigned-off-by: user3 <user3@email.test>",
			author:     user1,
			committer:  user1,
			wantErrors: []CommitError{CommitErrorSignOffMismatch},
		},
		{
			name:       "only the email matches",
			message:    "Test commit message\n\nSigned-off-by: user3 <user1@email.test>",
			author:     user1,
			committer:  user1,
			wantErrors: []CommitError{CommitErrorSignOffMismatch},
		},
		{
			name:       "only the name matches",
			message:    "Test commit message\n\nSigned-off-by: user1 <user3@email.test>",
			author:     user1,
			committer:  user1,
			wantErrors: []CommitError{CommitErrorSignOffMismatch},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := testCheckService().Check(&CheckInput{
				Commits: []*bean.Commit{newCommit("sha1", tt.message, tt.author, tt.committer)},
				Config:  defaultConfig(),
			})
			assert.Len(t, output.Commits, 1)
			assert.Equal(t, tt.wantErrors, output.Commits[0].Errors)
			assert.Equal(t, tt.wantSuccessReason, output.Commits[0].SuccessReason)
		})
	}
}

func TestCheckEmailValidation(t *testing.T) {
	invalidUser := &bean.User{Name: "user1", Email: "invalid email"}

	t.Run("invalid author email reported, match not attempted", func(t *testing.T) {
		commit := newCommit("sha1",
			"Test commit message\n\nSigned-off-by: user1 <user1@email.test>", invalidUser, user1)
		output := testCheckService().Check(&CheckInput{Commits: []*bean.Commit{commit}, Config: defaultConfig()})
		assert.Equal(t, []CommitError{CommitErrorInvalidAuthorEmail}, output.Commits[0].Errors)
		assert.Nil(t, output.Commits[0].SuccessReason)
	})

	t.Run("shared invalid email reported once, as the committer's", func(t *testing.T) {
		commit := newCommit("sha1", "Test commit message", invalidUser, invalidUser)
		output := testCheckService().Check(&CheckInput{Commits: []*bean.Commit{commit}, Config: defaultConfig()})
		assert.Equal(t, []CommitError{
			CommitErrorInvalidCommitterEmail,
			CommitErrorSignOffNotFound,
		}, output.Commits[0].Errors)
	})

	t.Run("different invalid emails reported for both, committer first", func(t *testing.T) {
		otherInvalidUser := &bean.User{Name: "user2", Email: "also not an email"}
		commit := newCommit("sha1", "Test commit message", otherInvalidUser, invalidUser)
		output := testCheckService().Check(&CheckInput{Commits: []*bean.Commit{commit}, Config: defaultConfig()})
		assert.Equal(t, []CommitError{
			CommitErrorInvalidCommitterEmail,
			CommitErrorInvalidAuthorEmail,
			CommitErrorSignOffNotFound,
		}, output.Commits[0].Errors)
	})
}

func TestCheckExemptCommits(t *testing.T) {
	t.Run("merge commit", func(t *testing.T) {
		commit := newCommit("sha1", "Merge branch 'main'", user1, user1)
		commit.IsMerge = true
		output := testCheckService().Check(&CheckInput{Commits: []*bean.Commit{commit}, Config: defaultConfig()})
		assert.Empty(t, output.Commits[0].Errors)
		assert.Equal(t, successReason(SuccessReasonIsMerge), output.Commits[0].SuccessReason)
	})

	t.Run("commit from bot", func(t *testing.T) {
		bot := &bean.User{Name: "some bot", Email: "bot@email.test", IsBot: true}
		commit := newCommit("sha1", "Automated update", bot, user1)
		output := testCheckService().Check(&CheckInput{Commits: []*bean.Commit{commit}, Config: defaultConfig()})
		assert.Equal(t, successReason(SuccessReasonFromBot), output.Commits[0].SuccessReason)
	})

	verified := true
	t.Run("verified commit from member when members are exempt", func(t *testing.T) {
		commit := newCommit("sha1", "Test commit message", user1, user1)
		commit.Verified = &verified
		output := testCheckService().Check(&CheckInput{
			Commits: []*bean.Commit{commit},
			Config:  membersNotRequiredConfig(),
			Members: []string{"user1"},
		})
		assert.Equal(t, successReason(SuccessReasonFromMember), output.Commits[0].SuccessReason)
	})

	t.Run("committer membership also grants the exemption", func(t *testing.T) {
		commit := newCommit("sha1", "Test commit message", user2, user1)
		commit.Verified = &verified
		output := testCheckService().Check(&CheckInput{
			Commits: []*bean.Commit{commit},
			Config:  membersNotRequiredConfig(),
			Members: []string{"user1"},
		})
		assert.Equal(t, successReason(SuccessReasonFromMember), output.Commits[0].SuccessReason)
	})

	t.Run("unverified commit from member is not exempt", func(t *testing.T) {
		commit := newCommit("sha1", "Test commit message", user1, user1)
		output := testCheckService().Check(&CheckInput{
			Commits: []*bean.Commit{commit},
			Config:  membersNotRequiredConfig(),
			Members: []string{"user1"},
		})
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[0].Errors)
		assert.Nil(t, output.Commits[0].SuccessReason)
	})

	t.Run("members still need a sign-off under the default config", func(t *testing.T) {
		commit := newCommit("sha1", "Test commit message", user1, user1)
		commit.Verified = &verified
		output := testCheckService().Check(&CheckInput{
			Commits: []*bean.Commit{commit},
			Config:  defaultConfig(),
			Members: []string{"user1"},
		})
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[0].Errors)
	})
}

func TestCheckIndividualRemediation(t *testing.T) {
	remediation := "Remediation\n\nI, user1 <user1@email.test>, hereby add my Signed-off-by to this commit: sha1\n\nSigned-off-by: user1 <user1@email.test>"

	t.Run("remediation clears the target commit errors", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", remediation, user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(true, false)})
		assert.Empty(t, output.Commits[0].Errors)
		assert.Equal(t, successReason(SuccessReasonValidSignOffInRemediationCommit), output.Commits[0].SuccessReason)
		assert.Equal(t, successReason(SuccessReasonValidSignOff), output.Commits[1].SuccessReason)
		assert.Equal(t, 0, output.NumCommitsWithErrors)
	})

	t.Run("remediations are ignored when disabled", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", remediation, user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: defaultConfig()})
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[0].Errors)
	})

	t.Run("declarant must match the target commit identity", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user2, user2),
			newCommit("sha2", remediation, user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(true, false)})
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[0].Errors)
	})

	t.Run("declarant must match the carrying commit identity", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", remediation, user2, user2),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(true, false)})
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[0].Errors)
	})

	t.Run("remediation commit without its own sign-off still remediates", func(t *testing.T) {
		bare := "Remediation\n\nI, user1 <user1@email.test>, hereby add my Signed-off-by to this commit: sha1"
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", bare, user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(true, false)})
		assert.Equal(t, successReason(SuccessReasonValidSignOffInRemediationCommit), output.Commits[0].SuccessReason)
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[1].Errors)
		assert.Equal(t, 1, output.NumCommitsWithErrors)
	})

	t.Run("remediation never replaces a direct sign-off success", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message\n\nSigned-off-by: user1 <user1@email.test>", user1, user1),
			newCommit("sha2", remediation, user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(true, false)})
		assert.Equal(t, successReason(SuccessReasonValidSignOff), output.Commits[0].SuccessReason)
	})
}

func TestCheckThirdPartyRemediation(t *testing.T) {
	remediation := "Remediation\n\nOn behalf of user1 <user1@email.test>, I, user2 <user2@email.test>, hereby add my Signed-off-by to this commit: sha1\n\nSigned-off-by: user2 <user2@email.test>"

	t.Run("third party remediation clears the target commit errors", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", remediation, user2, user2),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(true, true)})
		assert.Equal(t, successReason(SuccessReasonValidSignOffInRemediationCommit), output.Commits[0].SuccessReason)
	})

	t.Run("third party remediations need individual ones enabled too", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", remediation, user2, user2),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(false, true)})
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[0].Errors)
	})

	t.Run("representative must match the carrying commit identity", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", remediation, user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: remediationConfig(true, true)})
		assert.Equal(t, []CommitError{CommitErrorSignOffNotFound}, output.Commits[0].Errors)
	})
}

func TestCheckAggregates(t *testing.T) {
	signedOff := "Test commit message\n\nSigned-off-by: user1 <user1@email.test>"

	t.Run("no commits", func(t *testing.T) {
		output := testCheckService().Check(&CheckInput{Config: defaultConfig()})
		assert.Empty(t, output.Commits)
		assert.Equal(t, 0, output.NumCommitsWithErrors)
		assert.False(t, output.OnlyLastCommitContainsErrors)
	})

	t.Run("only the last commit has errors", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", signedOff, user1, user1),
			newCommit("sha2", signedOff, user1, user1),
			newCommit("sha3", "Test commit message", user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: defaultConfig()})
		assert.Equal(t, 1, output.NumCommitsWithErrors)
		assert.True(t, output.OnlyLastCommitContainsErrors)
	})

	t.Run("single erroring commit that is not the last", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", signedOff, user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: defaultConfig()})
		assert.Equal(t, 1, output.NumCommitsWithErrors)
		assert.False(t, output.OnlyLastCommitContainsErrors)
	})

	t.Run("multiple erroring commits", func(t *testing.T) {
		commits := []*bean.Commit{
			newCommit("sha1", "Test commit message", user1, user1),
			newCommit("sha2", "Test commit message", user1, user1),
		}
		output := testCheckService().Check(&CheckInput{Commits: commits, Config: defaultConfig()})
		assert.Equal(t, 2, output.NumCommitsWithErrors)
		assert.False(t, output.OnlyLastCommitContainsErrors)
	})

	t.Run("head ref is carried through", func(t *testing.T) {
		output := testCheckService().Check(&CheckInput{Config: defaultConfig(), HeadRef: "feature/thing"})
		assert.Equal(t, "feature/thing", output.HeadRef)
	})
}

func TestCheckIsDeterministic(t *testing.T) {
	commits := []*bean.Commit{
		newCommit("sha1", "Test commit message", user1, user1),
		newCommit("sha2", "Remediation\n\nI, user1 <user1@email.test>, hereby add my Signed-off-by to this commit: sha1", user1, user1),
		newCommit("sha3", "Test commit message\n\nSigned-off-by: user2 <user2@email.test>", user2, user2),
	}
	input := &CheckInput{Commits: commits, Config: remediationConfig(true, true), HeadRef: "main"}
	first := testCheckService().Check(input)
	second := testCheckService().Check(input)
	assert.Equal(t, first, second)
}
