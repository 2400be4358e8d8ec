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

package bean

import "strings"

// User holds the git identity attached to a commit, plus the platform
// account details when GitHub was able to resolve them.
type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	IsBot bool   `json:"isBot"`
	Login string `json:"login,omitempty"`
}

// IdentityEquals reports whether the name and email provided refer to this
// user. Both fields are compared case-insensitively and both must match.
func (u *User) IdentityEquals(name, email string) bool {
	if u == nil {
		return false
	}
	return strings.EqualFold(u.Name, name) && strings.EqualFold(u.Email, email)
}

// Commit is a single pull request commit as fetched from the hosting
// platform. It is never mutated after being fetched.
type Commit struct {
	Sha       string `json:"sha"`
	Author    *User  `json:"author,omitempty"`
	Committer *User  `json:"committer,omitempty"`
	Message   string `json:"message"`
	IsMerge   bool   `json:"isMerge"`
	Verified  *bool  `json:"verified,omitempty"`
	HtmlUrl   string `json:"htmlUrl,omitempty"`
}

func (c *Commit) IsVerified() bool {
	return c.Verified != nil && *c.Verified
}

// DcoConfig is the repository level DCO policy, read from .github/dco.yml.
// All fields are optional in the file, defaults are resolved by Effective.
type DcoConfig struct {
	AllowRemediationCommits *AllowRemediationCommits `yaml:"allowRemediationCommits"`
	Require                 *Require                 `yaml:"require"`
}

type AllowRemediationCommits struct {
	Individual *bool `yaml:"individual"`
	ThirdParty *bool `yaml:"thirdParty"`
}

type Require struct {
	Members *bool `yaml:"members"`
}

// EffectiveDcoConfig is the DcoConfig with all defaults applied. The check
// engine only ever sees this resolved form.
type EffectiveDcoConfig struct {
	IndividualRemediationCommitsAllowed bool
	ThirdPartyRemediationCommitsAllowed bool
	MembersSignOffRequired              bool
}

// Effective resolves the configuration defaults: remediation commits are not
// allowed and members are required to sign off unless stated otherwise.
// A nil receiver yields the all-defaults configuration.
func (c *DcoConfig) Effective() *EffectiveDcoConfig {
	effective := &EffectiveDcoConfig{
		IndividualRemediationCommitsAllowed: false,
		ThirdPartyRemediationCommitsAllowed: false,
		MembersSignOffRequired:              true,
	}
	if c == nil {
		return effective
	}
	if arc := c.AllowRemediationCommits; arc != nil {
		if arc.Individual != nil {
			effective.IndividualRemediationCommitsAllowed = *arc.Individual
		}
		if arc.ThirdParty != nil {
			effective.ThirdPartyRemediationCommitsAllowed = *arc.ThirdParty
		}
	}
	if c.Require != nil && c.Require.Members != nil {
		effective.MembersSignOffRequired = *c.Require.Members
	}
	return effective
}
