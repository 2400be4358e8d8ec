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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func boolPtr(v bool) *bool {
	return &v
}

func TestIdentityEquals(t *testing.T) {
	tests := []struct {
		name  string
		user  *User
		n     string
		email string
		want  bool
	}{
		{
			name:  "exact match",
			user:  &User{Name: "user1", Email: "user1@email.test"},
			n:     "user1",
			email: "user1@email.test",
			want:  true,
		},
		{
			name:  "case insensitive on both fields",
			user:  &User{Name: "user1", Email: "user1@email.test"},
			n:     "USER1",
			email: "User1@Email.Test",
			want:  true,
		},
		{
			name:  "name mismatch",
			user:  &User{Name: "user1", Email: "user1@email.test"},
			n:     "user2",
			email: "user1@email.test",
			want:  false,
		},
		{
			name:  "email mismatch",
			user:  &User{Name: "user1", Email: "user1@email.test"},
			n:     "user1",
			email: "user2@email.test",
			want:  false,
		},
		{
			name:  "nil user never matches",
			user:  nil,
			n:     "user1",
			email: "user1@email.test",
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.IdentityEquals(tt.n, tt.email))
		})
	}
}

func TestEffectiveDcoConfigDefaults(t *testing.T) {
	var cfg *DcoConfig
	effective := cfg.Effective()
	assert.False(t, effective.IndividualRemediationCommitsAllowed)
	assert.False(t, effective.ThirdPartyRemediationCommitsAllowed)
	assert.True(t, effective.MembersSignOffRequired)

	effective = (&DcoConfig{}).Effective()
	assert.False(t, effective.IndividualRemediationCommitsAllowed)
	assert.False(t, effective.ThirdPartyRemediationCommitsAllowed)
	assert.True(t, effective.MembersSignOffRequired)
}

func TestEffectiveDcoConfigOverrides(t *testing.T) {
	cfg := &DcoConfig{
		AllowRemediationCommits: &AllowRemediationCommits{
			Individual: boolPtr(true),
			ThirdParty: boolPtr(true),
		},
		Require: &Require{Members: boolPtr(false)},
	}
	effective := cfg.Effective()
	assert.True(t, effective.IndividualRemediationCommitsAllowed)
	assert.True(t, effective.ThirdPartyRemediationCommitsAllowed)
	assert.False(t, effective.MembersSignOffRequired)
}

func TestEffectiveDcoConfigPartialSections(t *testing.T) {
	cfg := &DcoConfig{
		AllowRemediationCommits: &AllowRemediationCommits{
			Individual: boolPtr(true),
		},
	}
	effective := cfg.Effective()
	assert.True(t, effective.IndividualRemediationCommitsAllowed)
	assert.False(t, effective.ThirdPartyRemediationCommitsAllowed)
	assert.True(t, effective.MembersSignOffRequired)
}
