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
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const pullRequestPayload = `{
	"action": "synchronize",
	"installation": {"id": 42},
	"organization": {"login": "some-org"},
	"repository": {"name": "repo", "owner": {"login": "owner"}},
	"pull_request": {
		"base": {"sha": "base-sha"},
		"head": {"sha": "head-sha", "ref": "feature/thing"}
	}
}`

const checkRunPayload = `{
	"action": "requested_action",
	"installation": {"id": 42},
	"repository": {"name": "repo", "owner": {"login": "owner"}},
	"requested_action": {"identifier": "override"},
	"check_run": {"head_sha": "head-sha"}
}`

const mergeGroupPayload = `{
	"action": "checks_requested",
	"installation": {"id": 42},
	"repository": {"name": "repo", "owner": {"login": "owner"}},
	"merge_group": {"head_commit": {"id": "merge-group-sha"}}
}`

func testParser() *WebhookEventParserImpl {
	return NewWebhookEventParserImpl(zap.NewNop().Sugar())
}

func TestParsePullRequestEvent(t *testing.T) {
	event, err := testParser().ParseWebhookEvent(EventKindPullRequest, "delivery-1", pullRequestPayload)
	assert.NoError(t, err)
	assert.Equal(t, EventKindPullRequest, event.Kind)
	assert.Equal(t, "delivery-1", event.EventId)
	assert.Equal(t, "synchronize", event.Action())

	pr := event.PullRequest
	assert.NotNil(t, pr)
	assert.Equal(t, int64(42), pr.InstallationId)
	assert.Equal(t, "some-org", pr.OrganizationLogin)
	assert.Equal(t, "owner", pr.RepoOwner)
	assert.Equal(t, "repo", pr.RepoName)
	assert.Equal(t, "base-sha", pr.BaseSha)
	assert.Equal(t, "head-sha", pr.HeadSha)
	assert.Equal(t, "feature/thing", pr.HeadRef)

	gctx := pr.Ctx()
	assert.Equal(t, &Ctx{InstallationId: 42, Owner: "owner", Repo: "repo"}, gctx)
}

func TestParseCheckRunEvent(t *testing.T) {
	event, err := testParser().ParseWebhookEvent(EventKindCheckRun, "delivery-2", checkRunPayload)
	assert.NoError(t, err)
	assert.Equal(t, EventKindCheckRun, event.Kind)

	cr := event.CheckRun
	assert.NotNil(t, cr)
	assert.Equal(t, CheckRunActionRequestedAction, cr.Action)
	assert.Equal(t, "override", cr.RequestedActionIdentifier)
	assert.Equal(t, "head-sha", cr.HeadSha)
	assert.Equal(t, int64(42), cr.InstallationId)
}

func TestParseMergeGroupEvent(t *testing.T) {
	event, err := testParser().ParseWebhookEvent(EventKindMergeGroup, "delivery-3", mergeGroupPayload)
	assert.NoError(t, err)
	assert.Equal(t, EventKindMergeGroup, event.Kind)

	mg := event.MergeGroup
	assert.NotNil(t, mg)
	assert.Equal(t, MergeGroupActionChecksRequested, mg.Action)
	assert.Equal(t, "merge-group-sha", mg.HeadSha)
}

func TestParseWebhookEventErrors(t *testing.T) {
	tests := []struct {
		name      string
		eventName string
		payload   string
		wantErr   error
	}{
		{name: "missing event header", eventName: "", payload: pullRequestPayload, wantErr: ErrEventHeaderMissing},
		{name: "invalid payload", eventName: EventKindPullRequest, payload: "{ not json", wantErr: ErrInvalidPayload},
		{name: "unsupported event", eventName: "issues", payload: `{"action": "opened"}`, wantErr: ErrUnsupportedEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event, err := testParser().ParseWebhookEvent(tt.eventName, "delivery-4", tt.payload)
			assert.Nil(t, event)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
