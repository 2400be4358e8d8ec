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
	"errors"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Webhook request headers set by GitHub.
const (
	EventIdHeader        = "X-GitHub-Delivery"
	EventNameHeader      = "X-GitHub-Event"
	EventSignatureHeader = "X-Hub-Signature-256"
)

// Event kinds this service reacts to.
const (
	EventKindCheckRun    = "check_run"
	EventKindMergeGroup  = "merge_group"
	EventKindPullRequest = "pull_request"
)

// Event actions of interest.
const (
	PullRequestActionOpened         = "opened"
	PullRequestActionSynchronize    = "synchronize"
	CheckRunActionRequestedAction   = "requested_action"
	MergeGroupActionChecksRequested = "checks_requested"
)

var (
	ErrEventHeaderMissing = errors.New("event header missing")
	ErrInvalidPayload     = errors.New("invalid payload")
	ErrUnsupportedEvent   = errors.New("unsupported event")
)

// WebhookEvent is an inbound GitHub webhook delivery, reduced to the fields
// the check pipeline needs. Exactly one of the event pointers is set,
// according to Kind.
type WebhookEvent struct {
	Kind        string
	EventId     string
	PullRequest *PullRequestEvent
	CheckRun    *CheckRunEvent
	MergeGroup  *MergeGroupEvent
}

// Action returns the action of the underlying event, whatever its kind.
func (e *WebhookEvent) Action() string {
	switch {
	case e.PullRequest != nil:
		return e.PullRequest.Action
	case e.CheckRun != nil:
		return e.CheckRun.Action
	case e.MergeGroup != nil:
		return e.MergeGroup.Action
	}
	return ""
}

type PullRequestEvent struct {
	Action            string
	InstallationId    int64
	OrganizationLogin string
	RepoOwner         string
	RepoName          string
	BaseSha           string
	HeadSha           string
	HeadRef           string
}

func (e *PullRequestEvent) Ctx() *Ctx {
	return &Ctx{InstallationId: e.InstallationId, Owner: e.RepoOwner, Repo: e.RepoName}
}

type CheckRunEvent struct {
	Action                    string
	RequestedActionIdentifier string
	InstallationId            int64
	RepoOwner                 string
	RepoName                  string
	HeadSha                   string
}

func (e *CheckRunEvent) Ctx() *Ctx {
	return &Ctx{InstallationId: e.InstallationId, Owner: e.RepoOwner, Repo: e.RepoName}
}

type MergeGroupEvent struct {
	Action         string
	InstallationId int64
	RepoOwner      string
	RepoName       string
	HeadSha        string
}

func (e *MergeGroupEvent) Ctx() *Ctx {
	return &Ctx{InstallationId: e.InstallationId, Owner: e.RepoOwner, Repo: e.RepoName}
}

type WebhookEventParser interface {
	// ParseWebhookEvent builds a WebhookEvent from the event name header and
	// the raw delivery payload. ErrUnsupportedEvent is returned for event
	// kinds this service does not react to.
	ParseWebhookEvent(eventName string, eventId string, payloadJson string) (*WebhookEvent, error)
}

type WebhookEventParserImpl struct {
	logger *zap.SugaredLogger
}

func NewWebhookEventParserImpl(logger *zap.SugaredLogger) *WebhookEventParserImpl {
	return &WebhookEventParserImpl{logger: logger}
}

func (impl WebhookEventParserImpl) ParseWebhookEvent(eventName string, eventId string, payloadJson string) (*WebhookEvent, error) {
	if len(eventName) == 0 {
		return nil, ErrEventHeaderMissing
	}
	if !gjson.Valid(payloadJson) {
		return nil, ErrInvalidPayload
	}

	event := &WebhookEvent{Kind: eventName, EventId: eventId}
	switch eventName {
	case EventKindPullRequest:
		event.PullRequest = &PullRequestEvent{
			Action:            gjson.Get(payloadJson, "action").String(),
			InstallationId:    gjson.Get(payloadJson, "installation.id").Int(),
			OrganizationLogin: gjson.Get(payloadJson, "organization.login").String(),
			RepoOwner:         gjson.Get(payloadJson, "repository.owner.login").String(),
			RepoName:          gjson.Get(payloadJson, "repository.name").String(),
			BaseSha:           gjson.Get(payloadJson, "pull_request.base.sha").String(),
			HeadSha:           gjson.Get(payloadJson, "pull_request.head.sha").String(),
			HeadRef:           gjson.Get(payloadJson, "pull_request.head.ref").String(),
		}
	case EventKindCheckRun:
		event.CheckRun = &CheckRunEvent{
			Action:                    gjson.Get(payloadJson, "action").String(),
			RequestedActionIdentifier: gjson.Get(payloadJson, "requested_action.identifier").String(),
			InstallationId:            gjson.Get(payloadJson, "installation.id").Int(),
			RepoOwner:                 gjson.Get(payloadJson, "repository.owner.login").String(),
			RepoName:                  gjson.Get(payloadJson, "repository.name").String(),
			HeadSha:                   gjson.Get(payloadJson, "check_run.head_sha").String(),
		}
	case EventKindMergeGroup:
		event.MergeGroup = &MergeGroupEvent{
			Action:         gjson.Get(payloadJson, "action").String(),
			InstallationId: gjson.Get(payloadJson, "installation.id").Int(),
			RepoOwner:      gjson.Get(payloadJson, "repository.owner.login").String(),
			RepoName:       gjson.Get(payloadJson, "repository.name").String(),
			HeadSha:        gjson.Get(payloadJson, "merge_group.head_commit.id").String(),
		}
	default:
		impl.logger.Debugw("ignoring unsupported webhook event", "event", eventName, "eventId", eventId)
		return nil, ErrUnsupportedEvent
	}
	return event, nil
}
