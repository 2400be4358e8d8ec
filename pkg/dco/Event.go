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
	"context"
	"time"

	"github.com/devtron-labs/dco-sensor/bean"
	"github.com/devtron-labs/dco-sensor/internals/middleware"
	"github.com/devtron-labs/dco-sensor/pkg/github"
	"go.uber.org/zap"
)

const (
	CheckName        = "DCO"
	CheckPassedTitle = "Check passed!"
	CheckFailedTitle = "Check failed"

	OverrideActionIdentifier  = "override"
	OverrideActionLabel       = "Set DCO to pass"
	OverrideActionDescription = "Manually set DCO check result to passed"
	OverrideActionSummary     = "Check result was manually set to passed"

	MergeGroupChecksRequestedSummary = "Check result set to passed for the merge group"
)

type EventService interface {
	// ProcessWebhookEvent maps an inbound webhook event to zero or one
	// reported check run. Events and actions outside the supported set are a
	// no-op, not an error.
	ProcessWebhookEvent(ctx context.Context, event *github.WebhookEvent) error
}

type EventServiceImpl struct {
	logger       *zap.SugaredLogger
	gitClient    github.GitClient
	checkService CheckService
}

func NewEventServiceImpl(logger *zap.SugaredLogger, gitClient github.GitClient,
	checkService CheckService) *EventServiceImpl {
	return &EventServiceImpl{
		logger:       logger,
		gitClient:    gitClient,
		checkService: checkService,
	}
}

func (impl *EventServiceImpl) ProcessWebhookEvent(ctx context.Context, event *github.WebhookEvent) error {
	switch event.Kind {
	case github.EventKindPullRequest:
		return impl.processPullRequestEvent(ctx, event.PullRequest)
	case github.EventKindCheckRun:
		return impl.processCheckRunEvent(ctx, event.CheckRun)
	case github.EventKindMergeGroup:
		return impl.processMergeGroupEvent(ctx, event.MergeGroup)
	}
	impl.logger.Debugw("ignoring webhook event", "kind", event.Kind, "eventId", event.EventId)
	return nil
}

// processPullRequestEvent runs the full check on opened and synchronized pull
// requests and reports the verdict as a check run on the head commit.
func (impl *EventServiceImpl) processPullRequestEvent(ctx context.Context, event *github.PullRequestEvent) error {
	if event.Action != github.PullRequestActionOpened && event.Action != github.PullRequestActionSynchronize {
		impl.logger.Debugw("ignoring pull request event", "action", event.Action)
		return nil
	}

	startedAt := time.Now()
	gctx := event.Ctx()

	commits, err := impl.gitClient.CompareCommits(ctx, gctx, event.BaseSha, event.HeadSha)
	if err != nil {
		middleware.DcoCheckDuration.WithLabelValues("error").Observe(time.Since(startedAt).Seconds())
		return err
	}
	dcoConfig, err := impl.gitClient.GetDcoConfig(ctx, gctx)
	if err != nil {
		middleware.DcoCheckDuration.WithLabelValues("error").Observe(time.Since(startedAt).Seconds())
		return err
	}
	config := dcoConfig.Effective()

	var members []string
	if !config.MembersSignOffRequired {
		members, err = impl.collectMembers(ctx, gctx, event.OrganizationLogin, commits)
		if err != nil {
			middleware.DcoCheckDuration.WithLabelValues("error").Observe(time.Since(startedAt).Seconds())
			return err
		}
	}

	output := impl.checkService.Check(&CheckInput{
		Commits: commits,
		Config:  config,
		HeadRef: event.HeadRef,
		Members: members,
	})

	checkRun := &github.CheckRun{
		Name:        CheckName,
		HeadSha:     event.HeadSha,
		Status:      github.CheckRunStatusCompleted,
		StartedAt:   startedAt,
		CompletedAt: time.Now(),
		Summary:     RenderSummary(output),
	}
	status := "passed"
	if output.NumCommitsWithErrors > 0 {
		status = "failed"
		checkRun.Conclusion = github.CheckRunConclusionActionRequired
		checkRun.Title = CheckFailedTitle
		checkRun.Actions = []*github.CheckRunAction{{
			Label:       OverrideActionLabel,
			Description: OverrideActionDescription,
			Identifier:  OverrideActionIdentifier,
		}}
	} else {
		checkRun.Conclusion = github.CheckRunConclusionSuccess
		checkRun.Title = CheckPassedTitle
	}

	if err := impl.gitClient.CreateCheckRun(ctx, gctx, checkRun); err != nil {
		middleware.DcoCheckDuration.WithLabelValues("error").Observe(time.Since(startedAt).Seconds())
		return err
	}
	middleware.CheckRunReportedCounter.WithLabelValues(checkRun.Conclusion).Inc()
	middleware.DcoCheckDuration.WithLabelValues(status).Observe(time.Since(startedAt).Seconds())
	impl.logger.Infow("check run reported", "owner", gctx.Owner, "repo", gctx.Repo,
		"headSha", event.HeadSha, "conclusion", checkRun.Conclusion,
		"commitsWithErrors", output.NumCommitsWithErrors)
	return nil
}

// collectMembers resolves the set of logins whose commits are exempt when the
// repository does not require sign-offs from members. For repositories owned
// by an organization these are the organization members among the commit
// authors and committers, otherwise only the repository owner. A failed
// lookup aborts the whole delivery, a partial member list must never be
// checked against.
func (impl *EventServiceImpl) collectMembers(ctx context.Context, gctx *github.Ctx,
	organizationLogin string, commits []*bean.Commit) ([]string, error) {

	if len(organizationLogin) == 0 {
		return []string{gctx.Owner}, nil
	}

	var members []string
	seen := make(map[string]bool)
	for _, commit := range commits {
		for _, user := range []*bean.User{commit.Author, commit.Committer} {
			if user == nil || len(user.Login) == 0 || seen[user.Login] {
				continue
			}
			seen[user.Login] = true
			isMember, err := impl.gitClient.IsOrganizationMember(ctx, gctx, organizationLogin, user.Login)
			if err != nil {
				impl.logger.Errorw("error in checking organization membership",
					"org", organizationLogin, "login", user.Login, "err", err)
				return nil, err
			}
			if isMember {
				members = append(members, user.Login)
			}
		}
	}
	return members, nil
}

// processCheckRunEvent handles the manual override button. Any other check
// run action is ignored.
func (impl *EventServiceImpl) processCheckRunEvent(ctx context.Context, event *github.CheckRunEvent) error {
	if event.Action != github.CheckRunActionRequestedAction ||
		event.RequestedActionIdentifier != OverrideActionIdentifier {
		impl.logger.Debugw("ignoring check run event", "action", event.Action,
			"identifier", event.RequestedActionIdentifier)
		return nil
	}
	impl.logger.Infow("check result manually overridden", "owner", event.RepoOwner,
		"repo", event.RepoName, "headSha", event.HeadSha)
	return impl.reportSuccess(ctx, event.Ctx(), event.HeadSha, OverrideActionSummary)
}

// processMergeGroupEvent sets the check to passed for merge queue groups, the
// pull request already passed the check before entering the queue.
func (impl *EventServiceImpl) processMergeGroupEvent(ctx context.Context, event *github.MergeGroupEvent) error {
	if event.Action != github.MergeGroupActionChecksRequested {
		impl.logger.Debugw("ignoring merge group event", "action", event.Action)
		return nil
	}
	return impl.reportSuccess(ctx, event.Ctx(), event.HeadSha, MergeGroupChecksRequestedSummary)
}

func (impl *EventServiceImpl) reportSuccess(ctx context.Context, gctx *github.Ctx, headSha string, summary string) error {
	now := time.Now()
	checkRun := &github.CheckRun{
		Name:        CheckName,
		HeadSha:     headSha,
		Status:      github.CheckRunStatusCompleted,
		Conclusion:  github.CheckRunConclusionSuccess,
		StartedAt:   now,
		CompletedAt: now,
		Title:       CheckPassedTitle,
		Summary:     summary,
	}
	if err := impl.gitClient.CreateCheckRun(ctx, gctx, checkRun); err != nil {
		return err
	}
	middleware.CheckRunReportedCounter.WithLabelValues(checkRun.Conclusion).Inc()
	return nil
}
