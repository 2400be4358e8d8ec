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
	"crypto/rsa"
	"fmt"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/devtron-labs/dco-sensor/bean"
	"github.com/devtron-labs/dco-sensor/internals"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-github/v61/github"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Path of the DCO policy file inside the repository.
const dcoConfigFilePath = ".github/dco.yml"

type GitClientImpl struct {
	logger          *zap.SugaredLogger
	appId           int64
	privateKey      *rsa.PrivateKey
	apiHost         string
	membershipCache *MembershipCache
}

func NewGitClientImpl(logger *zap.SugaredLogger, configuration *internals.Configuration,
	membershipCache *MembershipCache) (*GitClientImpl, error) {

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(configuration.GithubAppPrivateKey))
	if err != nil {
		logger.Errorw("error in parsing github app private key", "err", err)
		return nil, err
	}
	return &GitClientImpl{
		logger:          logger,
		appId:           configuration.GithubAppId,
		privateKey:      privateKey,
		apiHost:         configuration.GithubApiHost,
		membershipCache: membershipCache,
	}, nil
}

// generateAppJwt builds the short lived JWT used to authenticate as the
// GitHub App itself. The issued-at is backdated to tolerate clock drift.
func (impl *GitClientImpl) generateAppJwt() (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Add(-60 * time.Second).Unix(),
		"exp": now.Add(9 * time.Minute).Unix(),
		"iss": strconv.FormatInt(impl.appId, 10),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	return token.SignedString(impl.privateKey)
}

func (impl *GitClientImpl) newApiClient(token string) (*github.Client, error) {
	client := github.NewClient(nil).WithAuthToken(token)
	if len(impl.apiHost) > 0 {
		return client.WithEnterpriseURLs(impl.apiHost, impl.apiHost)
	}
	return client, nil
}

// setupClient mints an installation token for the installation provided and
// returns a client authenticated with it.
func (impl *GitClientImpl) setupClient(ctx context.Context, installationId int64) (*github.Client, error) {
	appJwt, err := impl.generateAppJwt()
	if err != nil {
		impl.logger.Errorw("error in generating github app jwt", "err", err)
		return nil, err
	}
	appClient, err := impl.newApiClient(appJwt)
	if err != nil {
		return nil, err
	}
	installationToken, _, err := appClient.Apps.CreateInstallationToken(ctx, installationId, nil)
	if err != nil {
		impl.logger.Errorw("error in creating installation token", "installationId", installationId, "err", err)
		return nil, err
	}
	return impl.newApiClient(installationToken.GetToken())
}

func (impl *GitClientImpl) CompareCommits(ctx context.Context, gctx *Ctx, baseSha string, headSha string) ([]*bean.Commit, error) {
	client, err := impl.setupClient(ctx, gctx.InstallationId)
	if err != nil {
		return nil, err
	}

	var commits []*bean.Commit
	opts := &github.ListOptions{PerPage: 100}
	for {
		comparison, resp, err := client.Repositories.CompareCommits(ctx, gctx.Owner, gctx.Repo, baseSha, headSha, opts)
		if err != nil {
			impl.logger.Errorw("error in comparing commits", "owner", gctx.Owner, "repo", gctx.Repo,
				"base", baseSha, "head", headSha, "err", err)
			return nil, err
		}
		for _, repositoryCommit := range comparison.Commits {
			commits = append(commits, convertRepositoryCommit(repositoryCommit))
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return commits, nil
}

func convertRepositoryCommit(rc *github.RepositoryCommit) *bean.Commit {
	commit := &bean.Commit{
		Sha:     rc.GetSHA(),
		Message: rc.GetCommit().GetMessage(),
		IsMerge: len(rc.Parents) > 1,
		HtmlUrl: rc.GetHTMLURL(),
	}
	if commitAuthor := rc.GetCommit().GetAuthor(); commitAuthor != nil {
		commit.Author = &bean.User{
			Name:  commitAuthor.GetName(),
			Email: commitAuthor.GetEmail(),
			IsBot: rc.GetAuthor().GetType() == "Bot",
			Login: rc.GetAuthor().GetLogin(),
		}
	}
	if commitCommitter := rc.GetCommit().GetCommitter(); commitCommitter != nil {
		commit.Committer = &bean.User{
			Name:  commitCommitter.GetName(),
			Email: commitCommitter.GetEmail(),
			IsBot: rc.GetCommitter().GetType() == "Bot",
			Login: rc.GetCommitter().GetLogin(),
		}
	}
	if verification := rc.GetCommit().GetVerification(); verification != nil {
		commit.Verified = verification.Verified
	}
	return commit
}

func (impl *GitClientImpl) CreateCheckRun(ctx context.Context, gctx *Ctx, checkRun *CheckRun) error {
	client, err := impl.setupClient(ctx, gctx.InstallationId)
	if err != nil {
		return err
	}

	impl.truncateCheckRunFields(checkRun)
	opts := github.CreateCheckRunOptions{
		Name:        checkRun.Name,
		HeadSHA:     checkRun.HeadSha,
		Status:      github.String(checkRun.Status),
		Conclusion:  github.String(checkRun.Conclusion),
		StartedAt:   &github.Timestamp{Time: checkRun.StartedAt},
		CompletedAt: &github.Timestamp{Time: checkRun.CompletedAt},
		Output: &github.CheckRunOutput{
			Title:   github.String(checkRun.Title),
			Summary: github.String(checkRun.Summary),
		},
	}
	for _, action := range checkRun.Actions {
		opts.Actions = append(opts.Actions, &github.CheckRunAction{
			Label:       action.Label,
			Description: action.Description,
			Identifier:  action.Identifier,
		})
	}
	_, _, err = client.Checks.CreateCheckRun(ctx, gctx.Owner, gctx.Repo, opts)
	if err != nil {
		impl.logger.Errorw("error in creating check run", "owner", gctx.Owner, "repo", gctx.Repo,
			"headSha", checkRun.HeadSha, "err", err)
		return err
	}
	return nil
}

// truncateCheckRunFields enforces the checks API field length limits.
// Truncation is silent, it never fails the submission.
func (impl *GitClientImpl) truncateCheckRunFields(checkRun *CheckRun) {
	if utf8.RuneCountInString(checkRun.Summary) > maxOutputSummaryLength {
		checkRun.Summary = truncate(checkRun.Summary, maxOutputSummaryLength)
		impl.logger.Warnw("check run summary truncated", "headSha", checkRun.HeadSha)
	}
	for _, action := range checkRun.Actions {
		if utf8.RuneCountInString(action.Label) > maxActionLabelLength {
			action.Label = truncate(action.Label, maxActionLabelLength)
			impl.logger.Warnw("check run action label truncated", "headSha", checkRun.HeadSha)
		}
		if utf8.RuneCountInString(action.Description) > maxActionDescriptionLength {
			action.Description = truncate(action.Description, maxActionDescriptionLength)
			impl.logger.Warnw("check run action description truncated", "headSha", checkRun.HeadSha)
		}
		if utf8.RuneCountInString(action.Identifier) > maxActionIdentifierLength {
			action.Identifier = truncate(action.Identifier, maxActionIdentifierLength)
			impl.logger.Warnw("check run action identifier truncated", "headSha", checkRun.HeadSha)
		}
	}
}

func (impl *GitClientImpl) GetDcoConfig(ctx context.Context, gctx *Ctx) (*bean.DcoConfig, error) {
	client, err := impl.setupClient(ctx, gctx.InstallationId)
	if err != nil {
		return nil, err
	}

	fileContent, _, resp, err := client.Repositories.GetContents(ctx, gctx.Owner, gctx.Repo, dcoConfigFilePath, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		impl.logger.Errorw("error in fetching dco config file", "owner", gctx.Owner, "repo", gctx.Repo, "err", err)
		return nil, err
	}
	if fileContent == nil {
		return nil, fmt.Errorf("%s is not a file", dcoConfigFilePath)
	}
	content, err := fileContent.GetContent()
	if err != nil {
		impl.logger.Errorw("error in decoding dco config file content", "owner", gctx.Owner, "repo", gctx.Repo, "err", err)
		return nil, err
	}
	dcoConfig := &bean.DcoConfig{}
	if err := yaml.Unmarshal([]byte(content), dcoConfig); err != nil {
		impl.logger.Errorw("error in parsing dco config file", "owner", gctx.Owner, "repo", gctx.Repo, "err", err)
		return nil, err
	}
	return dcoConfig, nil
}

func (impl *GitClientImpl) IsOrganizationMember(ctx context.Context, gctx *Ctx, org string, username string) (bool, error) {
	return impl.membershipCache.Get(org, username, func() (bool, error) {
		client, err := impl.setupClient(ctx, gctx.InstallationId)
		if err != nil {
			return false, err
		}
		isMember, _, err := client.Organizations.IsMember(ctx, org, username)
		if err != nil {
			impl.logger.Errorw("error in checking organization membership", "org", org, "username", username, "err", err)
			return false, err
		}
		return isMember, nil
	})
}
