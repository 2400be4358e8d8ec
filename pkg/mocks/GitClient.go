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

package mocks

import (
	"context"

	"github.com/devtron-labs/dco-sensor/bean"
	"github.com/devtron-labs/dco-sensor/pkg/github"
	"github.com/stretchr/testify/mock"
)

// GitClient is a testify mock of the github.GitClient interface.
type GitClient struct {
	mock.Mock
}

func (m *GitClient) CompareCommits(ctx context.Context, gctx *github.Ctx, baseSha string, headSha string) ([]*bean.Commit, error) {
	args := m.Called(ctx, gctx, baseSha, headSha)
	var commits []*bean.Commit
	if args.Get(0) != nil {
		commits = args.Get(0).([]*bean.Commit)
	}
	return commits, args.Error(1)
}

func (m *GitClient) CreateCheckRun(ctx context.Context, gctx *github.Ctx, checkRun *github.CheckRun) error {
	args := m.Called(ctx, gctx, checkRun)
	return args.Error(0)
}

func (m *GitClient) GetDcoConfig(ctx context.Context, gctx *github.Ctx) (*bean.DcoConfig, error) {
	args := m.Called(ctx, gctx)
	var config *bean.DcoConfig
	if args.Get(0) != nil {
		config = args.Get(0).(*bean.DcoConfig)
	}
	return config, args.Error(1)
}

func (m *GitClient) IsOrganizationMember(ctx context.Context, gctx *github.Ctx, org string, username string) (bool, error) {
	args := m.Called(ctx, gctx, org, username)
	return args.Bool(0), args.Error(1)
}
