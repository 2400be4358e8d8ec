//go:build wireinject
// +build wireinject

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

package main

import (
	"github.com/devtron-labs/dco-sensor/api"
	"github.com/devtron-labs/dco-sensor/internals"
	"github.com/devtron-labs/dco-sensor/internals/logger"
	"github.com/devtron-labs/dco-sensor/pkg/dco"
	"github.com/devtron-labs/dco-sensor/pkg/github"
	"github.com/google/wire"
)

func InitializeApp() (*App, error) {

	wire.Build(
		NewApp,
		api.NewMuxRouter,
		logger.NewSugaredLogger,
		internals.ParseConfiguration,
		api.NewWebhookRestHandlerImpl,
		wire.Bind(new(api.WebhookRestHandler), new(*api.WebhookRestHandlerImpl)),
		github.NewWebhookEventParserImpl,
		wire.Bind(new(github.WebhookEventParser), new(*github.WebhookEventParserImpl)),
		github.NewMembershipCache,
		github.NewGitClientImpl,
		wire.Bind(new(github.GitClient), new(*github.GitClientImpl)),
		dco.NewCheckServiceImpl,
		wire.Bind(new(dco.CheckService), new(*dco.CheckServiceImpl)),
		dco.NewEventServiceImpl,
		wire.Bind(new(dco.EventService), new(*dco.EventServiceImpl)),
	)
	return &App{}, nil
}
