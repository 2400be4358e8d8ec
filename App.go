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
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/devtron-labs/dco-sensor/api"
	"github.com/devtron-labs/dco-sensor/internals"
	"github.com/devtron-labs/dco-sensor/internals/middleware"
	"github.com/devtron-labs/dco-sensor/pkg/github"
	"github.com/gorilla/handlers"
	"go.uber.org/zap"
)

type App struct {
	MuxRouter       *api.MuxRouter
	Logger          *zap.SugaredLogger
	webhookHandler  api.WebhookRestHandler
	membershipCache *github.MembershipCache
	configuration   *internals.Configuration
	server          *http.Server
}

func NewApp(MuxRouter *api.MuxRouter, Logger *zap.SugaredLogger, webhookHandler api.WebhookRestHandler,
	membershipCache *github.MembershipCache, configuration *internals.Configuration) *App {
	return &App{
		MuxRouter:       MuxRouter,
		Logger:          Logger,
		webhookHandler:  webhookHandler,
		membershipCache: membershipCache,
		configuration:   configuration,
	}
}

type PanicLogger struct {
	Logger *zap.SugaredLogger
}

func (impl *PanicLogger) Println(param ...interface{}) {
	impl.Logger.Errorw("PANIC", "err", param)
	middleware.PanicCounter.WithLabelValues().Inc()
}

func (app *App) Start() {
	port := app.configuration.RestPort
	app.Logger.Infow("starting server on ", "port", port)
	app.MuxRouter.Init()

	h := handlers.RecoveryHandler(handlers.RecoveryLogger(&PanicLogger{Logger: app.Logger}))(app.MuxRouter.Router)

	server := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: h}
	app.MuxRouter.Router.Use(middleware.PrometheusMiddleware)
	app.server = server
	err := server.ListenAndServe()

	if err != nil && err != http.ErrServerClosed {
		app.Logger.Errorw("error in startup", "err", err)
		os.Exit(2)
	}
}

func (app *App) Stop() {
	app.Logger.Infow("dco-sensor shutdown initiating")
	timeoutContext, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	app.Logger.Infow("closing router")
	err := app.server.Shutdown(timeoutContext)
	if err != nil {
		app.Logger.Errorw("error in mux router shutdown", "err", err)
	}
	app.Logger.Infow("draining webhook worker pool")
	app.webhookHandler.Stop()
	app.Logger.Infow("stopping cron")
	app.membershipCache.StopCron()

	app.Logger.Infow("housekeeping done. exiting now")
}
