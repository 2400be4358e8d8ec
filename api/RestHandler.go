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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/devtron-labs/dco-sensor/internals"
	"github.com/devtron-labs/dco-sensor/internals/middleware"
	"github.com/devtron-labs/dco-sensor/pkg/dco"
	"github.com/devtron-labs/dco-sensor/pkg/github"
	"github.com/gammazero/workerpool"
	gogithub "github.com/google/go-github/v61/github"
	"go.uber.org/zap"
)

type WebhookRestHandler interface {
	OnWebhookEvent(w http.ResponseWriter, r *http.Request)
	Stop()
}

type WebhookRestHandlerImpl struct {
	logger        *zap.SugaredLogger
	webhookSecret []byte
	eventParser   github.WebhookEventParser
	eventService  dco.EventService
	workerPool    *workerpool.WorkerPool
}

func NewWebhookRestHandlerImpl(logger *zap.SugaredLogger, configuration *internals.Configuration,
	eventParser github.WebhookEventParser, eventService dco.EventService) *WebhookRestHandlerImpl {
	return &WebhookRestHandlerImpl{
		logger:        logger,
		webhookSecret: []byte(configuration.GithubWebhookSecret),
		eventParser:   eventParser,
		eventService:  eventService,
		workerPool:    workerpool.New(configuration.WebhookWorkerCount),
	}
}

type Response struct {
	Code   int         `json:"code,omitempty"`
	Status string      `json:"status,omitempty"`
	Result interface{} `json:"result,omitempty"`
	Errors []*ApiError `json:"errors,omitempty"`
}
type ApiError struct {
	HttpStatusCode    int         `json:"-"`
	Code              string      `json:"code,omitempty"`
	InternalMessage   string      `json:"internalMessage,omitempty"`
	UserMessage       interface{} `json:"userMessage,omitempty"`
	UserDetailMessage string      `json:"userDetailMessage,omitempty"`
}

func (impl *WebhookRestHandlerImpl) writeJsonResp(w http.ResponseWriter, err error, respBody interface{}, status int) {
	response := Response{}
	response.Code = status
	response.Status = http.StatusText(status)
	if err == nil {
		response.Result = respBody
	} else {
		apiErr := &ApiError{}
		apiErr.Code = "000" // 000=unknown
		apiErr.InternalMessage = err.Error()
		apiErr.UserMessage = respBody
		response.Errors = []*ApiError{apiErr}
	}
	b, err := json.Marshal(response)
	if err != nil {
		impl.logger.Error("error in marshaling err object", err)
		status = 500
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}

// OnWebhookEvent receives a GitHub webhook delivery. The signature is
// verified synchronously, the event itself is processed on the worker pool so
// GitHub gets its acknowledgement before any API round trips happen.
func (impl *WebhookRestHandlerImpl) OnWebhookEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		impl.logger.Errorw("error in reading webhook request body", "err", err)
		impl.writeJsonResp(w, err, nil, http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(github.EventSignatureHeader)
	if err := gogithub.ValidateSignature(signature, body, impl.webhookSecret); err != nil {
		impl.logger.Errorw("webhook signature verification failed", "err", err)
		impl.writeJsonResp(w, err, nil, http.StatusBadRequest)
		return
	}

	eventName := r.Header.Get(github.EventNameHeader)
	eventId := r.Header.Get(github.EventIdHeader)
	event, err := impl.eventParser.ParseWebhookEvent(eventName, eventId, string(body))
	if err != nil {
		if errors.Is(err, github.ErrUnsupportedEvent) {
			impl.writeJsonResp(w, nil, "event ignored", http.StatusOK)
			return
		}
		impl.logger.Errorw("error in parsing webhook event", "event", eventName, "eventId", eventId, "err", err)
		impl.writeJsonResp(w, err, nil, http.StatusBadRequest)
		return
	}
	middleware.WebhookEventCounter.WithLabelValues(event.Kind, event.Action()).Inc()

	impl.workerPool.Submit(func() {
		if err := impl.eventService.ProcessWebhookEvent(context.Background(), event); err != nil {
			impl.logger.Errorw("error in processing webhook event", "event", event.Kind,
				"eventId", event.EventId, "err", err)
		}
	})
	impl.writeJsonResp(w, nil, "event accepted", http.StatusOK)
}

// Stop drains the worker pool, letting in-flight events finish.
func (impl *WebhookRestHandlerImpl) Stop() {
	impl.workerPool.StopWait()
}
