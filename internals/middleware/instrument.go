/*
 * Copyright (c) 2020-2024. Devtron Inc.
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

package middleware

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"net/http"
	"strconv"
	"time"
)

var constLabels = map[string]string{"app": "dco-sensor"}

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "http_duration_seconds",
		Help:        "Duration of HTTP requests.",
		ConstLabels: constLabels,
	}, []string{"path", "method", "status"})
)

var responseCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:        "http_response_total",
		Help:        "How many HTTP requests processed, partitioned by status code, method and HTTP path.",
		ConstLabels: constLabels,
	},
	[]string{"path", "method", "status"})

var requestCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:        "http_requests_total",
		Help:        "How many HTTP requests processed, partitioned by method and HTTP path.",
		ConstLabels: constLabels,
	},
	[]string{"path", "method"})

var currentRequestGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name:        "http_requests_current",
	Help:        "no of request being served currently",
	ConstLabels: constLabels,
}, []string{"path", "method"})

// PrometheusMiddleware implements mux.MiddlewareFunc.
func PrometheusMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		route := mux.CurrentRoute(r)
		path, _ := route.GetPathTemplate()
		method := r.Method
		requestCounter.WithLabelValues(path, method).Inc()
		g := currentRequestGauge.WithLabelValues(path, method)
		g.Inc()
		defer g.Dec()
		d := newDelegator(w)
		next.ServeHTTP(d, r)
		httpDuration.WithLabelValues(path, method, strconv.Itoa(d.Status())).Observe(time.Since(start).Seconds())
		responseCounter.WithLabelValues(path, method, strconv.Itoa(d.Status())).Inc()
	})
}

var WebhookEventCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:        "webhook_events_total",
		Help:        "no of webhook events received, partitioned by event kind and action",
		ConstLabels: constLabels,
	},
	[]string{"event", "action"})

var CheckRunReportedCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:        "check_runs_reported_total",
		Help:        "no of check runs reported to the platform, partitioned by conclusion",
		ConstLabels: constLabels,
	},
	[]string{"conclusion"})

var DcoCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:        "dco_check_duration_seconds",
	Help:        "Duration of a full dco check, from commit fetch to reported result",
	ConstLabels: constLabels,
}, []string{"status"})

var MembershipCacheRequestCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:        "membership_cache_requests_total",
		Help:        "no of organization membership lookups, partitioned by cache outcome",
		ConstLabels: constLabels,
	},
	[]string{"outcome"})

var PanicCounter = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:        "panic",
		Help:        "panic in the app",
		ConstLabels: constLabels,
	},
	[]string{})
