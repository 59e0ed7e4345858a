// Reelfeed - Short-Video Social Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelfeed

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/reelfeed/internal/metrics"
)

func TestPrometheusMetricsUsesRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler { return PrometheusMetrics(next.ServeHTTP) })
	r.Post("/api/posts/{postId}/like", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodPost, "/api/posts/{postId}/like", "201")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a1", "b2", "c3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/posts/"+id+"/like", nil))
		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("counter delta = %v, want 3 under one route label", got)
	}
}

func TestPrometheusMetricsStatusCodes(t *testing.T) {
	tests := []struct {
		name  string
		write func(w http.ResponseWriter)
		want  string
	}{
		{"implicit 200", func(w http.ResponseWriter) { _, _ = w.Write([]byte("ok")) }, "200"},
		{"explicit 500", func(w http.ResponseWriter) { w.WriteHeader(http.StatusInternalServerError) }, "500"},
		{"first status wins", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusTeapot)
			w.WriteHeader(http.StatusOK)
		}, "418"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", tt.want)
			before := testutil.ToFloat64(counter)

			handler := PrometheusMetrics(func(w http.ResponseWriter, _ *http.Request) { tt.write(w) })
			handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/raw", nil))

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("status %s counted %v times, want 1", tt.want, got)
			}
		})
	}
}

func TestPrometheusMetricsActiveGaugeReturnsToZero(t *testing.T) {
	before := testutil.ToFloat64(metrics.APIActiveRequests)
	var during float64
	handler := PrometheusMetrics(func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(metrics.APIActiveRequests)
	})
	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if during != before+1 {
		t.Errorf("gauge during request = %v, want %v", during, before+1)
	}
	if after := testutil.ToFloat64(metrics.APIActiveRequests); after != before {
		t.Errorf("gauge after request = %v, want %v", after, before)
	}
}
