// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package statusapi

import (
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	log "github.com/sirupsen/logrus"

	"go.shapes.dev/interop/metering"
)

const errorTypeNotFound = "Status.NotFound"

type StatusResponse struct {
	Info
	Counters metering.Snapshot `json:"counters"`
}

type ErrorResponse struct {
	ErrorType    string `json:"errorType"`
	ErrorMessage string `json:"errorMessage"`
}

func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("pong"))
}

func StatusHandler(w http.ResponseWriter, r *http.Request, info Info, counters SnapshotSource) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &StatusResponse{Info: info, Counters: counters.Snapshot()})
}

func NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusNotFound)
	render.JSON(w, r, &ErrorResponse{
		ErrorType:    errorTypeNotFound,
		ErrorMessage: "No such endpoint: " + r.URL.Path,
	})
}

func accessLogDecorator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debugf("status: -> %s %s", r.Method, r.URL)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if status/100 != 2 {
			log.Warnf("status: <- %s %d", r.URL, status)
		} else {
			log.Debugf("status: <- %s %d", r.URL, status)
		}
	})
}
