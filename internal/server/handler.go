// ============================================================================
// SmartScript - Templating engine and script server
// ============================================================================
//
// Package:     server
// Description: Script, health and stats request handlers
// Author:      frle10
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package server

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	sserror "github.com/frle10/smartscript/foundation/core/error"
	sslog "github.com/frle10/smartscript/foundation/core/log"
	"github.com/frle10/smartscript/foundation/smartscript"
	"github.com/frle10/smartscript/foundation/smartscript/request"
	"github.com/frle10/smartscript/internal/scripts"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/expvarhandler"
)

const requestIDKey = "smartscript.request_id"

// RequestIDHeader carries the ID used as execution ID and in the logs
const RequestIDHeader = "X-Request-ID"

// requestID returns the ID assigned to the request, creating it on first use
func requestID(ctx *fasthttp.RequestCtx) string {
	if id, ok := ctx.UserValue(requestIDKey).(string); ok {
		return id
	}
	id := string(ctx.Request.Header.Peek(RequestIDHeader))
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	ctx.SetUserValue(requestIDKey, id)
	ctx.Response.Header.Set(RequestIDHeader, id)
	return id
}

// handleScript loads the script named by the path and executes it
func (s *Server) handleScript(ctx *fasthttp.RequestCtx) {
	id := requestID(ctx)
	logger := s.logger.WithExecutionID(id)

	if s.shuttingDown.IsSet() {
		ctx.Error("server is shutting down", fasthttp.StatusServiceUnavailable)
		return
	}
	if !ctx.IsGet() && !ctx.IsHead() && !ctx.IsPost() {
		ctx.Response.Header.Set("Allow", "GET, HEAD, POST")
		ctx.Error("method not allowed", fasthttp.StatusMethodNotAllowed)
		return
	}

	script, err := s.loader.Load(string(ctx.Path()))
	if err != nil {
		if errors.Is(err, scripts.ErrNotFound) || errors.Is(err, scripts.ErrInvalidName) {
			ctx.Error("not found", fasthttp.StatusNotFound)
			return
		}
		logger.WarnWithErr("Script could not be loaded", err, sslog.Fields{"path": string(ctx.Path())})
		ctx.Error("script error", fasthttp.StatusInternalServerError)
		return
	}

	before := s.params.Snapshot()
	persistent := s.params.Snapshot()

	rc := request.New(ctx, requestParams(ctx), persistent, request.WithCommitter(fasthttpCommitter(ctx)))

	execCtx := smartscript.WithExecutionID(ctx, id)
	if err := s.engine.Execute(execCtx, script.Document, rc, rc); err == nil {
		err = rc.Flush()
	} else {
		// fasthttp buffers the body, partial output never reached the client
		ctx.Response.ResetBody()
		ctx.Response.Header.SetContentType("text/plain; charset=utf-8")
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString("script execution failed\n")
		logger.WarnWithErr("Script execution failed", err, sslog.Fields{
			"script": script.Name,
			"code":   sserror.GetCode(err).String(),
		})
		return
	}

	if err := s.params.Merge(ctx, before, persistent); err != nil {
		logger.ErrorWithErr("Persistent parameters not saved", err, sslog.Fields{"script": script.Name})
	}
}

// handleHealth answers with the JSON health report
func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	report := s.health.Check(ctx)

	body, err := json.Marshal(report)
	if err != nil {
		ctx.Error(err.Error(), fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	if !report.Healthy() {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
	}
	ctx.SetBody(body)
}

// handleStats exposes the expvar counters. /_stats?r=smartscript filters them.
func (s *Server) handleStats(ctx *fasthttp.RequestCtx) {
	expvarhandler.ExpvarHandler(ctx)
}

// requestParams merges query arguments and, for POST, form arguments.
// For repeated keys the first value wins.
func requestParams(ctx *fasthttp.RequestCtx) map[string]string {
	params := make(map[string]string)
	add := func(key, value []byte) {
		if _, exists := params[string(key)]; !exists {
			params[string(key)] = string(value)
		}
	}
	ctx.QueryArgs().VisitAll(add)
	if ctx.IsPost() {
		ctx.PostArgs().VisitAll(add)
	}
	return params
}

// fasthttpCommitter copies the RequestContext header onto the response
func fasthttpCommitter(ctx *fasthttp.RequestCtx) request.Committer {
	return request.CommitterFunc(func(h request.Header) error {
		ctx.SetStatusCode(h.StatusCode)
		if h.StatusText != "" && h.StatusText != fasthttp.StatusMessage(h.StatusCode) {
			ctx.Response.Header.SetStatusMessage([]byte(h.StatusText))
		}
		ctx.SetContentType(h.ContentType())

		for _, c := range h.Cookies {
			cookie := fasthttp.AcquireCookie()
			cookie.SetKey(c.Name)
			cookie.SetValue(c.Value)
			if c.Domain != "" {
				cookie.SetDomain(c.Domain)
			}
			if c.Path != "" {
				cookie.SetPath(c.Path)
			}
			if c.MaxAge > 0 {
				cookie.SetMaxAge(c.MaxAge)
			}
			cookie.SetHTTPOnly(c.HTTPOnly)
			ctx.Response.Header.SetCookie(cookie)
			fasthttp.ReleaseCookie(cookie)
		}
		return nil
	})
}
