/*
Copyright 2022 The Kruise Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package server exposes the HTTP surface player-facing services use to push
// queue submissions, manage Instance lifecycle, and subscribe to routing
// decisions over Server-Sent Events.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/epsilon-fr/epsilon-autoscaler/internal/domain"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/epsilonerr"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/eventbus"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/provider"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/queue"
	"github.com/epsilon-fr/epsilon-autoscaler/internal/store"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/logging"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/telemetryfields"
	"github.com/epsilon-fr/epsilon-autoscaler/pkg/tracing"
)

const heartbeatInterval = 5 * time.Second

// Server serves the HTTP API in front of the InstanceProvider, QueueRegistry
// and EventBus.
type Server struct {
	provider *provider.Provider
	registry *queue.Registry
	bus      *eventbus.Bus
	engine   *gin.Engine
}

// New builds a Server with its routes registered.
func New(p *provider.Provider, registry *queue.Registry, bus *eventbus.Bus) *Server {
	s := &Server{provider: p, registry: registry, bus: bus, engine: gin.Default()}
	s.routes()
	return s
}

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) routes() {
	s.engine.GET("/ping", handlePing)
	s.engine.GET("/api/events", s.handleStreamEvents)
	s.engine.POST("/queue/push", s.handleQueuePush)
	s.engine.POST("/instance/create/:template", s.handleCreateInstance)
	s.engine.POST("/instance/close/:instance", s.handleCloseInstance)
	s.engine.POST("/instance/in_game/:instance", s.handleEnableInGame)
	s.engine.GET("/instance/get/:name", s.handleGetInstance)
	s.engine.GET("/instance/get_all", s.handleGetAllInstances)
	s.engine.GET("/instance/get_from_template/:template", s.handleGetFromTemplate)
}

func handlePing(c *gin.Context) {
	c.String(http.StatusOK, "Pong")
}

// sendToServerPayload is the wire shape of the one event kind the stream
// ever carries.
type sendToServerPayload struct {
	Group  domain.Group `json:"group"`
	Server string       `json:"server"`
}

func (s *Server) handleStreamEvents(c *gin.Context) {
	ctx, span := tracer().Start(c.Request.Context(), tracing.SpanHTTPStreamEvents, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	logger := logging.FromContextWithTrace(ctx)

	sub := s.bus.Subscribe()
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	logger.Info("event stream subscriber connected", telemetryfields.FieldComponent, "http.events")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			payload, err := json.Marshal(sendToServerPayload{Group: ev.Group, Server: ev.InstanceName})
			if err != nil {
				logger.Error(err, "failed to encode event payload")
				return true
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Kind, payload)
			return true
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (s *Server) handleQueuePush(c *gin.Context) {
	ctx, span := tracer().Start(c.Request.Context(), tracing.SpanHTTPPushQueue, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	logger := logging.FromContextWithTrace(ctx)

	var group domain.Group
	if err := c.ShouldBindJSON(&group); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "malformed group body")
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed group"})
		return
	}

	q, err := s.registry.Get(group.Queue)
	if err != nil {
		writeError(c, span, logger, err)
		return
	}
	q.Push(group)
	span.SetAttributes(tracing.AttrQueueName(group.Queue), tracing.AttrGroupSize(len(group.Players)))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleCreateInstance(c *gin.Context) {
	ctx, span := tracer().Start(c.Request.Context(), tracing.SpanHTTPCreateInstance, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	logger := logging.FromContextWithTrace(ctx)

	template := c.Param("template")
	content, _ := io.ReadAll(c.Request.Body)

	inst, err := s.provider.StartInstance(ctx, template, string(content))
	if err != nil {
		writeError(c, span, logger, err)
		return
	}
	span.SetAttributes(tracing.AttrInstanceTemplate(template))
	c.JSON(http.StatusCreated, inst)
}

func (s *Server) handleCloseInstance(c *gin.Context) {
	ctx, span := tracer().Start(c.Request.Context(), tracing.SpanHTTPCloseInstance, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	logger := logging.FromContextWithTrace(ctx)

	name := c.Param("instance")
	if err := s.provider.RemoveInstance(ctx, name); err != nil {
		writeError(c, span, logger, err)
		return
	}
	span.SetAttributes(tracing.AttrInstanceName(name))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleEnableInGame(c *gin.Context) {
	ctx, span := tracer().Start(c.Request.Context(), tracing.SpanHTTPEnableInGame, trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	logger := logging.FromContextWithTrace(ctx)

	name := c.Param("instance")
	if err := s.provider.EnableInGame(ctx, name); err != nil {
		writeError(c, span, logger, err)
		return
	}
	span.SetAttributes(tracing.AttrInstanceName(name))
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetInstance(c *gin.Context) {
	_, span := tracer().Start(c.Request.Context(), "http get instance", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()
	logger := logging.FromContextWithTrace(c.Request.Context())

	name := c.Param("name")
	inst, err := s.provider.GetInstance(name)
	if err != nil {
		writeError(c, span, logger, err)
		return
	}
	c.JSON(http.StatusOK, inst)
}

func (s *Server) handleGetAllInstances(c *gin.Context) {
	_, span := tracer().Start(c.Request.Context(), "http get all instances", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	instances := s.provider.GetInstances(store.Query{})
	c.JSON(http.StatusOK, instances)
}

func (s *Server) handleGetFromTemplate(c *gin.Context) {
	_, span := tracer().Start(c.Request.Context(), "http get instances from template", trace.WithSpanKind(trace.SpanKindServer))
	defer span.End()

	template := c.Param("template")
	span.SetAttributes(tracing.AttrInstanceTemplate(template))
	instances := s.provider.GetInstances(store.Query{Template: &template})
	c.JSON(http.StatusOK, instances)
}

func writeError(c *gin.Context, span trace.Span, logger logr.Logger, err error) {
	span.RecordError(err)

	var notFound *epsilonerr.QueueNotFoundError
	if errors.As(err, &notFound) {
		span.SetStatus(codes.Error, "queue not found")
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	span.SetStatus(codes.Error, "request failed")
	logger.Error(err, "request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func tracer() trace.Tracer {
	return otel.Tracer("epsilon-autoscaler")
}
