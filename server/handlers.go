// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/poiesic/confero/match"
)

type nameRequest struct {
	Name string `json:"name" binding:"required"`
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListAttendees(c *gin.Context) {
	names, err := s.matcher.ListAttendeeNames(c.Request.Context())
	if err != nil {
		s.writeError(c, "attendees", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendees": names})
}

func (s *Server) handleMatchByName(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.queryTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.matcher.MatchByNameWithMonitor(ctx, req.Name, s.monitor)
	s.metrics.ObserveQuery("name", time.Since(start), err)
	if err != nil {
		s.writeError(c, "name", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleMatchRequest(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.queryTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.matcher.MatchRequestWithMonitor(ctx, req.Text, s.monitor)
	s.metrics.ObserveQuery("request", time.Since(start), err)
	if err != nil {
		s.writeError(c, "request", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleMatchOffering(c *gin.Context) {
	var req textRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.queryTimeout)
	defer cancel()

	start := time.Now()
	result, err := s.matcher.MatchOfferingWithMonitor(ctx, req.Text, s.monitor)
	s.metrics.ObserveQuery("offering", time.Since(start), err)
	if err != nil {
		s.writeError(c, "offering", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// writeError maps domain errors to HTTP statuses. Internal failures are
// logged with detail but surfaced generically.
func (s *Server) writeError(c *gin.Context, mode string, err error) {
	switch {
	case errors.Is(err, match.ErrAttendeeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, match.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		s.logger.Error("query failed", "mode", mode, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
