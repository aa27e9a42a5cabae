/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package jobsync is the optional single-writer remote job-history archive:
// a thin HTTP client that mirrors internal/storage's local JobRecord index
// to a remote server backed by Postgres. This is explicitly NOT multi-user
// collaboration — a project has at most one writer, and jobsync exists for
// analytics/backup, not shared editing.
package jobsync

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gcodekit5/internal/camerr"
	"gcodekit5/internal/config"
	"gcodekit5/internal/domain"
)

// Client is a minimal HTTP client for the job-sync archive server, modeled
// directly on the teacher's thin backend.Client: bearer-token auth, a
// shared *http.Client with a fixed timeout, JSON request/response bodies.
type Client struct {
	BaseURL string
	Token   string
	http    *http.Client
}

// NewClientFromConfig builds a Client from the user's jobsync settings and
// keyring-stored bearer token, or (nil, false) if jobsync isn't enabled.
func NewClientFromConfig(cfg config.JobSyncConfig, token string) (*Client, bool) {
	if !cfg.Enabled || cfg.BaseURL == "" {
		return nil, false
	}
	timeout, err := time.ParseDuration(cfg.EffectiveTimeout())
	if err != nil {
		timeout = 15 * time.Second
	}
	c := NewClient(cfg.BaseURL, token, timeout)
	if cfg.TLSInsecure {
		c.http.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec
	}
	return c, true
}

// NewClient builds a Client targeting baseURL (trailing slash normalized),
// authenticating with token (may be empty if the archive server allows
// anonymous writes, e.g. in local development).
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, dest any) error {
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return camerr.New(camerr.KindValidation, "jobsync.client", fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return camerr.New(camerr.KindValidation, "jobsync.client", fmt.Errorf("build url: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return camerr.New(camerr.KindCommunication, "jobsync.client", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return camerr.New(camerr.KindCommunication, "jobsync.client", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return camerr.New(camerr.KindCommunication, "jobsync.client", fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status))
	}
	if dest == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(dest); err != nil {
		return camerr.New(camerr.KindProtocol, "jobsync.client", fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// jobRecordWire is the JSON wire shape for one archived job; it carries a
// ProjectID the local domain.JobRecord doesn't need, since the archive
// holds records for every project a writer has pushed.
type jobRecordWire struct {
	ProjectID     string             `json:"project_id"`
	ID            int64              `json:"id"`
	CreatedAt     string             `json:"created_at"`
	OperationKind string             `json:"operation_kind"`
	ShapeIDs      []uint64           `json:"shape_ids"`
	ToolID        string             `json:"tool_id"`
	Params        map[string]float64 `json:"params,omitempty"`
	ProgramHash   string             `json:"program_hash"`
	DurationSec   float64            `json:"duration_estimate_sec"`
}

func toWire(projectID string, rec domain.JobRecord) jobRecordWire {
	return jobRecordWire{
		ProjectID:     projectID,
		ID:            rec.ID,
		CreatedAt:     rec.CreatedAt,
		OperationKind: rec.OperationKind,
		ShapeIDs:      rec.ShapeIDs,
		ToolID:        rec.ToolID,
		Params:        rec.Params,
		ProgramHash:   rec.ProgramHash,
		DurationSec:   rec.DurationSec,
	}
}

func (w jobRecordWire) toDomain() domain.JobRecord {
	return domain.JobRecord{
		ID:            w.ID,
		CreatedAt:     w.CreatedAt,
		OperationKind: w.OperationKind,
		ShapeIDs:      w.ShapeIDs,
		ToolID:        w.ToolID,
		Params:        w.Params,
		ProgramHash:   w.ProgramHash,
		DurationSec:   w.DurationSec,
	}
}

// Push mirrors one locally-appended JobRecord to the archive server. Callers
// typically invoke this right after internal/storage.AppendJobRecord
// succeeds locally; a push failure never rolls back the local append —
// the local index remains the source of truth, the archive is best-effort.
func (c *Client) Push(ctx context.Context, projectID string, rec domain.JobRecord) error {
	return c.doJSON(ctx, http.MethodPost, "/api/jobs", toWire(projectID, rec), nil)
}

// PushBatch mirrors several records in one request, for catching up a
// project that was offline for a while.
func (c *Client) PushBatch(ctx context.Context, projectID string, recs []domain.JobRecord) error {
	wire := make([]jobRecordWire, len(recs))
	for i, r := range recs {
		wire[i] = toWire(projectID, r)
	}
	return c.doJSON(ctx, http.MethodPost, "/api/jobs/batch", wire, nil)
}

// List fetches the archived job history for projectID, most recent first.
func (c *Client) List(ctx context.Context, projectID string, limit int) ([]domain.JobRecord, error) {
	path := fmt.Sprintf("/api/projects/%s/jobs", url.PathEscape(projectID))
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var wire []jobRecordWire
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}
	out := make([]domain.JobRecord, len(wire))
	for i, w := range wire {
		out[i] = w.toDomain()
	}
	return out, nil
}
