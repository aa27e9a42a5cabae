/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"gcodekit5/internal/domain"
)

func TestPreviewsPutGetAndEvict(t *testing.T) {
	root := t.TempDir()
	doc := domain.Document{FormatVersion: 1, Name: "Prev Test", Stock: domain.Stock{WidthMM: 100, HeightMM: 100, Axes: 3}}
	ph, err := InitProject(root, doc)
	if err != nil || ph == nil {
		t.Fatalf("InitProject: %v", err)
	}
	// Short pause after InitProject, which has already built the index
	time.Sleep(200 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Set a tiny cap to force eviction quickly
	os.Setenv("GCODEKIT5_PREVIEWS_MAX_BYTES", "64")
	defer os.Unsetenv("GCODEKIT5_PREVIEWS_MAX_BYTES")

	blobA := make([]byte, 40)
	blobB := make([]byte, 40)
	blobC := make([]byte, 40)
	if err := PutPreview(ctx, ph.Root, 1, "thumb", PreviewKindThumb, 100, 100, blobA); err != nil {
		t.Fatalf("put A: %v", err)
	}
	time.Sleep(10 * time.Millisecond) // different access times
	if err := PutPreview(ctx, ph.Root, 1, "thumb", PreviewKindThumb, 200, 200, blobB); err != nil {
		t.Fatalf("put B: %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if err := PutPreview(ctx, ph.Root, 1, "thumb", PreviewKindThumb, 300, 300, blobC); err != nil {
		t.Fatalf("put C: %v", err)
	}

	total, err := TotalPreviewBytes(ctx, ph.Root)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total > 64 {
		t.Fatalf("expected eviction to <=64 bytes, got %d", total)
	}

	_, _ = GetPreview(ctx, ph.Root, 1, "thumb", PreviewKindThumb, 200, 200)
	if err := PutPreview(ctx, ph.Root, 1, "thumb", PreviewKindThumb, 400, 400, make([]byte, 40)); err != nil {
		t.Fatalf("put D: %v", err)
	}
	if total2, err := TotalPreviewBytes(ctx, ph.Root); err != nil || total2 > 64 {
		t.Fatalf("post total: %v / %d", err, total2)
	}
}

func TestGetOrCreatePreview(t *testing.T) {
	root := t.TempDir()
	doc := domain.Document{FormatVersion: 1, Name: "Prev Create", Stock: domain.Stock{WidthMM: 100, HeightMM: 100, Axes: 3}}
	ph, err := InitProject(root, doc)
	if err != nil || ph == nil {
		t.Fatalf("InitProject: %v", err)
	}
	time.Sleep(200 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	calls := 0
	gen := func(context.Context) ([]byte, error) { calls++; return []byte("abcd"), nil }
	b, err := GetOrCreatePreview(ctx, ph.Root, 2, "geom", PreviewKindGeom, 0, 0, gen)
	if err != nil {
		t.Fatalf("getOrCreate: %v", err)
	}
	if string(b) != "abcd" {
		t.Fatalf("unexpected data: %q", string(b))
	}
	b, err = GetOrCreatePreview(ctx, ph.Root, 2, "geom", PreviewKindGeom, 0, 0, gen)
	if err != nil {
		t.Fatalf("getOrCreate 2: %v", err)
	}
	if calls != 1 {
		t.Fatalf("generator should be called once, got %d", calls)
	}
}
