/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command gcodekit5 is the headless CLI: project lifecycle, CAM generation,
// device I/O, and library import/export, all reachable without the desktop
// UI this module doesn't build.
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gcodekit5/internal/config"
	"gcodekit5/internal/crash"
	"gcodekit5/internal/device"
	"gcodekit5/internal/domain"
	"gcodekit5/internal/export"
	"gcodekit5/internal/idalloc"
	"gcodekit5/internal/importer"
	"gcodekit5/internal/jobsync"
	applog "gcodekit5/internal/log"
	"gcodekit5/internal/shape"
	"gcodekit5/internal/storage"
	"gcodekit5/internal/toollib"
	"gcodekit5/internal/version"
)

func usage() {
	fmt.Println("gcodekit5 — CNC design and toolpath workbench (headless CLI)")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gcodekit5 version|-v|--version                   Show version")
	fmt.Println("  gcodekit5 init <dir> <name>                      Create a new project")
	fmt.Println("  gcodekit5 open <dir>                             Open project and print summary")
	fmt.Println("  gcodekit5 save <dir>                             Re-save project (creates backup)")
	fmt.Println("  gcodekit5 import <dir> <file.svg|file.dxf>       Import vector shapes into the project")
	fmt.Println("  gcodekit5 cam <dir> <opID> <out.nc>              Generate G-code for one CAM operation")
	fmt.Println("  gcodekit5 export <dir> svg|pdf|png <out>         Export a setup sheet or preview")
	fmt.Println("  gcodekit5 tool-import <dir> <pack.zip>           Import a shared tool library pack")
	fmt.Println("  gcodekit5 tool-export <dir> <pack.zip>           Export the project's tool library")
	fmt.Println("  gcodekit5 device-send <host:port> <line>         Send one line to a GRBL-class device over TCP")
	fmt.Println("  gcodekit5 jobsync-push <dir> <recordID>          Mirror one job record to the remote archive")
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ph *storage.ProjectHandle
	defer func() { crash.Recover(ph) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())

	case "init":
		if len(args) < 4 {
			fmt.Println("init requires <dir> and <name>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		doc := domain.Document{
			FormatVersion: 1,
			Name:          args[3],
			Stock:         domain.Stock{WidthMM: 300, HeightMM: 200, ThicknessMM: 12, Axes: 3},
		}
		h, err := storage.InitProject(abs, doc)
		if err != nil {
			fail(l, "init failed", err)
		}
		ph = h
		fmt.Println("Created project at", abs)

	case "open":
		if len(args) < 3 {
			fmt.Println("open requires <dir>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		h, err := storage.Open(abs)
		if err != nil {
			fail(l, "open failed", err)
		}
		ph = h
		fmt.Printf("Opened project: %s\n", h.Doc.Name)
		fmt.Printf("Shapes: %d  Operations: %d  Tools: %d\n", len(h.Doc.Shapes), len(h.Doc.Operations), len(h.Doc.Tools))
		fmt.Println("Root:", h.Root)

	case "save":
		if len(args) < 3 {
			fmt.Println("save requires <dir>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		h, err := storage.Open(abs)
		if err != nil {
			fail(l, "open before save failed", err)
		}
		ph = h
		h.Doc.Metadata.Updated = time.Now().UTC().Format(time.RFC3339)
		if err := storage.Save(h); err != nil {
			fail(l, "save failed", err)
		}
		fmt.Println("Saved project and created a backup of the previous manifest.")

	case "import":
		if len(args) < 4 {
			fmt.Println("import requires <dir> and <file.svg|file.dxf>")
			usage()
			os.Exit(2)
		}
		runImport(l, args[2], args[3], &ph)

	case "cam":
		if len(args) < 5 {
			fmt.Println("cam requires <dir> <opID> <out.nc>")
			usage()
			os.Exit(2)
		}
		runCAM(l, args[2], args[3], args[4], &ph)

	case "export":
		if len(args) < 5 {
			fmt.Println("export requires <dir> svg|pdf|png <out>")
			usage()
			os.Exit(2)
		}
		runExport(l, args[2], args[3], args[4], &ph)

	case "tool-import":
		if len(args) < 4 {
			fmt.Println("tool-import requires <dir> <pack.zip>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		n, err := toollib.ImportPack(abs, args[3])
		if err != nil {
			fail(l, "tool-import failed", err)
		}
		fmt.Printf("Imported %d tool preset(s) from %s\n", n, args[3])

	case "tool-export":
		if len(args) < 4 {
			fmt.Println("tool-export requires <dir> <pack.zip>")
			usage()
			os.Exit(2)
		}
		abs, _ := filepath.Abs(args[2])
		if err := toollib.ExportPack(abs, args[3]); err != nil {
			fail(l, "tool-export failed", err)
		}
		fmt.Println("Exported tool library pack to", args[3])

	case "device-send":
		if len(args) < 4 {
			fmt.Println("device-send requires <host:port> <line>")
			usage()
			os.Exit(2)
		}
		runDeviceSend(l, args[2], args[3])

	case "jobsync-push":
		if len(args) < 4 {
			fmt.Println("jobsync-push requires <dir> <recordID>")
			usage()
			os.Exit(2)
		}
		runJobSyncPush(l, args[2], args[3])

	default:
		usage()
	}
}

func runImport(l *slog.Logger, dir, file string, ph **storage.ProjectHandle) {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open before import failed", err)
	}
	*ph = h

	f, err := os.Open(file)
	if err != nil {
		fail(l, "open import file failed", err)
	}
	defer f.Close()

	alloc := idalloc.New()
	for _, s := range h.Doc.Shapes {
		alloc.Observe(idalloc.ID(s.ID))
	}

	var imported []domain.Shape
	switch ext := filepath.Ext(file); ext {
	case ".svg":
		ss, err := importer.ImportSVG(f, alloc)
		if err != nil {
			fail(l, "svg import failed", err)
		}
		imported = toDomainShapes(ss)
	case ".dxf":
		ss, err := importer.ImportDXF(f, alloc)
		if err != nil {
			fail(l, "dxf import failed", err)
		}
		imported = toDomainShapes(ss)
	default:
		fail(l, "import failed", fmt.Errorf("unsupported file extension %q (expected .svg or .dxf)", ext))
	}

	h.Doc.Shapes = append(h.Doc.Shapes, imported...)
	if err := storage.Save(h); err != nil {
		fail(l, "save after import failed", err)
	}
	fmt.Printf("Imported %d shape(s) from %s\n", len(imported), file)
}

func runCAM(l *slog.Logger, dir, opIDStr, outPath string, ph **storage.ProjectHandle) {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open before cam failed", err)
	}
	*ph = h

	opID, err := strconv.ParseUint(opIDStr, 10, 64)
	if err != nil {
		fail(l, "cam failed", fmt.Errorf("invalid operation id %q: %w", opIDStr, err))
	}
	op, ok := findOp(h.Doc, opID)
	if !ok {
		fail(l, "cam failed", fmt.Errorf("no operation with id %d", opID))
	}

	start := time.Now()
	prog, err := runCAMOp(h.Doc, op)
	if err != nil {
		fail(l, "cam generation failed", err)
	}
	elapsed := time.Since(start)

	if err := os.WriteFile(outPath, []byte(prog.String()), 0o644); err != nil {
		fail(l, "write gcode failed", err)
	}
	sum := sha256.Sum256([]byte(prog.String()))
	hash := hex.EncodeToString(sum[:])

	rec := domain.JobRecord{
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		OperationKind: op.Kind,
		ShapeIDs:      op.ShapeIDs,
		ToolID:        op.ToolID,
		Params:        op.Params,
		ProgramHash:   hash,
		DurationSec:   elapsed.Seconds(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := storage.AppendJobRecord(ctx, abs, rec); err != nil {
		l.Warn("append job record failed", slog.Any("err", err))
	}

	fmt.Printf("Wrote %s (%d lines, hash %s)\n", outPath, len(prog.Lines), hash[:12])
}

func runExport(l *slog.Logger, dir, format, outPath string, ph **storage.ProjectHandle) {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		fail(l, "open before export failed", err)
	}
	*ph = h

	switch format {
	case "svg":
		err = export.ExportDesignSetupSheetSVG(h, outPath, export.SVGOptions{})
	case "pdf":
		err = export.ExportDesignSetupSheetPDF(h, outPath, export.PDFOptions{})
	case "png":
		_, err = export.ExportDesignPreviewPNG(h, outPath, export.PNGOptions{})
	default:
		err = fmt.Errorf("unsupported export format %q (expected svg, pdf, or png)", format)
	}
	if err != nil {
		fail(l, "export failed", err)
	}
	fmt.Println("Exported to", outPath)
}

func runDeviceSend(l *slog.Logger, addr, line string) {
	transport := device.NewTCPTransport(addr)
	d := device.New(transport, device.Options{})

	d.ErrorBus.Subscribe(func(ev device.ErrorEvent) {
		fmt.Println("device error:", ev.Err)
	})
	statusCh := make(chan device.ControllerStatus, 1)
	d.StatusBus.Subscribe(func(s device.ControllerStatus) {
		select {
		case statusCh <- s:
		default:
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := d.Connect(ctx); err != nil {
		fail(l, "device connect failed", err)
	}
	defer d.Disconnect()

	if err := d.SendLine(line); err != nil {
		fail(l, "device send failed", err)
	}
	fmt.Printf("Sent %q, in-flight depth now %d\n", line, d.InFlightDepth())

	select {
	case s := <-statusCh:
		fmt.Printf("status: state=%v pos=%+v\n", s.State, s.MPos)
	case <-time.After(2 * time.Second):
		fmt.Println("no status report received within 2s")
	}
}

func runJobSyncPush(l *slog.Logger, dir, recordIDStr string) {
	abs, _ := filepath.Abs(dir)
	cfg, token, err := config.Load()
	if err != nil {
		fail(l, "load config failed", err)
	}
	client, ok := jobsync.NewClientFromConfig(cfg.JobSync, token)
	if !ok {
		fmt.Println("jobsync is not enabled in the configuration; nothing to push.")
		return
	}

	recID, err := strconv.ParseInt(recordIDStr, 10, 64)
	if err != nil {
		fail(l, "jobsync-push failed", fmt.Errorf("invalid job record id %q: %w", recordIDStr, err))
	}

	timeout, err := time.ParseDuration(cfg.JobSync.EffectiveTimeout())
	if err != nil {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	recs, err := storage.ListJobRecords(ctx, abs, 100)
	if err != nil {
		fail(l, "list job records failed", err)
	}
	for _, rec := range recs {
		if rec.ID != recID {
			continue
		}
		if err := client.Push(ctx, filepath.Base(abs), rec); err != nil {
			fail(l, "jobsync push failed", err)
		}
		fmt.Println("Pushed job record", rec.ID, "to remote archive.")
		return
	}
	fmt.Println("No job record found with id", recID)
}

func toDomainShapes(shapes []shape.Shape) []domain.Shape {
	out := make([]domain.Shape, len(shapes))
	for i, s := range shapes {
		out[i] = domain.ShapeFromDesign(s)
	}
	return out
}
