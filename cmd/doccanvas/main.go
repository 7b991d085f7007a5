/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"doccanvas/internal/config"
	"doccanvas/internal/crash"
	"doccanvas/internal/domain"
	"doccanvas/internal/editor"
	"doccanvas/internal/export"
	applog "doccanvas/internal/log"
	"doccanvas/internal/script"
	"doccanvas/internal/storage"
	"doccanvas/internal/stylepack"
	"doccanvas/internal/telemetry"
	"doccanvas/internal/ui"
	"doccanvas/internal/version"
)

const keepRevisions = 50

// errUsage marks bad arguments; main exits with status 2.
var errUsage = errors.New("usage")

func usage() {
	fmt.Println(titleStyle.Render("DocCanvas") + " " + dimStyle.Render(version.String()))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  doccanvas version|-v|--version                     Show version")
	fmt.Println("  doccanvas new <dir> <name> [docx|pptx|xlsx]         Create a new document at <dir>")
	fmt.Println("  doccanvas inspect <dir>                             Print a summary of the document")
	fmt.Println("  doccanvas search <dir> <query>                      Full-text search over the document index")
	fmt.Println("  doccanvas revisions <dir>                           List stored revisions")
	fmt.Println("  doccanvas edit <dir> <script.yaml>                  Replay an editing script and save")
	fmt.Println("  doccanvas export <dir> <format> [out] [name=value]  Export as pdf, png, svg, zip, web or print")
	fmt.Println("  doccanvas styles <dir> list|export <zip>|install <zip>")
	fmt.Println("                                                      Manage style presets")
	fmt.Println("  doccanvas ui [<dir>]                                Launch desktop UI (build with -tags fyne)")
}

type cli struct {
	cfg config.AppConfig
	log *slog.Logger
}

func main() {
	cfg, cerr := config.Load()
	applog.Init(applog.FromConfig(cfg.Logging))
	telemetry.NewDefault(telemetry.FromConfig(cfg.General))
	c := &cli{cfg: cfg, log: applog.WithComponent("cli")}
	if cerr != nil {
		c.log.Warn("config", slog.Any("err", cerr))
	}

	args := os.Args[1:]
	c.log.Debug("start", slog.Int("args", len(args)))
	if len(args) == 0 {
		usage()
		return
	}
	err := c.run(args[0], args[1:])

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	telemetry.Flush(ctx)
	cancel()

	switch {
	case errors.Is(err, errUsage):
		fmt.Println(errorStyle.Render(err.Error()))
		usage()
		os.Exit(2)
	case err != nil:
		c.log.Error("command failed", slog.String("cmd", args[0]), slog.Any("err", err))
		fmt.Println(errorStyle.Render("Error: " + err.Error()))
		os.Exit(1)
	}
}

func (c *cli) run(cmd string, args []string) error {
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return nil
	case "new":
		if len(args) < 2 {
			return fmt.Errorf("%w: new requires <dir> and <name>", errUsage)
		}
		format := ""
		if len(args) > 2 {
			format = args[2]
		}
		return c.newDocument(args[0], args[1], format)
	case "inspect":
		if len(args) < 1 {
			return fmt.Errorf("%w: inspect requires <dir>", errUsage)
		}
		return c.inspect(args[0])
	case "search":
		if len(args) < 2 {
			return fmt.Errorf("%w: search requires <dir> and <query>", errUsage)
		}
		return c.search(args[0], strings.Join(args[1:], " "))
	case "revisions":
		if len(args) < 1 {
			return fmt.Errorf("%w: revisions requires <dir>", errUsage)
		}
		return c.revisions(args[0])
	case "edit":
		if len(args) < 2 {
			return fmt.Errorf("%w: edit requires <dir> and <script.yaml>", errUsage)
		}
		return c.edit(args[0], args[1])
	case "export":
		if len(args) < 2 {
			return fmt.Errorf("%w: export requires <dir> and <format>", errUsage)
		}
		return c.export(args[0], args[1], args[2:])
	case "styles":
		if len(args) < 2 {
			return fmt.Errorf("%w: styles requires <dir> and an action", errUsage)
		}
		return c.styles(args[0], args[1], args[2:])
	case "ui":
		dir := ""
		if len(args) > 0 {
			dir = args[0]
		}
		return ui.Run(dir)
	}
	return fmt.Errorf("%w: unknown command %q", errUsage, cmd)
}

func (c *cli) newDocument(dir, name, format string) error {
	f := c.cfg.Editor.Format()
	if format != "" {
		var err error
		if f, err = domain.ParseFormat(format); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}
	}
	abs, _ := filepath.Abs(dir)
	if _, err := os.Stat(filepath.Join(abs, storage.ManifestFileName)); err == nil {
		return fmt.Errorf("a document already exists at %s", abs)
	}
	opts := editor.OptionsFromConfig(c.cfg.Editor)
	opts.Format = f
	ed := editor.New(nil, opts)
	if err := ed.SetName(name); err != nil {
		return err
	}
	doc := ed.Document()
	c.log.Info("new document", slog.String("root", abs), slog.String("format", string(f)))
	h, err := storage.InitDocument(abs, doc)
	if err != nil {
		return err
	}
	if c.cfg.Storage.Index {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := storage.RebuildIndex(ctx, h.Root, doc); err != nil {
			c.log.Warn("index build failed", slog.Any("err", err))
		}
	}
	fmt.Println(okStyle.Render("Created"), doc.Name, dimStyle.Render("("+f.Label()+")"), "at", abs)
	return nil
}

func (c *cli) open(dir string) (*storage.DocumentHandle, error) {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		return nil, err
	}
	if h.Recovered {
		fmt.Println(warnStyle.Render("Manifest was unreadable; loaded the latest backup."))
	}
	return h, nil
}

func (c *cli) inspect(dir string) error {
	h, err := c.open(dir)
	if err != nil {
		return err
	}
	fmt.Print(renderSummary(h.Root, h.Document))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if rebuilt, err := storage.DetectAndRebuildIndex(ctx, h.Root, h.Document); err != nil {
		c.log.Warn("index check failed", slog.Any("err", err))
	} else if rebuilt {
		fmt.Println(dimStyle.Render("Index rebuilt."))
	}
	for _, name := range documentVariables(h.Document) {
		uses, err := storage.VariableUsage(ctx, h.Root, name)
		if err != nil {
			c.log.Warn("variable usage", slog.String("name", name), slog.Any("err", err))
			continue
		}
		fmt.Printf("  %s %s\n", labelStyle.Render(domain.VariableContent(name)), dimStyle.Render(fmt.Sprintf("used %d×", len(uses))))
	}
	return nil
}

func (c *cli) search(dir, query string) error {
	h, err := c.open(dir)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()
	res, err := storage.Search(ctx, h.Root, storage.SearchQuery{Text: query, Limit: 100})
	if err != nil {
		return err
	}
	fmt.Print(renderSearch(res))
	return nil
}

func (c *cli) revisions(dir string) error {
	h, err := c.open(dir)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	revs, err := storage.ListRevisions(ctx, h, 20)
	if err != nil {
		return err
	}
	fmt.Print(renderRevisions(revs))
	return nil
}

// edit replays a script in a fresh session on the stored document. Unless
// the script ends the session itself, the result is saved.
func (c *cli) edit(dir, scriptPath string) error {
	h, err := c.open(dir)
	if err != nil {
		return err
	}
	s, err := script.LoadFile(scriptPath)
	if err != nil {
		return err
	}

	opts := editor.OptionsFromConfig(c.cfg.Editor)
	opts.Mirror = nil
	opts.Logger = applog.WithComponent("editor")
	opts.OnSave = func(doc domain.Document) error {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		err := storage.Persist(ctx, h, doc, storage.PersistOptions{Index: c.cfg.Storage.Index, KeepRevisions: keepRevisions})
		if err == nil {
			telemetry.DocumentSaved(doc)
		}
		return err
	}
	doc := h.Document
	ed := editor.New(&doc, opts)
	defer crash.Recover(h, ed.Document)

	rep, err := script.Run(ed, s)
	if err != nil {
		return err
	}
	if !ed.Closed() {
		if err := ed.Save(); err != nil {
			return err
		}
	}
	fmt.Printf("%s %d steps", okStyle.Render("Replayed"), rep.Steps)
	if len(rep.Labels) > 0 {
		fmt.Printf(" %s", dimStyle.Render(fmt.Sprintf("(%d labelled elements)", len(rep.Labels))))
	}
	fmt.Println()
	return nil
}

func (c *cli) export(dir, target string, rest []string) error {
	h, err := c.open(dir)
	if err != nil {
		return err
	}
	defer crash.Recover(h, nil)

	opt := export.BatchOptions{ExportsDir: filepath.Join(h.Root, "exports")}
	switch t := strings.ToLower(target); t {
	case string(export.PresetWeb), string(export.PresetPrint):
		opt.Preset = export.PresetName(t)
	case "pdf", "png", "svg", "zip":
		opt.Formats = []string{t}
	default:
		return fmt.Errorf("%w: unknown export format %q", errUsage, target)
	}
	values, out, err := parseExportArgs(rest)
	if err != nil {
		return err
	}
	opt.OutDir = out
	opt.Render.Values = values

	paths, err := export.Batch(h.Document, opt)
	for _, p := range paths {
		fmt.Println(dimStyle.Render("  " + p))
	}
	if err != nil {
		return err
	}
	telemetry.DocumentExported(strings.ToLower(target), len(h.Document.Pages))
	fmt.Printf("%s %d files\n", okStyle.Render("Exported"), len(paths))
	return nil
}

func (c *cli) styles(dir, action string, rest []string) error {
	h, err := c.open(dir)
	if err != nil {
		return err
	}
	switch action {
	case "list":
		presets, err := stylepack.List(h.Root)
		if err != nil {
			return err
		}
		fmt.Print(renderPresets(presets))
		return nil
	case "export", "install":
		if len(rest) != 1 {
			return fmt.Errorf("%w: styles %s requires <zip>", errUsage, action)
		}
		if action == "export" {
			n, err := stylepack.ExportPack(h.Root, rest[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s %d presets to %s\n", okStyle.Render("Exported"), n, rest[0])
			return nil
		}
		n, err := stylepack.InstallPack(h.Root, rest[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %d presets\n", okStyle.Render("Installed"), n)
		return nil
	}
	return fmt.Errorf("%w: unknown styles action %q", errUsage, action)
}

// parseExportArgs splits name=value substitutions from the optional output
// directory.
func parseExportArgs(args []string) (map[string]string, string, error) {
	values := map[string]string{}
	out := ""
	for _, a := range args {
		if k, v, ok := strings.Cut(a, "="); ok {
			k = strings.TrimSpace(k)
			if k == "" {
				return nil, "", fmt.Errorf("%w: empty variable name in %q", errUsage, a)
			}
			values[k] = v
			continue
		}
		if out != "" {
			return nil, "", fmt.Errorf("%w: more than one output directory", errUsage)
		}
		out = a
	}
	return values, out, nil
}

// documentVariables lists the distinct variable names bound on any page.
func documentVariables(doc domain.Document) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range doc.Pages {
		for _, el := range p.Elements {
			if el.Kind != domain.KindVariable {
				continue
			}
			if name, ok := domain.VariableName(el.Content); ok && !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
