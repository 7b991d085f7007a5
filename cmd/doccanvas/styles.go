/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"doccanvas/internal/domain"
	"doccanvas/internal/storage"
	"doccanvas/internal/stylepack"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("8")).Padding(0, 1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	boxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(0, 1)
)

// renderSummary prints the document header and one row per page.
func renderSummary(root string, doc domain.Document) string {
	c := doc.Format.Canvas()
	head := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(doc.Name),
		kv("id", doc.ID),
		kv("format", fmt.Sprintf("%s (%s, %.0f×%.0f, grid %.0f)", doc.Format, doc.Format.Label(), c.Width, c.Height, c.Grid)),
		kv("pages", fmt.Sprint(len(doc.Pages))),
		kv("elements", fmt.Sprint(doc.ElementCount())),
		kv("updated", doc.UpdatedAt.Local().Format("2006-01-02 15:04")),
		kv("root", root),
	)
	var b strings.Builder
	b.WriteString(boxStyle.Render(head))
	b.WriteString("\n")
	for i, p := range doc.Pages {
		b.WriteString(fmt.Sprintf("%s %s\n", headerStyle.Render(fmt.Sprintf("Page %d", i+1)), dimStyle.Render(p.ID)))
		counts := kindCounts(p.Elements)
		if len(counts) == 0 {
			b.WriteString(dimStyle.Render("  empty") + "\n")
			continue
		}
		b.WriteString("  " + strings.Join(counts, ", ") + "\n")
	}
	return b.String()
}

func kv(k, v string) string {
	return labelStyle.Render(fmt.Sprintf("%-9s", k)) + " " + v
}

func kindCounts(els []domain.Element) []string {
	n := map[string]int{}
	for _, el := range els {
		k := string(el.Kind)
		if el.Kind == domain.KindShape {
			k = string(el.ShapeKind)
		}
		n[k]++
	}
	out := make([]string, 0, len(n))
	for k, c := range n {
		out = append(out, fmt.Sprintf("%d %s", c, k))
	}
	sort.Strings(out)
	return out
}

func renderSearch(res []storage.SearchResult) string {
	if len(res) == 0 {
		return dimStyle.Render("No matches.") + "\n"
	}
	var b strings.Builder
	for _, r := range res {
		where := "document"
		if r.PageIndex >= 0 {
			where = fmt.Sprintf("page %d", r.PageIndex+1)
		}
		text := r.Snippet
		if text == "" {
			text = r.Text
		}
		b.WriteString(fmt.Sprintf("%s %s %s\n", labelStyle.Render(fmt.Sprintf("%-9s", where)), dimStyle.Render(r.Kind), text))
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("%d results", len(res))) + "\n")
	return b.String()
}

func renderRevisions(revs []storage.Revision) string {
	if len(revs) == 0 {
		return dimStyle.Render("No revisions stored.") + "\n"
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-5s %-16s %5s %8s  %s", "id", "saved", "pages", "elements", "name")) + "\n")
	for _, r := range revs {
		b.WriteString(fmt.Sprintf(" %-5d %-16s %5d %8d  %s\n", r.ID, r.TS.Local().Format("2006-01-02 15:04"), r.Pages, r.Elements, r.Name))
	}
	return b.String()
}

func renderPresets(presets []stylepack.Preset) string {
	if len(presets) == 0 {
		return dimStyle.Render("No style presets.") + "\n"
	}
	var b strings.Builder
	for _, p := range presets {
		keys := make([]string, 0, len(p.Properties))
		for k, v := range p.Properties {
			keys = append(keys, k+"="+v)
		}
		sort.Strings(keys)
		b.WriteString(labelStyle.Render(p.Name))
		if p.Description != "" {
			b.WriteString(" " + dimStyle.Render(p.Description))
		}
		b.WriteString("\n  " + strings.Join(keys, " ") + "\n")
	}
	return b.String()
}
