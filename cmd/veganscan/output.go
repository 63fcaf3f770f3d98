package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/veganscan/backend/internal/domain"
	"github.com/veganscan/backend/internal/usecase"
)

var (
	veganStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3fb950"))
	nonVeganStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
	uncertainStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#d29922"))
	labelStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8b949e"))
)

// statusLabel renders a status in its color
func statusLabel(s domain.Status) string {
	switch s {
	case domain.StatusVegan:
		return veganStyle.Render("vegan")
	case domain.StatusNonVegan:
		return nonVeganStyle.Render("non-vegan")
	default:
		return uncertainStyle.Render("uncertain")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// writeVerdictText prints a human-readable verdict
func writeVerdictText(w io.Writer, v domain.ProductVerdict) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s %s\n",
		labelStyle.Render("Verdict:"), statusLabel(v.Status()),
		labelStyle.Render(fmt.Sprintf("(confidence %.3f)", v.Confidence)))
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Reasoning:"), v.Reasoning)

	if len(v.Ingredients) > 0 {
		width := 0
		for _, ing := range v.Ingredients {
			width = max(width, lipgloss.Width(ing.Name))
		}

		b.WriteString(labelStyle.Render("Ingredients:") + "\n")
		for _, ing := range v.Ingredients {
			pad := strings.Repeat(" ", width-lipgloss.Width(ing.Name))
			fmt.Fprintf(&b, "  %s%s  %s %.3f  %s\n",
				ing.Name, pad, statusLabel(ing.Status()), ing.Confidence, labelStyle.Render(ing.MatchReason))
		}
	}

	if len(v.Flags) > 0 {
		b.WriteString(labelStyle.Render("Flags:") + "\n")
		for _, f := range v.Flags {
			fmt.Fprintf(&b, "  - %s\n", f)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// writeReferenceSummary prints the set sizes of a validated dataset
func writeReferenceSummary(w io.Writer, path string, ref *usecase.ReferenceData, lists domain.ReferenceLists) error {
	rows := []struct {
		name  string
		count int
	}{
		{usecase.SetDefinitelyNonVegan, ref.DefinitelyNonVegan.Len()},
		{usecase.SetPotentiallyNonVegan, ref.PotentiallyNonVegan.Len()},
		{usecase.SetSafeExceptions, ref.SafeExceptions.Len()},
		{usecase.SetAnimalIndicators, ref.AnimalIndicators.Len()},
		{"safe_prefixes", len(lists.SafePrefixes)},
		{"short_valid", len(lists.ShortValid)},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", veganStyle.Render("valid"), path)
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-22s %d\n", r.name, r.count)
	}
	_, err := io.WriteString(w, b.String())
	return err
}
