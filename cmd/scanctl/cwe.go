package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
)

var cweCmd = &cobra.Command{
	Use:   "cwe",
	Short: "Browse the CWE knowledge base",
}

var cweListCmd = &cobra.Command{
	Use:   "list",
	Short: "List known weakness entries",
	RunE:  runCWEList,
}

var cweGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one weakness entry (e.g. CWE-89)",
	Args:  cobra.ExactArgs(1),
	RunE:  runCWEGet,
}

func init() {
	rootCmd.AddCommand(cweCmd)
	cweCmd.AddCommand(cweListCmd, cweGetCmd)
}

func runCWEList(cmd *cobra.Command, args []string) error {
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireUser(cmd, sess); err != nil {
		return err
	}

	entries, err := client.ListCWE(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing CWE entries: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSEVERITY")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, e.Severity)
	}
	return w.Flush()
}

func runCWEGet(cmd *cobra.Command, args []string) error {
	id := normalizeCWEID(args[0])
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireUser(cmd, sess); err != nil {
		return err
	}

	entry, err := client.GetCWE(cmd.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			return fmt.Errorf("unknown weakness %q", id)
		}
		return fmt.Errorf("fetching %s: %w", id, err)
	}

	md := cweMarkdown(entry)
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	out, err := renderer.Render(md)
	if err != nil {
		// Fallback to plain text
		fmt.Fprint(cmd.OutOrStdout(), md)
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

// normalizeCWEID accepts both "89" and "CWE-89".
func normalizeCWEID(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(strings.ToUpper(raw), "CWE-") {
		return "CWE-" + raw[4:]
	}
	return "CWE-" + raw
}

func cweMarkdown(e *model.CWE) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s: %s\n\n", e.ID, e.Name)
	if e.Severity != "" {
		fmt.Fprintf(&b, "**Severity:** %s\n\n", e.Severity)
	}
	if e.Description != "" {
		b.WriteString(e.Description + "\n\n")
	}
	if e.ExtendedDescription != "" {
		b.WriteString(e.ExtendedDescription + "\n\n")
	}
	if e.Remediation != "" {
		b.WriteString("## Remediation\n\n")
		b.WriteString(e.Remediation + "\n\n")
	}
	if len(e.OWASPMapping) > 0 {
		fmt.Fprintf(&b, "**OWASP:** %s\n\n", strings.Join(e.OWASPMapping, ", "))
	}
	if len(e.References) > 0 {
		b.WriteString("## References\n\n")
		for _, r := range e.References {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}
