package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
)

var reportOutput string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Fetch scan reports",
}

var reportHTMLCmd = &cobra.Command{
	Use:   "html <scan-id>",
	Short: "Print the HTML report to stdout",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportHTML,
}

var reportDownloadCmd = &cobra.Command{
	Use:   "download <scan-id>",
	Short: "Download the HTML report to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportDownload,
}

var reportPDFCmd = &cobra.Command{
	Use:   "pdf <scan-id>",
	Short: "Download the PDF report to a file",
	Args:  cobra.ExactArgs(1),
	RunE:  runReportPDF,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportHTMLCmd, reportDownloadCmd, reportPDFCmd)

	reportDownloadCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file (default report-<id>.html)")
	reportPDFCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "Output file (default report-<id>.pdf)")
}

func runReportHTML(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireUser(cmd, sess); err != nil {
		return err
	}

	html, err := client.ReportHTML(cmd.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			return fmt.Errorf("no report for scan %d", id)
		}
		return fmt.Errorf("fetching report: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), html)
	return nil
}

func runReportDownload(cmd *cobra.Command, args []string) error {
	return saveReport(cmd, args[0], "html")
}

func runReportPDF(cmd *cobra.Command, args []string) error {
	return saveReport(cmd, args[0], "pdf")
}

func saveReport(cmd *cobra.Command, rawID, format string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireUser(cmd, sess); err != nil {
		return err
	}

	path := reportOutput
	if path == "" {
		path = fmt.Sprintf("report-%d.%s", id, format)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if format == "pdf" {
		err = client.DownloadReportPDF(cmd.Context(), id, f)
	} else {
		err = client.DownloadReportHTML(cmd.Context(), id, f)
	}
	if err != nil {
		os.Remove(path)
		if apierr.IsNotFound(err) {
			return fmt.Errorf("no report for scan %d", id)
		}
		return fmt.Errorf("downloading report: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Report saved to %s\n", path)
	return nil
}
