package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikhailDrugie/se-attack-modeling/internal/api"
	"github.com/MikhailDrugie/se-attack-modeling/internal/apierr"
	"github.com/MikhailDrugie/se-attack-modeling/internal/config"
	"github.com/MikhailDrugie/se-attack-modeling/internal/guard"
	"github.com/MikhailDrugie/se-attack-modeling/internal/history"
	"github.com/MikhailDrugie/se-attack-modeling/internal/model"
	"github.com/MikhailDrugie/se-attack-modeling/internal/session"
)

var (
	scanListLimit  int
	scanListOffset int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Manage vulnerability scans",
}

var scanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List scans",
	RunE:  runScanList,
}

var scanGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one scan with its findings",
	Args:  cobra.ExactArgs(1),
	RunE:  runScanGet,
}

var scanCreateCmd = &cobra.Command{
	Use:   "create <target-url>",
	Short: "Queue a dynamic scan against a target URL",
	Args:  cobra.ExactArgs(1),
	RunE:  runScanCreate,
}

var scanSASTCmd = &cobra.Command{
	Use:   "sast <archive>",
	Short: "Queue a static analysis scan of a source archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runScanSAST,
}

var scanWatchCmd = &cobra.Command{
	Use:   "watch <id>",
	Short: "Poll a scan until it reaches a terminal status",
	Args:  cobra.ExactArgs(1),
	RunE:  runScanWatch,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.AddCommand(scanListCmd, scanGetCmd, scanCreateCmd, scanSASTCmd, scanWatchCmd)

	scanListCmd.Flags().IntVar(&scanListLimit, "limit", 0, "Maximum number of scans to return")
	scanListCmd.Flags().IntVar(&scanListOffset, "offset", 0, "Number of scans to skip")
}

// requireUser restores the session and fails with a login hint when no
// usable session exists.
func requireUser(cmd *cobra.Command, sess *session.Manager) (*model.User, error) {
	if err := sess.Restore(cmd.Context()); err != nil {
		if apierr.IsUnauthorized(err) {
			return nil, fmt.Errorf("session expired; run 'scanctl login'")
		}
		return nil, err
	}
	user, ok := sess.CurrentUser()
	if !ok {
		return nil, fmt.Errorf("not logged in; run 'scanctl login'")
	}
	return user, nil
}

// requireRole additionally gates the command on a role allow-list.
func requireRole(cmd *cobra.Command, sess *session.Manager, allow []model.Role) (*model.User, error) {
	user, err := requireUser(cmd, sess)
	if err != nil {
		return nil, err
	}
	if !guard.Allowed(sess, allow) {
		return nil, fmt.Errorf("your role (%s) does not permit this action", user.Role)
	}
	return user, nil
}

// openHistory is best effort: scan commands still work when the local
// status cache cannot be opened.
func openHistory() history.Store {
	path, err := config.HistoryPath()
	if err != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil
	}
	store, err := history.NewSQLiteStore(path)
	if err != nil {
		return nil
	}
	return store
}

func observeStatus(hist history.Store, id int, status model.ScanStatus) model.ScanStatus {
	if hist == nil {
		return status
	}
	effective, err := hist.Observe(id, status)
	if err != nil {
		return status
	}
	return effective
}

func runScanList(cmd *cobra.Command, args []string) error {
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireUser(cmd, sess); err != nil {
		return err
	}

	scans, err := client.ListScans(cmd.Context(), scanListLimit, scanListOffset)
	if err != nil {
		return fmt.Errorf("listing scans: %w", err)
	}
	if len(scans) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No scans.")
		return nil
	}

	hist := openHistory()
	if hist != nil {
		defer hist.Close()
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTARGET\tSTATUS\tFINDINGS\tCREATED")
	for _, s := range scans {
		status := observeStatus(hist, s.ID, s.Status)
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			s.ID, s.TargetURL, status, s.VulnerabilitiesAmount,
			s.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runScanGet(cmd *cobra.Command, args []string) error {
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

	scan, err := client.GetScan(cmd.Context(), id)
	if err != nil {
		if apierr.IsNotFound(err) {
			return fmt.Errorf("scan %d not found", id)
		}
		return fmt.Errorf("fetching scan %d: %w", id, err)
	}

	hist := openHistory()
	if hist != nil {
		defer hist.Close()
		scan.Status = observeStatus(hist, scan.ID, scan.Status)
	}

	printScan(cmd, scan)
	return nil
}

func printScan(cmd *cobra.Command, scan *model.Scan) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scan #%d\n", scan.ID)
	fmt.Fprintf(out, "  Target:   %s\n", scan.TargetURL)
	fmt.Fprintf(out, "  Status:   %s\n", scan.Status)
	fmt.Fprintf(out, "  Owner:    %s\n", scan.User.Username)
	fmt.Fprintf(out, "  Created:  %s\n", scan.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if scan.CompletedAt != nil {
		fmt.Fprintf(out, "  Finished: %s\n", scan.CompletedAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(out, "  Findings: %d\n", scan.VulnerabilityCount())

	if len(scan.Vulnerabilities) == 0 {
		return
	}
	fmt.Fprintln(out)
	for _, v := range scan.Vulnerabilities {
		fmt.Fprintf(out, "  [%s] %s", v.Severity, v.Name)
		if v.CWEID != nil {
			fmt.Fprintf(out, " (%s)", *v.CWEID)
		}
		fmt.Fprintln(out)
		if v.URLPath != "" {
			fmt.Fprintf(out, "      at %s\n", v.URLPath)
		}
	}
}

func runScanCreate(cmd *cobra.Command, args []string) error {
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireRole(cmd, sess, []model.Role{model.RoleAnalyst, model.RoleAdmin}); err != nil {
		return err
	}

	scan, err := client.CreateScan(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("creating scan: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Scan %d queued (%s)\n", scan.ID, scan.Status)
	return nil
}

func runScanSAST(cmd *cobra.Command, args []string) error {
	archivePath := args[0]
	sess, client, err := newSessionFunc()
	if err != nil {
		return err
	}
	if _, err := requireRole(cmd, sess, []model.Role{model.RoleAnalyst, model.RoleAdmin}); err != nil {
		return err
	}

	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	scan, err := client.CreateSASTScan(cmd.Context(), filepath.Base(archivePath), f)
	if err != nil {
		return fmt.Errorf("uploading archive: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "SAST scan %d queued (%s)\n", scan.ID, scan.Status)
	return nil
}

func runScanWatch(cmd *cobra.Command, args []string) error {
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

	hist := openHistory()
	if hist != nil {
		defer hist.Close()
	}

	return watchScan(cmd, client, hist, id, config.WatchInterval())
}

// watchScan polls until the scan settles. The local history makes the
// reported status monotonic even if the backend serves a stale read
// between polls.
func watchScan(cmd *cobra.Command, client *api.Client, hist history.Store, id int, interval time.Duration) error {
	out := cmd.OutOrStdout()
	var last model.ScanStatus

	for {
		scan, err := client.GetScan(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("fetching scan %d: %w", id, err)
		}
		status := observeStatus(hist, scan.ID, scan.Status)
		if status != last {
			fmt.Fprintf(out, "Scan %d: %s\n", id, status)
			last = status
		}
		if status.IsTerminal() {
			if status == model.ScanFailed {
				return fmt.Errorf("scan %d failed", id)
			}
			fmt.Fprintf(out, "Findings: %d\n", scan.VulnerabilityCount())
			return nil
		}

		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(interval):
		}
	}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}
