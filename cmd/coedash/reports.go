package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/coedash/internal/records"
	"github.com/dharsanguruparan/coedash/internal/report"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Save, browse and export report snapshots",
	}
	cmd.AddCommand(
		newReportSaveCmd(a),
		newReportListCmd(a),
		newReportShowCmd(a),
		newReportExportCmd(a),
		newReportDeleteCmd(a),
	)
	return cmd
}

func newReportSaveCmd(a *app) *cobra.Command {
	var (
		ff    filterFlags
		title string
	)
	cmd := &cobra.Command{
		Use:   "save <kind>",
		Short: "Snapshot the filtered list of a kind as a new report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, sess, client, err := a.listController(args[0])
			if err != nil {
				return err
			}
			recs, err := ff.load(cmd.Context(), lc, sess)
			if err != nil {
				return err
			}
			schema := lc.Schema()
			saved, err := report.NewGenerator(client).Save(cmd.Context(), title, schema.SourceType,
				lc.Criteria().Snapshot(), records.Snapshot(schema, recs))
			if err != nil {
				return err
			}
			success(a.out, fmt.Sprintf("Saved report %q with %d rows (%s)", saved.Title, len(saved.ReportData), saved.ID))
			return nil
		},
	}
	ff.register(cmd)
	cmd.Flags().StringVarP(&title, "title", "t", "", "Report title")
	return cmd
}

func newReportListCmd(a *app) *cobra.Command {
	var mine bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.session()
			if err != nil {
				return err
			}
			reports, err := report.NewGenerator(client).List(cmd.Context(), mine)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				fmt.Fprintln(a.out, styleMuted.Render("No saved reports."))
				return nil
			}
			rows := make([][]string, 0, len(reports))
			for _, r := range reports {
				created := ""
				if !r.CreatedAt.IsZero() {
					created = humanize.Time(r.CreatedAt)
				}
				rows = append(rows, []string{r.ID, r.Title, r.SourceType, strconv.Itoa(len(r.ReportData)), created})
			}
			fmt.Fprintln(a.out, renderTable([]string{"ID", "Title", "Source", "Rows", "Created"}, rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "Only reports you created")
	return cmd
}

func newReportShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.session()
			if err != nil {
				return err
			}
			r, err := client.GetReport(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("load report: %w", err)
			}
			fmt.Fprintln(a.out, styleTitle.Render(r.Title))
			fmt.Fprintln(a.out, renderKeyValue("Source", r.SourceType))
			if !r.CreatedAt.IsZero() {
				fmt.Fprintln(a.out, renderKeyValue("Created", r.CreatedAt.Local().Format("2006-01-02 15:04")))
			}
			if len(r.FilterCriteria) > 0 {
				keys := make([]string, 0, len(r.FilterCriteria))
				for k := range r.FilterCriteria {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				parts := make([]string, 0, len(keys))
				for _, k := range keys {
					parts = append(parts, k+"="+r.FilterCriteria[k])
				}
				fmt.Fprintln(a.out, renderKeyValue("Filters", strings.Join(parts, ", ")))
			}
			headers, rows := report.Tabulate(r.ReportData)
			if len(headers) == 0 {
				fmt.Fprintln(a.out, styleMuted.Render("This report has no rows."))
				return nil
			}
			fmt.Fprintln(a.out, renderTable(headers, rows))
			return nil
		},
	}
}

func newReportExportCmd(a *app) *cobra.Command {
	var (
		formatArg string
		dir       string
		remote    bool
	)
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a report as PDF or CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(formatArg)
			if err != nil {
				return err
			}
			_, client, err := a.session()
			if err != nil {
				return err
			}
			var path string
			if remote {
				body, name, err := client.ExportReport(cmd.Context(), args[0], format)
				if err != nil {
					return fmt.Errorf("export report: %w", err)
				}
				defer body.Close()
				path = filepath.Join(dir, name)
				if err := writeFile(path, func(w io.Writer) error {
					_, err := io.Copy(w, body)
					return err
				}); err != nil {
					return err
				}
			} else {
				r, err := client.GetReport(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("load report: %w", err)
				}
				path = filepath.Join(dir, report.FileName(r, format))
				if err := writeFile(path, func(w io.Writer) error {
					return report.Render(w, r, format)
				}); err != nil {
					return err
				}
			}
			success(a.out, "Wrote "+path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&formatArg, "format", "f", string(report.FormatPDF), "pdf or csv")
	cmd.Flags().StringVar(&dir, "dir", ".", "Directory to write into")
	cmd.Flags().BoolVar(&remote, "server", false, "Let the API render the file")
	return cmd
}

// writeFile renders into a temp file next to path and renames it into place,
// so a failed render leaves nothing behind.
func writeFile(path string, render func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".coedash-export-*")
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := render(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func newReportDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := a.session()
			if err != nil {
				return err
			}
			if !yes && !confirm(a.in, a.out, fmt.Sprintf("Delete report %s?", args[0])) {
				fmt.Fprintln(a.out, styleMuted.Render("Nothing deleted."))
				return nil
			}
			if err := report.NewGenerator(client).Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			success(a.out, "Deleted report "+args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
