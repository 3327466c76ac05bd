package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/records"
	"github.com/dharsanguruparan/coedash/internal/session"
)

// filterFlags are shared by list and reports save.
type filterFlags struct {
	mine    bool
	filters []string
	from    string
	to      string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.mine, "mine", false, "Only records you own (directors only)")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "Substring filter as field=value, repeatable")
	cmd.Flags().StringVar(&f.from, "from", "", "Earliest date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "Latest date, YYYY-MM-DD")
}

func (f *filterFlags) criteria() (records.Criteria, error) {
	text, err := parseAssignments(f.filters)
	if err != nil {
		return records.Criteria{}, err
	}
	return records.Criteria{Text: text, DateFrom: f.from, DateTo: f.to}, nil
}

// load fetches the collection in the requested scope and applies the filter.
func (f *filterFlags) load(ctx context.Context, lc *records.ListController, sess *session.Session) ([]*model.Record, error) {
	scope := records.ScopeAll
	if f.mine {
		if !sess.Viewer().CanToggleScope() {
			return nil, records.ErrScopeNotAllowed
		}
		scope = records.ScopeMine
	}
	c, err := f.criteria()
	if err != nil {
		return nil, err
	}
	if _, err := lc.Load(ctx, scope); err != nil {
		return nil, err
	}
	return lc.ApplyFilter(c)
}

// parseAssignments turns ["a=1", "b=x=y"] into {"a": "1", "b": "x=y"}.
func parseAssignments(pairs []string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("expected field=value, got %q", p)
		}
		out[name] = value
	}
	return out, nil
}

func kindNames() []string {
	out := make([]string, 0, len(model.Kinds()))
	for _, k := range model.Kinds() {
		out = append(out, string(k))
	}
	return out
}

func newListCmd(a *app) *cobra.Command {
	var ff filterFlags
	cmd := &cobra.Command{
		Use:       "list <kind>",
		Short:     "List records of a kind",
		Long:      "List records of a kind: " + strings.Join(kindNames(), ", ") + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, sess, _, err := a.listController(args[0])
			if err != nil {
				return err
			}
			recs, err := ff.load(cmd.Context(), lc, sess)
			if err != nil {
				return err
			}
			schema := lc.Schema()
			if len(recs) == 0 {
				fmt.Fprintln(a.out, styleMuted.Render(fmt.Sprintf("No %s records found.", schema.Singular)))
				return nil
			}
			format := records.NewFormatter(a.cfg.Locale)
			rows := make([][]string, 0, len(recs))
			for _, r := range recs {
				rows = append(rows, format.Cells(schema, r))
			}
			fmt.Fprintln(a.out, renderTable(records.Columns(schema), rows))
			fmt.Fprintln(a.out, styleMuted.Render(fmt.Sprintf("%d of %d records (%s)", len(recs), len(lc.Records()), lc.Scope())))
			return nil
		},
	}
	ff.register(cmd)
	return cmd
}

func newCreateCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:       "create <kind>",
		Short:     "Create a record",
		Args:      cobra.ExactArgs(1),
		ValidArgs: kindNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, _, _, err := a.listController(args[0])
			if err != nil {
				return err
			}
			form := lc.RequestNew()
			if err := fillForm(form, sets); err != nil {
				return err
			}
			saved, err := form.Submit(cmd.Context())
			if err != nil {
				return err
			}
			success(a.out, fmt.Sprintf("Created %s %s", lc.Schema().Singular, saved.ID))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as field=value, repeatable; lists are comma separated")
	return cmd
}

func newEditCmd(a *app) *cobra.Command {
	var sets []string
	cmd := &cobra.Command{
		Use:   "edit <kind> <id>",
		Short: "Change fields of a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, _, client, err := a.listController(args[0])
			if err != nil {
				return err
			}
			rec, err := client.Get(cmd.Context(), lc.Schema().Kind, args[1])
			if err != nil {
				return fmt.Errorf("load %s: %w", lc.Schema().Singular, err)
			}
			form := lc.RequestEdit(rec)
			if err := fillForm(form, sets); err != nil {
				return err
			}
			if _, err := form.Submit(cmd.Context()); err != nil {
				return err
			}
			success(a.out, fmt.Sprintf("Updated %s %s", lc.Schema().Singular, rec.ID))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Field value as field=value, repeatable; lists are comma separated")
	return cmd
}

func fillForm(form *records.Form, sets []string) error {
	values, err := parseAssignments(sets)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := form.Set(name, values[name]); err != nil {
			return err
		}
	}
	return nil
}

func newDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete a record and its attachment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			lc, _, client, err := a.listController(args[0])
			if err != nil {
				return err
			}
			rec, err := client.Get(cmd.Context(), lc.Schema().Kind, args[1])
			if err != nil {
				return fmt.Errorf("load %s: %w", lc.Schema().Singular, err)
			}
			deleted, err := lc.RequestDelete(cmd.Context(), rec, func(r *model.Record) bool {
				return yes || confirm(a.in, a.out, fmt.Sprintf("Delete %s %s?", lc.Schema().Singular, r.ID))
			})
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintln(a.out, styleMuted.Render("Nothing deleted."))
				return nil
			}
			success(a.out, fmt.Sprintf("Deleted %s %s", lc.Schema().Singular, rec.ID))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}
