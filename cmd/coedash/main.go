// Command coedash is the Center of Excellence records dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/coedash/internal/config"
	"github.com/dharsanguruparan/coedash/internal/logging"
	"github.com/dharsanguruparan/coedash/internal/model"
	"github.com/dharsanguruparan/coedash/internal/records"
	"github.com/dharsanguruparan/coedash/internal/recordstore"
	"github.com/dharsanguruparan/coedash/internal/session"
	"github.com/dharsanguruparan/coedash/internal/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	if err := newRootCommand(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
		os.Exit(1)
	}
}

// app carries what every command needs. Nothing here is global so commands
// can be driven from tests.
type app struct {
	cfg     *config.Client
	logger  *zap.Logger
	verbose bool

	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coedash",
		Short: "Center of Excellence records dashboard",
		Long: `coedash manages Center of Excellence records (projects, trainings, internships,
patents, fundings, publications and events), their PDF attachments and saved reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log API calls to stderr")
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.AddCommand(
		newLoginCmd(a),
		newSignupCmd(a),
		newLogoutCmd(a),
		newProfileCmd(a),
		newListCmd(a),
		newCreateCmd(a),
		newEditCmd(a),
		newDeleteCmd(a),
		newAttachCmd(a),
		newReportsCmd(a),
	)
	return cmd
}

func (a *app) init() error {
	if a.cfg == nil {
		cfg, err := config.LoadClient()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.cfg = cfg
	}
	if a.logger == nil {
		if a.verbose {
			logger, err := logging.New("development", "debug")
			if err != nil {
				return err
			}
			a.logger = logger
		} else {
			a.logger = zap.NewNop()
		}
	}
	return nil
}

// client returns an unauthenticated API client.
func (a *app) client() *recordstore.Client {
	return recordstore.New(a.cfg.APIURL, a.cfg.Timeout, a.logger)
}

// session loads the signed-in identity and an API client acting for it.
func (a *app) session() (*session.Session, *recordstore.Client, error) {
	sess, err := session.Load(a.cfg.SessionPath)
	if err != nil {
		return nil, nil, err
	}
	return sess, a.client().WithToken(sess.Token), nil
}

// listController loads nothing yet; callers pick the scope.
func (a *app) listController(kindArg string) (*records.ListController, *session.Session, *recordstore.Client, error) {
	schema, err := schemaArg(kindArg)
	if err != nil {
		return nil, nil, nil, err
	}
	sess, client, err := a.session()
	if err != nil {
		return nil, nil, nil, err
	}
	return records.NewListController(schema, client, sess.Viewer(), validation.New()), sess, client, nil
}

func schemaArg(s string) (*records.Schema, error) {
	kind, err := model.ParseKind(s)
	if err != nil {
		return nil, err
	}
	return records.SchemaFor(kind)
}

// formatError renders field errors one per line.
func formatError(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return styleError.Render("✘ invalid input") + "\n" + renderFieldErrors(verr.Fields)
	}
	if errors.Is(err, session.ErrNoSession) {
		return styleWarning.Render("⚠ " + err.Error())
	}
	return styleError.Render("✘ " + err.Error())
}
