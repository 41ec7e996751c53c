package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/shaharia-lab/notifyd/internal/config"
	"github.com/shaharia-lab/notifyd/internal/service"
	"github.com/shaharia-lab/notifyd/internal/storage"
)

// NewTransportCmd returns the "transport" command group that manages stored
// SMTP transport configurations.
func NewTransportCmd(cfg *config.AppConfig) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transport",
		Aliases: []string{"transports"},
		Short:   "Manage SMTP transport configurations",
	}
	cmd.AddCommand(
		newTransportListCmd(cfg),
		newTransportAddCmd(cfg),
		newTransportIDCmd(cfg, "activate", "Make a configuration the only active one",
			func(ctx context.Context, svc service.TransportService, id int64) error { return svc.Activate(ctx, id) }),
		newTransportIDCmd(cfg, "deactivate", "Clear the active flag of a configuration",
			func(ctx context.Context, svc service.TransportService, id int64) error { return svc.Deactivate(ctx, id) }),
		newTransportIDCmd(cfg, "delete", "Delete a configuration",
			func(ctx context.Context, svc service.TransportService, id int64) error { return svc.Delete(ctx, id) }),
		newTransportTestCmd(cfg),
	)
	return cmd
}

// withTransports runs fn against a transport service backed by the
// configured database.
func withTransports(cmd *cobra.Command, cfg *config.AppConfig, fn func(ctx context.Context, svc service.TransportService) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, cfg, cfg.LogOutput)
	if err != nil {
		return err
	}
	defer func() { _ = a.close() }()
	return fn(ctx, a.transports)
}

func newTransportListCmd(cfg *config.AppConfig) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transport configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTransports(cmd, cfg, func(ctx context.Context, svc service.TransportService) error {
				list, err := svc.List(ctx)
				if err != nil {
					return err
				}
				renderTransports(cmd.OutOrStdout(), list)
				return nil
			})
		},
	}
}

func newTransportAddCmd(cfg *config.AppConfig) *cobra.Command {
	var in service.TransportInput

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transport configuration",
		Example: `  notifyd transport add --host sandbox.smtp.mailtrap.io --port 2525 \
    --from no-reply@example.com --username user --password secret --auth --starttls --active`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withTransports(cmd, cfg, func(ctx context.Context, svc service.TransportService) error {
				created, err := svc.Create(ctx, in)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created transport %d (%s:%d, active=%t)\n",
					created.ID, created.Host, created.Port, created.IsActive)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&in.Host, "host", "", "SMTP host")
	cmd.Flags().IntVar(&in.Port, "port", 587, "SMTP port")
	cmd.Flags().StringVar(&in.FromAddress, "from", "", "Sender address")
	cmd.Flags().StringVar(&in.Username, "username", "", "SMTP username")
	cmd.Flags().StringVar(&in.Password, "password", "", "SMTP password")
	cmd.Flags().BoolVar(&in.AuthEnabled, "auth", false, "Authenticate with username and password")
	cmd.Flags().BoolVar(&in.SecureTransportEnabled, "starttls", false, "Upgrade the connection with STARTTLS when offered")
	cmd.Flags().BoolVar(&in.IsActive, "active", false, "Make this the active configuration")
	return cmd
}

func newTransportIDCmd(
	cfg *config.AppConfig,
	use, short string,
	fn func(ctx context.Context, svc service.TransportService, id int64) error,
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTransportID(args[0])
			if err != nil {
				return err
			}
			return withTransports(cmd, cfg, func(ctx context.Context, svc service.TransportService) error {
				if err := fn(ctx, svc, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "transport %d: %s done\n", id, use)
				return nil
			})
		},
	}
}

func newTransportTestCmd(cfg *config.AppConfig) *cobra.Command {
	var recipient string

	cmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Send a test message through a configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseTransportID(args[0])
			if err != nil {
				return err
			}
			return withTransports(cmd, cfg, func(ctx context.Context, svc service.TransportService) error {
				if err := svc.Test(ctx, id, recipient); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "test message sent to %s through transport %d\n", recipient, id)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&recipient, "to", "", "Recipient of the test message")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func parseTransportID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid transport id %q", s)
	}
	return id, nil
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	activeStyle = cellStyle.Foreground(lipgloss.Color("10")).Bold(true)
)

// renderTransports writes list as a table. Passwords are already masked.
func renderTransports(w io.Writer, list []*storage.TransportConfig) {
	if len(list) == 0 {
		fmt.Fprintln(w, "no transport configurations")
		return
	}

	rows := make([][]string, 0, len(list))
	for _, t := range list {
		active := ""
		if t.IsActive {
			active = "yes"
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Host,
			strconv.Itoa(t.Port),
			t.FromAddress,
			t.Username,
			strconv.FormatBool(t.AuthEnabled),
			strconv.FormatBool(t.SecureTransportEnabled),
			active,
		})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "HOST", "PORT", "FROM", "USERNAME", "AUTH", "STARTTLS", "ACTIVE").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 7 && rows[row][7] != "":
				return activeStyle
			default:
				return cellStyle
			}
		})
	fmt.Fprintln(w, tbl.Render())
}
