package main

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/openosaka/udprint/sdk/go/control"
	"github.com/openosaka/udprint/sdk/go/health"
	"github.com/openosaka/udprint/sdk/go/udprint"
)

func newRootCmd() *cobra.Command {
	format := udprint.FormatBytes

	rootCmd := &cobra.Command{
		Use:           "udprint",
		Short:         "Print every UDP datagram received on one endpoint",
		Version:       version(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger, _, closeLog, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer closeAndKeep(closeLog, &err)

			printer := udprint.NewPrinter(cmd.OutOrStdout(), format)
			return listenAndServe(cmd, logger, printer)
		},
	}
	rootCmd.PersistentFlags().String("log-level", "info", "debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-file", "", "also write JSON logs to this file, rotated daily")
	addListenFlags(rootCmd.Flags())
	rootCmd.Flags().Var(&format, "format", "output format: bytes, text or json")

	controlCmd := &cobra.Command{
		Use:   "control",
		Short: "Receive and execute control commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger, level, closeLog, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer closeAndKeep(closeLog, &err)

			inboxSize, _ := cmd.Flags().GetInt("inbox-size")
			settle, _ := cmd.Flags().GetDuration("settle")

			inbox := control.NewInbox(inboxSize, logger)
			disp := control.NewDispatcher(
				control.WithLevelVar(level),
				control.WithDispatcherLogger(logger),
				control.WithSettleDelay(settle),
			)

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			dispErr := make(chan error, 1)
			go func() {
				dispErr <- disp.Run(ctx, inbox)
			}()

			cmd.SetContext(ctx)
			err = listenAndServe(cmd, logger, inbox)
			cancel()
			if derr := <-dispErr; err == nil {
				err = derr
			}
			return err
		},
	}
	addListenFlags(controlCmd.Flags())
	controlCmd.Flags().Int("inbox-size", control.DefaultInboxSize, "queued commands before new ones are dropped")
	controlCmd.Flags().Duration("settle", control.DefaultSettleDelay, "time SoftReset and ShowScene take")

	projectorCmd := &cobra.Command{
		Use:   "projector",
		Short: "Simulate a projector answering PWR? over TCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger, _, closeLog, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer closeAndKeep(closeLog, &err)

			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			addr := net.JoinHostPort(host, strconv.Itoa(port))

			var lc net.ListenConfig
			lis, err := lc.Listen(cmd.Context(), "tcp", addr)
			if err != nil {
				return errors.Wrapf(err, "listen %s", addr)
			}
			return control.NewProjector(logger).Serve(cmd.Context(), lis)
		},
	}
	projectorCmd.Flags().String("host", udprint.DefaultHost, "address to bind")
	projectorCmd.Flags().Int("port", control.DefaultProjectorPort, "TCP port to bind")

	sendCmd := &cobra.Command{
		Use:   "send PAYLOAD...",
		Short: "Send each argument as one UDP datagram",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			logger, _, closeLog, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer closeAndKeep(closeLog, &err)

			host, _ := cmd.Flags().GetString("host")
			port, _ := cmd.Flags().GetInt("port")
			count, _ := cmd.Flags().GetInt("count")
			return send(cmd.Context(), logger, net.JoinHostPort(host, strconv.Itoa(port)), args, count)
		},
	}
	sendCmd.Flags().String("host", udprint.DefaultHost, "destination host")
	sendCmd.Flags().Int("port", udprint.DefaultPort, "destination port")
	sendCmd.Flags().Int("count", 1, "times to send each payload")

	rootCmd.AddCommand(controlCmd, projectorCmd, sendCmd)
	return rootCmd
}

func addListenFlags(fs *pflag.FlagSet) {
	fs.String("host", udprint.DefaultHost, "address to bind")
	fs.Int("port", udprint.DefaultPort, "port to bind")
	fs.Int("buffer-size", udprint.DefaultBufferSize, "largest payload read per datagram")
	fs.String("health-addr", "", "serve gRPC health checks on this address when set")
}

// closeAndKeep runs closeFn and reports its error unless *err is already set.
func closeAndKeep(closeFn func() error, err *error) {
	if cerr := closeFn(); cerr != nil && *err == nil {
		*err = errors.Wrap(cerr, "close log file")
	}
}

func listenAndServe(cmd *cobra.Command, logger *slog.Logger, handler udprint.Handler) error {
	fs := cmd.Flags()
	host, _ := fs.GetString("host")
	port, _ := fs.GetInt("port")
	bufferSize, _ := fs.GetInt("buffer-size")
	healthAddr, _ := fs.GetString("health-addr")

	ctx := cmd.Context()
	l, err := udprint.Listen(ctx, udprint.Endpoint{Host: host, Port: port},
		udprint.WithBufferSize(bufferSize),
		udprint.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	defer l.Close()

	if healthAddr != "" {
		hs, err := health.Listen(healthAddr, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := hs.Serve(); err != nil {
				logger.Error("health server stopped", slog.Any("error", err))
			}
		}()
		defer hs.Stop()
		hs.SetServing(true)
		defer hs.SetServing(false)
	}

	return l.Serve(ctx, handler)
}

func send(ctx context.Context, logger *slog.Logger, addr string, payloads []string, count int) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "udp", addr)
	if err != nil {
		return errors.Wrapf(err, "dial %s", addr)
	}
	defer conn.Close()

	for _, payload := range payloads {
		for i := 0; i < count; i++ {
			n, err := conn.Write([]byte(payload))
			if err != nil {
				return errors.Wrap(err, "send datagram")
			}
			logger.Debug("sent datagram", slog.String("to", addr), slog.Int("n", n))
		}
	}
	return nil
}
