// cmd/spindled/main.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"runtime"
	"time"

	"github.com/mdouchement/logger"
	"github.com/spf13/cobra"

	"github.com/snoozemoose/spindled/internal/config"
	"github.com/snoozemoose/spindled/internal/spindle"
	"github.com/snoozemoose/spindled/internal/transport"
	"github.com/snoozemoose/spindled/internal/vfd"
)

var (
	version  = "dev"
	revision = "none"
	date     = "unknown"

	cpath string
	dummy bool
)

func main() {
	cmd := &cobra.Command{
		Use:     "spindled",
		Short:   "A control daemon for frequency-inverter-driven spindles",
		Version: fmt.Sprintf("%s - build %.7s @ %s - %s", version, revision, date, runtime.Version()),
		Args:    cobra.NoArgs,
		RunE:    daemon,
	}
	cmd.PersistentFlags().StringVarP(&cpath, "config", "c", "/etc/spindled/spindled.yml", "Configfile path")
	cmd.PersistentFlags().BoolVar(&dummy, "dummy", false, "Use a simulated inverter instead of the serial port")
	cmd.AddCommand(probeCommand())
	cmd.AddCommand(spinCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Version for spindled",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(cmd.Version)
		},
	})

	if err := cmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// app is everything a command needs after wiring.
type app struct {
	cfg     *config.Config
	log     logger.Logger
	drv     vfd.Driver
	session *transport.Session
	client  *transport.Client
}

// build loads the config and wires driver, port and session.
// Fails fast: a bad config or missing port aborts startup.
func build() (*app, error) {
	cfg, err := config.Load(cpath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	config.Normalize(cfg)

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	h := logger.NewSlogTextHandler(os.Stdout, &logger.SlogTextOption{
		Level:           level,
		ForceColors:     true,
		ForceFormatting: true,
		PrefixRE:        regexp.MustCompile(`^(\[.*?\])\s`),
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	log := logger.WrapSlogHandler(h)

	drv, err := vfd.New(cfg.Spindle.Model, log)
	if err != nil {
		return nil, err
	}

	var port transport.Port
	if dummy {
		log.Infof("Using simulated %s inverter", cfg.Spindle.Model)
		port = transport.NewSimPort(cfg.Spindle.Address)
	} else {
		port, err = transport.OpenPort(
			cfg.Spindle.Port,
			cfg.Spindle.BaudRate,
			time.Duration(cfg.Spindle.TimeoutMs)*time.Millisecond,
		)
		if err != nil {
			return nil, err
		}
		log.Infof("Inverter port `%s` @ %d baud", cfg.Spindle.Port, cfg.Spindle.BaudRate)
	}

	client, err := transport.NewClient(port, cfg.Spindle.Address)
	if err != nil {
		port.Close()
		return nil, err
	}

	session, err := transport.NewSession(
		client,
		drv,
		log,
		time.Duration(cfg.Spindle.PollIntervalMs)*time.Millisecond,
		cfg.Spindle.Retries,
	)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &app{cfg: cfg, log: log, drv: drv, session: session, client: client}, nil
}

func daemon(_ *cobra.Command, _ []string) error {
	a, err := build()
	if err != nil {
		return err
	}
	defer a.client.Close()

	a.log.Infof("spindled version %s", version)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := a.session.Run(ctx); err != nil {
		// Retry-exhausted session errors are alarms: the spindle state is
		// unknown and the operator has to intervene.
		a.log.WithError(err).Error("Spindle alarm")
		return err
	}

	a.log.Info("Gracefully shutdown")
	return nil
}

func probeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Run parameter discovery and print what the inverter reports",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.client.Close()

			if err := a.session.Discover(); err != nil {
				return err
			}

			p := a.drv.Parameters()
			speeds := a.drv.Speeds()

			fmt.Printf("model:          %s\n", a.cfg.Spindle.Model)
			fmt.Printf("frequency:      %d.%02d - %d.%02d Hz\n",
				p.MinFrequency/100, p.MinFrequency%100,
				p.MaxFrequency/100, p.MaxFrequency%100)
			fmt.Printf("rated RPM@50Hz: %d\n", p.MaxRPMAt50Hz)
			fmt.Printf("poles:          %d\n", p.NumberPoles)
			fmt.Printf("phases:         %d\n", p.NumberPhases)
			fmt.Printf("speed range:    %d - %d RPM\n", speeds.MinRPM(), speeds.MaxRPM())
			fmt.Printf("slop:           %d centiHz\n", p.Slop)
			return nil
		},
	}
}

func spinCommand() *cobra.Command {
	var (
		rpm uint32
		ccw bool
		dur time.Duration
	)

	cmd := &cobra.Command{
		Use:   "spin",
		Short: "Spin the spindle at a given RPM for a while, then stop",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a, err := build()
			if err != nil {
				return err
			}
			defer a.client.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			errCh := make(chan error, 1)
			go func() { errCh <- a.session.Run(ctx) }()

			state := spindle.Cw
			if ccw {
				state = spindle.Ccw
			}
			a.session.SetState(state, rpm)

			select {
			case <-time.After(dur):
			case err := <-errCh:
				return err
			}

			a.session.SetState(spindle.Disable, 0)
			cancel()
			return <-errCh
		},
	}
	cmd.Flags().Uint32Var(&rpm, "rpm", 0, "Target speed")
	cmd.Flags().BoolVar(&ccw, "ccw", false, "Spin counter-clockwise")
	cmd.Flags().DurationVar(&dur, "for", 10*time.Second, "How long to spin")
	cmd.MarkFlagRequired("rpm")
	return cmd
}
