// Command feagi-core is the server entrypoint: it resolves configuration
// through the four-level hierarchy, wires the session registry and burst
// engine, exposes the minimal debug HTTP surface, and drives both until an
// OS signal or context cancellation initiates graceful shutdown. Built the
// way cmd/qubicdb/main.go is built.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/feagi/feagi-core/pkg/accel"
	"github.com/feagi/feagi-core/pkg/burst"
	"github.com/feagi/feagi-core/pkg/config"
	"github.com/feagi/feagi-core/pkg/cortex"
	"github.com/feagi/feagi-core/pkg/pipeline"
	"github.com/feagi/feagi-core/pkg/session"
	"github.com/feagi/feagi-core/pkg/wire"
)

// exit codes, per spec.md §6.
const (
	exitOK           = 0
	exitOtherError   = 1
	exitConfigError  = 2
	exitBindFailure  = 3
)

func main() {
	var cliOverrides config.CLIOverrides
	var debugFlags []string

	rootCmd := &cobra.Command{
		Use:   "feagi-core",
		Short: "FEAGI core runtime",
		Long:  "The FEAGI core runtime: session registration, sensorimotor pipeline, and the burst loop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Flags(), &cliOverrides, debugFlags)
		},
		SilenceUsage: true,
	}

	f := rootCmd.Flags()
	cliOverrides.ConfigPath = f.StringP("config", "f", "", "Path to YAML config file (overrides FEAGI_CONFIG env)")
	cliOverrides.APIHost = f.String("api-host", "", "Debug HTTP surface bind host")
	f.Int("api-port", 0, "Debug HTTP surface bind port")
	f.StringArrayVar(&debugFlags, "debug", nil, "Per-subsystem debug level, <crate>=<level> (repeatable)")
	cliOverrides.FrequencyHz = f.Float64("burst-frequency-hz", 0, "Initial burst loop frequency in Hz")
	f.Duration("heartbeat-interval", 0, "Session heartbeat interval")
	f.Duration("deregistration-timeout", 0, "Session deregistration timeout")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(exitCodeError); ok {
			os.Exit(exitErr.code)
		}
		os.Exit(exitOtherError)
	}
}

// exitCodeError lets run() signal a specific process exit code back
// through cobra's error return without os.Exit-ing from inside run itself
// (which would skip deferred cleanup).
type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string { return e.err.Error() }

// run implements the server startup sequence after CLI flags are parsed.
func run(flags *pflag.FlagSet, cliOverrides *config.CLIOverrides, debugFlags []string) error {
	debugLevels, err := config.DebugLevels(debugFlags)
	if err != nil {
		return exitCodeError{exitConfigError, fmt.Errorf("invalid --debug flag: %w", err)}
	}
	if len(debugLevels) > 0 {
		log.Printf("debug levels: %v", debugLevels)
	}

	configPath := ""
	if cliOverrides.ConfigPath != nil && *cliOverrides.ConfigPath != "" {
		configPath = *cliOverrides.ConfigPath
	} else {
		configPath = os.Getenv("FEAGI_CONFIG")
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return exitCodeError{exitConfigError, fmt.Errorf("failed to load config: %w", err)}
	}

	applyExplicitFlags(flags, cfg, cliOverrides)

	if err := cfg.Validate(); err != nil {
		return exitCodeError{exitConfigError, fmt.Errorf("invalid config: %w", err)}
	}

	log.Printf("debug surface: %s:%d", cfg.Server.APIHost, cfg.Server.APIPort)
	log.Printf("burst: %.1f Hz, registration deadline %dms", cfg.Burst.FrequencyHz, cfg.Burst.RegistrationDeadlineMs)

	if err := accel.Probe(); err != nil {
		log.Printf("native dynamics acceleration unavailable, using software dynamics: %v", err)
	} else {
		log.Printf("native dynamics acceleration library found")
	}

	// Endpoint properties are minted lazily per capability; the concrete
	// transport binding (spec.md's ZMQ control/data channels) is outside
	// this module's scope, so Address here is an opaque token a future
	// transport glue layer resolves. The uuid suffix keeps addresses unique
	// across lease/recycle churn without a shared counter.
	pool := session.NewEndpointPool(func(capability session.Capability) session.EndpointProperties {
		return session.EndpointProperties{
			Capability: capability,
			Address:    fmt.Sprintf("inproc://feagi/%s/%s", capability, uuid.NewString()),
		}
	})

	registry := session.NewRegistry(pool)
	registry.StartSweep(cfg.Session.SweepInterval, func(id wire.AgentID) {
		log.Printf("session %s timed out, deregistering", id)
	})
	defer registry.Stop()

	dims := cortex.NewDimensionsTable(nil)
	codecRegistry := pipeline.NewRegistry()
	engine := burst.NewEngine(dims, codecRegistry, burst.PassthroughDynamics{})
	engine.Parameters().Enqueue(burst.ParameterUpdate{
		ParameterName: burst.FrequencyParameterName,
		Value:         cfg.Burst.FrequencyHz,
	})

	ctx, cancel := context.WithCancel(context.Background())

	debugServer := newDebugServer(cfg, registry, engine)
	bindErrCh := make(chan error, 1)
	go func() {
		if err := debugServer.Start(); err != nil {
			bindErrCh <- err
		}
	}()

	burstDone := make(chan struct{})
	go func() {
		defer close(burstDone)
		if err := engine.Run(ctx, func() {
			log.Println("burst loop shutting down, draining sessions")
		}); err != nil && err != context.Canceled {
			log.Printf("burst loop exited: %v", err)
		}
	}()

	log.Println("feagi-core is ready")

	bindFailed := make(chan error, 1)
	go func() {
		select {
		case err := <-bindErrCh:
			bindFailed <- err
			cancel()
		case <-ctx.Done():
		}
	}()

	config.WaitForShutdown(ctx, cancel)

	select {
	case err := <-bindFailed:
		<-burstDone
		return exitCodeError{exitBindFailure, fmt.Errorf("debug HTTP bind failed: %w", err)}
	default:
	}

	log.Println("initiating graceful shutdown")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := debugServer.Stop(shutdownCtx); err != nil {
		log.Printf("debug HTTP shutdown error: %v", err)
	}

	<-burstDone
	log.Println("feagi-core shutdown complete")
	return nil
}

// applyExplicitFlags applies only the CLI flags that were explicitly set by
// the user on the command line, so unset flags never override values
// resolved from YAML or environment variables.
func applyExplicitFlags(flags *pflag.FlagSet, cfg *config.Config, o *config.CLIOverrides) {
	overrides := config.CLIOverrides{}

	if flags.Changed("api-host") {
		overrides.APIHost = o.APIHost
	}
	if flags.Changed("api-port") {
		port, _ := flags.GetInt("api-port")
		overrides.APIPort = &port
	}
	if flags.Changed("burst-frequency-hz") {
		overrides.FrequencyHz = o.FrequencyHz
	}
	if flags.Changed("heartbeat-interval") {
		d, _ := flags.GetDuration("heartbeat-interval")
		overrides.HeartbeatInterval = &d
	}
	if flags.Changed("deregistration-timeout") {
		d, _ := flags.GetDuration("deregistration-timeout")
		overrides.DeregistrationTimeout = &d
	}

	cfg.ApplyCLIOverrides(&overrides)
}
