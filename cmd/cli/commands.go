package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"vinr.eu/kubesecrets/internal/app"
	"vinr.eu/kubesecrets/internal/backend"
	"vinr.eu/kubesecrets/internal/config"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/render"
	"vinr.eu/kubesecrets/internal/secret"
)

const version = "v0.1.0"

type options struct {
	configPath  string
	backend     string
	namespace   string
	kubeContext string
	kubeconfig  string
	kubectlPath string
	timeout     time.Duration
	output      string
	debug       bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "kubesecrets",
		Short: "Print decoded cluster secrets",
		Long: `kubesecrets reads secrets from the cluster control plane, decodes their
base64 values and prints one labeled line per secret. Without arguments it
prints the Keycloak secret and the Keycloak Postgres credentials.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return report(stderr, err)
			}
			return report(stderr, runTargets(cmd, cfg, stdout, stderr, ""))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to a YAML config file")
	flags.StringVar(&opts.backend, "backend", config.BackendKubectl, "secret backend: kubectl, kubernetes, aws or citadel")
	flags.StringVarP(&opts.namespace, "namespace", "n", "", "namespace of the secrets")
	flags.StringVar(&opts.kubeContext, "context", "", "kubeconfig context to use")
	flags.StringVar(&opts.kubeconfig, "kubeconfig", "", "path to the kubeconfig file")
	flags.StringVar(&opts.kubectlPath, "kubectl", "kubectl", "kubectl binary used by the kubectl backend")
	flags.DurationVar(&opts.timeout, "timeout", 30*time.Second, "per secret timeout, 0 disables it")
	flags.StringVarP(&opts.output, "output", "o", config.OutputRepr, "output format: repr, json or yaml")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	root.AddCommand(newGetCmd(opts, stdout, stderr), newVersionCmd(stdout))
	return root
}

func newGetCmd(opts *options, stdout, stderr io.Writer) *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "get NAME...",
		Short: "Print the named secrets",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return report(stderr, err)
			}
			cfg.Targets = make([]config.Target, 0, len(args))
			for _, name := range args {
				cfg.Targets = append(cfg.Targets, config.Target{Label: name, Name: name})
			}
			if err := cfg.Validate(); err != nil {
				return report(stderr, err)
			}
			return report(stderr, runTargets(cmd, cfg, stdout, stderr, key))
		},
	}
	cmd.Flags().StringVarP(&key, "key", "k", "", "print only this field of each secret")
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(stdout, "kubesecrets %s\n", version)
		},
	}
}

// loadConfig layers flags the user actually set over file and environment
// settings.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("namespace") {
		cfg.Namespace = opts.namespace
	}
	if flags.Changed("context") {
		cfg.KubeContext = opts.kubeContext
	}
	if flags.Changed("kubeconfig") {
		cfg.Kubeconfig = opts.kubeconfig
	}
	if flags.Changed("kubectl") {
		cfg.KubectlPath = opts.kubectlPath
	}
	if flags.Changed("timeout") {
		cfg.Timeout = opts.timeout
	}
	if flags.Changed("output") {
		cfg.Output = opts.output
	}

	level := slog.LevelWarn
	if opts.debug {
		level = slog.LevelDebug
	}
	logger.InitLogger(cmd.ErrOrStderr(), level)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runTargets(cmd *cobra.Command, cfg *config.Config, stdout, stderr io.Writer, key string) error {
	ctx := logger.WithApp(cmd.Context(), "kubesecrets")
	logger.Debug(ctx, "loaded config", "config", cfg.String())

	fetcher, err := backend.New(ctx, cfg)
	if err != nil {
		return err
	}
	reporter := secret.NewReporter(fetcher, stderr, secret.WithTimeout(cfg.Timeout))

	if key != "" {
		return app.RunKey(ctx, reporter, cfg.Targets, key, stdout)
	}
	renderer, err := render.New(cfg.Output)
	if err != nil {
		return err
	}
	return app.Run(ctx, reporter, cfg.Targets, renderer, stdout)
}

func report(stderr io.Writer, err error) error {
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
	}
	return err
}
