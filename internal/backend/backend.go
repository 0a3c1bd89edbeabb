package backend

import (
	"context"
	"errors"
	"time"

	"vinr.eu/kubesecrets/internal/aws"
	"vinr.eu/kubesecrets/internal/citadel"
	"vinr.eu/kubesecrets/internal/config"
	"vinr.eu/kubesecrets/internal/errs"
	"vinr.eu/kubesecrets/internal/kube"
	"vinr.eu/kubesecrets/internal/kubectl"
	"vinr.eu/kubesecrets/internal/logger"
	"vinr.eu/kubesecrets/internal/secret"
)

var (
	ErrUnsupportedBackend = errors.New("backend: unsupported backend")
	ErrInitFailed         = errors.New("backend: init failed")
)

// New builds the fetcher selected by cfg.Backend.
func New(ctx context.Context, cfg *config.Config) (secret.Fetcher, error) {
	logger.Debug(ctx, "initialising backend", "backend", cfg.Backend)
	switch cfg.Backend {
	case config.BackendKubectl, "":
		return kubectl.NewClient(
			kubectl.WithPath(cfg.KubectlPath),
			kubectl.WithNamespace(cfg.Namespace),
			kubectl.WithContext(cfg.KubeContext),
			kubectl.WithKubeconfig(cfg.Kubeconfig),
		), nil
	case config.BackendKubernetes:
		client, err := kube.NewClient(kube.Config{
			Kubeconfig: cfg.Kubeconfig,
			Context:    cfg.KubeContext,
			Namespace:  cfg.Namespace,
		})
		if err != nil {
			return nil, errs.WrapMsgErr(ErrInitFailed, cfg.Backend, err)
		}
		return client, nil
	case config.BackendAWS:
		awsCfg, err := aws.LoadServiceConfig(ctx, cfg.Mode, config.EnvPrefix)
		if err != nil {
			return nil, errs.WrapMsgErr(ErrInitFailed, cfg.Backend, err)
		}
		return aws.NewSecretsManagerClient(awsCfg), nil
	case config.BackendCitadel:
		opts := []citadel.Option{citadel.WithAPIKey(cfg.CitadelAPIKey)}
		if cfg.Timeout > 0 {
			opts = append(opts, citadel.WithTimeout(cfg.Timeout))
		}
		client, err := citadel.NewClient(cfg.CitadelURL, opts...)
		if err != nil {
			return nil, errs.WrapMsgErr(ErrInitFailed, cfg.Backend, err)
		}
		pingCitadel(ctx, client)
		return client, nil
	default:
		return nil, errs.WrapMsg(ErrUnsupportedBackend, cfg.Backend)
	}
}

// pingCitadel only logs: a broker that is down shows up again as a lookup
// failure per secret.
func pingCitadel(ctx context.Context, client *citadel.Client) {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx); err != nil {
		logger.Warn(ctx, "Citadel unreachable", "error", err)
	}
}
