package internals

import (
	"github.com/caarlos0/env"
)

type Configuration struct {
	RestPort                int    `env:"SERVER_REST_PORT" envDefault:"8080"`
	GithubAppId             int64  `env:"GITHUB_APP_ID"`
	GithubAppPrivateKey     string `env:"GITHUB_APP_PRIVATE_KEY"`
	GithubWebhookSecret     string `env:"GITHUB_WEBHOOK_SECRET"`
	GithubApiHost           string `env:"GITHUB_API_HOST" envDefault:""`
	WebhookWorkerCount      int    `env:"WEBHOOK_WORKER_COUNT" envDefault:"5"`
	MembershipCacheTtlMin   int    `env:"MEMBERSHIP_CACHE_TTL_MIN" envDefault:"60"`
	MembershipCacheSweepMin int    `env:"MEMBERSHIP_CACHE_SWEEP_MIN" envDefault:"10"`
}

func ParseConfiguration() (*Configuration, error) {
	cfg := &Configuration{}
	err := env.Parse(cfg)
	return cfg, err
}
