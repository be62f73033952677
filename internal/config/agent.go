// Package config loads the agent configuration. Precedence: CLI > ENV > defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/akarpov/telescout/internal/misc"
)

const (
	// BackendPostgres selects the relational storage backend.
	BackendPostgres = "postgres"
	// BackendMongo selects the document storage backend.
	BackendMongo = "mongo"

	defaultMicroservice = "service"
	defaultAddress      = ":8080"
	defaultInterval     = 2 * time.Second
	defaultBackend      = BackendMongo
	defaultMongoURI     = "mongodb://localhost:27017"
	defaultMongoDB      = "telescout"
	defaultBrokerName   = "rabbitmq"
	defaultSMTPPort     = 587
)

// AgentConfig is everything the agent needs at startup. Zero-valued
// optional sections (container, broker, alert channels) disable the
// corresponding component.
type AgentConfig struct {
	Microservice string
	Address      string
	Interval     time.Duration

	Backend  string
	DSN      string
	MongoURI string
	MongoDB  string

	ContainerEnabled bool
	ContainerName    string

	BrokerURL  string
	BrokerUser string
	BrokerPass string
	BrokerName string

	SlackWebhookURL string

	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	AlertFrom string
	AlertTo   []string
}

// LoadAgentConfig parses args and the environment into an AgentConfig.
func LoadAgentConfig(args []string, out io.Writer) (AgentConfig, error) {
	if out == nil {
		out = io.Discard
	}

	fs := flag.NewFlagSet("agent", flag.ContinueOnError)
	fs.SetOutput(out)

	var msOpt string
	var addrOpt string
	var ivalOpt int
	var backendOpt string
	var dsnOpt string
	var mongoOpt string
	var containerOpt string

	fs.StringVar(&msOpt, "m", "", fmt.Sprintf("microservice name, default: %s", defaultMicroservice))
	fs.StringVar(&addrOpt, "a", "", fmt.Sprintf("HTTP listen address, default: %s", defaultAddress))
	fs.IntVar(&ivalOpt, "i", -1, fmt.Sprintf("sampling interval in seconds, default: %d", int(defaultInterval.Seconds())))
	fs.StringVar(&backendOpt, "b", "", fmt.Sprintf("storage backend (%s|%s), default: %s", BackendPostgres, BackendMongo, defaultBackend))
	fs.StringVar(&dsnOpt, "d", "", "DATABASE_DSN for Postgres")
	fs.StringVar(&mongoOpt, "u", "", fmt.Sprintf("MONGO_URI, default: %s", defaultMongoURI))
	fs.StringVar(&containerOpt, "c", "", "container name to poll, default: the microservice name")

	if err := fs.Parse(args); err != nil {
		return AgentConfig{}, err
	}

	cfg := AgentConfig{
		Microservice: firstOf(msOpt, misc.Getenv("MICROSERVICE", defaultMicroservice)),
		Address:      firstOf(addrOpt, misc.Getenv("ADDRESS", defaultAddress)),
		Backend:      strings.ToLower(firstOf(backendOpt, misc.Getenv("BACKEND", defaultBackend))),
		DSN:          firstOf(dsnOpt, misc.Getenv("DATABASE_DSN", "")),
		MongoURI:     firstOf(mongoOpt, misc.Getenv("MONGO_URI", defaultMongoURI)),
		MongoDB:      misc.Getenv("MONGO_DB", defaultMongoDB),

		ContainerEnabled: misc.GetBool("CONTAINER_POLLING", false),

		BrokerURL:  misc.Getenv("BROKER_URL", ""),
		BrokerUser: misc.Getenv("BROKER_USER", "guest"),
		BrokerPass: misc.Getenv("BROKER_PASS", "guest"),
		BrokerName: misc.Getenv("BROKER_NAME", defaultBrokerName),

		SlackWebhookURL: misc.Getenv("SLACK_WEBHOOK_URL", ""),

		SMTPHost:  misc.Getenv("SMTP_HOST", ""),
		SMTPPort:  misc.GetInt("SMTP_PORT", defaultSMTPPort),
		SMTPUser:  misc.Getenv("SMTP_USER", ""),
		SMTPPass:  misc.Getenv("SMTP_PASS", ""),
		AlertFrom: misc.Getenv("ALERT_FROM", ""),
	}

	if ivalOpt >= 0 {
		cfg.Interval = time.Duration(ivalOpt) * time.Second
	} else {
		cfg.Interval = misc.GetDuration("POLL_INTERVAL", defaultInterval)
	}
	if cfg.Interval <= 0 {
		return AgentConfig{}, fmt.Errorf("sampling interval must be positive, got %v", cfg.Interval)
	}

	if cfg.Backend != BackendPostgres && cfg.Backend != BackendMongo {
		return AgentConfig{}, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Backend == BackendPostgres && cfg.DSN == "" {
		return AgentConfig{}, fmt.Errorf("backend %q requires a DSN", cfg.Backend)
	}

	cfg.ContainerName = firstOf(containerOpt, misc.Getenv("CONTAINER_NAME", cfg.Microservice))
	if containerOpt != "" {
		cfg.ContainerEnabled = true
	}

	if to := misc.Getenv("ALERT_TO", ""); to != "" {
		for _, addr := range strings.Split(to, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				cfg.AlertTo = append(cfg.AlertTo, addr)
			}
		}
	}

	return cfg, nil
}

func firstOf(cli, env string) string {
	if strings.TrimSpace(cli) != "" {
		return strings.TrimSpace(cli)
	}
	return env
}
