package util

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ValentinKolb/gedis/lib/audit"
	"github.com/ValentinKolb/gedis/lib/common"
	"github.com/ValentinKolb/gedis/lib/keys"
	"github.com/ValentinKolb/gedis/lib/session"
	"github.com/bytedance/sonic"
	"github.com/joho/godotenv"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var Logger = logger.GetLogger("cli")

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		if lineWidth > 0 && lineWidth+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += len(word)
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}
	return strings.Join(wrappedLines, "\n")
}

// --------------------------------------------------------------------------
// Flags and configuration
// --------------------------------------------------------------------------

// SetupSessionFlags adds the connection flags to a command
func SetupSessionFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("host", "127.0.0.1", WrapString("Host of the server or of one cluster node"))
	flags.Int("port", common.DefaultPort, WrapString("Port of the server"))
	flags.String("username", "", WrapString("ACL username, empty for the default user"))
	flags.String("password", "", WrapString("Password, prefer the GEDIS_PASSWORD environment variable"))
	flags.Bool("cluster", false, WrapString("Connect in cluster mode"))
	flags.String("name", "", WrapString("Display name of the connection, used in the audit log"))
	flags.Int("db", 0, WrapString("Logical database (ignored in cluster mode)"))
	flags.Int("timeout", 5, WrapString("Connect timeout in seconds"))
	flags.String("config", "", WrapString("Config file (yaml, json or toml) with a list of connections"))
	flags.String("connection", "", WrapString("ID or name of a connection from the config file"))
	flags.String("log-level", "warn", WrapString("Log level (debug, info, warn, error)"))
	flags.String("log-format", "console", WrapString("Log format (console, json)"))
	flags.Bool("show-audit", false, WrapString("Print the commands sent to the server after the command finished"))
	flags.Bool("print-metrics", false, WrapString("Print metrics in Prometheus format after the command finished"))
}

// InitClientConfig initializes configuration from env files and environment variables
func InitClientConfig() {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("gedis")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetClientConfig reads the client configuration from viper
func GetClientConfig() common.ClientConfig {
	return common.ClientConfig{
		DialTimeoutSecond: viper.GetInt("timeout"),
		LogLevel:          viper.GetString("log-level"),
		LogFormat:         viper.GetString("log-format"),
	}
}

// GetSessionConfig returns the connection to use: a profile of the config
// file when --connection is set, the connection flags otherwise
func GetSessionConfig() (common.SessionConfig, error) {
	if file := viper.GetString("config"); file != "" {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return common.SessionConfig{}, errors.Wrapf(err, "read config %s", file)
		}
	}

	if profile := viper.GetString("connection"); profile != "" {
		return findProfile(profile)
	}

	cfg := common.SessionConfig{
		ID:        "cli",
		Name:      viper.GetString("name"),
		Host:      viper.GetString("host"),
		Port:      viper.GetInt("port"),
		Username:  viper.GetString("username"),
		Password:  viper.GetString("password"),
		Delimiter: common.DefaultDelimiter,
		Cluster:   viper.GetBool("cluster"),
	}
	if cfg.Name == "" {
		cfg.Name = cfg.Addr()
	}
	return cfg, nil
}

// findProfile looks up a connection of the config file by id or name
func findProfile(profile string) (common.SessionConfig, error) {
	var profiles []common.SessionConfig
	if err := viper.UnmarshalKey("connections", &profiles); err != nil {
		return common.SessionConfig{}, errors.Wrap(err, "invalid connections in config")
	}
	for _, p := range profiles {
		if p.ID == profile || p.Name == profile {
			if p.ID == "" {
				p.ID = p.Name
			}
			if p.Delimiter == "" {
				p.Delimiter = common.DefaultDelimiter
			}
			return p, nil
		}
	}
	return common.SessionConfig{}, errors.Errorf("no connection %q in config", profile)
}

// GetDB returns the selected logical database
func GetDB() int {
	return viper.GetInt("db")
}

// --------------------------------------------------------------------------
// Session lifecycle
// --------------------------------------------------------------------------

// Session bundles everything a command needs to talk to the server
type Session struct {
	ID         string
	Registry   *session.Registry
	Dispatcher *keys.Dispatcher
	Audit      *audit.Log
}

// OpenSession binds the flags, initializes logging and opens the connection
func OpenSession(cmd *cobra.Command) (*Session, error) {
	if err := BindCommandFlags(cmd); err != nil {
		return nil, err
	}

	clientCfg := GetClientConfig()
	if err := common.InitLoggers(clientCfg); err != nil {
		return nil, err
	}

	cfg, err := GetSessionConfig()
	if err != nil {
		return nil, err
	}
	Logger.Debugf("client config: %s", clientCfg.String())
	Logger.Debugf("session config: %s", cfg.String())

	log := audit.New()
	reg := session.NewRegistry(clientCfg, log)
	if err := reg.Open(Context(cmd), cfg); err != nil {
		return nil, err
	}

	return &Session{
		ID:         cfg.ID,
		Registry:   reg,
		Dispatcher: keys.NewDispatcher(reg),
		Audit:      log,
	}, nil
}

// Close prints the requested reports and closes the connection
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	if viper.GetBool("show-audit") {
		for _, entry := range s.Audit.Snapshot() {
			fmt.Fprintln(os.Stderr, entry)
		}
	}
	if viper.GetBool("print-metrics") {
		common.WriteMetrics(os.Stderr)
	}
	return s.Registry.CloseAll()
}

// Context returns the context of cmd, never nil
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// PrintJSON writes v as indented JSON to stdout
func PrintJSON(v interface{}) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
