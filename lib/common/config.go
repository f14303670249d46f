package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultPort is used when a session or a topology entry has no usable port
	DefaultPort = 6379
	// DefaultDelimiter separates namespace segments of key names
	DefaultDelimiter = ":"
)

// --------------------------------------------------------------------------
// Session configuration
// --------------------------------------------------------------------------

// SessionConfig describes one server (or one cluster entry point) a session connects to.
type SessionConfig struct {
	// ID is the caller chosen identifier of the session
	ID string `mapstructure:"id"`
	// Name is the display name of the connection
	Name string `mapstructure:"name"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	// Username is optional, an empty value disables ACL authentication
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Delimiter is carried for the presentation layer, the engine never splits on it
	Delimiter string `mapstructure:"delimiter"`
	// Cluster selects the cluster connection variant
	Cluster bool `mapstructure:"cluster"`
}

// Addr returns host:port, the port falls back to DefaultPort
func (c SessionConfig) Addr() string {
	port := c.Port
	if port <= 0 {
		port = DefaultPort
	}
	return c.Host + ":" + strconv.Itoa(port)
}

// String returns a formatted representation of the session without the password
func (c SessionConfig) String() string {
	var sb strings.Builder
	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	sb.WriteString("\nSESSION\n")
	addField("ID", c.ID)
	addField("Name", c.Name)
	addField("Address", c.Addr())
	if c.Username != "" {
		addField("Username", c.Username)
	}
	addField("Password", mask(c.Password))
	addField("Cluster", strconv.FormatBool(c.Cluster))
	return sb.String()
}

// mask hides a secret but keeps whether one is set visible
func mask(secret string) string {
	if secret == "" {
		return "<none>"
	}
	return "********"
}

// --------------------------------------------------------------------------
// Client configuration
// --------------------------------------------------------------------------

// ClientConfig holds the settings shared by every session of a process.
type ClientConfig struct {
	// DialTimeoutSecond bounds connection establishment, commands have no timeout of their own
	DialTimeoutSecond int

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// DefaultClientConfig returns the configuration used when nothing else is set
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		DialTimeoutSecond: 5,
		LogLevel:          "info",
		LogFormat:         "console",
	}
}

// DialTimeout returns the connect timeout as a duration
func (c ClientConfig) DialTimeout() time.Duration {
	if c.DialTimeoutSecond <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.DialTimeoutSecond) * time.Second
}

// String returns a formatted string representation of the configuration
func (c ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client")
	addField("Dial Timeout", fmt.Sprintf("%d sec", c.DialTimeoutSecond))

	addSection("Logging")
	addField("Log Level", c.LogLevel)
	addField("Log Format", c.LogFormat)

	return sb.String()
}
