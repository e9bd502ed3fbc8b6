package changes

import "strings"

// ProviderGit identifies the git provider, the only one fmtstep supports.
const ProviderGit = "git"

const (
	scmSchemePrefixConstant            = "scm"
	scmColonDelimiterConstant          = ':'
	scmPipeDelimiterConstant           = '|'
	missingConnectionMessageConstant   = "no connection or developer connection configured"
	malformedConnectionMessageConstant = "expected scm:<provider>:<location>"
	unsupportedProviderMessageConstant = "unsupported provider"
)

// ConnectionSettings holds the configured connection strings.
type ConnectionSettings struct {
	Connection          string `mapstructure:"connection" yaml:"connection"`
	DeveloperConnection string `mapstructure:"developer_connection" yaml:"developer_connection"`
}

// Connection is a parsed connection string.
type Connection struct {
	Raw      string
	Provider string
	Location string
}

// ResolveConnection selects the primary connection, falling back to the developer connection, and parses it.
func ResolveConnection(settings ConnectionSettings) (Connection, error) {
	rawConnection := strings.TrimSpace(settings.Connection)
	if len(rawConnection) == 0 {
		rawConnection = strings.TrimSpace(settings.DeveloperConnection)
	}
	if len(rawConnection) == 0 {
		return Connection{}, ConfigurationError{Message: missingConnectionMessageConstant}
	}

	connection, parseError := ParseConnection(rawConnection)
	if parseError != nil {
		return Connection{}, parseError
	}
	if connection.Provider != ProviderGit {
		return Connection{}, ConfigurationError{Connection: rawConnection, Message: unsupportedProviderMessageConstant}
	}
	return connection, nil
}

// ParseConnection splits scm:<provider><delimiter><location> where the delimiter is ':' or '|'.
// Strings without the scm prefix are treated as git locations.
func ParseConnection(rawConnection string) (Connection, error) {
	trimmedConnection := strings.TrimSpace(rawConnection)
	if !strings.HasPrefix(trimmedConnection, scmSchemePrefixConstant) || len(trimmedConnection) <= len(scmSchemePrefixConstant) {
		return Connection{Raw: trimmedConnection, Provider: ProviderGit, Location: trimmedConnection}, nil
	}

	delimiter := trimmedConnection[len(scmSchemePrefixConstant)]
	if delimiter != scmColonDelimiterConstant && delimiter != scmPipeDelimiterConstant {
		return Connection{Raw: trimmedConnection, Provider: ProviderGit, Location: trimmedConnection}, nil
	}

	remainder := trimmedConnection[len(scmSchemePrefixConstant)+1:]
	delimiterIndex := strings.IndexByte(remainder, delimiter)
	if delimiterIndex <= 0 {
		return Connection{}, ConfigurationError{Connection: trimmedConnection, Message: malformedConnectionMessageConstant}
	}

	return Connection{
		Raw:      trimmedConnection,
		Provider: strings.ToLower(remainder[:delimiterIndex]),
		Location: remainder[delimiterIndex+1:],
	}, nil
}
