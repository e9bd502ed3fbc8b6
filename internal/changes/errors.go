package changes

import "fmt"

const (
	configurationErrorTemplateConstant           = "invalid vcs configuration: %s"
	connectionConfigurationErrorTemplateConstant = "invalid vcs connection %q: %s"
	queryErrorTemplateConstant                   = "vcs status query failed for %s: %v"
)

// ConfigurationError reports a missing or unusable connection string.
type ConfigurationError struct {
	Connection string
	Message    string
}

// Error describes the configuration problem.
func (configurationError ConfigurationError) Error() string {
	if len(configurationError.Connection) == 0 {
		return fmt.Sprintf(configurationErrorTemplateConstant, configurationError.Message)
	}
	return fmt.Sprintf(connectionConfigurationErrorTemplateConstant, configurationError.Connection, configurationError.Message)
}

// QueryError reports a status query that could not complete.
type QueryError struct {
	BaseDirectory string
	Cause         error
}

// Error describes the failed query.
func (queryError QueryError) Error() string {
	return fmt.Sprintf(queryErrorTemplateConstant, queryError.BaseDirectory, queryError.Cause)
}

// Unwrap exposes the backend failure.
func (queryError QueryError) Unwrap() error {
	return queryError.Cause
}
