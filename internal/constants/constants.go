package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "jsboard"

	// ConfigFileName is the TOML config file name
	ConfigFileName = ".jsboard.toml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "JSBOARD"
)

// Report store file names
const (
	SnapshotFileName = "snapshot.json"
	WorkDirName      = "work"
)

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
)

// HTTP routes of the dashboard server
const (
	RouteReport = "/api/report"
	RouteFile   = "/api/file"
	RouteStatus = "/api/status"
	RouteHealth = "/healthz"
	RouteWS     = "/ws"
)
