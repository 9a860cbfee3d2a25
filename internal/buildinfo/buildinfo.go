package buildinfo

import "time"

// Set via -ldflags at build time
var (
	Version    = "dev"
	BuildTime  string // when the binary was compiled
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC()

// Info is the build and uptime summary reported by the health endpoint
type Info struct {
	Version    string `json:"version"`
	BuildTime  string `json:"buildTime,omitempty"`
	CommitHash string `json:"commitHash,omitempty"`
	StartedAt  string `json:"startedAt"`
	Uptime     string `json:"uptime"`
}

// Current returns the build info with uptime measured at now
func Current(now time.Time) Info {
	return Info{
		Version:    Version,
		BuildTime:  BuildTime,
		CommitHash: CommitHash,
		StartedAt:  StartTime.Format(time.RFC3339),
		Uptime:     now.Sub(StartTime).Truncate(time.Second).String(),
	}
}
