// Package version holds build metadata, set at link time:
//
//	go build -ldflags "-X github.com/mj1618/websteps/internal/version.Version=v1.2.0 \
//	  -X github.com/mj1618/websteps/internal/version.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/mj1618/websteps/internal/version.BuildDate=$(date -u +%Y-%m-%d)"
package version

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)
