package cmd

import (
	"runtime"

	"github.com/mj1618/websteps/internal/output"
	"github.com/mj1618/websteps/internal/platform"
	"github.com/mj1618/websteps/internal/version"
	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version   string   `yaml:"version"    json:"version"`
	Commit    string   `yaml:"commit"     json:"commit"`
	BuildDate string   `yaml:"build_date" json:"build_date"`
	Go        string   `yaml:"go"         json:"go"`
	Drivers   []string `yaml:"drivers"    json:"drivers"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information and available drivers",
	RunE: func(cmd *cobra.Command, args []string) error {
		return output.Print(versionInfo{
			Version:   version.Version,
			Commit:    version.Commit,
			BuildDate: version.BuildDate,
			Go:        runtime.Version(),
			Drivers:   platform.Drivers(),
		})
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
