package cmd

import (
	"runtime"

	"github.com/huangsam/hunterstats/internal/records"
	"github.com/spf13/cobra"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hunterstats.",
	Long: `Display version information including build details.

Shows:
- Release version and commit
- Build timestamp
- State record format version
- Go runtime and platform

Include this output when reporting bugs.`,
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("hunterstats CLI\n")
		cmd.Printf("  Version:  %s\n", version)
		cmd.Printf("  Commit:   %s\n", commit)
		cmd.Printf("  Built:    %s\n", date)
		cmd.Printf("  Records:  v%d\n", records.Version)
		cmd.Printf("  Runtime:  %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}
