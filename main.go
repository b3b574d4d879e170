// main is the entry point for the hunterstats CLI.
package main

import (
	"fmt"
	"os"
	_ "time/tzdata" // Timezones resolve even on hosts without zoneinfo

	"github.com/huangsam/hunterstats/cmd"
	"github.com/huangsam/hunterstats/internal/iocache"
)

func main() {
	err := cmd.Execute()
	iocache.CloseStores()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
