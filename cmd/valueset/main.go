package main

import (
	"os"

	"github.com/Konsultn-Engineering/valueset/internal/cli"
	_ "github.com/Konsultn-Engineering/valueset/providers/mysql"
	_ "github.com/Konsultn-Engineering/valueset/providers/postgres"
	_ "github.com/Konsultn-Engineering/valueset/providers/sqlite"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
