package config

import (
	"flag"
)

// parses CLI flags for the server binary
func ParseServerFlags(args []string) (Flags, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	path := fs.String("config", "", "path to a YAML configuration file")
	port := fs.String("port", "", "port to listen on (overrides PORT)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	return Flags{ConfigPath: *path, Port: *port}, nil
}
