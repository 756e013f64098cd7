package config

import "flag"

// Flags are the command-line options.
type Flags struct {
	ConfigPath string
	Setup      bool
}

// ParseFlags reads the command line once at startup.
func ParseFlags() Flags {
	var f Flags
	flag.StringVar(&f.ConfigPath, "config", "", "path to a YAML config file")
	flag.BoolVar(&f.Setup, "setup", false, "run the interactive setup wizard and exit")
	flag.Parse()
	return f
}
