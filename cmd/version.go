package cmd

// Version is set at build time via -ldflags "-X github.com/detent/glctl/cmd.Version=...".
var Version = "dev"
