package fangraph

// Version is the release of the library, overridden at build time with
// -ldflags "-X github.com/aretw0/fangraph.Version=v1.2.3".
var Version = "dev"
