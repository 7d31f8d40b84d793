package intake

// Version is the library version, overridable at build time via
// -ldflags "-X github.com/alpha-nc/intake.Version=...".
var Version = "0.1.0"
