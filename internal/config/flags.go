package config

import (
	"flag"
	"os"
	"time"

	"github.com/tetete478/Snipee-sub000/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   local replica database path
//	-n string   device name (diagnostics only)
//	-i int      sync interval in minutes
//	-w int      debounce delay in seconds
//	-b string   S3 bucket holding the shared document
//	-e string   S3 base endpoint (for MinIO and other S3-compatible stores)
//	-enc        seal the shared document with a passphrase-derived key
//
// Only the flags listed here are parsed; os.Args is filtered through
// flagx.FilterArgs so flags owned by other components pass through.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-n", "-i", "-w", "-b", "-e", "-enc"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "local replica database path")
	fs.StringVar(&cfg.DeviceName, "n", cfg.DeviceName, "device name")
	syncInterval := fs.Int("i", int(cfg.SyncInterval.Minutes()), "sync interval (in minutes)")
	debounceDelay := fs.Int("w", int(cfg.DebounceDelay.Seconds()), "debounce delay (in seconds)")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "bucket holding the shared document")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&cfg.EncryptionEnabled, "enc", cfg.EncryptionEnabled, "encrypt the shared document")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// The integer flags are coarser than the JSON durations, so they only
	// apply when actually passed; otherwise a sub-minute JSON interval
	// would be truncated by the round trip through the flag default.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.SyncInterval = time.Duration(*syncInterval) * time.Minute
		case "w":
			cfg.DebounceDelay = time.Duration(*debounceDelay) * time.Second
		}
	})
}
