// Package config provides runtime settings for the footprints binaries.
//
// The config package handles:
//   - Default settings for the relay and for player clients
//   - Validation with a single ErrInvalidConfig sentinel
//   - Loading optional .env files before flags are parsed
//
// Settings Sources:
//
// Values come from CLI flags, which fall back to environment variables of
// the same meaning (RELAY_ADDR, REGISTRY, DATABASE_URL, ...). A .env file
// in the working directory is loaded first when present, so it can supply
// those variables during development.
//
// Usage:
//
//	config.LoadEnvFiles()
//
//	relay := config.DefaultRelay()
//	relay.Registry = "postgres"
//	relay.DatabaseURL = os.Getenv("DATABASE_URL")
//	if err := relay.Validate(); err != nil {
//		log.Fatal(err)
//	}
package config
