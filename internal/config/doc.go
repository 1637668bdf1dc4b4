// Package config loads runtime configuration for the Vinony CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-d string   database DSN (sqlite file path or postgres URL)
//	-s string   store driver: sqlite, postgres or memory
//	-l string   log level: debug, info, warn or error
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "1.5s"
// or integer nanoseconds:
//
//	{
//	  "data_dir": "/home/me/.vinony",
//	  "store_driver": "sqlite",
//	  "chat_latency": "1500ms",
//	  "image_latency": "3s",
//	  "chat_model": "gpt-4o",
//	  "session_ttl": "24h",
//	  "s3_bucket": "renders"
//	}
//
// Keys absent from the file keep their previous value.
package config
