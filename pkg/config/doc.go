// Package config loads the possible configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/possible/config.toml
// (~/.config/possible/config.toml when XDG_CONFIG_HOME is unset):
//
//	log_level = "info"
//
//	[store]
//	reject_cycles = true
//	save_debounce = "1s"
//
//	[storage]
//	backend = "file"          # file, redis, mongo, memory or null
//	path = "~/.local/share/possible/graphs.json"
//
//	[layout]
//	engine = "layered"
//	rank_dir = "LR"
//
//	[server]
//	addr = ":8080"
//
// Values are applied in order: [Default], then the file, then command-line
// flags. [Config.Validate] checks the result and fills derived values such
// as the storage path.
package config
