// Package config loads layered configuration with Viper.
//
// Values come from defaults, then a YAML file, then the process environment
// (a .env file is loaded into it first via godotenv). Environment variables
// override dotted keys with dots replaced by underscores, so
// SHOWNOTES_PROVIDERS_DEEPGRAM_API_KEY fills providers.deepgram.api_key when
// the loader runs with the "SHOWNOTES" prefix. Keys that the file does not
// mention must be declared with WithEnvKeys or given a WithDefault.
//
// # Usage
//
//	var cfg orchestrator.Config
//	err := config.LoadConfig("shownotes", &cfg,
//	    config.WithConfigFile("config.yml"),
//	    config.WithEnvPrefix("SHOWNOTES"),
//	    config.WithEnvKeys("providers.deepgram.api_key"),
//	)
package config
