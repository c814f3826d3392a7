// Package config provides configuration loading for the fuelbreak analysis.
//
// # Configuration Sources
//
// Configuration is resolved in the following order, later sources winning:
//
//	1. Default values (Default)
//	2. A YAML file (config.yaml, configs/config.yaml or -config)
//	3. Environment variables, after an optional .env file is loaded
//	4. Command line flags applied by cmd/fuelbreak
//
// # Environment Variables
//
// All environment variables follow the pattern FUELBREAK_<SECTION>_<FIELD>:
//
//	FUELBREAK_INPUT_FILE=dados_tcc_historico.xlsx
//	FUELBREAK_ANALYSIS_CUTOFF=2023-05-01
//	FUELBREAK_OUTPUT_DIR=output
//	FUELBREAK_RENDER_FORMAT=svg
//	FUELBREAK_LOGGING_LEVEL=debug
//
// # Validation
//
// The merged configuration is validated with go-playground/validator struct
// tags before it is returned; an invalid value fails Load with a CONFIG error.
package config
