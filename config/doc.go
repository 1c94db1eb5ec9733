// Package config loads and validates the advisory engine's configuration.
//
// [Load] reads an optional YAML file plus environment variables (prefix
// RAGCORE_, "." replaced with "_") into the package-level [Cfg], applying
// defaults before validation:
//
//	if err := config.Load("."); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(config.Cfg.LLM.Provider)
//
// Secrets (LLM_API_KEY, EMBEDDING_API_KEY, VECTORSTORE_TOKEN) are read from
// the environment only, never from the config file, and are required to be
// present for any profile other than "development".
//
// [ProviderConfig] is a separate, narrower shape: the settings every
// pluggable backend factory (an llm.Factory, an embedding or memory
// provider) accepts, independent of how cmd/ragserver assembled Cfg.
// [GetOption] reads a provider-specific value out of ProviderConfig.Options.
package config
