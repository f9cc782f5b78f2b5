// Package config loads runtime settings from an optional .env file and the
// process environment, and turns them into the collaborators the programs
// need: a logger, a model registry, a session store and tracing.
//
// Model identifiers are never defaulted. AGENT_MODEL and ROOT_AGENT_MODEL
// must be set; a missing or malformed variable yields a *config.Error.
package config
