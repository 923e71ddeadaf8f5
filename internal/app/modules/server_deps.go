package modules

import (
	"cableops.io/dashboard/internal/api/handlers"
	"cableops.io/dashboard/internal/api/middleware"
)

// tokenIssuer is the default JWT issuer.
const tokenIssuer = "cableops"

// NewServerDeps builds base server deps then lets each module contribute explicit wiring.
func NewServerDeps(infra *Infrastructure, mods []Module) handlers.ServerDeps {
	deps := handlers.ServerDeps{
		DB:     infra.Pinger,
		JWTCfg: JWTConfig(infra),
	}
	for _, mod := range mods {
		if mod == nil {
			continue
		}
		mod.ContributeServerDeps(&deps)
	}
	return deps
}

// JWTConfig derives token settings from the security configuration.
func JWTConfig(infra *Infrastructure) middleware.JWTConfig {
	sec := infra.Config.Security
	issuer := sec.TokenIssuer
	if issuer == "" {
		issuer = tokenIssuer
	}
	return middleware.JWTConfig{
		SigningKey: []byte(sec.SessionSecret),
		Issuer:     issuer,
		ExpiresIn:  sec.TokenLifetime,
	}
}
