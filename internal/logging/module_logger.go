package logging

import (
	"context"

	"github.com/goliatone/go-translate/pkg/interfaces"
)

const (
	rootModule      = "translate"
	batcherModule   = "translate.batcher"
	cacheModule     = "translate.cache"
	ratelimitModule = "translate.ratelimit"
	providerModule  = "translate.provider"
	ledgerModule    = "translate.ledger"
	runnerModule    = "translate.runner"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// BatcherLogger returns the logger namespace reserved for the dispatch core.
func BatcherLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, batcherModule)
}

// CacheLogger returns the logger namespace reserved for the translation cache.
func CacheLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, cacheModule)
}

// RateLimitLogger returns the logger namespace reserved for admission control.
func RateLimitLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ratelimitModule)
}

// ProviderLogger returns the logger namespace reserved for vendor adapters.
func ProviderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, providerModule)
}

// LedgerLogger returns the logger namespace reserved for the job ledger.
func LedgerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, ledgerModule)
}

// RunnerLogger returns the logger namespace reserved for orchestration runs.
func RunnerLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, runnerModule)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
