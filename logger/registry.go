package logger

import "sync"

var (
	mu         sync.RWMutex
	global     *Logger
	components = make(map[string]*Logger)
)

// SetGlobalLogger replaces the global logger. Component loggers derived
// from the previous one are dropped; explicitly registered ones are kept.
func SetGlobalLogger(l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
	for name, c := range components {
		if c.derived {
			delete(components, name)
		}
	}
}

// GetGlobalLogger returns the global logger, creating a console logger at
// info level on first use.
func GetGlobalLogger() *Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}
	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = NewDefault("default")
	}
	return global
}

// Register installs l as the logger returned by Get(name), e.g. to give the
// whisper runner its own level.
func Register(name string, l *Logger) {
	mu.Lock()
	defer mu.Unlock()
	components[name] = l
}

// Get returns the logger registered under name, or the global logger tagged
// with that component. Derived loggers are cached.
func Get(name string) *Logger {
	mu.RLock()
	l, ok := components[name]
	mu.RUnlock()
	if ok {
		return l
	}
	l = GetGlobalLogger().WithComponent(name)
	l.derived = true
	mu.Lock()
	defer mu.Unlock()
	if existing, ok := components[name]; ok {
		return existing
	}
	components[name] = l
	return l
}
