package server

import (
	"fmt"
	"sync"
	"time"

	"cvscore/internal/config"
	"cvscore/internal/errors"
)

// SecretReader reads KVv2 secrets
type SecretReader interface {
	GetSecretV2(path string) (*config.VaultSecret, error)
}

// APIKeysCallback receives the key list of a new secret version, or the
// error that prevented reading it
type APIKeysCallback func(keys []string, err error)

// APIKeyWatcher polls the Vault API key secret and reports every new version
type APIKeyWatcher struct {
	mu sync.RWMutex

	client       SecretReader
	secretPath   string
	pollInterval time.Duration
	onChange     APIKeysCallback
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastCheck   time.Time
	lastError   string
	updates     int
}

// NewAPIKeyWatcher creates a watcher. initialVersion is the version already
// applied at startup; only newer versions are reported.
func NewAPIKeyWatcher(client SecretReader, secretPath string, pollInterval time.Duration, initialVersion int64, onChange APIKeysCallback, logger *errors.Logger) *APIKeyWatcher {
	return &APIKeyWatcher{
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		onChange:     onChange,
		logger:       logger,
		lastVersion:  initialVersion,
	}
}

// Start begins polling
func (kw *APIKeyWatcher) Start() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if kw.running {
		return fmt.Errorf("api key watcher is already running")
	}
	if kw.pollInterval <= 0 {
		return fmt.Errorf("api key watcher needs a positive poll interval")
	}
	kw.stopChan = make(chan struct{})
	kw.running = true
	go kw.pollLoop(kw.stopChan)
	if kw.logger != nil {
		kw.logger.Info("API key watcher started", "secret_path", kw.secretPath, "poll_interval", kw.pollInterval)
	}
	return nil
}

// Stop stops polling
func (kw *APIKeyWatcher) Stop() error {
	kw.mu.Lock()
	defer kw.mu.Unlock()
	if !kw.running {
		return nil
	}
	close(kw.stopChan)
	kw.running = false
	if kw.logger != nil {
		kw.logger.Info("API key watcher stopped")
	}
	return nil
}

func (kw *APIKeyWatcher) pollLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(kw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			kw.poll()
		case <-stop:
			return
		}
	}
}

// poll runs one check and invokes the callback when the version moved
func (kw *APIKeyWatcher) poll() {
	secret, changed, err := kw.checkForUpdates()
	if err != nil {
		if kw.logger != nil {
			kw.logger.LogError(err, "Failed to check Vault for API key updates", "secret_path", kw.secretPath)
		}
		return
	}
	if !changed {
		return
	}

	keys, err := config.APIKeysFromSecret(secret, kw.secretPath)
	if err != nil {
		if kw.logger != nil {
			kw.logger.LogError(err, "New API key secret version is unusable", "version", secret.Version)
		}
		kw.onChange(nil, err)
		return
	}

	if kw.logger != nil {
		kw.logger.Info("API key secret changed", "version", secret.Version, "count", len(keys))
	}
	kw.onChange(keys, nil)
}

// checkForUpdates reads the secret and reports whether its version is newer than the last one seen
func (kw *APIKeyWatcher) checkForUpdates() (*config.VaultSecret, bool, error) {
	secret, err := kw.client.GetSecretV2(kw.secretPath)

	kw.mu.Lock()
	defer kw.mu.Unlock()
	kw.lastCheck = time.Now()

	if err != nil {
		kw.lastError = err.Error()
		return nil, false, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret == nil {
		kw.lastError = "secret not found"
		return nil, false, fmt.Errorf("secret %s not found", kw.secretPath)
	}
	kw.lastError = ""

	if secret.Version > kw.lastVersion {
		kw.lastVersion = secret.Version
		kw.updates++
		return secret, true, nil
	}
	return secret, false, nil
}

// IsRunning reports whether the watcher is polling
func (kw *APIKeyWatcher) IsRunning() bool {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	return kw.running
}

// Status returns the watcher state for health reporting
func (kw *APIKeyWatcher) Status() map[string]any {
	kw.mu.RLock()
	defer kw.mu.RUnlock()
	status := map[string]any{
		"running":       kw.running,
		"poll_interval": kw.pollInterval.String(),
		"secret_path":   kw.secretPath,
		"last_version":  kw.lastVersion,
		"updates":       kw.updates,
	}
	if !kw.lastCheck.IsZero() {
		status["last_check"] = kw.lastCheck.UTC().Format(time.RFC3339)
	}
	if kw.lastError != "" {
		status["last_error"] = kw.lastError
	}
	return status
}
