package jobs

import (
	"context"
	"log"
	"sync"
	"time"
)

// TokenStore is the token repository access the cleanup job needs
type TokenStore interface {
	DeleteExpiredTokens(ctx context.Context) error
	CleanupRevokedTokens(ctx context.Context) error
}

// TokenCleanup periodically removes expired and stale revoked refresh tokens
type TokenCleanup struct {
	tokenRepo TokenStore
	interval  time.Duration
	stopCh    chan struct{}
	wg        sync.WaitGroup
	running   bool
	mu        sync.Mutex
}

// NewTokenCleanup creates a new token cleanup job
func NewTokenCleanup(tokenRepo TokenStore, interval time.Duration) *TokenCleanup {
	if interval == 0 {
		interval = time.Hour
	}
	return &TokenCleanup{
		tokenRepo: tokenRepo,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start begins the token cleanup job
func (j *TokenCleanup) Start() {
	j.mu.Lock()
	if j.running {
		j.mu.Unlock()
		return
	}
	j.running = true
	j.mu.Unlock()

	j.wg.Add(1)
	go j.run()
	log.Printf("Token cleanup started (interval: %v)", j.interval)
}

// Stop gracefully stops the token cleanup job
func (j *TokenCleanup) Stop() {
	j.mu.Lock()
	if !j.running {
		j.mu.Unlock()
		return
	}
	j.running = false
	j.mu.Unlock()

	close(j.stopCh)
	j.wg.Wait()
	log.Println("Token cleanup stopped")
}

// run is the main loop
func (j *TokenCleanup) run() {
	defer j.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.cleanup()
		case <-j.stopCh:
			return
		}
	}
}

// cleanup removes expired tokens and revoked tokens past their retention
func (j *TokenCleanup) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := j.tokenRepo.DeleteExpiredTokens(ctx); err != nil {
		log.Printf("Error deleting expired tokens: %v", err)
	}
	if err := j.tokenRepo.CleanupRevokedTokens(ctx); err != nil {
		log.Printf("Error cleaning up revoked tokens: %v", err)
	}
}

// RunOnce runs the cleanup once (for testing or manual trigger)
func (j *TokenCleanup) RunOnce(ctx context.Context) error {
	if err := j.tokenRepo.DeleteExpiredTokens(ctx); err != nil {
		return err
	}
	return j.tokenRepo.CleanupRevokedTokens(ctx)
}

// IsRunning returns whether the job is running
func (j *TokenCleanup) IsRunning() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.running
}
