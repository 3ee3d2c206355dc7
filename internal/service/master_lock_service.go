package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// Interval for cleaning up stale master locks
	lockCleanupInterval = 10 * time.Minute

	// How long a lock must be unused before cleanup
	lockStaleThreshold = 10 * time.Minute
)

// MasterLockService serializes writers of one master's calendar inside this process.
// The database advisory lock taken by the transaction manager covers other replicas;
// this one keeps same-process contenders off the connection pool while they wait.
//
// Lock Ordering (to prevent deadlocks):
// 1. Acquire master lock FIRST
// 2. Then open the database transaction
type MasterLockService struct {
	log     *logrus.Logger
	timeout time.Duration

	// Per-master semaphore: map[uuid.UUID]*lockWithTimestamp
	masterMu sync.Map

	// Graceful shutdown
	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

// lockWithTimestamp is a one-slot semaphore so waiters can give up on timeout.
type lockWithTimestamp struct {
	sem      chan struct{}
	lastUsed atomic.Int64 // Unix timestamp
}

// NewMasterLockService starts the background cleanup goroutine.
// Call Stop() during graceful shutdown.
func NewMasterLockService(log *logrus.Logger, timeout time.Duration) *MasterLockService {
	svc := &MasterLockService{
		log:      log,
		timeout:  timeout,
		stopChan: make(chan struct{}),
	}

	svc.wg.Add(1)
	go svc.cleanupLoop()

	return svc
}

// Stop is safe to call multiple times.
func (s *MasterLockService) Stop() {
	if s.stopped.CompareAndSwap(false, true) {
		close(s.stopChan)
		s.wg.Wait()
		s.log.Info("MasterLockService stopped")
	}
}

// Lock blocks until the master's lock is held, the lock timeout elapses or ctx ends.
// The returned func releases the lock and must be called exactly once.
func (s *MasterLockService) Lock(ctx context.Context, masterID uuid.UUID) (func(), error) {
	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	for {
		lt := s.getMasterLock(masterID)

		select {
		case lt.sem <- struct{}{}:
		case <-timer.C:
			s.log.Warnf("Timed out waiting for calendar lock of master %s", masterID)
			return nil, fmt.Errorf("%w: calendar of master %s is busy", apperror.ErrTimeout, masterID)
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", apperror.ErrTimeout, ctx.Err())
		}

		// Cleanup may have dropped the entry while we waited on it. Holding the
		// semaphore of the current entry keeps cleanup off it from here on.
		if !s.isCurrent(masterID, lt) {
			<-lt.sem
			continue
		}
		lt.lastUsed.Store(time.Now().Unix())

		var once sync.Once
		return func() {
			once.Do(func() {
				lt.lastUsed.Store(time.Now().Unix())
				<-lt.sem
			})
		}, nil
	}
}

// WithLock runs fn while holding the master's lock.
func (s *MasterLockService) WithLock(ctx context.Context, masterID uuid.UUID, fn func() error) error {
	unlock, err := s.Lock(ctx, masterID)
	if err != nil {
		return err
	}
	defer unlock()
	return fn()
}

func (s *MasterLockService) getMasterLock(masterID uuid.UUID) *lockWithTimestamp {
	lt, _ := s.masterMu.LoadOrStore(masterID, &lockWithTimestamp{sem: make(chan struct{}, 1)})
	result := lt.(*lockWithTimestamp)
	result.lastUsed.Store(time.Now().Unix())
	return result
}

func (s *MasterLockService) isCurrent(masterID uuid.UUID, lt *lockWithTimestamp) bool {
	cur, ok := s.masterMu.Load(masterID)
	return ok && cur == lt
}

func (s *MasterLockService) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(lockCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			s.log.Debug("Master lock cleanup goroutine stopping")
			return
		case <-ticker.C:
			s.cleanupStaleLocks(time.Now().Add(-lockStaleThreshold))
		}
	}
}

// cleanupStaleLocks drops locks unused since cutoff. A lock is only removed while
// this goroutine holds it, and lastUsed is re-checked under the lock.
func (s *MasterLockService) cleanupStaleLocks(cutoff time.Time) int {
	cutoffUnix := cutoff.Unix()
	var cleaned int

	s.masterMu.Range(func(key, value any) bool {
		lt, ok := value.(*lockWithTimestamp)
		if !ok {
			return true
		}

		select {
		case lt.sem <- struct{}{}:
			if lt.lastUsed.Load() < cutoffUnix {
				s.masterMu.Delete(key)
				cleaned++
			}
			<-lt.sem
		default:
		}
		return true
	})

	if cleaned > 0 {
		s.log.Debugf("Cleaned up %d stale master locks", cleaned)
	}
	return cleaned
}
