package kv_di

import (
	"context"
	"time"

	"github.com/lintang-b-s/drive-search/pkg/di/config"
	"github.com/lintang-b-s/drive-search/pkg/kvdb"

	"github.com/spf13/viper"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"
)

// New opens the session database. Sessions older than SESSION_TTL are swept every
// SESSION_SWEEP_INTERVAL until ctx is done.
func New(ctx context.Context, _ *config.Config, log *zap.Logger) (*kvdb.KVDB, func(), error) {
	viper.SetDefault("SESSION_DB", "sessions.db")
	viper.SetDefault("SESSION_TTL", "720h")
	viper.SetDefault("SESSION_SWEEP_INTERVAL", "1h")

	db, err := bolt.Open(viper.GetString("SESSION_DB"), 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, nil, err
	}

	bboltKV, err := kvdb.NewKVDB(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	ttl := viper.GetDuration("SESSION_TTL")
	ticker := time.NewTicker(viper.GetDuration("SESSION_SWEEP_INTERVAL"))
	stop, done := make(chan struct{}), make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case now := <-ticker.C:
				removed, err := bboltKV.DeleteExpired(now.Add(-ttl))
				if err != nil {
					log.Error("session sweep failed", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("expired sessions removed", zap.Int("count", removed))
				}
			}
		}
	}()

	cleanup := func() {
		ticker.Stop()
		close(stop)
		<-done
		_ = bboltKV.Close()
	}

	return bboltKV, cleanup, nil
}
