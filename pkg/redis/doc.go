// Package redis connects to Redis with go-redis/v9 and provides the lease
// that keeps background sweeps exclusive when several notifyd processes run.
//
//	client, err := redis.Connect(ctx, cfg)
//	lock, err := redis.NewLockFromConfig(client, cfg)
//	sweeper := delivery.NewSweeper(manager, delivery.WithLocker(lock))
//
// A Lock is a key set with SET NX PX holding a random token. Release and
// extension go through Lua scripts that compare the token first. If a
// process dies mid-sweep the lease expires after Config.LockTTL.
package redis
