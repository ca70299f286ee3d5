// Package redisq implements trainqueue.Queue over a Redis client,
// letting several worker processes pull blocks for the same
// TrainDriver session.
package redisq

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	redis "gopkg.in/redis.v5"

	"github.com/mjuarezm/Arborist/trainqueue"
)

// EncodeDecoder serializes and deserializes a trainqueue.Block for
// storage as a Redis string value.
type EncodeDecoder interface {
	Encode(context.Context, *trainqueue.Block) ([]byte, error)
	Decode(context.Context, []byte) (*trainqueue.Block, error)
}

type redisQ struct {
	id         string
	rc         *redis.Client
	allCtx     context.Context
	allCF      context.CancelFunc
	blockMaxRun time.Duration
	lockTTL    time.Duration
	EncodeDecoder
}

const lockReleaseScript = `
if redis.call("GET",KEYS[1]) == ARGV[1] then
    return redis.call("DEL",KEYS[1])
else
    return 0
end
`

const lockAttempts = 5
const failToLockSleep = 10 * time.Millisecond

var rnd = rand.New(&lockedRandSource{src: rand.NewSource(1)})

type lockedRandSource struct {
	lock sync.Mutex
	src  rand.Source
}

func (r *lockedRandSource) Int63() int64 {
	r.lock.Lock()
	v := r.src.Int63()
	r.lock.Unlock()
	return v
}

func (r *lockedRandSource) Seed(seed int64) {
	r.lock.Lock()
	r.src.Seed(seed)
	r.lock.Unlock()
}

func randString(n int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	str := make([]byte, n)
	for i := range str {
		str[i] = chars[rnd.Intn(len(chars))]
	}
	return string(str)
}

// New returns a trainqueue.Queue backed by rc, using id to prefix the
// keys it manages:
//   - id:pending and id:running are sets of block key prefixes
//   - id:block:block_id:data holds the block's encoded payload
//   - id:block:block_id:lock is a TTL'd mutual-exclusion lock
//   - id:block:block_id:running marks a block as currently being
//     worked on, expiring after blockMaxRun so a background sweep can
//     reclaim blocks abandoned by a crashed worker; pass 0 to disable
//     the expiry and the sweep.
//
// The returned queue is safe for concurrent use by multiple goroutines
// and processes.
func New(id string, rc *redis.Client, blockMaxRun, lockTTL time.Duration, encDec EncodeDecoder) trainqueue.Queue {
	ctx, cf := context.WithCancel(context.Background())
	rq := &redisQ{
		id:          id,
		rc:          rc,
		allCtx:      ctx,
		allCF:       cf,
		blockMaxRun: blockMaxRun,
		lockTTL:     lockTTL,
		EncodeDecoder: encDec,
	}
	if blockMaxRun > 0 {
		go rq.dropTimedOutBlocks()
	}
	return rq
}

func (rq *redisQ) Push(ctx context.Context, b *trainqueue.Block) error {
	data, err := rq.Encode(ctx, b)
	if err != nil {
		return fmt.Errorf("trainqueue/redisq: pushing block %s: %v", b.ID(), err)
	}
	prefix := rq.blockKeyPrefix(b.ID())
	dataKey := fmt.Sprintf("%s:data", prefix)
	ok, err := rq.rc.SetNX(dataKey, string(data), 0).Result()
	if err != nil {
		return fmt.Errorf("trainqueue/redisq: pushing block %s: %v", b.ID(), err)
	}
	if !ok {
		return fmt.Errorf("trainqueue/redisq: pushing block %s: key %q already exists", b.ID(), dataKey)
	}
	added, err := rq.rc.SAdd(rq.pendingSetKey(), prefix).Result()
	if err != nil || added != 1 {
		rq.rc.Del(dataKey)
		if err == nil {
			err = fmt.Errorf("%q already in pending set %q", prefix, rq.pendingSetKey())
		}
		return fmt.Errorf("trainqueue/redisq: pushing block %s: %v", b.ID(), err)
	}
	return nil
}

func (rq *redisQ) Pull(ctx context.Context) (*trainqueue.Block, context.Context, error) {
	iter := rq.rc.SScan(rq.pendingSetKey(), 0, "", 0).Iterator()
	for iter.Next() {
		prefix := iter.Val()
		var bctx context.Context
		var cf context.CancelFunc
		if rq.blockMaxRun == 0 {
			bctx, cf = rq.allCtx, func() {}
		} else {
			bctx, cf = context.WithTimeout(rq.allCtx, rq.blockMaxRun)
		}
		err := rq.withLockFor(ctx, prefix, 0, func(ctx context.Context) error {
			ok, err := rq.rc.SetNX(fmt.Sprintf("%s:running", prefix), "true", rq.blockMaxRun).Result()
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("block %q already running", prefix)
			}
			_, err = rq.rc.SMove(rq.pendingSetKey(), rq.runningSetKey(), prefix).Result()
			if err != nil {
				rq.rc.Del(fmt.Sprintf("%s:running", prefix))
				return fmt.Errorf("moving %q to %q: %v", prefix, rq.runningSetKey(), err)
			}
			return nil
		})
		if err != nil {
			cf()
			continue
		}
		data, err := rq.rc.Get(fmt.Sprintf("%s:data", prefix)).Result()
		if err != nil {
			cf()
			rq.Drop(ctx, idFromPrefix(prefix))
			continue
		}
		b, err := rq.Decode(ctx, []byte(data))
		if err != nil {
			cf()
			rq.Drop(ctx, idFromPrefix(prefix))
			continue
		}
		return b, bctx, nil
	}
	if err := iter.Err(); err != nil {
		return nil, nil, fmt.Errorf("trainqueue/redisq: scanning %q: %v", rq.pendingSetKey(), err)
	}
	return nil, nil, nil
}

func (rq *redisQ) Drop(ctx context.Context, id string) error {
	prefix := rq.blockKeyPrefix(id)
	err := rq.withLockFor(ctx, prefix, lockAttempts, func(ctx context.Context) error {
		ok, err := rq.rc.SMove(rq.runningSetKey(), rq.pendingSetKey(), prefix).Result()
		if err != nil {
			return fmt.Errorf("moving %q from %q to %q: %v", prefix, rq.runningSetKey(), rq.pendingSetKey(), err)
		}
		if !ok {
			return nil
		}
		return rq.rc.Del(fmt.Sprintf("%s:running", prefix)).Err()
	})
	if err != nil {
		return fmt.Errorf("trainqueue/redisq: dropping %s: %v", id, err)
	}
	return nil
}

func (rq *redisQ) Complete(ctx context.Context, id string) error {
	prefix := rq.blockKeyPrefix(id)
	err := rq.withLockFor(ctx, prefix, lockAttempts, func(ctx context.Context) error {
		count, err := rq.rc.SRem(rq.runningSetKey(), prefix).Result()
		if err != nil {
			return fmt.Errorf("removing %q from %q: %v", prefix, rq.runningSetKey(), err)
		}
		if count == 0 {
			return nil
		}
		rq.rc.Del(fmt.Sprintf("%s:running", prefix))
		return rq.rc.Del(fmt.Sprintf("%s:data", prefix)).Err()
	})
	if err != nil {
		return fmt.Errorf("trainqueue/redisq: completing %s: %v", id, err)
	}
	return nil
}

func (rq *redisQ) Count(ctx context.Context) (int, int, error) {
	cmd := redis.NewSliceCmd(
		"EVAL",
		`return {redis.call("SCARD", KEYS[1]), redis.call("SCARD", KEYS[2])}`,
		2,
		rq.pendingSetKey(),
		rq.runningSetKey(),
	)
	if err := rq.rc.Process(cmd); err != nil {
		return 0, 0, fmt.Errorf("trainqueue/redisq: counting: %v", err)
	}
	v, err := cmd.Result()
	if err != nil {
		return 0, 0, fmt.Errorf("trainqueue/redisq: counting: %v", err)
	}
	if len(v) != 2 {
		return 0, 0, fmt.Errorf("trainqueue/redisq: counting: redis returned %d values", len(v))
	}
	p, ok := v[0].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("trainqueue/redisq: counting: unexpected pending type %T", v[0])
	}
	r, ok := v[1].(int64)
	if !ok {
		return 0, 0, fmt.Errorf("trainqueue/redisq: counting: unexpected running type %T", v[1])
	}
	return int(p), int(r), nil
}

func (rq *redisQ) Stop(ctx context.Context) error {
	rq.allCF()
	return nil
}

func (rq *redisQ) blockKeyPrefix(id string) string { return fmt.Sprintf("%s:block:%s", rq.id, id) }
func (rq *redisQ) pendingSetKey() string            { return fmt.Sprintf("%s:pending", rq.id) }
func (rq *redisQ) runningSetKey() string            { return fmt.Sprintf("%s:running", rq.id) }

func idFromPrefix(prefix string) string {
	parts := strings.Split(prefix, ":")
	return parts[len(parts)-1]
}

func (rq *redisQ) withLockFor(ctx context.Context, keyPrefix string, remainingAttempts int, f func(context.Context) error) error {
	lockKey := fmt.Sprintf("%s:lock", keyPrefix)
	lockValue := randString(20)
	lctx, cf := context.WithTimeout(ctx, rq.lockTTL)
	defer cf()
	ok, err := rq.rc.SetNX(lockKey, lockValue, rq.lockTTL).Result()
	if err != nil {
		return fmt.Errorf("could not acquire lock: %v", err)
	}
	if !ok {
		if remainingAttempts > 0 {
			d, _ := rq.rc.TTL(lockKey).Result()
			time.Sleep(d + time.Duration(rnd.Int63n(int64(failToLockSleep)*int64(remainingAttempts)+1)))
			return rq.withLockFor(ctx, keyPrefix, remainingAttempts-1, f)
		}
		return fmt.Errorf("could not acquire lock: already taken")
	}
	defer rq.rc.Eval(lockReleaseScript, []string{lockKey}, lockValue)
	return f(lctx)
}

func (rq *redisQ) dropTimedOutBlocks() {
	ticker := time.NewTicker(rq.blockMaxRun / 2)
	defer ticker.Stop()
	for {
		iter := rq.rc.SScan(rq.runningSetKey(), 0, "", 0).Iterator()
		for iter.Next() {
			prefix := iter.Val()
			var timedOut bool
			rq.withLockFor(rq.allCtx, prefix, 0, func(ctx context.Context) error {
				exists, err := rq.rc.Exists(fmt.Sprintf("%s:running", prefix)).Result()
				if err != nil {
					return err
				}
				timedOut = !exists
				return nil
			})
			if timedOut {
				rq.Drop(rq.allCtx, idFromPrefix(prefix))
			}
			if rq.allCtx.Err() != nil {
				return
			}
		}
		select {
		case <-rq.allCtx.Done():
			return
		case <-ticker.C:
		}
	}
}
